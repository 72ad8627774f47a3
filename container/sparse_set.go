package container

import (
	"iter"

	"github.com/plus3/sparsecs/internal/diag"
)

// IDFunc reports the external id of an element stored in a sparse set.
type IDFunc[T any] func(*T) uint64

// SparseSet stores elements densely and indexes them by an external id
// derived from the element itself. Add, Remove and Contains are O(1);
// removal swaps the last dense element into the vacated slot.
type SparseSet[T any] struct {
	sparse *BucketArray[uint64] // id -> dense index
	dense  *BucketArray[T]
	idOf   IDFunc[T]
}

// NewSparseSet creates an empty set. idOf must be stable for an element for
// as long as it is stored.
func NewSparseSet[T any](idOf IDFunc[T], bucketCapacity int) *SparseSet[T] {
	if idOf == nil {
		diag.Failf("sparse set requires an id function")
	}
	return &SparseSet[T]{
		sparse: NewBucketArray[uint64](bucketCapacity),
		dense:  NewBucketArray[T](bucketCapacity),
		idOf:   idOf,
	}
}

// Len returns the number of stored elements.
func (s *SparseSet[T]) Len() int {
	return s.dense.Len()
}

// Add stores v unless an element with the same id is already present. It
// returns the address of the element stored under that id and whether v was
// inserted.
func (s *SparseSet[T]) Add(v T) (*T, bool) {
	id := s.idOf(&v)
	if id >= uint64(s.sparse.Len()) {
		s.growSparse(id)
	} else if s.Contains(id) {
		return s.Get(id), false
	}

	*s.sparse.Get(int(id)) = uint64(s.dense.Len())
	return s.dense.Add(v), true
}

// Remove deletes the element with the given id. Removing an absent id does
// nothing. The last dense element takes the removed element's place.
func (s *SparseSet[T]) Remove(id uint64) {
	if !s.Contains(id) {
		return
	}
	last := s.dense.Len() - 1
	s.swap(int(*s.sparse.Get(int(id))), last)
	s.dense.PopBack()
}

// Contains reports whether an element with the given id is stored.
func (s *SparseSet[T]) Contains(id uint64) bool {
	_, ok := s.IndexOf(id)
	return ok
}

// IndexOf returns the dense index of the element with the given id.
func (s *SparseSet[T]) IndexOf(id uint64) (int, bool) {
	if id >= uint64(s.sparse.Len()) {
		return 0, false
	}
	index := *s.sparse.Get(int(id))
	if index >= uint64(s.dense.Len()) {
		return 0, false
	}
	// Unwritten sparse slots read as 0, which is a valid dense index, so the
	// element found there must map back to id.
	if s.idOf(s.dense.Get(int(index))) != id {
		return 0, false
	}
	return int(index), true
}

// Get returns the address of the element with the given id. The id must be
// present.
func (s *SparseSet[T]) Get(id uint64) *T {
	index, ok := s.IndexOf(id)
	if !ok {
		diag.Failf("sparse set has no element with id %d", id)
	}
	return s.dense.Get(index)
}

// At returns the address of the element at dense index.
func (s *SparseSet[T]) At(index int) *T {
	return s.dense.Get(index)
}

// All iterates over the dense elements in storage order.
func (s *SparseSet[T]) All() iter.Seq2[int, *T] {
	return s.dense.All()
}

// Clear removes every element.
func (s *SparseSet[T]) Clear() {
	s.dense.Clear()
	s.sparse.Clear()
	s.sparse.Resize(0)
}

// Destroy releases the sparse index and the dense storage.
func (s *SparseSet[T]) Destroy() {
	s.dense.Destroy()
	s.sparse.Destroy()
}

// growSparse extends the sparse index so that id is addressable. New slots
// are zero.
func (s *SparseSet[T]) growSparse(id uint64) {
	span := int(id) + 1
	if span > s.sparse.Cap() {
		s.sparse.Resize(span)
	}
	for s.sparse.Len() < span {
		s.sparse.Add(0)
	}
}

// swap exchanges the dense elements at i and j and repoints their sparse
// entries.
func (s *SparseSet[T]) swap(i, j int) {
	if i == j {
		return
	}
	a, b := s.dense.Get(i), s.dense.Get(j)
	*a, *b = *b, *a
	*s.sparse.Get(int(s.idOf(a))) = uint64(i)
	*s.sparse.Get(int(s.idOf(b))) = uint64(j)
}
