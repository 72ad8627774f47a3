package container

import (
	"iter"

	"github.com/plus3/sparsecs/internal/diag"
)

// Ungrouped is the group id of elements that belong to no group.
const Ungrouped = -1

// GroupedSparseSet is a SparseSet whose dense storage is partitioned into
// contiguous, ordered groups. Group g spans the dense range
// [boundary(g-1), boundary(g)), with boundary(-1) = 0. Elements at or past the
// last boundary are ungrouped. Membership is implied by position; moving an
// element between groups swaps it across the boundaries in between.
type GroupedSparseSet[T any] struct {
	set    *SparseSet[T]
	groups *Array[int]
}

// NewGroupedSparseSet creates an empty set with initialGroups empty groups.
func NewGroupedSparseSet[T any](idOf IDFunc[T], bucketCapacity, initialGroups int) *GroupedSparseSet[T] {
	if initialGroups < 0 {
		diag.Failf("negative group count %d", initialGroups)
	}
	g := &GroupedSparseSet[T]{
		set:    NewSparseSet(idOf, bucketCapacity),
		groups: NewArray[int](max(initialGroups, 1)),
	}
	for range initialGroups {
		g.AddGroup()
	}
	return g
}

// Len returns the number of stored elements, grouped or not.
func (g *GroupedSparseSet[T]) Len() int {
	return g.set.Len()
}

// NumGroups returns the number of groups.
func (g *GroupedSparseSet[T]) NumGroups() int {
	return g.groups.Len()
}

// AddGroup appends a new, empty group after the existing ones and returns
// its id.
func (g *GroupedSparseSet[T]) AddGroup() int {
	g.groups.Append(g.boundary(g.groups.Len() - 1))
	return g.groups.Len() - 1
}

// Add stores v and places it in group, or leaves it ungrouped when group is
// Ungrouped. An element whose id is already present is left where it is.
func (g *GroupedSparseSet[T]) Add(v T, group int) (*T, bool) {
	g.checkGroup(group)
	if _, ok := g.set.Add(v); !ok {
		return g.set.Get(g.set.idOf(&v)), false
	}
	index := g.moveTo(g.set.Len()-1, group)
	return g.set.At(index), true
}

// Remove deletes the element with the given id, keeping every group
// contiguous. Removing an absent id does nothing.
func (g *GroupedSparseSet[T]) Remove(id uint64) {
	index, ok := g.set.IndexOf(id)
	if !ok {
		return
	}
	// Walk the element out through every later boundary into the ungrouped
	// tail, then swap-remove it from there.
	g.moveTo(index, Ungrouped)
	g.set.Remove(id)
}

// Contains reports whether an element with the given id is stored.
func (g *GroupedSparseSet[T]) Contains(id uint64) bool {
	return g.set.Contains(id)
}

// IndexOf returns the dense index of the element with the given id.
func (g *GroupedSparseSet[T]) IndexOf(id uint64) (int, bool) {
	return g.set.IndexOf(id)
}

// Get returns the address of the element with the given id. The id must be
// present.
func (g *GroupedSparseSet[T]) Get(id uint64) *T {
	return g.set.Get(id)
}

// At returns the address of the element at dense index.
func (g *GroupedSparseSet[T]) At(index int) *T {
	return g.set.At(index)
}

// AddElementToGroup moves the element at dense index into group and returns
// its new dense index. Elements of every other group keep their group.
func (g *GroupedSparseSet[T]) AddElementToGroup(index, group int) int {
	g.checkIndex(index)
	g.checkGroup(group)
	return g.moveTo(index, group)
}

// RemoveElementFromGroup moves the element at dense index to the ungrouped
// tail and returns its new dense index.
func (g *GroupedSparseSet[T]) RemoveElementFromGroup(index int) int {
	g.checkIndex(index)
	return g.moveTo(index, Ungrouped)
}

// GroupOf returns the group of the element at dense index, or Ungrouped.
func (g *GroupedSparseSet[T]) GroupOf(index int) int {
	g.checkIndex(index)
	for k, boundary := range g.groups.All() {
		if index < *boundary {
			return k
		}
	}
	return Ungrouped
}

// GroupRange returns the dense range [start, end) occupied by group.
func (g *GroupedSparseSet[T]) GroupRange(group int) (start, end int) {
	if group < 0 || group >= g.groups.Len() {
		diag.Failf("group %d out of range [0,%d)", group, g.groups.Len())
	}
	return g.boundary(group - 1), g.boundary(group)
}

// GroupLen returns the number of elements in group.
func (g *GroupedSparseSet[T]) GroupLen(group int) int {
	start, end := g.GroupRange(group)
	return end - start
}

// Group iterates over the elements of group in dense order.
func (g *GroupedSparseSet[T]) Group(group int) iter.Seq2[int, *T] {
	start, end := g.GroupRange(group)
	return func(yield func(int, *T) bool) {
		for i := start; i < end; i++ {
			if !yield(i, g.set.At(i)) {
				return
			}
		}
	}
}

// All iterates over every element in dense order, grouped ones first.
func (g *GroupedSparseSet[T]) All() iter.Seq2[int, *T] {
	return g.set.All()
}

// Clear removes every element and empties every group.
func (g *GroupedSparseSet[T]) Clear() {
	g.set.Clear()
	for _, boundary := range g.groups.All() {
		*boundary = 0
	}
}

// Destroy releases the underlying set and the group table.
func (g *GroupedSparseSet[T]) Destroy() {
	g.set.Destroy()
	g.groups.Destroy()
}

// moveTo shifts the element at index across the boundaries separating its
// current group from target, one swap per boundary, and returns its final
// index.
func (g *GroupedSparseSet[T]) moveTo(index, target int) int {
	current := g.GroupOf(index)
	if current == Ungrouped {
		current = g.groups.Len()
	}
	if target == Ungrouped {
		target = g.groups.Len()
	}

	// Leftward: swap with the first element of the current group, then pull
	// the boundary past it.
	for k := current - 1; k >= target; k-- {
		boundary := g.groups.Get(k)
		g.set.swap(index, *boundary)
		index = *boundary
		*boundary++
	}
	// Rightward: swap with the last element of the current group, then pull
	// the boundary in front of it.
	for k := current; k < target; k++ {
		boundary := g.groups.Get(k)
		*boundary--
		g.set.swap(index, *boundary)
		index = *boundary
	}
	return index
}

func (g *GroupedSparseSet[T]) boundary(group int) int {
	if group < 0 {
		return 0
	}
	return *g.groups.Get(group)
}

func (g *GroupedSparseSet[T]) checkGroup(group int) {
	if group < Ungrouped || group >= g.groups.Len() {
		diag.Failf("group %d out of range [0,%d)", group, g.groups.Len())
	}
}

func (g *GroupedSparseSet[T]) checkIndex(index int) {
	if index < 0 || index >= g.set.Len() {
		diag.Failf("dense index %d out of range [0,%d)", index, g.set.Len())
	}
}
