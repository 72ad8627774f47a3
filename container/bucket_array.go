package container

import (
	"iter"

	"github.com/plus3/sparsecs/internal/diag"
)

// BucketArray stores elements in fixed-size, independently allocated buckets.
// Buckets are never moved or reallocated once created, so the address of an
// element stays valid until that element is popped or its bucket is released.
type BucketArray[T any] struct {
	buckets        *Array[[]T]
	bucketCapacity int
	count          int
}

// NewBucketArray creates a bucket array owning one empty bucket of
// bucketCapacity elements.
func NewBucketArray[T any](bucketCapacity int) *BucketArray[T] {
	if bucketCapacity <= 0 {
		diag.Failf("bucket capacity must be positive, got %d", bucketCapacity)
	}
	b := &BucketArray[T]{
		buckets:        NewArray[[]T](1),
		bucketCapacity: bucketCapacity,
	}
	b.addBucket()
	return b
}

// Len returns the number of occupied elements.
func (b *BucketArray[T]) Len() int {
	return b.count
}

// Cap returns the number of elements the allocated buckets can hold.
func (b *BucketArray[T]) Cap() int {
	return b.buckets.Len() * b.bucketCapacity
}

// NumBuckets returns the number of allocated buckets.
func (b *BucketArray[T]) NumBuckets() int {
	return b.buckets.Len()
}

// BucketCapacity returns the number of elements per bucket.
func (b *BucketArray[T]) BucketCapacity() int {
	return b.bucketCapacity
}

// Bucket returns the storage of the bucket at index. The slice always has
// BucketCapacity elements; slots past Len are zero.
func (b *BucketArray[T]) Bucket(index int) []T {
	return *b.buckets.Get(index)
}

// Add copies v to the end of the array, allocating a new bucket when the last
// one is full, and returns the element's address.
func (b *BucketArray[T]) Add(v T) *T {
	if b.count >= b.Cap() {
		b.addBucket()
	}
	slot := b.slot(b.count)
	*slot = v
	b.count++
	return slot
}

// PopBack removes and returns the last element. A bucket emptied by the pop
// is released unless it is the only one left.
func (b *BucketArray[T]) PopBack() T {
	if b.count == 0 {
		diag.Failf("pop from empty bucket array")
	}
	slot := b.slot(b.count - 1)
	v := *slot
	var zero T
	*slot = zero
	b.count--

	if b.count%b.bucketCapacity == 0 && b.buckets.Len() > 1 {
		b.buckets.PopBack()
	}
	return v
}

// Get returns the address of the element at index.
func (b *BucketArray[T]) Get(index int) *T {
	if index < 0 || index >= b.count {
		diag.Failf("bucket array index %d out of range [0,%d)", index, b.count)
	}
	return b.slot(index)
}

// Resize allocates or releases whole buckets so that exactly enough buckets
// exist to hold n elements. Elements beyond n are discarded.
func (b *BucketArray[T]) Resize(n int) {
	if n < 0 {
		diag.Failf("negative bucket array size %d", n)
	}
	needed := (n + b.bucketCapacity - 1) / b.bucketCapacity

	for i := n; i < b.count; i++ {
		var zero T
		*b.slot(i) = zero
	}
	b.count = min(b.count, n)

	for b.buckets.Len() > needed {
		b.buckets.PopBack()
	}
	for b.buckets.Len() < needed {
		b.addBucket()
	}
}

// Fill writes v into every slot of every bucket and marks all of them as
// occupied.
func (b *BucketArray[T]) Fill(v T) {
	for _, bucket := range b.buckets.All() {
		for i := range *bucket {
			(*bucket)[i] = v
		}
	}
	b.count = b.Cap()
}

// Clear zeroes every slot and empties the array. Buckets are kept.
func (b *BucketArray[T]) Clear() {
	for _, bucket := range b.buckets.All() {
		clear(*bucket)
	}
	b.count = 0
}

// Destroy releases every bucket.
func (b *BucketArray[T]) Destroy() {
	b.buckets.Destroy()
	b.count = 0
}

// All iterates over occupied elements in index order.
func (b *BucketArray[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < b.count; i++ {
			if !yield(i, b.slot(i)) {
				return
			}
		}
	}
}

func (b *BucketArray[T]) slot(index int) *T {
	bucket := *b.buckets.Get(index / b.bucketCapacity)
	return &bucket[index%b.bucketCapacity]
}

func (b *BucketArray[T]) addBucket() {
	b.buckets.Append(make([]T, b.bucketCapacity))
}
