package container

import (
	"iter"
	"math"

	"github.com/plus3/sparsecs/internal/diag"
)

const (
	// InitialCapacity is the capacity used by constructors when the caller
	// passes a non-positive capacity.
	InitialCapacity = 16

	// GoldenRatio is the growth factor applied to full arrays and hash maps.
	GoldenRatio = 1.61803398875
)

// Array is a contiguous, growable array. Appending past capacity moves the
// backing storage, so element pointers are not stable across growth.
type Array[T any] struct {
	items []T // len(items) is the capacity
	count int
}

// NewArray creates an empty array able to hold capacity elements before it
// has to grow.
func NewArray[T any](capacity int) *Array[T] {
	if capacity < 0 {
		diag.Failf("negative array capacity %d", capacity)
	}
	return &Array[T]{items: make([]T, capacity)}
}

// Len returns the number of occupied elements.
func (a *Array[T]) Len() int {
	return a.count
}

// Cap returns the number of elements the array holds before growing.
func (a *Array[T]) Cap() int {
	return len(a.items)
}

// Append copies v into the next free slot and returns its address.
func (a *Array[T]) Append(v T) *T {
	if a.count == len(a.items) {
		a.Resize(grownCapacity(len(a.items)))
	}
	a.items[a.count] = v
	a.count++
	return &a.items[a.count-1]
}

// PopBack removes and returns the last element.
func (a *Array[T]) PopBack() T {
	if a.count == 0 {
		diag.Failf("pop from empty array")
	}
	a.count--
	v := a.items[a.count]
	var zero T
	a.items[a.count] = zero
	return v
}

// Get returns the address of the element at index.
func (a *Array[T]) Get(index int) *T {
	if index < 0 || index >= a.count {
		diag.Failf("array index %d out of range [0,%d)", index, a.count)
	}
	return &a.items[index]
}

// Resize reallocates the backing storage to hold exactly n elements.
// Elements beyond n are discarded; new slots are zero.
func (a *Array[T]) Resize(n int) {
	if n < 0 {
		diag.Failf("negative array size %d", n)
	}
	items := make([]T, n)
	a.count = min(a.count, n)
	copy(items, a.items[:a.count])
	a.items = items
}

// Fill writes v into every slot and marks the whole capacity as occupied.
func (a *Array[T]) Fill(v T) {
	for i := range a.items {
		a.items[i] = v
	}
	a.count = len(a.items)
}

// Clear zeroes every occupied slot and empties the array, keeping capacity.
func (a *Array[T]) Clear() {
	clear(a.items[:a.count])
	a.count = 0
}

// Destroy drops the backing storage.
func (a *Array[T]) Destroy() {
	a.items = nil
	a.count = 0
}

// All iterates over occupied elements in index order.
func (a *Array[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < a.count; i++ {
			if !yield(i, &a.items[i]) {
				return
			}
		}
	}
}

// grownCapacity is the golden-ratio successor of capacity, always at least
// one more than capacity.
func grownCapacity(capacity int) int {
	return max(capacity+1, int(math.Round(float64(capacity)*GoldenRatio)))
}
