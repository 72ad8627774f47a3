package ecs

import (
	"github.com/plus3/sparsecs/container"
	"github.com/plus3/sparsecs/internal/diag"
)

// activeGroup holds the components of enabled entities. Components of
// disabled entities sit in the ungrouped tail.
const activeGroup = 0

// genericComponentStorage stores components of type T in a grouped sparse
// set keyed by the entity in their header.
type genericComponentStorage[T any, PT componentPtr[T]] struct {
	set *container.GroupedSparseSet[T]
}

func newGenericComponentStorage[T any, PT componentPtr[T]](bucketCapacity int) *genericComponentStorage[T, PT] {
	ownerOf := func(c *T) uint64 {
		return uint64(PT(c).component().Entity)
	}
	return &genericComponentStorage[T, PT]{
		set: container.NewGroupedSparseSet(ownerOf, bucketCapacity, 1),
	}
}

// Add stores a copy of item, which must be a T or *T, stamped with header.
// A *T item has its header stamped as well.
func (cs *genericComponentStorage[T, PT]) Add(item any, header Component, active bool) {
	var value T
	switch v := item.(type) {
	case *T:
		*PT(v).component() = header
		value = *v
	case T:
		value = v
	default:
		diag.Failf("component %T stored under %#x is not a %T", item, uint64(header.TypeID), value)
	}
	*PT(&value).component() = header

	group := container.Ungrouped
	if active {
		group = activeGroup
	}
	cs.set.Add(value, group)
}

func (cs *genericComponentStorage[T, PT]) Remove(entity Entity) {
	cs.set.Remove(uint64(entity))
}

func (cs *genericComponentStorage[T, PT]) Has(entity Entity) bool {
	return cs.set.Contains(uint64(entity))
}

// Lookup returns entity's component if it is in the active range.
func (cs *genericComponentStorage[T, PT]) Lookup(entity Entity) (any, bool) {
	index, ok := cs.set.IndexOf(uint64(entity))
	if !ok || index >= cs.set.GroupLen(activeGroup) {
		return nil, false
	}
	return cs.set.At(index), true
}

func (cs *genericComponentStorage[T, PT]) SetActive(entity Entity, active bool) {
	index, ok := cs.set.IndexOf(uint64(entity))
	if !ok {
		return
	}
	if active {
		cs.set.AddElementToGroup(index, activeGroup)
	} else {
		cs.set.RemoveElementFromGroup(index)
	}
}

func (cs *genericComponentStorage[T, PT]) ActiveLen() int {
	return cs.set.GroupLen(activeGroup)
}

func (cs *genericComponentStorage[T, PT]) At(index int) (Entity, any) {
	c := cs.set.At(index)
	return PT(c).component().Entity, c
}

func (cs *genericComponentStorage[T, PT]) Len() int {
	return cs.set.Len()
}

func (cs *genericComponentStorage[T, PT]) Destroy() {
	cs.set.Destroy()
}

func (cs *genericComponentStorage[T, PT]) get(entity Entity) (*T, bool) {
	if !cs.set.Contains(uint64(entity)) {
		return nil, false
	}
	return cs.set.Get(uint64(entity)), true
}
