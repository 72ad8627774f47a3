package ecs

import (
	"iter"

	"github.com/plus3/sparsecs/container"
)

// UpdateFunc is called once per matching entity during an update.
// components holds one pointer per declared component type, in declaration
// order; the slice and the pointers are only valid for the duration of the
// call.
type UpdateFunc func(frame *UpdateFrame, components []any)

// System is a behavior run over every entity holding all of Components.
type System struct {
	// Name identifies the system; two systems may not share a name.
	Name string
	// Components lists the component types the system consumes.
	Components []ComponentTypeID
	// Priority orders systems within an update, lowest first. Systems of
	// equal priority run in registration order.
	Priority int
	Update   UpdateFunc

	id         uint64
	compatible *container.SparseSet[Entity]
	stores     []iComponentStorage
	args       []any
	stats      systemStatsInternal
}

// ID returns the FNV-1a hash of the system's name. It is zero until the
// system is registered.
func (s *System) ID() uint64 {
	return s.id
}

// NumCompatible returns the number of entities currently holding every
// component the system needs. It is always zero for single-component
// systems, which iterate their component storage directly.
func (s *System) NumCompatible() int {
	if s.compatible == nil {
		return 0
	}
	return s.compatible.Len()
}

// CompatibleEntities iterates over the entities counted by NumCompatible.
func (s *System) CompatibleEntities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if s.compatible == nil {
			return
		}
		for _, e := range s.compatible.All() {
			if !yield(*e) {
				return
			}
		}
	}
}

// refresh adds entity to or drops it from the compatible set according to
// whether scene holds every required component for it.
func (s *System) refresh(scene *Scene, entity Entity) {
	if len(s.Components) < 2 {
		return
	}
	for _, typeID := range s.Components {
		if !scene.storage(typeID).Has(entity) {
			s.compatible.Remove(uint64(entity))
			return
		}
	}
	s.compatible.Add(entity)
}
