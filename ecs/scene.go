package ecs

import (
	"iter"

	"github.com/plus3/sparsecs/container"
	"github.com/plus3/sparsecs/internal/diag"
)

// Scene is a set of entities and their components. Scenes are created by
// ECS.CreateScene and hold storage for every registered component type.
type Scene struct {
	entities   *container.SparseSet[Entity]
	disabled   *container.SparseSet[Entity]
	components *container.HashMap[ComponentTypeID, iComponentStorage]
}

func newScene(cfg Config) *Scene {
	return &Scene{
		entities:   container.NewSparseSet(entityID, cfg.BucketCapacity),
		disabled:   container.NewSparseSet(entityID, cfg.BucketCapacity),
		components: container.NewHashMap[ComponentTypeID, iComponentStorage](container.HashScalar[ComponentTypeID], cfg.InitialCapacity),
	}
}

// NumEntities returns the number of entities in the scene.
func (s *Scene) NumEntities() int {
	return s.entities.Len()
}

// Entities iterates over the scene's entities.
func (s *Scene) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range s.entities.All() {
			if !yield(*e) {
				return
			}
		}
	}
}

// HasEntity reports whether entity belongs to the scene.
func (s *Scene) HasEntity(entity Entity) bool {
	return s.entities.Contains(uint64(entity))
}

// Enabled reports whether entity belongs to the scene and takes part in
// updates.
func (s *Scene) Enabled(entity Entity) bool {
	return s.HasEntity(entity) && !s.disabled.Contains(uint64(entity))
}

// HasComponent reports whether entity holds a component of type typeID.
func (s *Scene) HasComponent(typeID ComponentTypeID, entity Entity) bool {
	return s.storage(typeID).Has(entity)
}

// NumComponents returns the number of components of type typeID in the
// scene, including those of disabled entities.
func (s *Scene) NumComponents(typeID ComponentTypeID) int {
	return s.storage(typeID).Len()
}

func (s *Scene) addStorage(typeID ComponentTypeID, store iComponentStorage) {
	s.components.Add(typeID, store)
}

func (s *Scene) storage(typeID ComponentTypeID) iComponentStorage {
	store, ok := s.components.Get(typeID)
	if !ok {
		diag.Failf("component type %#x is not registered", uint64(typeID))
	}
	return *store
}

func (s *Scene) destroy() {
	for _, store := range s.components.All() {
		(*store).Destroy()
	}
	s.components.Destroy()
	s.entities.Destroy()
	s.disabled.Destroy()
}
