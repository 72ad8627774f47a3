package ecs

import (
	"github.com/kamstrup/intmap"
	log "github.com/sirupsen/logrus"

	"github.com/plus3/sparsecs/container"
	"github.com/plus3/sparsecs/internal/diag"
)

// Config holds the tunables of an ECS. Zero fields take their defaults.
type Config struct {
	// BucketCapacity is the bucket size of every sparse set the ECS creates.
	BucketCapacity int
	// InitialCapacity is the starting capacity of the ECS's arrays and of
	// each scene's component table.
	InitialCapacity int
	Logger          log.FieldLogger
}

// DefaultConfig returns the configuration New uses for zero fields.
func DefaultConfig() Config {
	return Config{
		BucketCapacity:  16,
		InitialCapacity: container.InitialCapacity,
		Logger:          diag.Logger(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BucketCapacity <= 0 {
		c.BucketCapacity = d.BucketCapacity
	}
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = d.InitialCapacity
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// ECS owns scenes, component types and systems, and the counters entity and
// component ids are drawn from. Independent ECS values share nothing.
type ECS struct {
	cfg Config
	log log.FieldLogger

	nextEntity    Entity
	nextComponent ComponentID

	scenes    *container.Array[*Scene]
	types     *container.Array[componentType]
	typeIndex *intmap.Map[ComponentTypeID, int]
	systems   *container.Array[*System]
	systemIDs *intmap.Map[uint64, *System]
}

// New creates an empty ECS.
func New(cfg Config) *ECS {
	cfg = cfg.withDefaults()
	return &ECS{
		cfg:       cfg,
		log:       cfg.Logger,
		scenes:    container.NewArray[*Scene](1),
		types:     container.NewArray[componentType](cfg.InitialCapacity),
		typeIndex: intmap.New[ComponentTypeID, int](cfg.InitialCapacity),
		systems:   container.NewArray[*System](cfg.InitialCapacity),
		systemIDs: intmap.New[uint64, *System](cfg.InitialCapacity),
	}
}

// Destroy releases every scene, system and registry the ECS owns.
func (e *ECS) Destroy() {
	for _, scene := range e.scenes.All() {
		(*scene).destroy()
	}
	for _, sys := range e.systems.All() {
		if (*sys).compatible != nil {
			(*sys).compatible.Destroy()
		}
	}
	e.scenes.Destroy()
	e.types.Destroy()
	e.systems.Destroy()
	e.typeIndex.Clear()
	e.systemIDs.Clear()
}

// CreateScene creates a scene holding storage for every registered
// component type.
func (e *ECS) CreateScene() *Scene {
	scene := newScene(e.cfg)
	for _, ct := range e.types.All() {
		scene.addStorage(ct.id, ct.newStorage(e.cfg.BucketCapacity))
	}
	e.scenes.Append(scene)
	return scene
}

// AddEntity creates a new entity in scene.
func (e *ECS) AddEntity(scene *Scene) Entity {
	e.nextEntity++
	scene.entities.Add(e.nextEntity)
	return e.nextEntity
}

// AddComponent stores data, a T or *T for the type registered as typeID, as
// entity's component. The stored copy's header is stamped with a new
// ComponentID and entity. It returns false if entity already holds a
// component of that type.
func (e *ECS) AddComponent(typeID ComponentTypeID, data any, entity Entity, scene *Scene) (ComponentID, bool) {
	e.checkEntity(scene, entity)
	store := scene.storage(typeID)
	if store.Has(entity) {
		return 0, false
	}

	e.nextComponent++
	header := Component{TypeID: typeID, ID: e.nextComponent, Entity: entity}
	store.Add(data, header, scene.Enabled(entity))

	e.refreshSystems(scene, entity)
	return header.ID, true
}

// RemoveComponent removes entity's component of type typeID. Removing a
// component the entity does not hold does nothing.
func (e *ECS) RemoveComponent(typeID ComponentTypeID, entity Entity, scene *Scene) {
	store := scene.storage(typeID)
	if !store.Has(entity) {
		return
	}
	store.Remove(entity)
	e.refreshSystems(scene, entity)
}

// DestroyEntity removes entity and all of its components from scene.
// Destroying an entity that is not in the scene does nothing.
func (e *ECS) DestroyEntity(scene *Scene, entity Entity) {
	if !scene.HasEntity(entity) {
		return
	}
	for _, store := range scene.components.All() {
		(*store).Remove(entity)
	}
	for _, sys := range e.systems.All() {
		if (*sys).compatible != nil {
			(*sys).compatible.Remove(uint64(entity))
		}
	}
	scene.disabled.Remove(uint64(entity))
	scene.entities.Remove(uint64(entity))
}

// SetEntityEnabled includes entity in or excludes it from updates. Disabled
// entities keep their components.
func (e *ECS) SetEntityEnabled(scene *Scene, entity Entity, enabled bool) {
	e.checkEntity(scene, entity)
	if scene.Enabled(entity) == enabled {
		return
	}
	if enabled {
		scene.disabled.Remove(uint64(entity))
	} else {
		scene.disabled.Add(entity)
	}
	for _, store := range scene.components.All() {
		(*store).SetActive(entity, enabled)
	}
}

func (e *ECS) refreshSystems(scene *Scene, entity Entity) {
	for _, sys := range e.systems.All() {
		(*sys).refresh(scene, entity)
	}
}

func (e *ECS) checkEntity(scene *Scene, entity Entity) {
	if scene == nil {
		diag.Failf("nil scene")
	}
	if !scene.HasEntity(entity) {
		diag.Failf("entity %d is not in the scene", entity)
	}
}
