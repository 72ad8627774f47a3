package ecs

import (
	"reflect"

	"github.com/plus3/sparsecs/container"
	"github.com/plus3/sparsecs/internal/diag"
)

// ComponentTypeID identifies a component type. It is the FNV-1a hash of the
// name the type was registered under.
type ComponentTypeID uint64

// ComponentID identifies one component instance.
type ComponentID uint64

// Component is the header every component type embeds. AddComponent fills it
// in; callers leave it zero.
type Component struct {
	TypeID ComponentTypeID
	ID     ComponentID
	Entity Entity
}

func (c *Component) component() *Component {
	return c
}

// componentPtr is satisfied by *T when T embeds Component.
type componentPtr[T any] interface {
	*T
	component() *Component
}

// componentType is a registered component type and the factory for its
// per-scene storage.
type componentType struct {
	id         ComponentTypeID
	name       string
	goType     reflect.Type
	newStorage func(bucketCapacity int) iComponentStorage
}

// TypeIDOf returns the ComponentTypeID a component type registered under
// name receives.
func TypeIDOf(name string) ComponentTypeID {
	return ComponentTypeID(container.HashString(name))
}

// RegisterComponent registers T under name and allocates its storage in
// every existing scene. Registering the same name and type again returns the
// existing id. A name whose hash is already taken by another name, or a name
// already bound to a different type, is a precondition violation.
func RegisterComponent[T any, PT componentPtr[T]](e *ECS, name string) ComponentTypeID {
	if name == "" {
		diag.Failf("component type name must not be empty")
	}
	id := TypeIDOf(name)
	goType := reflect.TypeFor[T]()

	if index, ok := e.typeIndex.Get(id); ok {
		existing := e.types.Get(index)
		if existing.name != name {
			diag.Failf("component type %q collides with %q (id %#x)", name, existing.name, uint64(id))
		}
		if existing.goType != goType {
			diag.Failf("component type %q already registered as %v, not %v", name, existing.goType, goType)
		}
		e.log.WithField("component", name).Warn("component type already registered")
		return id
	}

	ct := componentType{
		id:     id,
		name:   name,
		goType: goType,
		newStorage: func(bucketCapacity int) iComponentStorage {
			return newGenericComponentStorage[T, PT](bucketCapacity)
		},
	}
	e.types.Append(ct)
	e.typeIndex.Put(id, e.types.Len()-1)

	for _, scene := range e.scenes.All() {
		(*scene).addStorage(id, ct.newStorage(e.cfg.BucketCapacity))
	}

	e.log.WithField("component", name).Debugf("registered component type %#x", uint64(id))
	return id
}

// Get returns entity's component of type T stored under typeID in scene.
func Get[T any, PT componentPtr[T]](scene *Scene, typeID ComponentTypeID, entity Entity) (*T, bool) {
	store, ok := scene.storage(typeID).(*genericComponentStorage[T, PT])
	if !ok {
		diag.Failf("component type %#x does not store %v", uint64(typeID), reflect.TypeFor[T]())
	}
	return store.get(entity)
}
