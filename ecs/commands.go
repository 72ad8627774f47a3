package ecs

// Commands buffers structural changes requested while systems run. Update
// applies them after the last system, when no component pointers handed to
// systems are live any more.
type Commands struct {
	adds     []addComponentCommand
	removes  []removeComponentCommand
	destroys []Entity
	enables  []enableCommand
	defers   []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type addComponentCommand struct {
	typeID    ComponentTypeID
	entity    Entity
	component any
}

type removeComponentCommand struct {
	typeID ComponentTypeID
	entity Entity
}

type enableCommand struct {
	entity  Entity
	enabled bool
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(typeID ComponentTypeID, entity Entity, component any) {
	c.adds = append(c.adds, addComponentCommand{
		typeID:    typeID,
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(typeID ComponentTypeID, entity Entity) {
	c.removes = append(c.removes, removeComponentCommand{
		typeID: typeID,
		entity: entity,
	})
}

// DestroyEntity queues an entity deletion operation.
func (c *Commands) DestroyEntity(entity Entity) {
	c.destroys = append(c.destroys, entity)
}

// SetEntityEnabled queues enabling or disabling an entity.
func (c *Commands) SetEntityEnabled(entity Entity, enabled bool) {
	c.enables = append(c.enables, enableCommand{entity: entity, enabled: enabled})
}

// Flush applies all commands to scene, resetting the buffer state.
// Operations on entities destroyed by this flush are dropped.
func (c *Commands) Flush(e *ECS, scene *Scene) {
	destroyed := make(map[Entity]bool)

	for _, entity := range c.destroys {
		e.DestroyEntity(scene, entity)
		destroyed[entity] = true
	}

	for _, cmd := range c.removes {
		if !destroyed[cmd.entity] {
			e.RemoveComponent(cmd.typeID, cmd.entity, scene)
		}
	}

	for _, cmd := range c.adds {
		if !destroyed[cmd.entity] {
			e.AddComponent(cmd.typeID, cmd.component, cmd.entity, scene)
		}
	}

	for _, cmd := range c.enables {
		if !destroyed[cmd.entity] {
			e.SetEntityEnabled(scene, cmd.entity, cmd.enabled)
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.destroys = c.destroys[:0]
	c.enables = c.enables[:0]
	c.defers = c.defers[:0]
}
