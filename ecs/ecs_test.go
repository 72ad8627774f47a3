package ecs_test

import (
	"testing"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdsAreSequential(t *testing.T) {
	world, _ := newTestECS()
	first := world.CreateScene()
	second := world.CreateScene()

	a := world.AddEntity(first)
	b := world.AddEntity(second)
	c := world.AddEntity(first)

	assert.Equal(t, ecs.Entity(1), a)
	assert.Equal(t, ecs.Entity(2), b)
	assert.Equal(t, ecs.Entity(3), c)

	assert.True(t, first.HasEntity(a))
	assert.False(t, first.HasEntity(b))
	assert.Equal(t, 2, first.NumEntities())
	assert.Equal(t, 1, second.NumEntities())

	var seen []ecs.Entity
	for e := range first.Entities() {
		seen = append(seen, e)
	}
	assert.ElementsMatch(t, []ecs.Entity{a, c}, seen)
}

func TestIndependentECSInstances(t *testing.T) {
	one, _ := newTestECS()
	two, _ := newTestECS()

	assert.Equal(t, ecs.Entity(1), one.AddEntity(one.CreateScene()))
	assert.Equal(t, ecs.Entity(1), two.AddEntity(two.CreateScene()))
}

func TestRegisterComponent(t *testing.T) {
	world, types := newTestECS()

	assert.Equal(t, ecs.TypeIDOf("Position"), types.Position)
	assert.NotEqual(t, types.Position, types.Velocity)

	t.Run("same name and type returns the existing id", func(t *testing.T) {
		assert.Equal(t, types.Position, ecs.RegisterComponent[Position](world, "Position"))
	})

	t.Run("same name with another type is rejected", func(t *testing.T) {
		assert.Panics(t, func() { ecs.RegisterComponent[Velocity](world, "Position") })
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		assert.Panics(t, func() { ecs.RegisterComponent[Name](world, "") })
	})

	t.Run("scenes created earlier get storage", func(t *testing.T) {
		scene := world.CreateScene()
		type Late struct {
			ecs.Component
			N int
		}
		late := ecs.RegisterComponent[Late](world, "Late")

		e := world.AddEntity(scene)
		_, ok := world.AddComponent(late, Late{N: 7}, e, scene)
		require.True(t, ok)

		got, ok := ecs.Get[Late](scene, late, e)
		require.True(t, ok)
		assert.Equal(t, 7, got.N)
	})
}

func TestAddComponent(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()
	e := world.AddEntity(scene)

	pos := &Position{X: 1, Y: 2}
	id, ok := world.AddComponent(types.Position, pos, e, scene)
	require.True(t, ok)
	assert.NotZero(t, id)

	assert.Equal(t, ecs.Component{TypeID: types.Position, ID: id, Entity: e}, pos.Component,
		"pointer arguments are stamped")

	stored, ok := ecs.Get[Position](scene, types.Position, e)
	require.True(t, ok)
	assert.NotSame(t, pos, stored, "the scene stores a copy")
	assert.Equal(t, *pos, *stored)

	vid, ok := world.AddComponent(types.Velocity, Velocity{DX: 3}, e, scene)
	require.True(t, ok)
	assert.Greater(t, uint64(vid), uint64(id))

	_, ok = world.AddComponent(types.Position, Position{X: 9}, e, scene)
	assert.False(t, ok, "one component per type per entity")
	stored, _ = ecs.Get[Position](scene, types.Position, e)
	assert.Equal(t, float32(1), stored.X)

	assert.True(t, scene.HasComponent(types.Position, e))
	assert.False(t, scene.HasComponent(types.Health, e))
	assert.Equal(t, 1, scene.NumComponents(types.Velocity))

	_, ok = ecs.Get[Health](scene, types.Health, e)
	assert.False(t, ok)
}

func TestAddComponentPreconditions(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()
	other := world.CreateScene()
	e := world.AddEntity(scene)

	assert.Panics(t, func() { world.AddComponent(types.Position, Position{}, e, other) }, "entity of another scene")
	assert.Panics(t, func() { world.AddComponent(ecs.TypeIDOf("Unknown"), Position{}, e, scene) }, "unregistered type")
	assert.Panics(t, func() { world.AddComponent(types.Position, Velocity{}, e, scene) }, "mismatched type")
	assert.Panics(t, func() { ecs.Get[Velocity](scene, types.Position, e) }, "mismatched Get")
}

func TestRemoveComponent(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()

	entities := make([]ecs.Entity, 5)
	for i := range entities {
		entities[i] = world.AddEntity(scene)
		world.AddComponent(types.Health, Health{Current: i}, entities[i], scene)
	}

	world.RemoveComponent(types.Health, entities[1], scene)
	world.RemoveComponent(types.Health, entities[1], scene)
	world.RemoveComponent(types.Position, entities[2], scene)

	assert.Equal(t, 4, scene.NumComponents(types.Health))
	assert.False(t, scene.HasComponent(types.Health, entities[1]))
	for _, i := range []int{0, 2, 3, 4} {
		h, ok := ecs.Get[Health](scene, types.Health, entities[i])
		require.True(t, ok)
		assert.Equal(t, i, h.Current)
	}
}

func TestDestroyEntity(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()

	e := world.AddEntity(scene)
	keep := world.AddEntity(scene)
	world.AddComponent(types.Position, Position{}, e, scene)
	world.AddComponent(types.Velocity, Velocity{}, e, scene)
	world.AddComponent(types.Position, Position{X: 5}, keep, scene)

	sys := &ecs.System{
		Name:       "move",
		Components: []ecs.ComponentTypeID{types.Position, types.Velocity},
		Update:     func(*ecs.UpdateFrame, []any) {},
	}
	world.RegisterSystem(sys)
	require.Equal(t, 1, sys.NumCompatible())

	world.DestroyEntity(scene, e)
	world.DestroyEntity(scene, e)

	assert.False(t, scene.HasEntity(e))
	assert.False(t, scene.HasComponent(types.Position, e))
	assert.False(t, scene.HasComponent(types.Velocity, e))
	assert.Equal(t, 0, sys.NumCompatible())

	p, ok := ecs.Get[Position](scene, types.Position, keep)
	require.True(t, ok)
	assert.Equal(t, float32(5), p.X)
}

func TestSetEntityEnabled(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()

	var visited []ecs.Entity
	world.RegisterSystem(&ecs.System{
		Name:       "health",
		Components: []ecs.ComponentTypeID{types.Health},
		Update: func(frame *ecs.UpdateFrame, _ []any) {
			visited = append(visited, frame.Entity)
		},
	})

	a := world.AddEntity(scene)
	b := world.AddEntity(scene)
	c := world.AddEntity(scene)
	for _, e := range []ecs.Entity{a, b, c} {
		world.AddComponent(types.Health, Health{}, e, scene)
	}

	world.SetEntityEnabled(scene, b, false)
	assert.False(t, scene.Enabled(b))
	assert.True(t, scene.HasComponent(types.Health, b), "disabled entities keep their components")

	world.Update(scene, 0)
	assert.ElementsMatch(t, []ecs.Entity{a, c}, visited)

	// Components added while disabled stay out of updates.
	world.AddComponent(types.Position, Position{}, b, scene)
	world.RegisterSystem(&ecs.System{
		Name:       "position",
		Components: []ecs.ComponentTypeID{types.Position},
		Update: func(*ecs.UpdateFrame, []any) {
			t.Error("disabled entity was updated")
		},
	})
	visited = nil
	world.Update(scene, 0)
	assert.ElementsMatch(t, []ecs.Entity{a, c}, visited)

	world.SetEntityEnabled(scene, b, true)
	assert.True(t, scene.Enabled(b))
}

func TestDestroy(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()
	e := world.AddEntity(scene)
	world.AddComponent(types.Name, Name{Value: "x"}, e, scene)
	world.RegisterSystem(&ecs.System{
		Name:       "names",
		Components: []ecs.ComponentTypeID{types.Name, types.Position},
		Update:     func(*ecs.UpdateFrame, []any) {},
	})

	assert.NotPanics(t, world.Destroy)
}
