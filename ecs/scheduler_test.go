package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movementSystem(types testTypes) *ecs.System {
	return &ecs.System{
		Name:       "movement",
		Components: []ecs.ComponentTypeID{types.Position, types.Velocity},
		Update: func(frame *ecs.UpdateFrame, components []any) {
			pos := components[0].(*Position)
			vel := components[1].(*Velocity)
			pos.X += vel.DX * float32(frame.DeltaTime)
			pos.Y += vel.DY * float32(frame.DeltaTime)
		},
	}
}

// recorder returns a system over typeIDs that appends each visited entity
// to visited.
func recorder(name string, visited *[]ecs.Entity, typeIDs ...ecs.ComponentTypeID) *ecs.System {
	return &ecs.System{
		Name:       name,
		Components: typeIDs,
		Update: func(frame *ecs.UpdateFrame, _ []any) {
			*visited = append(*visited, frame.Entity)
		},
	}
}

func TestScheduler(t *testing.T) {
	t.Run("systems visit only entities holding every component", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()

		x := world.AddEntity(scene)
		y := world.AddEntity(scene)
		world.AddComponent(types.Position, Position{}, x, scene)
		world.AddComponent(types.Position, Position{}, y, scene)
		world.AddComponent(types.Velocity, Velocity{}, y, scene)

		var both, positions []ecs.Entity
		pair := recorder("pair", &both, types.Position, types.Velocity)
		single := recorder("single", &positions, types.Position)
		world.RegisterSystem(pair)
		world.RegisterSystem(single)

		world.Update(scene, 1.0)

		assert.Equal(t, []ecs.Entity{y}, both)
		assert.ElementsMatch(t, []ecs.Entity{x, y}, positions)
		assert.Equal(t, 1, pair.NumCompatible())
		assert.Equal(t, 0, single.NumCompatible())
	})

	t.Run("components are passed in declaration order", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()
		world.RegisterSystem(movementSystem(types))

		e := world.AddEntity(scene)
		world.AddComponent(types.Position, Position{X: 1, Y: 1}, e, scene)
		world.AddComponent(types.Velocity, Velocity{DX: 2, DY: -1}, e, scene)

		world.Update(scene, 0.5)
		world.Update(scene, 0.5)

		pos, ok := ecs.Get[Position](scene, types.Position, e)
		require.True(t, ok)
		if pos.X != 3 || pos.Y != 0 {
			t.Errorf("expected position (3, 0), got (%v, %v)", pos.X, pos.Y)
		}
	})

	t.Run("the smallest set drives the join", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()

		entities := make([]ecs.Entity, 4)
		for i := range entities {
			entities[i] = world.AddEntity(scene)
			world.AddComponent(types.Position, Position{}, entities[i], scene)
		}
		world.AddComponent(types.Velocity, Velocity{}, entities[3], scene)
		world.AddComponent(types.Velocity, Velocity{}, entities[1], scene)

		var visited []ecs.Entity
		world.RegisterSystem(recorder("join", &visited, types.Position, types.Velocity))
		world.Update(scene, 0)

		assert.Equal(t, []ecs.Entity{entities[3], entities[1]}, visited)
	})

	t.Run("priority orders systems", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()
		e := world.AddEntity(scene)
		world.AddComponent(types.Health, Health{}, e, scene)

		var order []string
		add := func(name string, priority int) {
			world.RegisterSystem(&ecs.System{
				Name:       name,
				Components: []ecs.ComponentTypeID{types.Health},
				Priority:   priority,
				Update: func(*ecs.UpdateFrame, []any) {
					order = append(order, name)
				},
			})
		}
		add("late", 10)
		add("early", -5)
		add("middle", 0)
		add("middle-2", 0)

		world.Update(scene, 0)
		assert.Equal(t, []string{"early", "middle", "middle-2", "late"}, order)
	})

	t.Run("duplicate system names are ignored", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()
		e := world.AddEntity(scene)
		world.AddComponent(types.Health, Health{}, e, scene)

		var visited []ecs.Entity
		first := recorder("health", &visited, types.Health)
		world.RegisterSystem(first)
		world.RegisterSystem(recorder("health", &visited, types.Health))

		assert.Equal(t, ecs.TypeIDOf("health"), ecs.ComponentTypeID(first.ID()))
		assert.Equal(t, 1, world.Stats().SystemCount)

		world.Update(scene, 0)
		assert.Len(t, visited, 1)
	})

	t.Run("compatible set follows component changes", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()

		a := world.AddEntity(scene)
		b := world.AddEntity(scene)
		world.AddComponent(types.Position, Position{}, a, scene)
		world.AddComponent(types.Velocity, Velocity{}, a, scene)
		world.AddComponent(types.Position, Position{}, b, scene)

		sys := movementSystem(types)
		world.RegisterSystem(sys)
		assert.Equal(t, 1, sys.NumCompatible(), "registration sees existing entities")

		world.AddComponent(types.Velocity, Velocity{}, b, scene)
		assert.Equal(t, 2, sys.NumCompatible())

		world.RemoveComponent(types.Position, a, scene)
		var compatible []ecs.Entity
		for e := range sys.CompatibleEntities() {
			compatible = append(compatible, e)
		}
		assert.Equal(t, []ecs.Entity{b}, compatible)

		world.DestroyEntity(scene, b)
		assert.Equal(t, 0, sys.NumCompatible())
	})

	t.Run("removal during iteration is deferred", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()

		var seen int
		world.RegisterSystem(&ecs.System{
			Name:       "reaper",
			Components: []ecs.ComponentTypeID{types.Health},
			Update: func(frame *ecs.UpdateFrame, components []any) {
				seen++
				if components[0].(*Health).Current <= 0 {
					frame.Commands.DestroyEntity(frame.Entity)
				}
			},
		})

		for i := 0; i < 6; i++ {
			e := world.AddEntity(scene)
			world.AddComponent(types.Health, Health{Current: i % 2}, e, scene)
		}

		world.Update(scene, 0)
		assert.Equal(t, 6, seen)
		assert.Equal(t, 3, scene.NumEntities())
		assert.Equal(t, 3, scene.NumComponents(types.Health))
	})

	t.Run("systems are scoped to the updated scene", func(t *testing.T) {
		world, types := newTestECS()
		first := world.CreateScene()
		second := world.CreateScene()

		var visited []ecs.Entity
		world.RegisterSystem(recorder("pair", &visited, types.Position, types.Velocity))

		a := world.AddEntity(first)
		b := world.AddEntity(second)
		for _, pair := range []struct {
			e     ecs.Entity
			scene *ecs.Scene
		}{{a, first}, {b, second}} {
			world.AddComponent(types.Position, Position{}, pair.e, pair.scene)
			world.AddComponent(types.Velocity, Velocity{}, pair.e, pair.scene)
		}

		world.Update(second, 0)
		assert.Equal(t, []ecs.Entity{b}, visited)
	})

	t.Run("invalid systems are rejected", func(t *testing.T) {
		world, types := newTestECS()

		assert.Panics(t, func() {
			world.RegisterSystem(&ecs.System{Name: "no-update", Components: []ecs.ComponentTypeID{types.Health}})
		})
		assert.Panics(t, func() {
			world.RegisterSystem(&ecs.System{Name: "no-components", Update: func(*ecs.UpdateFrame, []any) {}})
		})
		assert.Panics(t, func() {
			world.RegisterSystem(recorder("unknown", new([]ecs.Entity), ecs.TypeIDOf("Unknown")))
		})
	})

	t.Run("context cancellation in run", func(t *testing.T) {
		world, types := newTestECS()
		scene := world.CreateScene()
		e := world.AddEntity(scene)
		world.AddComponent(types.Health, Health{}, e, scene)

		ticks := make(chan float64, 64)
		world.RegisterSystem(&ecs.System{
			Name:       "ticker",
			Components: []ecs.ComponentTypeID{types.Health},
			Update: func(frame *ecs.UpdateFrame, _ []any) {
				select {
				case ticks <- frame.DeltaTime:
				default:
				}
			},
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan bool)
		go func() {
			world.Run(ctx, scene, time.Millisecond)
			done <- true
		}()

		select {
		case dt := <-ticks:
			if dt <= 0 {
				t.Errorf("expected positive delta time, got %v", dt)
			}
		case <-time.After(time.Second):
			t.Fatal("run did not update the scene")
		}

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("run did not stop after context cancellation")
		}
	})
}

func TestSchedulerStats(t *testing.T) {
	world, types := newTestECS()
	scene := world.CreateScene()

	for i := 0; i < 3; i++ {
		e := world.AddEntity(scene)
		world.AddComponent(types.Position, Position{}, e, scene)
		if i > 0 {
			world.AddComponent(types.Velocity, Velocity{}, e, scene)
		}
	}

	world.RegisterSystem(movementSystem(types))
	world.RegisterSystem(&ecs.System{
		Name:       "slow",
		Components: []ecs.ComponentTypeID{types.Position},
		Priority:   1,
		Update: func(*ecs.UpdateFrame, []any) {
			time.Sleep(100 * time.Microsecond)
		},
	})

	stats := world.Stats()
	if stats.SystemCount != 2 {
		t.Fatalf("expected 2 systems, got %d", stats.SystemCount)
	}
	if stats.TotalExecutions != 0 {
		t.Errorf("expected no executions yet, got %d", stats.TotalExecutions)
	}

	for i := 0; i < 5; i++ {
		world.Update(scene, 1.0)
	}

	stats = world.Stats()
	assert.Equal(t, int64(10), stats.TotalExecutions)

	movement := stats.Systems[0]
	assert.Equal(t, "movement", movement.Name)
	assert.Equal(t, int64(5), movement.ExecutionCount)
	assert.Equal(t, int64(10), movement.Invocations)

	slow := stats.Systems[1]
	assert.Equal(t, "slow", slow.Name)
	assert.Equal(t, int64(15), slow.Invocations)
	if slow.MinDuration < 300*time.Microsecond {
		t.Errorf("expected each update to take at least 300µs, got %v", slow.MinDuration)
	}
	if slow.MinDuration > slow.AvgDuration || slow.AvgDuration > slow.MaxDuration {
		t.Errorf("expected min <= avg <= max, got %v, %v, %v", slow.MinDuration, slow.AvgDuration, slow.MaxDuration)
	}
	assert.Equal(t, slow.TotalDuration/5, slow.AvgDuration)
	assert.NotZero(t, slow.LastDuration)
}
