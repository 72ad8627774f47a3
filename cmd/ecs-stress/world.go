package main

import (
	"math/rand"

	"github.com/plus3/sparsecs/ecs"
)

type Position struct {
	ecs.Component
	X, Y float64
}

type Velocity struct {
	ecs.Component
	DX, DY float64
}

type Health struct {
	ecs.Component
	Current, Max float64
}

type Lifetime struct {
	ecs.Component
	Remaining float64
}

type Tag struct {
	ecs.Component
	Value uint32
}

type stressTypes struct {
	Position ecs.ComponentTypeID
	Velocity ecs.ComponentTypeID
	Health   ecs.ComponentTypeID
	Lifetime ecs.ComponentTypeID
	Tag      ecs.ComponentTypeID
}

func (t stressTypes) all() []ecs.ComponentTypeID {
	return []ecs.ComponentTypeID{t.Position, t.Velocity, t.Health, t.Lifetime, t.Tag}
}

func registerStressComponents(world *ecs.ECS) stressTypes {
	return stressTypes{
		Position: ecs.RegisterComponent[Position](world, "Position"),
		Velocity: ecs.RegisterComponent[Velocity](world, "Velocity"),
		Health:   ecs.RegisterComponent[Health](world, "Health"),
		Lifetime: ecs.RegisterComponent[Lifetime](world, "Lifetime"),
		Tag:      ecs.RegisterComponent[Tag](world, "Tag"),
	}
}

func registerStressSystems(world *ecs.ECS, types stressTypes) {
	world.RegisterSystem(&ecs.System{
		Name:       "movement",
		Components: []ecs.ComponentTypeID{types.Position, types.Velocity},
		Update: func(frame *ecs.UpdateFrame, c []any) {
			pos, vel := c[0].(*Position), c[1].(*Velocity)
			pos.X += vel.DX * frame.DeltaTime
			pos.Y += vel.DY * frame.DeltaTime
		},
	})

	world.RegisterSystem(&ecs.System{
		Name:       "regeneration",
		Components: []ecs.ComponentTypeID{types.Health},
		Priority:   1,
		Update: func(frame *ecs.UpdateFrame, c []any) {
			hp := c[0].(*Health)
			hp.Current = min(hp.Max, hp.Current+frame.DeltaTime)
		},
	})

	world.RegisterSystem(&ecs.System{
		Name:       "tagged-movement",
		Components: []ecs.ComponentTypeID{types.Tag, types.Position, types.Velocity},
		Priority:   1,
		Update: func(frame *ecs.UpdateFrame, c []any) {
			tag := c[0].(*Tag)
			tag.Value ^= uint32(c[1].(*Position).X)
		},
	})

	// Expired entities are replaced so the population stays stable.
	world.RegisterSystem(&ecs.System{
		Name:       "expiry",
		Components: []ecs.ComponentTypeID{types.Lifetime},
		Priority:   2,
		Update: func(frame *ecs.UpdateFrame, c []any) {
			life := c[0].(*Lifetime)
			life.Remaining -= frame.DeltaTime
			if life.Remaining > 0 {
				return
			}
			frame.Commands.DestroyEntity(frame.Entity)
			frame.Commands.Defer(func() {
				e := frame.ECS.AddEntity(frame.Scene)
				frame.ECS.AddComponent(types.Position, Position{}, e, frame.Scene)
				frame.ECS.AddComponent(types.Lifetime, Lifetime{Remaining: 1}, e, frame.Scene)
			})
		},
	})
}

// spawnRandomEntity adds an entity holding a random subset of the stress
// component types, at least one.
func spawnRandomEntity(world *ecs.ECS, scene *ecs.Scene, types stressTypes, rng *rand.Rand) ecs.Entity {
	e := world.AddEntity(scene)
	all := types.all()
	n := rng.Intn(len(all)) + 1
	for _, i := range rng.Perm(len(all))[:n] {
		var data any
		switch all[i] {
		case types.Position:
			data = Position{X: rng.Float64() * 100, Y: rng.Float64() * 100}
		case types.Velocity:
			data = Velocity{DX: rng.Float64() - 0.5, DY: rng.Float64() - 0.5}
		case types.Health:
			data = Health{Current: rng.Float64() * 100, Max: 100}
		case types.Lifetime:
			data = Lifetime{Remaining: 1 + rng.Float64()*9}
		case types.Tag:
			data = Tag{Value: rng.Uint32()}
		}
		world.AddComponent(all[i], data, e, scene)
	}
	return e
}
