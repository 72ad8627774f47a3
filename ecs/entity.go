package ecs

// Entity identifies an entity. An ECS assigns ids sequentially starting at 1
// and never reuses them.
type Entity uint64

// NoEntity is the zero Entity; no entity ever has this id.
const NoEntity Entity = 0

func entityID(e *Entity) uint64 {
	return uint64(*e)
}
