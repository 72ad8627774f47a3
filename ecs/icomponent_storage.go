package ecs

// iComponentStorage is the type-erased view of one scene's components of a
// single type. Components are keyed by their owning entity; the ones of
// enabled entities form the active range at the front of the storage.
type iComponentStorage interface {
	Add(item any, header Component, active bool)
	Remove(entity Entity)
	Has(entity Entity) bool
	Lookup(entity Entity) (any, bool)
	SetActive(entity Entity, active bool)
	ActiveLen() int
	At(index int) (Entity, any)
	Len() int
	Destroy()
}
