// Package ecs is an entity-component-system core built on the sparse-set
// containers in package container.
//
// An ECS owns scenes, component types and systems. Each scene keeps one
// grouped sparse set per registered component type, keyed by entity. On
// Update every system is handed the components of each entity that holds all
// of the system's declared types; the join is driven by the smallest of the
// participating sets.
//
// Nothing in this package is safe for concurrent use.
package ecs
