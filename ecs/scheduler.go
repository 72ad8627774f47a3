package ecs

import (
	"context"
	"time"

	"github.com/plus3/sparsecs/container"
	"github.com/plus3/sparsecs/internal/diag"
)

// SchedulerStats provides statistics about system execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	Invocations    int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	invocations    int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// RegisterSystem adds system to the update order according to its Priority
// and computes its compatible entities in every existing scene.
func (e *ECS) RegisterSystem(system *System) {
	diag.Assert(system != nil, "nil system")
	if system.Update == nil {
		diag.Failf("system %q has no update function", system.Name)
	}
	if len(system.Components) == 0 {
		diag.Failf("system %q declares no component types", system.Name)
	}
	for _, typeID := range system.Components {
		if _, ok := e.typeIndex.Get(typeID); !ok {
			diag.Failf("system %q uses unregistered component type %#x", system.Name, uint64(typeID))
		}
	}

	id := container.HashString(system.Name)
	if _, ok := e.systemIDs.Get(id); ok {
		e.log.WithField("system", system.Name).Warn("system already registered")
		return
	}

	system.id = id
	system.compatible = container.NewSparseSet(entityID, e.cfg.BucketCapacity)
	system.stores = make([]iComponentStorage, len(system.Components))
	system.args = make([]any, len(system.Components))
	system.stats = systemStatsInternal{minDuration: time.Duration(1<<63 - 1)}
	e.systemIDs.Put(id, system)

	// Insert after every system of lower or equal priority.
	e.systems.Append(system)
	for i := e.systems.Len() - 1; i > 0; i-- {
		prev, cur := e.systems.Get(i-1), e.systems.Get(i)
		if (*prev).Priority <= (*cur).Priority {
			break
		}
		*prev, *cur = *cur, *prev
	}

	for _, scene := range e.scenes.All() {
		for entity := range (*scene).Entities() {
			system.refresh(*scene, entity)
		}
	}

	e.log.WithField("system", system.Name).Debugf("registered system with %d component types", len(system.Components))
}

// Update runs every system over scene once, then applies the commands the
// systems queued.
func (e *ECS) Update(scene *Scene, dt float64) {
	diag.Assert(scene != nil, "nil scene")
	frame := newUpdateFrame(dt, e, scene)

	for _, sys := range e.systems.All() {
		system := *sys
		start := time.Now()
		invocations := e.runSystem(system, frame)
		duration := time.Since(start)

		stats := &system.stats
		stats.executionCount++
		stats.invocations += invocations
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	frame.Entity = NoEntity
	frame.Commands.Flush(e, scene)
}

// runSystem calls system.Update for every active entity of frame.Scene that
// holds all of the system's component types and returns the number of calls.
func (e *ECS) runSystem(system *System, frame *UpdateFrame) int64 {
	scene := frame.Scene

	if len(system.Components) == 1 {
		store := scene.storage(system.Components[0])
		n := store.ActiveLen()
		for i := 0; i < n; i++ {
			frame.Entity, system.args[0] = store.At(i)
			system.Update(frame, system.args)
		}
		return int64(n)
	}

	// Drive the join from the smallest set so its cost is bounded by the
	// rarest component.
	driving := 0
	for i, typeID := range system.Components {
		system.stores[i] = scene.storage(typeID)
		if system.stores[i].ActiveLen() < system.stores[driving].ActiveLen() {
			driving = i
		}
	}

	var calls int64
	drive := system.stores[driving]
	n := drive.ActiveLen()
	for i := 0; i < n; i++ {
		entity, c := drive.At(i)
		if !e.gather(system, driving, entity) {
			continue
		}
		system.args[driving] = c
		frame.Entity = entity
		system.Update(frame, system.args)
		calls++
	}
	return calls
}

// gather fills system.args with entity's components from every set except
// the driving one. It stops at the first set lacking the entity.
func (e *ECS) gather(system *System, driving int, entity Entity) bool {
	for i, store := range system.stores {
		if i == driving {
			continue
		}
		c, ok := store.Lookup(entity)
		if !ok {
			return false
		}
		system.args[i] = c
	}
	return true
}

// Run updates scene repeatedly at the given interval until the context is
// cancelled.
func (e *ECS) Run(ctx context.Context, scene *Scene, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			e.Update(scene, dt)
		}
	}
}

// Stats returns statistics about system execution, in update order.
func (e *ECS) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: e.systems.Len(),
		Systems:     make([]SystemStats, e.systems.Len()),
	}

	var totalExecs int64
	for i, sys := range e.systems.All() {
		internal := (*sys).stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           (*sys).Name,
			ExecutionCount: internal.executionCount,
			Invocations:    internal.invocations,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
