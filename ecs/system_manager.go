package ecs

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/plus3/scenecs/message"
	"go.uber.org/zap"
)

// SystemStatsReport provides statistics about system execution.
type SystemStatsReport struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Active         bool
	EntityCount    int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// SystemManager owns the systems of one scene, routes entities into them
// and processes them in registration order.
type SystemManager struct {
	entities *EntityManager
	systems  []System
	byType   map[reflect.Type]System
	log      *zap.Logger
}

// NewSystemManager creates a manager routing entities of the given EntityManager.
func NewSystemManager(entities *EntityManager, log *zap.Logger) *SystemManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SystemManager{
		entities: entities,
		systems:  make([]System, 0),
		byType:   make(map[reflect.Type]System),
		log:      log,
	}
}

// Register adds sys unless a system of the same concrete type is already present.
// It returns the registered instance and whether sys was newly added.
func (sm *SystemManager) Register(sys System) (System, bool) {
	systemType := reflect.TypeOf(sys)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	if existing, ok := sm.byType[systemType]; ok {
		return existing, false
	}

	sys.systemBase().bind(systemType, sm.entities.Registry())
	sm.systems = append(sm.systems, sys)
	sm.byType[systemType] = sys

	sm.log.Debug("system registered",
		zap.String("system", systemType.Name()),
		zap.Stringer("mask", sys.systemBase().mask),
		zap.Int("position", len(sm.systems)-1))
	return sys, true
}

// Unregister removes the system of the given concrete type. Entities routed to it
// are dropped without notification. It is safe to call from a running system or hook;
// the removed system is skipped for the rest of the pass.
func (sm *SystemManager) Unregister(systemType reflect.Type) bool {
	sys, ok := sm.byType[systemType]
	if !ok {
		return false
	}

	// a fresh slice leaves loops already ranging over the old one intact
	idx := slices.Index(sm.systems, sys)
	sm.systems = slices.Concat(sm.systems[:idx], sm.systems[idx+1:])
	delete(sm.byType, systemType)

	b := sys.systemBase()
	b.clear()
	b.registered = false

	sm.log.Debug("system removed", zap.String("system", systemType.Name()))
	return true
}

// Lookup returns the system of the given concrete type, if registered.
func (sm *SystemManager) Lookup(systemType reflect.Type) (System, bool) {
	sys, ok := sm.byType[systemType]
	return sys, ok
}

// Systems returns the registered systems in processing order.
func (sm *SystemManager) Systems() []System {
	return slices.Clone(sm.systems)
}

// Len returns the number of registered systems.
func (sm *SystemManager) Len() int {
	return len(sm.systems)
}

// AddToSystems routes e into every system whose mask is a subset of the entity mask.
func (sm *SystemManager) AddToSystems(e Entity) {
	mask := sm.entities.Mask(e)
	for _, sys := range sm.systems {
		if mask.Contains(sys.systemBase().mask) {
			sm.addTo(sys, e)
		}
	}
}

// AddToSystem routes e into a single system if the entity matches it.
func (sm *SystemManager) AddToSystem(sys System, e Entity) bool {
	if !sm.entities.Mask(e).Contains(sys.systemBase().mask) {
		return false
	}
	return sm.addTo(sys, e)
}

// RemoveFromSystems removes e from every system holding it, in registration order.
// Called before the entity's components are released.
func (sm *SystemManager) RemoveFromSystems(e Entity) {
	for _, sys := range sm.systems {
		sm.removeFrom(sys, e)
	}
}

// UpdateEntity re-evaluates membership of e after its component mask changed.
func (sm *SystemManager) UpdateEntity(e Entity) {
	mask := sm.entities.Mask(e)
	for _, sys := range sm.systems {
		b := sys.systemBase()
		matches := mask.Contains(b.mask)
		has := b.HasEntity(e)
		switch {
		case has && !matches:
			sm.removeFrom(sys, e)
		case !has && matches:
			sm.addTo(sys, e)
		}
	}
}

func (sm *SystemManager) addTo(sys System, e Entity) bool {
	b := sys.systemBase()
	if !b.registered || !b.addEntity(e) {
		return false
	}
	if h, ok := sys.(EntityAddedHandler); ok {
		h.OnEntityAdded(e)
	}
	return true
}

func (sm *SystemManager) removeFrom(sys System, e Entity) bool {
	b := sys.systemBase()
	if !b.HasEntity(e) {
		return false
	}
	if h, ok := sys.(EntityRemovedHandler); ok {
		h.OnEntityRemoved(e)
	}
	return b.removeEntity(e)
}

// Process runs every active system once, in registration order. Systems
// registered during the pass start on the next one.
func (sm *SystemManager) Process(dt time.Duration) {
	for _, system := range sm.systems {
		b := system.systemBase()
		if !b.registered || !b.Active() {
			continue
		}

		start := time.Now()
		system.Process(dt)
		duration := time.Since(start)

		stats := &b.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}
}

// ForwardMessage delivers msg to every system implementing MessageHandler.
func (sm *SystemManager) ForwardMessage(msg message.Message) {
	for _, sys := range sm.systems {
		if !sys.systemBase().registered {
			continue
		}
		if h, ok := sys.(MessageHandler); ok {
			h.HandleMessage(msg)
		}
	}
}

// Stats returns statistics about system execution.
func (sm *SystemManager) Stats() *SystemStatsReport {
	stats := &SystemStatsReport{
		SystemCount: len(sm.systems),
		Systems:     make([]SystemStats, len(sm.systems)),
	}

	var totalExecs int64
	for i, sys := range sm.systems {
		b := sys.systemBase()
		internal := &b.stats
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           b.Name(),
			Active:         b.Active(),
			EntityCount:    len(b.entities),
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
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

type systemPtr[T any] interface {
	*T
	System
}

// AddSystem registers sys if no system of type T exists yet and returns the registered
// instance. A second call with the same type returns the first instance unchanged.
func AddSystem[T any, PT systemPtr[T]](sm *SystemManager, sys PT) PT {
	registered, _ := sm.Register(sys)
	return registered.(PT)
}

// RemoveSystem unregisters the system of type T.
func RemoveSystem[T any](sm *SystemManager) bool {
	return sm.Unregister(reflect.TypeFor[T]())
}

// HasSystem reports whether a system of type T is registered.
func HasSystem[T any](sm *SystemManager) bool {
	_, ok := sm.byType[reflect.TypeFor[T]()]
	return ok
}

// GetSystem returns the system of type T. It panics if none is registered.
func GetSystem[T any, PT systemPtr[T]](sm *SystemManager) PT {
	sys, ok := sm.byType[reflect.TypeFor[T]()]
	if !ok {
		panic(fmt.Sprintf("ecs: system %s not registered", reflect.TypeFor[T]()))
	}
	return sys.(PT)
}
