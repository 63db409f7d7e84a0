package ecs_test

import (
	"time"

	"github.com/plus3/scenecs/ecs"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

type A struct{ V int }
type B struct{ V int }
type C struct{ V int }

func newTestManager() *ecs.EntityManager {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[PlayerController](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Temperature](registry)
	return ecs.NewEntityManager(registry)
}

// recordingLog collects the names of systems in call order.
type recordingLog struct {
	calls []string
}

func (l *recordingLog) record(name string) {
	l.calls = append(l.calls, name)
}

type MovementSystem struct {
	ecs.SystemBase
	entities     *ecs.EntityManager
	ExecuteCount int
}

func NewMovementSystem(entities *ecs.EntityManager) *MovementSystem {
	s := &MovementSystem{entities: entities}
	ecs.RequireComponent[Position](&s.SystemBase)
	ecs.RequireComponent[Velocity](&s.SystemBase)
	return s
}

func (s *MovementSystem) Process(dt time.Duration) {
	s.ExecuteCount++
	for _, e := range s.Entities() {
		pos := ecs.GetComponent[Position](s.entities, e)
		vel := ecs.GetComponent[Velocity](s.entities, e)
		pos.X += vel.DX * float32(dt.Seconds())
		pos.Y += vel.DY * float32(dt.Seconds())
	}
}

type HealthSystem struct {
	ecs.SystemBase
	entities     *ecs.EntityManager
	ExecuteCount int
	TotalHealth  int
}

func NewHealthSystem(entities *ecs.EntityManager) *HealthSystem {
	s := &HealthSystem{entities: entities}
	ecs.RequireComponent[Health](&s.SystemBase)
	return s
}

func (s *HealthSystem) Process(time.Duration) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for _, e := range s.Entities() {
		s.TotalHealth += ecs.GetComponent[Health](s.entities, e).Current
	}
}

// hookSystem records add/remove notifications and what it could read during teardown.
type hookSystem struct {
	ecs.SystemBase
	entities  *ecs.EntityManager
	added     []ecs.Entity
	removed   []ecs.Entity
	lastScore Score
}

func newHookSystem(entities *ecs.EntityManager) *hookSystem {
	s := &hookSystem{entities: entities}
	ecs.RequireComponent[Score](&s.SystemBase)
	return s
}

func (s *hookSystem) OnEntityAdded(e ecs.Entity) {
	s.added = append(s.added, e)
}

func (s *hookSystem) OnEntityRemoved(e ecs.Entity) {
	s.removed = append(s.removed, e)
	s.lastScore = *ecs.GetComponent[Score](s.entities, e)
}

type orderSystemA struct {
	ecs.SystemBase
	log *recordingLog
}

func (s *orderSystemA) Process(time.Duration) { s.log.record("A") }

type orderSystemB struct {
	ecs.SystemBase
	log *recordingLog
}

func (s *orderSystemB) Process(time.Duration) { s.log.record("B") }

type orderSystemC struct {
	ecs.SystemBase
	log *recordingLog
}

func (s *orderSystemC) Process(time.Duration) { s.log.record("C") }
