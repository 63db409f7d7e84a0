package ecs_test

import (
	"testing"

	"github.com/plus3/scenecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommandFixture() (*ecs.EntityManager, *ecs.SystemManager, *ecs.Commands) {
	m := newTestManager()
	return m, ecs.NewSystemManager(m, nil), ecs.NewCommands()
}

func TestCommandsCreate(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	health := ecs.AddSystem(sm, NewHealthSystem(m))

	e := m.Create()
	ecs.AddComponent(m, e, Health{Current: 10})
	cmds.Create(e)

	assert.True(t, cmds.IsPendingCreate(e))
	assert.Empty(t, health.Entities(), "routing waits for flush")

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []ecs.Entity{e}, health.Entities())
	assert.False(t, cmds.IsPendingCreate(e))
	assert.Equal(t, 0, cmds.Len())
}

func TestCommandsDestroy(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	hooks := ecs.AddSystem(sm, newHookSystem(m))

	e := m.Create()
	ecs.AddComponent(m, e, Score(3))
	cmds.Create(e)
	cmds.Flush(m, sm)

	cmds.Destroy(e)
	cmds.Destroy(e)
	assert.Equal(t, 1, cmds.Len(), "repeated destroys collapse")
	assert.True(t, m.IsValid(e), "destruction waits for flush")

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Destroyed)
	assert.False(t, m.IsValid(e))
	assert.Equal(t, []ecs.Entity{e}, hooks.removed)
	assert.Equal(t, Score(3), hooks.lastScore)
}

func TestCommandsCreateAndDestroySameFrame(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	hooks := ecs.AddSystem(sm, newHookSystem(m))

	e := m.Create()
	ecs.AddComponent(m, e, Score(1))
	cmds.Create(e)
	cmds.Destroy(e)

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Destroyed)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, hooks.added, "entity must never be routed")
	assert.Empty(t, hooks.removed)
	assert.False(t, m.IsValid(e))
}

func TestCommandsDestroysBeforeCreates(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	hooks := ecs.AddSystem(sm, newHookSystem(m))

	old := m.Create()
	ecs.AddComponent(m, old, Score(1))
	cmds.Create(old)
	cmds.Flush(m, sm)

	fresh := m.Create()
	ecs.AddComponent(m, fresh, Score(2))
	cmds.Create(fresh)
	cmds.Destroy(old)

	var order []string
	cmds.BeforeDestroy = func(e ecs.Entity) {
		order = append(order, "destroy")
		assert.Equal(t, []ecs.Entity{old}, hooks.added, "creates must not be applied yet")
	}
	cmds.Defer(func() { order = append(order, "defer") })

	cmds.Flush(m, sm)

	assert.Equal(t, []string{"destroy", "defer"}, order)
	assert.Equal(t, []ecs.Entity{old, fresh}, hooks.added)
	assert.Equal(t, []ecs.Entity{fresh}, hooks.Entities())
}

func TestCommandsMarkDirty(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	movement := ecs.AddSystem(sm, NewMovementSystem(m))

	e := m.Create()
	ecs.AddComponent(m, e, Position{})
	cmds.Create(e)
	cmds.Flush(m, sm)
	require.Empty(t, movement.Entities())

	ecs.AddComponent(m, e, Velocity{})
	cmds.MarkDirty(e)
	cmds.MarkDirty(e)
	assert.Empty(t, movement.Entities())

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []ecs.Entity{e}, movement.Entities())
}

func TestCommandsDirtyPendingCreateRoutesOnce(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	hooks := ecs.AddSystem(sm, newHookSystem(m))

	e := m.Create()
	cmds.Create(e)
	ecs.AddComponent(m, e, Score(4))
	cmds.MarkDirty(e)

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, []ecs.Entity{e}, hooks.added)
}

func TestCommandsSkipStaleHandles(t *testing.T) {
	m, sm, cmds := newCommandFixture()

	e := m.Create()
	cmds.Destroy(e)
	m.Destroy(e)

	assert.NotPanics(t, func() { cmds.Flush(m, sm) })
}

func TestCommandsDeferRunsAfterEntityOperations(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	health := ecs.AddSystem(sm, NewHealthSystem(m))

	e := m.Create()
	ecs.AddComponent(m, e, Health{})
	cmds.Create(e)

	var seen int
	cmds.Defer(func() {
		seen = len(health.Entities())
		// commands queued from a deferred function apply on the next flush
		cmds.Destroy(e)
	})

	cmds.Flush(m, sm)
	assert.Equal(t, 1, seen)
	assert.True(t, m.IsValid(e))
	assert.True(t, cmds.IsPendingDestroy(e))

	cmds.Flush(m, sm)
	assert.False(t, m.IsValid(e))
}

func TestCommandsModify(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	movement := ecs.AddSystem(sm, NewMovementSystem(m))

	e := spawn(m, Position{}, Velocity{})
	cmds.Create(e)
	cmds.Flush(m, sm)
	require.Equal(t, []ecs.Entity{e}, movement.Entities())

	cmds.Modify(e, func() { ecs.RemoveComponent[Velocity](m, e) })
	assert.True(t, ecs.HasComponent[Velocity](m, e), "removal waits for flush")

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Updated)
	assert.False(t, ecs.HasComponent[Velocity](m, e))
	assert.Empty(t, movement.Entities())
}

func TestCommandsModifyDroppedForDestroyed(t *testing.T) {
	m, sm, cmds := newCommandFixture()

	e := spawn(m, Position{})
	applied := false
	cmds.Modify(e, func() { applied = true })
	cmds.Destroy(e)
	cmds.Flush(m, sm)

	assert.False(t, applied)
}

// velocityGranter gives every positioned entity a Velocity when it is routed.
type velocityGranter struct {
	ecs.SystemBase
	entities *ecs.EntityManager
	cmds     *ecs.Commands
}

func newVelocityGranter(m *ecs.EntityManager, cmds *ecs.Commands) *velocityGranter {
	s := &velocityGranter{entities: m, cmds: cmds}
	ecs.RequireComponent[Position](&s.SystemBase)
	return s
}

func (s *velocityGranter) OnEntityAdded(e ecs.Entity) {
	ecs.AddComponent(s.entities, e, Velocity{DX: 1})
	s.cmds.MarkDirty(e)
}

func TestCommandsMaskChangeFromHookSettlesInSameFlush(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	ecs.AddSystem(sm, newVelocityGranter(m, cmds))
	movement := ecs.AddSystem(sm, NewMovementSystem(m))

	e := spawn(m, Position{})
	cmds.Create(e)

	result := cmds.Flush(m, sm)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []ecs.Entity{e}, movement.Entities())
	assert.Equal(t, 0, cmds.Len())
}

func TestCommandsModifyFromDeferSettlesInSameFlush(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	movement := ecs.AddSystem(sm, NewMovementSystem(m))

	e := spawn(m, Position{}, Velocity{})
	cmds.Create(e)
	cmds.Defer(func() {
		cmds.Modify(e, func() { ecs.RemoveComponent[Velocity](m, e) })
	})

	cmds.Flush(m, sm)
	assert.False(t, ecs.HasComponent[Velocity](m, e))
	assert.Empty(t, movement.Entities())
}

func TestCommandsMaskChangeKeptForEntityPendingDestroy(t *testing.T) {
	m, sm, cmds := newCommandFixture()
	movement := ecs.AddSystem(sm, NewMovementSystem(m))

	e := spawn(m, Position{})
	cmds.Create(e)
	cmds.Defer(func() {
		ecs.AddComponent(m, e, Velocity{})
		cmds.MarkDirty(e)
		cmds.Destroy(e)
	})

	cmds.Flush(m, sm)
	assert.Empty(t, movement.Entities(), "entity queued for destruction is not re-routed")
	assert.True(t, cmds.IsPendingDestroy(e))

	cmds.Flush(m, sm)
	assert.False(t, m.IsValid(e))
	assert.Empty(t, movement.Entities())
}
