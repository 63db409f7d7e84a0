package ecs

import "github.com/kamstrup/intmap"

// Commands buffers entity activations, destructions and membership refreshes until
// the next Flush. This keeps structural changes to system interest lists out of
// system processing.
//
// Creations and destructions queued while a Flush is running (from system hooks,
// BeforeDestroy or deferred functions) are applied by the following Flush. Mask
// changes of already routed entities are settled before Flush returns.
type Commands struct {
	pending  *commandQueue
	flushing *commandQueue

	// BeforeDestroy, when set, runs for each destroyed entity after it left every
	// system and before its components are released.
	BeforeDestroy func(Entity)
}

type commandQueue struct {
	creates  []Entity
	destroys []Entity
	dirty    []Entity
	modifies []modification
	defers   []func()
	state    *intmap.Map[Entity, pendingState]
}

type modification struct {
	entity Entity
	apply  func()
}

type pendingState uint8

const (
	pendingCreate pendingState = 1 << iota
	pendingDestroy
	pendingDirty
)

// FlushResult counts what a Flush applied.
type FlushResult struct {
	Destroyed int
	Created   int
	Updated   int
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		state: intmap.New[Entity, pendingState](64),
	}
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{
		pending:  newCommandQueue(),
		flushing: newCommandQueue(),
	}
}

// Create queues an entity for routing into systems.
func (c *Commands) Create(e Entity) {
	if c.pending.mark(e, pendingCreate) {
		c.pending.creates = append(c.pending.creates, e)
	}
}

// Destroy queues an entity for destruction. Repeated requests collapse into one.
func (c *Commands) Destroy(e Entity) {
	if c.pending.mark(e, pendingDestroy) {
		c.pending.destroys = append(c.pending.destroys, e)
	}
}

// MarkDirty queues a membership refresh for an entity whose mask changed.
func (c *Commands) MarkDirty(e Entity) {
	if c.pending.mark(e, pendingDirty) {
		c.pending.dirty = append(c.pending.dirty, e)
	}
}

// Modify queues a structural change to e, applied after destructions and
// followed by a membership refresh. It is dropped if e is destroyed first.
func (c *Commands) Modify(e Entity, apply func()) {
	c.pending.modifies = append(c.pending.modifies, modification{entity: e, apply: apply})
	c.MarkDirty(e)
}

// Defer queues a function execution operation, run after all entity operations.
func (c *Commands) Defer(fn func()) {
	c.pending.defers = append(c.pending.defers, fn)
}

// IsPendingCreate reports whether e is waiting for its first routing.
func (c *Commands) IsPendingCreate(e Entity) bool {
	return c.pending.has(e, pendingCreate)
}

// IsPendingDestroy reports whether e is queued for destruction.
func (c *Commands) IsPendingDestroy(e Entity) bool {
	return c.pending.has(e, pendingDestroy)
}

// Len returns the number of queued entity operations.
func (c *Commands) Len() int {
	q := c.pending
	return len(q.creates) + len(q.destroys) + len(q.dirty)
}

func (q *commandQueue) mark(e Entity, flag pendingState) bool {
	s, _ := q.state.Get(e)
	if s&flag != 0 {
		return false
	}
	q.state.Put(e, s|flag)
	return true
}

func (q *commandQueue) unmark(e Entity, flag pendingState) {
	if s, ok := q.state.Get(e); ok {
		q.state.Put(e, s&^flag)
	}
}

func (q *commandQueue) has(e Entity, flag pendingState) bool {
	s, _ := q.state.Get(e)
	return s&flag != 0
}

func (q *commandQueue) reset() {
	q.creates = q.creates[:0]
	q.destroys = q.destroys[:0]
	q.dirty = q.dirty[:0]
	clear(q.modifies)
	q.modifies = q.modifies[:0]
	clear(q.defers)
	q.defers = q.defers[:0]
	q.state.Clear()
}

// Flush applies all queued operations, resetting the buffer state.
// Destructions are applied first, then modifications, then creations, then
// membership refreshes. An entity created and destroyed in the same frame is
// never routed.
func (c *Commands) Flush(entities *EntityManager, systems *SystemManager) FlushResult {
	q := c.pending
	c.pending, c.flushing = c.flushing, q
	defer q.reset()

	var result FlushResult

	for _, e := range q.destroys {
		if !entities.IsValid(e) {
			continue
		}
		if !q.has(e, pendingCreate) {
			systems.RemoveFromSystems(e)
		}
		if c.BeforeDestroy != nil {
			c.BeforeDestroy(e)
		}
		entities.Destroy(e)
		result.Destroyed++
	}

	for _, mod := range q.modifies {
		if q.has(mod.entity, pendingDestroy) || !entities.IsValid(mod.entity) {
			continue
		}
		mod.apply()
	}

	for _, e := range q.creates {
		if q.has(e, pendingDestroy) || !entities.IsValid(e) {
			continue
		}
		systems.AddToSystems(e)
		result.Created++
	}

	for _, e := range q.dirty {
		if q.has(e, pendingCreate|pendingDestroy) || !entities.IsValid(e) {
			continue
		}
		systems.UpdateEntity(e)
		result.Updated++
	}

	c.settle(entities, systems, &result)
	for _, fn := range q.defers {
		fn()
	}
	c.settle(entities, systems, &result)

	return result
}

// maxSettlePasses bounds how often hooks may keep changing masks in one Flush.
// Whatever is still queued afterwards waits for the next Flush.
const maxSettlePasses = 16

// settle applies the modifications and membership refreshes queued during the
// running Flush, repeating while hooks queue more. Entries for entities that are
// themselves waiting for creation or destruction stay queued.
func (c *Commands) settle(entities *EntityManager, systems *SystemManager, result *FlushResult) {
	for range maxSettlePasses {
		p := c.pending
		if len(p.modifies) == 0 && len(p.dirty) == 0 {
			return
		}

		modifies, dirty := p.modifies, p.dirty
		p.modifies, p.dirty = nil, nil
		applied := 0

		for _, mod := range modifies {
			if p.has(mod.entity, pendingCreate|pendingDestroy) {
				p.modifies = append(p.modifies, mod)
				continue
			}
			if entities.IsValid(mod.entity) {
				mod.apply()
			}
			applied++
		}

		for _, e := range dirty {
			if p.has(e, pendingCreate|pendingDestroy) {
				p.dirty = append(p.dirty, e)
				continue
			}
			p.unmark(e, pendingDirty)
			if entities.IsValid(e) {
				systems.UpdateEntity(e)
				result.Updated++
			}
			applied++
		}

		if applied == 0 {
			return
		}
	}
}
