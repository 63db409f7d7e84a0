package ecs

import (
	"reflect"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/plus3/scenecs/message"
)

// System represents a behavior that operates on entities with specific components.
// User-defined systems embed SystemBase, declare their requirements with RequireComponent
// in their constructor and override Process. The SystemManager routes matching entities
// into the embedded interest list.
type System interface {
	Process(dt time.Duration)
	Entities() []Entity
	Active() bool
	Name() string
	systemBase() *SystemBase
}

// EntityAddedHandler is implemented by systems that need one-time setup
// when an entity joins their interest list.
type EntityAddedHandler interface {
	OnEntityAdded(e Entity)
}

// EntityRemovedHandler is implemented by systems that need teardown before an entity
// leaves their interest list. The entity's components are still readable.
type EntityRemovedHandler interface {
	OnEntityRemoved(e Entity)
}

// MessageHandler is implemented by systems that receive forwarded bus messages.
type MessageHandler interface {
	HandleMessage(msg message.Message)
}

// SystemBase holds the filter state shared by all systems.
type SystemBase struct {
	required   []requirement
	mask       ComponentMask
	entities   []Entity
	slots      *intmap.Map[Entity, int]
	typ        reflect.Type
	registered bool
	inactive   bool
	stats      systemStatsInternal
}

func (b *SystemBase) systemBase() *SystemBase { return b }

// Process is the default no-op frame hook.
func (b *SystemBase) Process(time.Duration) {}

// RequireComponent adds T to the set of components an entity needs to be routed to the system.
// It must be called before the system is registered with a SystemManager; later calls panic.
func RequireComponent[T any](b *SystemBase) {
	t := reflect.TypeFor[T]()
	if b.registered {
		panic("ecs: RequireComponent[" + t.String() + "] called after " + b.Name() + " was registered")
	}
	b.required = append(b.required, requirement{
		typ:     t,
		resolve: ComponentIDOf[T],
	})
}

type requirement struct {
	typ     reflect.Type
	resolve func(*ComponentRegistry) ComponentID
}

// RequiredTypes returns the component types passed to RequireComponent, in call order.
func (b *SystemBase) RequiredTypes() []reflect.Type {
	types := make([]reflect.Type, len(b.required))
	for i, req := range b.required {
		types[i] = req.typ
	}
	return types
}

// Entities returns the current interest list in routing order.
// The slice is owned by the system and must not be modified by callers.
func (b *SystemBase) Entities() []Entity {
	return b.entities
}

// HasEntity reports whether e is in the interest list.
func (b *SystemBase) HasEntity(e Entity) bool {
	if b.slots == nil {
		return false
	}
	return b.slots.Has(e)
}

// Mask returns the resolved component mask. It is empty until registration.
func (b *SystemBase) Mask() ComponentMask {
	return b.mask
}

// Name returns the concrete system type name once registered.
func (b *SystemBase) Name() string {
	if b.typ == nil {
		return "<unregistered system>"
	}
	return b.typ.Name()
}

// Active reports whether the system takes part in per-frame processing.
func (b *SystemBase) Active() bool {
	return !b.inactive
}

// SetActive toggles per-frame processing. Inactive systems keep their interest list.
func (b *SystemBase) SetActive(active bool) {
	b.inactive = !active
}

// bind resolves the required types against the registry and freezes the requirements.
func (b *SystemBase) bind(typ reflect.Type, registry *ComponentRegistry) {
	b.typ = typ
	b.mask = ComponentMask{}
	for _, req := range b.required {
		b.mask.Set(req.resolve(registry))
	}
	b.slots = intmap.New[Entity, int](64)
	b.stats = systemStatsInternal{minDuration: time.Duration(1<<63 - 1)}
	b.registered = true
}

func (b *SystemBase) addEntity(e Entity) bool {
	if b.slots.Has(e) {
		return false
	}
	b.slots.Put(e, len(b.entities))
	b.entities = append(b.entities, e)
	return true
}

// removeEntity drops e while keeping the remaining entities in routing order.
// The cost is linear in the number of entities routed after e.
func (b *SystemBase) removeEntity(e Entity) bool {
	idx, ok := b.slots.Get(e)
	if !ok {
		return false
	}
	b.slots.Del(e)
	copy(b.entities[idx:], b.entities[idx+1:])
	b.entities = b.entities[:len(b.entities)-1]
	for i := idx; i < len(b.entities); i++ {
		b.slots.Put(b.entities[i], i)
	}
	return true
}

func (b *SystemBase) clear() {
	b.entities = b.entities[:0]
	if b.slots != nil {
		b.slots.Clear()
	}
}
