package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// EntityManager owns entity identity and component storage for one scene.
// Slots are recycled through a free list; each recycle bumps the slot generation
// so stale handles fail IsValid.
type EntityManager struct {
	registry    *ComponentRegistry
	owner       uint16
	generations []uint32
	live        []bool
	masks       []ComponentMask
	freeList    []uint32
	storages    []iComponentStorage
	alive       int
}

// NewEntityManager creates an empty manager using the given registry.
func NewEntityManager(registry *ComponentRegistry) *EntityManager {
	if registry == nil {
		registry = NewComponentRegistry()
	}
	return &EntityManager{
		registry:    registry,
		owner:       managerTags.acquire(),
		generations: make([]uint32, 0, 256),
		live:        make([]bool, 0, 256),
		masks:       make([]ComponentMask, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

// Registry returns the component registry used by this manager.
func (m *EntityManager) Registry() *ComponentRegistry {
	return m.registry
}

// Close releases the manager's owner tag for reuse by a later manager. Handles
// issued by m must not be used afterwards. Closing twice is a no-op.
func (m *EntityManager) Close() {
	if m.owner == 0 {
		return
	}
	managerTags.release(m.owner)
	m.owner = 0
}

// Create allocates a new entity, reusing a freed slot when one is available.
// It panics on a closed manager or once MaxEntities slots are in use.
func (m *EntityManager) Create() Entity {
	if m.owner == 0 {
		panic("ecs: Create on a closed entity manager")
	}

	var idx uint32
	if n := len(m.freeList); n > 0 {
		idx = m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
	} else {
		if len(m.generations) >= MaxEntities {
			panic(fmt.Sprintf("ecs: entity manager is full (%d slots)", MaxEntities))
		}
		idx = uint32(len(m.generations))
		m.generations = append(m.generations, 1)
		m.live = append(m.live, false)
		m.masks = append(m.masks, ComponentMask{})
	}

	m.live[idx] = true
	m.alive++
	return NewEntity(idx, m.generations[idx], m.owner)
}

// Destroy releases every component of e and invalidates the handle.
// Destroying an invalid handle panics.
func (m *EntityManager) Destroy(e Entity) {
	m.mustBeValid(e, "destroy")

	idx := e.Index()
	for _, id := range m.masks[idx].IDs() {
		m.storages[id].Delete(int(idx))
	}
	m.masks[idx] = ComponentMask{}

	gen := (m.generations[idx] + 1) & generationMask
	if gen == 0 {
		gen = 1
	}
	m.generations[idx] = gen
	m.live[idx] = false
	m.freeList = append(m.freeList, idx)
	m.alive--
}

// IsValid reports whether e was issued by this manager and is still alive.
func (m *EntityManager) IsValid(e Entity) bool {
	if e.Owner() == 0 || e.Owner() != m.owner {
		return false
	}
	idx := e.Index()
	if int(idx) >= len(m.generations) {
		return false
	}
	return m.live[idx] && m.generations[idx] == e.Generation()
}

// Owns reports whether e was issued by this manager, whether or not it is still alive.
func (m *EntityManager) Owns(e Entity) bool {
	return e.Owner() != 0 && e.Owner() == m.owner && int(e.Index()) < len(m.generations)
}

// Mask returns the component mask of e, or an empty mask for invalid handles.
func (m *EntityManager) Mask(e Entity) ComponentMask {
	if !m.IsValid(e) {
		return ComponentMask{}
	}
	return m.masks[e.Index()]
}

// Count returns the number of live entities.
func (m *EntityManager) Count() int {
	return m.alive
}

// Entities iterates over all live entities in slot order.
func (m *EntityManager) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for idx, ok := range m.live {
			if !ok {
				continue
			}
			if !yield(NewEntity(uint32(idx), m.generations[idx], m.owner)) {
				return
			}
		}
	}
}

// GetComponentByType returns a pointer to the component of type t attached to e, or nil.
func (m *EntityManager) GetComponentByType(e Entity, t reflect.Type) any {
	if !m.IsValid(e) {
		return nil
	}
	id, ok := m.registry.IDOf(t)
	if !ok || !m.masks[e.Index()].Has(id) {
		return nil
	}
	return m.storages[id].Get(int(e.Index()))
}

// Components returns pointers to every component attached to e, ordered by ComponentID.
func (m *EntityManager) Components(e Entity) []any {
	if !m.IsValid(e) {
		return nil
	}
	idx := int(e.Index())
	ids := m.masks[idx].IDs()
	components := make([]any, 0, len(ids))
	for _, id := range ids {
		components = append(components, m.storages[id].Get(idx))
	}
	return components
}

// EntityStats is a snapshot of manager occupancy.
type EntityStats struct {
	Alive           int
	Capacity        int
	Free            int
	ComponentTypes  int
	ComponentCounts map[string]int
}

// CollectStats returns occupancy figures for tooling.
func (m *EntityManager) CollectStats() EntityStats {
	stats := EntityStats{
		Alive:           m.alive,
		Capacity:        len(m.generations),
		Free:            len(m.freeList),
		ComponentTypes:  m.registry.Count(),
		ComponentCounts: make(map[string]int, len(m.storages)),
	}
	for id, storage := range m.storages {
		if storage == nil {
			continue
		}
		stats.ComponentCounts[m.registry.TypeOf(ComponentID(id)).String()] = storage.Len()
	}
	return stats
}

func (m *EntityManager) mustBeValid(e Entity, op string) {
	if !m.IsValid(e) {
		if !e.IsNil() && e.Owner() != m.owner {
			panic(fmt.Sprintf("ecs: cannot %s %s: entity belongs to another manager", op, e))
		}
		panic(fmt.Sprintf("ecs: cannot %s %s: invalid entity", op, e))
	}
}

func storageFor[T any](m *EntityManager, id ComponentID) *genericComponentStorage[T] {
	for int(id) >= len(m.storages) {
		m.storages = append(m.storages, nil)
	}
	if m.storages[id] == nil {
		m.storages[id] = m.registry.newStorage(id)
	}
	return m.storages[id].(*genericComponentStorage[T])
}

// AddComponent attaches value to e and returns a pointer to the stored copy.
// It panics if e is invalid or already has a component of type T.
func AddComponent[T any](m *EntityManager, e Entity, value T) *T {
	m.mustBeValid(e, "add component to")

	id := ComponentIDOf[T](m.registry)
	idx := e.Index()
	if m.masks[idx].Has(id) {
		panic(fmt.Sprintf("ecs: %s already has component %s", e, reflect.TypeFor[T]()))
	}

	storage := storageFor[T](m, id)
	m.masks[idx].Set(id)
	return storage.set(int(idx), value)
}

// RemoveComponent detaches the component of type T from e.
// It panics if e is invalid or has no such component.
func RemoveComponent[T any](m *EntityManager, e Entity) {
	m.mustBeValid(e, "remove component from")

	id, ok := m.registry.IDOf(reflect.TypeFor[T]())
	idx := e.Index()
	if !ok || !m.masks[idx].Has(id) {
		panic(fmt.Sprintf("ecs: %s has no component %s", e, reflect.TypeFor[T]()))
	}

	m.storages[id].Delete(int(idx))
	m.masks[idx].Clear(id)
}

// GetComponent returns the component of type T attached to e.
// Callers on untrusted paths should check HasComponent first; a missing component panics.
func GetComponent[T any](m *EntityManager, e Entity) *T {
	c, ok := TryGetComponent[T](m, e)
	if !ok {
		m.mustBeValid(e, "get component of")
		panic(fmt.Sprintf("ecs: %s has no component %s", e, reflect.TypeFor[T]()))
	}
	return c
}

// TryGetComponent returns the component of type T attached to e, if any.
func TryGetComponent[T any](m *EntityManager, e Entity) (*T, bool) {
	if !m.IsValid(e) {
		return nil, false
	}
	id, ok := m.registry.IDOf(reflect.TypeFor[T]())
	if !ok || !m.masks[e.Index()].Has(id) {
		return nil, false
	}
	return m.storages[id].(*genericComponentStorage[T]).get(int(e.Index())), true
}

// HasComponent reports whether e is valid and has a component of type T.
func HasComponent[T any](m *EntityManager, e Entity) bool {
	_, ok := TryGetComponent[T](m, e)
	return ok
}

// ComponentReader resolves components by their runtime type.
type ComponentReader interface {
	GetComponentByType(Entity, reflect.Type) any
}

// ReadComponent returns the component of type T for e, or nil when absent.
func ReadComponent[T any](reader ComponentReader, e Entity) *T {
	c, _ := reader.GetComponentByType(e, reflect.TypeFor[T]()).(*T)
	return c
}
