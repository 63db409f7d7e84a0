package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// ComponentRegistry assigns ComponentIDs to component types for one EntityManager.
// Each manager owns its registry so independent scenes never share bit layouts.
type ComponentRegistry struct {
	ids       map[reflect.Type]ComponentID
	types     []reflect.Type
	factories []func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids: make(map[reflect.Type]ComponentID),
	}
}

// RegisterComponent registers T with the registry and returns its ID.
// Registering the same type twice returns the original ID.
func RegisterComponent[T any](r *ComponentRegistry) ComponentID {
	t := reflect.TypeFor[T]()
	if id, ok := r.ids[t]; ok {
		return id
	}
	return r.register(t, func() iComponentStorage {
		return &genericComponentStorage[T]{}
	})
}

// ComponentIDOf returns the ID of T, registering it on first use.
func ComponentIDOf[T any](r *ComponentRegistry) ComponentID {
	return RegisterComponent[T](r)
}

// IDOf returns the ID of an already registered type.
func (r *ComponentRegistry) IDOf(t reflect.Type) (ComponentID, bool) {
	id, ok := r.ids[t]
	return id, ok
}

// TypeOf returns the type registered under id, or nil.
func (r *ComponentRegistry) TypeOf(id ComponentID) reflect.Type {
	if int(id) >= len(r.types) {
		return nil
	}
	return r.types[id]
}

// Count returns the number of registered component types.
func (r *ComponentRegistry) Count() int {
	return len(r.types)
}

func (r *ComponentRegistry) register(t reflect.Type, factory func() iComponentStorage) ComponentID {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("ecs: components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}
	if len(r.types) >= MaxComponents {
		panic(fmt.Sprintf("ecs: component type %s exceeds maximum of %d types", t, MaxComponents))
	}

	id := ComponentID(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	r.factories = append(r.factories, factory)
	return id
}

// newStorage returns a fresh storage for id.
func (r *ComponentRegistry) newStorage(id ComponentID) iComponentStorage {
	return r.factories[id]()
}

const (
	genericBlockSize = 64
)

// genericComponentStorage stores components of type T in fixed blocks indexed by entity index.
// Blocks are allocated on first write and never move, so pointers handed out by Get stay
// valid until the slot is deleted.
type genericComponentStorage[T any] struct {
	blocks []*[genericBlockSize]T
	filled []*[genericBlockSize]bool
	count  int
}

// Set writes item into the slot at index and returns a pointer to the stored value.
func (cs *genericComponentStorage[T]) Set(index int, item any) any {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else if item != nil {
		panic(fmt.Sprintf("ecs: cannot store %T in storage for %s", item, reflect.TypeFor[T]()))
	}
	return cs.set(index, concreteItem)
}

func (cs *genericComponentStorage[T]) set(index int, item T) *T {
	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, nil)
		cs.filled = append(cs.filled, nil)
	}
	if cs.blocks[blockIdx] == nil {
		cs.blocks[blockIdx] = new([genericBlockSize]T)
		cs.filled[blockIdx] = new([genericBlockSize]bool)
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.filled[blockIdx][slotIdx] = true
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = item
	return &cs.blocks[blockIdx][slotIdx]
}

// Get returns a pointer to the component at the given index.
func (cs *genericComponentStorage[T]) Get(index int) any {
	ptr := cs.get(index)
	if ptr == nil {
		return nil
	}
	return ptr
}

func (cs *genericComponentStorage[T]) get(index int) *T {
	if index < 0 {
		return nil
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	if blockIdx >= len(cs.blocks) || cs.blocks[blockIdx] == nil {
		return nil
	}

	if !cs.filled[blockIdx][slotIdx] {
		return nil
	}

	return &cs.blocks[blockIdx][slotIdx]
}

// Delete marks a component slot as empty.
func (cs *genericComponentStorage[T]) Delete(index int) {
	if index < 0 {
		return
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	if blockIdx >= len(cs.blocks) || cs.blocks[blockIdx] == nil {
		return
	}

	if cs.filled[blockIdx][slotIdx] {
		cs.filled[blockIdx][slotIdx] = false
		var zero T
		cs.blocks[blockIdx][slotIdx] = zero // Zero out the value
		cs.count--
	}
}

// Has checks if a component exists at the given index.
func (cs *genericComponentStorage[T]) Has(index int) bool {
	return cs.get(index) != nil
}

// Len returns the number of filled slots.
func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}

// Iter yields the indices of filled slots in ascending order.
func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for blockIdx, filled := range cs.filled {
			if filled == nil {
				continue
			}
			for slotIdx, ok := range filled {
				if ok && !yield(blockIdx*genericBlockSize+slotIdx) {
					return
				}
			}
		}
	}
}
