package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View fills a struct of component pointers for an entity.
// The type T should be a struct with embedded or named pointer fields, one per component type.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag,
// and a field of type Entity named Id receives the entity handle.
type View[T any] struct {
	entities    *EntityManager
	types       []reflect.Type
	ids         []ComponentID
	resolved    []bool
	unresolved  int
	optional    []bool
	fieldOffset []uintptr
	idOffset    uintptr
	hasId       bool
}

// NewView creates a new view for the given struct type.
// Component types are resolved against the manager's registry on use, so a view may
// name types no entity has been given yet.
func NewView[T any](entities *EntityManager) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	v := &View[T]{
		entities:    entities,
		types:       make([]reflect.Type, 0, structType.NumField()),
		ids:         make([]ComponentID, 0, structType.NumField()),
		resolved:    make([]bool, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	entityType := reflect.TypeFor[Entity]()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if field.Name == "Id" && fieldType == entityType {
			v.idOffset = field.Offset
			v.hasId = true
			continue
		}

		if fieldType.Kind() != reflect.Ptr {
			panic("ecs: View struct fields must be pointer types")
		}

		componentType := fieldType.Elem()
		id, ok := entities.Registry().IDOf(componentType)
		if !ok {
			v.unresolved++
		}

		// Embedded fields are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("ecs: invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		v.types = append(v.types, componentType)
		v.ids = append(v.ids, id)
		v.resolved = append(v.resolved, ok)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}

	return v
}

// resolve looks up component types that were not registered when the view was built.
func (v *View[T]) resolve() {
	if v.unresolved == 0 {
		return
	}
	for i, t := range v.types {
		if v.resolved[i] {
			continue
		}
		if id, ok := v.entities.Registry().IDOf(t); ok {
			v.ids[i] = id
			v.resolved[i] = true
			v.unresolved--
		}
	}
}

// Mask returns the mask of the view's registered required components.
func (v *View[T]) Mask() ComponentMask {
	v.resolve()
	var mask ComponentMask
	for i, id := range v.ids {
		if v.resolved[i] && !v.optional[i] {
			mask.Set(id)
		}
	}
	return mask
}

// Fill populates the provided struct pointer with component data for the given entity.
// Returns false if the entity is invalid or missing any required components.
// Optional components are set to nil if not present.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	if !v.entities.IsValid(e) {
		return false
	}

	v.resolve()

	// Use unsafe.Pointer to directly access the struct's memory
	structPtr := unsafe.Pointer(ptr)
	mask := v.entities.masks[e.Index()]

	for i, id := range v.ids {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		if !v.resolved[i] || !mask.Has(id) {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		component := v.entities.storages[id].Get(int(e.Index()))
		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}

	if v.hasId {
		*(*Entity)(unsafe.Pointer(uintptr(structPtr) + v.idOffset)) = e
	}

	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter yields a populated view struct for each of the given entities that matches.
// Systems pass their interest list to iterate typed component data.
func (v *View[T]) Iter(entities []Entity) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		var result T
		for _, e := range entities {
			if !v.Fill(e, &result) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs.
func (v *View[T]) Values(entities []Entity) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter(entities) {
			if !yield(value) {
				return
			}
		}
	}
}
