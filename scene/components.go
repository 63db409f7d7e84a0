package scene

import (
	"fmt"
	"reflect"

	"github.com/plus3/scenecs/ecs"
)

// AddComponent attaches value to e and returns the stored copy. An entity that is
// already active is re-routed on the next Simulate.
func AddComponent[T any](s *Scene, e ecs.Entity, value T) *T {
	s.mustOwn(e, "AddComponent")
	c := ecs.AddComponent(s.entities, e, value)
	if t, ok := any(c).(*Transform); ok {
		t.detach()
		t.children = nil
	}
	if !s.commands.IsPendingCreate(e) {
		s.commands.MarkDirty(e)
	}
	return c
}

// RemoveComponent queues removal of e's component of type T. The component stays
// readable until the next Simulate, which then re-routes the entity.
func RemoveComponent[T any](s *Scene, e ecs.Entity) {
	s.mustOwn(e, "RemoveComponent")
	if !ecs.HasComponent[T](s.entities, e) {
		panic(fmt.Sprintf("scene: RemoveComponent: %s has no component %s", e, reflect.TypeFor[T]()))
	}

	s.commands.Modify(e, func() {
		if !ecs.HasComponent[T](s.entities, e) {
			return
		}
		switch any((*T)(nil)).(type) {
		case *Transform:
			s.unlink(e)
			s.dropCamera(e)
		case *Camera:
			s.dropCamera(e)
		}
		ecs.RemoveComponent[T](s.entities, e)
	})
}

// GetComponent returns e's component of type T. It panics if there is none.
func GetComponent[T any](s *Scene, e ecs.Entity) *T {
	return ecs.GetComponent[T](s.entities, e)
}

// TryGetComponent returns e's component of type T, if any.
func TryGetComponent[T any](s *Scene, e ecs.Entity) (*T, bool) {
	return ecs.TryGetComponent[T](s.entities, e)
}

// HasComponent reports whether e is valid and has a component of type T.
func HasComponent[T any](s *Scene, e ecs.Entity) bool {
	return ecs.HasComponent[T](s.entities, e)
}

type systemPtr[T any] interface {
	*T
	ecs.System
}

// AddSystem registers sys unless a system of type T already exists, in which case
// the existing instance is returned unchanged. A newly registered system receives
// every already active entity matching its mask.
func AddSystem[T any, PT systemPtr[T]](s *Scene, sys PT) PT {
	registered, added := s.systems.Register(sys)
	if added {
		for e := range s.entities.Entities() {
			if !s.commands.IsPendingCreate(e) {
				s.systems.AddToSystem(registered, e)
			}
		}
	}
	return registered.(PT)
}

// GetSystem returns the system of type T. It panics if none is registered.
func GetSystem[T any, PT systemPtr[T]](s *Scene) PT {
	return ecs.GetSystem[T, PT](s.systems)
}

// HasSystem reports whether a system of type T is registered.
func HasSystem[T any](s *Scene) bool {
	return ecs.HasSystem[T](s.systems)
}

// RemoveSystem unregisters the system of type T. Entities routed to it are
// dropped silently.
func RemoveSystem[T any](s *Scene) bool {
	return ecs.RemoveSystem[T](s.systems)
}
