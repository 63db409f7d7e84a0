package ecs_test

import (
	"fmt"

	"github.com/plus3/scenecs/ecs"
)

// ExampleView demonstrates using Views to read several components of one entity at once.
// A view type is a struct of component pointers; Get returns nil when the entity
// lacks any required component.
func ExampleView() {
	entities := ecs.NewEntityManager(nil)

	player := entities.Create()
	ecs.AddComponent(entities, player, Position{X: 10, Y: 20})
	ecs.AddComponent(entities, player, Velocity{DX: 1, DY: 0})
	ecs.AddComponent(entities, player, Health{Current: 100, Max: 100})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](entities)

	if item := view.Get(player); item != nil {
		fmt.Printf("Player at (%.0f, %.0f) moving (%.0f, %.0f)\n",
			item.Position.X, item.Position.Y, item.Velocity.DX, item.Velocity.DY)
	}

	// Output:
	// Player at (10, 20) moving (1, 0)
}

// ExampleView_Iter shows walking a system's interest list with typed access.
// Including an Entity field named Id in the view struct exposes each handle.
func ExampleView_Iter() {
	entities := ecs.NewEntityManager(nil)
	systems := ecs.NewSystemManager(entities, nil)
	movement := ecs.AddSystem(systems, NewMovementSystem(entities))

	for i, vel := range []Velocity{{DX: 1}, {DY: 1}, {DX: -1, DY: -1}} {
		e := entities.Create()
		ecs.AddComponent(entities, e, Position{X: float32(i * 10), Y: float32(i * 10)})
		ecs.AddComponent(entities, e, vel)
		systems.AddToSystems(e)
	}
	still := entities.Create()
	ecs.AddComponent(entities, still, Position{X: 100, Y: 100})
	systems.AddToSystems(still)

	view := ecs.NewView[struct {
		Id ecs.Entity
		*Position
		*Velocity
	}](entities)

	fmt.Println("Entities with position and velocity:")
	for item := range view.Values(movement.Entities()) {
		item.Position.X += item.Velocity.DX
		item.Position.Y += item.Velocity.DY
		fmt.Printf("%v -> (%.0f, %.0f)\n", item.Id != ecs.NilEntity, item.Position.X, item.Position.Y)
	}

	// Output:
	// Entities with position and velocity:
	// true -> (1, 0)
	// true -> (10, 11)
	// true -> (19, 19)
}

// ExampleView_optional demonstrates optional components in views.
// Optional fields are nil when the entity lacks the component instead of
// excluding the entity.
func ExampleView_optional() {
	entities := ecs.NewEntityManager(nil)

	var all []ecs.Entity
	for i, hp := range []int{50, 75, -1} {
		e := entities.Create()
		ecs.AddComponent(entities, e, Position{X: float32(10 * (i + 1)), Y: float32(10 * (i + 1))})
		if hp >= 0 {
			ecs.AddComponent(entities, e, Health{Current: hp, Max: 100})
		}
		all = append(all, e)
	}

	view := ecs.NewView[struct {
		Position *Position
		Health   *Health `ecs:"optional"`
	}](entities)

	fmt.Println("All entities:")
	for item := range view.Values(all) {
		if item.Health != nil {
			fmt.Printf("Entity at (%.0f, %.0f) with health %d/%d\n",
				item.Position.X, item.Position.Y, item.Health.Current, item.Health.Max)
		} else {
			fmt.Printf("Invulnerable entity at (%.0f, %.0f)\n", item.Position.X, item.Position.Y)
		}
	}

	// Output:
	// All entities:
	// Entity at (10, 10) with health 50/100
	// Entity at (20, 20) with health 75/100
	// Invulnerable entity at (30, 30)
}
