package main

import (
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
)

type Velocity struct {
	mgl32.Vec3
}

type Spin struct {
	Axis  mgl32.Vec3
	Speed float32 // radians per second
}

// Mortal marks entities the churn system may replace.
type Mortal struct{}

func registerSystems(s *scene.Scene, rng *rand.Rand, churn float64) {
	scene.AddSystem(s, newMovementSystem(s))
	scene.AddSystem(s, newSpinSystem(s))
	scene.AddSystem(s, newChurnSystem(s, rng, churn))
	scene.AddSystem(s, newCullSystem(s))
}

func spawnRandomEntity(s *scene.Scene, rng *rand.Rand) ecs.Entity {
	e := s.CreateEntity()
	pos := mgl32.Vec3{
		rng.Float32()*100 - 50,
		rng.Float32()*100 - 50,
		-rng.Float32() * 200,
	}
	scene.AddComponent(s, e, scene.NewTransform(pos))

	if rng.IntN(2) == 0 {
		scene.AddComponent(s, e, Velocity{mgl32.Vec3{rng.Float32() - 0.5, rng.Float32() - 0.5, 0}})
	}
	if rng.IntN(3) == 0 {
		scene.AddComponent(s, e, Spin{Axis: mgl32.Vec3{0, 1, 0}, Speed: rng.Float32() * 3})
	}
	if rng.IntN(2) == 0 {
		scene.AddComponent(s, e, Mortal{})
	}
	return e
}

type movementSystem struct {
	ecs.SystemBase
	scene *scene.Scene
}

func newMovementSystem(s *scene.Scene) *movementSystem {
	sys := &movementSystem{scene: s}
	ecs.RequireComponent[scene.Transform](&sys.SystemBase)
	ecs.RequireComponent[Velocity](&sys.SystemBase)
	return sys
}

func (m *movementSystem) Process(dt time.Duration) {
	seconds := float32(dt.Seconds())
	for _, e := range m.Entities() {
		vel := scene.GetComponent[Velocity](m.scene, e)
		scene.GetComponent[scene.Transform](m.scene, e).Move(vel.Mul(seconds))
	}
}

type spinSystem struct {
	ecs.SystemBase
	scene *scene.Scene
}

func newSpinSystem(s *scene.Scene) *spinSystem {
	sys := &spinSystem{scene: s}
	ecs.RequireComponent[scene.Transform](&sys.SystemBase)
	ecs.RequireComponent[Spin](&sys.SystemBase)
	return sys
}

func (m *spinSystem) Process(dt time.Duration) {
	seconds := float32(dt.Seconds())
	for _, e := range m.Entities() {
		spin := scene.GetComponent[Spin](m.scene, e)
		scene.GetComponent[scene.Transform](m.scene, e).Rotate(mgl32.QuatRotate(spin.Speed*seconds, spin.Axis))
	}
}

// churnSystem destroys a fraction of the mortal entities each frame and spawns
// the same number of replacements, which join their systems on the next frame.
type churnSystem struct {
	ecs.SystemBase
	scene *scene.Scene
	rng   *rand.Rand
	rate  float64
	carry float64
}

func newChurnSystem(s *scene.Scene, rng *rand.Rand, rate float64) *churnSystem {
	sys := &churnSystem{scene: s, rng: rng, rate: rate}
	ecs.RequireComponent[Mortal](&sys.SystemBase)
	return sys
}

func (c *churnSystem) Process(time.Duration) {
	entities := c.Entities()
	c.carry += c.rate * float64(len(entities))
	n := min(int(c.carry), len(entities))
	c.carry -= float64(n)

	for range n {
		e := entities[c.rng.IntN(len(entities))]
		if c.scene.IsPendingDestroy(e) {
			continue
		}
		c.scene.DestroyEntity(e)
		spawnRandomEntity(c.scene, c.rng)
	}
}

// cullSystem counts the entities inside the active camera's frustum.
type cullSystem struct {
	ecs.SystemBase
	scene   *scene.Scene
	visible int
}

func newCullSystem(s *scene.Scene) *cullSystem {
	sys := &cullSystem{scene: s}
	ecs.RequireComponent[scene.Transform](&sys.SystemBase)
	return sys
}

func (c *cullSystem) Process(time.Duration) {
	cam, ok := scene.TryGetComponent[scene.Camera](c.scene, c.scene.ActiveCamera())
	if !ok {
		return
	}
	c.visible = 0
	for _, e := range c.Entities() {
		if cam.Frustum.ContainsPoint(scene.GetComponent[scene.Transform](c.scene, e).WorldPosition()) {
			c.visible++
		}
	}
}
