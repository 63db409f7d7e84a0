package ebiten

import (
	"image/color"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnSprite(s *scene.Scene, pos mgl32.Vec3, size float32) ecs.Entity {
	e := s.CreateEntity()
	scene.AddComponent(s, e, scene.NewTransform(pos))
	scene.AddComponent(s, e, Sprite{Color: color.RGBA{255, 0, 0, 255}, Size: size})
	return e
}

func TestSpriteSystemCollect(t *testing.T) {
	s := scene.New()
	sys := scene.AddSystem(s, NewSpriteSystem(s))

	cam := s.CreateEntity()
	scene.AddComponent(s, cam, scene.NewTransform(mgl32.Vec3{}))
	scene.AddComponent(s, cam, scene.NewPerspectiveCamera(90, 1, 0.1, 100))
	s.SetActiveCamera(cam)

	spawnSprite(s, mgl32.Vec3{0, 0, -10}, 2)
	spawnSprite(s, mgl32.Vec3{0, 0, 10}, 2)
	spawnSprite(s, mgl32.Vec3{0, 0, -20}, 2)
	s.Simulate(time.Millisecond)

	sys.collect(scene.GetComponent[scene.Camera](s, cam), 100, 100)

	assert.Equal(t, 2, sys.Drawn())
	assert.Equal(t, 1, sys.Culled())
	require.Len(t, sys.draws, 2)

	far, near := sys.draws[0], sys.draws[1]
	assert.InDelta(t, 20, far.depth, 1e-3, "farther sprites draw first")
	assert.InDelta(t, 10, near.depth, 1e-3)

	assert.InDelta(t, 50, near.x, 1e-3)
	assert.InDelta(t, 50, near.y, 1e-3)
	assert.InDelta(t, 10, near.size, 1e-3)
	assert.InDelta(t, 5, far.size, 1e-3)
}

func TestSpriteSystemScreenAxes(t *testing.T) {
	s := scene.New()
	sys := scene.AddSystem(s, NewSpriteSystem(s))

	cam := s.CreateEntity()
	scene.AddComponent(s, cam, scene.NewTransform(mgl32.Vec3{}))
	scene.AddComponent(s, cam, scene.NewPerspectiveCamera(90, 1, 0.1, 100))
	s.SetActiveCamera(cam)

	// up and to the right of the view axis
	spawnSprite(s, mgl32.Vec3{5, 5, -10}, 1)
	s.Simulate(time.Millisecond)

	sys.collect(scene.GetComponent[scene.Camera](s, cam), 100, 100)
	require.Len(t, sys.draws, 1)
	assert.InDelta(t, 75, sys.draws[0].x, 1e-3)
	assert.InDelta(t, 25, sys.draws[0].y, 1e-3, "screen y grows downwards")
}

func TestSpriteSystemScaleWidensCulling(t *testing.T) {
	s := scene.New()
	sys := scene.AddSystem(s, NewSpriteSystem(s))

	cam := s.CreateEntity()
	scene.AddComponent(s, cam, scene.NewTransform(mgl32.Vec3{}))
	scene.AddComponent(s, cam, scene.NewPerspectiveCamera(90, 1, 0.1, 100))
	s.SetActiveCamera(cam)

	// centre just outside the right plane
	e := spawnSprite(s, mgl32.Vec3{11.5, 0, -10}, 1)
	s.Simulate(time.Millisecond)

	camera := scene.GetComponent[scene.Camera](s, cam)
	sys.collect(camera, 100, 100)
	assert.Equal(t, 0, sys.Drawn())

	scene.GetComponent[scene.Transform](s, e).Scale = mgl32.Vec3{4, 4, 4}
	sys.collect(camera, 100, 100)
	assert.Equal(t, 1, sys.Drawn())
}

func TestSpriteSystemRenderWithoutImage(t *testing.T) {
	s := scene.New()
	sys := scene.AddSystem(s, NewSpriteSystem(s))
	spawnSprite(s, mgl32.Vec3{0, 0, -10}, 1)
	s.Simulate(time.Millisecond)

	assert.NotPanics(t, func() {
		sys.Render(&Target{}, scene.GetComponent[scene.Camera](s, s.ActiveCamera()))
		sys.Render(&Target{}, nil)
	})
	assert.Equal(t, 0, sys.Drawn())
}
