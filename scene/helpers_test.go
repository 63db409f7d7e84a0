package scene_test

import (
	"time"

	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
)

type A struct{ V int }
type B struct{ V int }
type C struct{ V int }

// requireABSystem routes entities holding both A and B.
type requireABSystem struct {
	ecs.SystemBase
	added   []ecs.Entity
	removed []ecs.Entity
}

func newRequireABSystem() *requireABSystem {
	s := &requireABSystem{}
	ecs.RequireComponent[A](&s.SystemBase)
	ecs.RequireComponent[B](&s.SystemBase)
	return s
}

func (s *requireABSystem) OnEntityAdded(e ecs.Entity)   { s.added = append(s.added, e) }
func (s *requireABSystem) OnEntityRemoved(e ecs.Entity) { s.removed = append(s.removed, e) }

type requireASystem struct {
	ecs.SystemBase
	added []ecs.Entity
}

func newRequireASystem() *requireASystem {
	s := &requireASystem{}
	ecs.RequireComponent[A](&s.SystemBase)
	return s
}

func (s *requireASystem) OnEntityAdded(e ecs.Entity) { s.added = append(s.added, e) }

type requireCSystem struct {
	ecs.SystemBase
}

func newRequireCSystem() *requireCSystem {
	s := &requireCSystem{}
	ecs.RequireComponent[C](&s.SystemBase)
	return s
}

// callLog records process and render calls in order.
type callLog struct {
	calls []string
}

type physicsSystem struct {
	ecs.SystemBase
	log *callLog
}

func (s *physicsSystem) Process(time.Duration) { s.log.calls = append(s.log.calls, "Physics") }

type renderSystem struct {
	ecs.SystemBase
	log     *callLog
	targets []scene.RenderTarget
	cameras []*scene.Camera
}

func (s *renderSystem) Process(time.Duration) { s.log.calls = append(s.log.calls, "Render") }

func (s *renderSystem) Render(target scene.RenderTarget, camera *scene.Camera) {
	s.targets = append(s.targets, target)
	s.cameras = append(s.cameras, camera)
}

type fakeTarget struct {
	name          string
	width, height int
	clears        int
}

func (t *fakeTarget) Size() (int, int) { return t.width, t.height }

func (t *fakeTarget) Resize(width, height int) {
	t.width, t.height = width, height
}

func (t *fakeTarget) Clear() { t.clears++ }

type fakeBackend struct {
	buffers []*fakeTarget
}

func (b *fakeBackend) NewBuffer(width, height int) scene.Buffer {
	buf := &fakeTarget{name: "buffer", width: width, height: height}
	b.buffers = append(b.buffers, buf)
	return buf
}

type application struct {
	src, dst scene.RenderTarget
}

type fakePost struct {
	processed []time.Duration
	applied   []application
}

func (p *fakePost) Process(dt time.Duration) { p.processed = append(p.processed, dt) }

func (p *fakePost) Apply(src scene.Buffer, dst scene.RenderTarget) {
	p.applied = append(p.applied, application{src: src, dst: dst})
}

// cGranterSystem gives every entity holding A a C when it is routed.
type cGranterSystem struct {
	ecs.SystemBase
	scene *scene.Scene
}

func newCGranterSystem(s *scene.Scene) *cGranterSystem {
	sys := &cGranterSystem{scene: s}
	ecs.RequireComponent[A](&sys.SystemBase)
	return sys
}

func (s *cGranterSystem) OnEntityAdded(e ecs.Entity) { scene.AddComponent(s.scene, e, C{}) }

// pruningSystem removes requireCSystem while systems are being processed.
type pruningSystem struct {
	ecs.SystemBase
	scene *scene.Scene
}

func (s *pruningSystem) Process(time.Duration) { scene.RemoveSystem[requireCSystem](s.scene) }
