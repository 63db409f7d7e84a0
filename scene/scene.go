package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/message"
	"go.uber.org/zap"
)

const (
	defaultFieldOfView = 60
	defaultAspect      = 16.0 / 9.0
	defaultNear        = 0.1
	defaultFar         = 1000
)

// Scene composes the entities, systems, cameras and render path of one logical
// game context. Entity activation and destruction are deferred until the next
// Simulate call.
type Scene struct {
	entities *ecs.EntityManager
	systems  *ecs.SystemManager
	commands *ecs.Commands

	defaultCamera ecs.Entity
	activeCamera  ecs.Entity

	post        []PostProcess
	postEnabled bool
	backend     Backend
	buffers     [2]Buffer

	bus   *message.Bus
	log   *zap.Logger
	frame uint64
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used by the scene and its SystemManager.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBackend sets the backend that allocates offscreen buffers for post processing.
func WithBackend(backend Backend) Option {
	return func(s *Scene) {
		s.backend = backend
	}
}

// WithBus attaches a message bus. Simulate swaps it and forwards every readable
// message before flushing entity commands; scene events are posted to it.
func WithBus(bus *message.Bus) Option {
	return func(s *Scene) {
		s.bus = bus
	}
}

// New creates a scene with a default perspective camera as its active camera.
func New(opts ...Option) *Scene {
	s := &Scene{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	s.entities = ecs.NewEntityManager(nil)
	s.systems = ecs.NewSystemManager(s.entities, s.log.Named("systems"))
	s.commands = ecs.NewCommands()
	s.commands.BeforeDestroy = s.beforeDestroy

	s.defaultCamera = s.CreateEntity()
	AddComponent(s, s.defaultCamera, NewTransform(mgl32.Vec3{}))
	AddComponent(s, s.defaultCamera, NewPerspectiveCamera(defaultFieldOfView, defaultAspect, defaultNear, defaultFar))
	s.activeCamera = s.defaultCamera

	return s
}

// Close releases the scene's entity manager. Entities of a closed scene must
// not be used.
func (s *Scene) Close() {
	s.entities.Close()
}

// Entities returns the scene's entity manager.
func (s *Scene) Entities() *ecs.EntityManager {
	return s.entities
}

// Systems returns the scene's system manager.
func (s *Scene) Systems() *ecs.SystemManager {
	return s.systems
}

// Frame returns the number of completed Simulate calls.
func (s *Scene) Frame() uint64 {
	return s.frame
}

// CreateEntity allocates an entity. Components may be attached immediately; the
// entity is routed to systems on the next Simulate.
func (s *Scene) CreateEntity() ecs.Entity {
	e := s.entities.Create()
	s.commands.Create(e)
	return e
}

// DestroyEntity queues e for destruction on the next Simulate. The entity stays
// valid and its components readable until then.
func (s *Scene) DestroyEntity(e ecs.Entity) {
	s.mustOwn(e, "DestroyEntity")
	s.commands.Destroy(e)
}

// IsPendingDestroy reports whether e is queued for destruction.
func (s *Scene) IsPendingDestroy(e ecs.Entity) bool {
	return s.commands.IsPendingDestroy(e)
}

// Defer runs fn at the end of the next command flush.
func (s *Scene) Defer(fn func()) {
	s.commands.Defer(fn)
}

// Simulate advances the scene one frame: pending destructions are applied, then
// pending activations, then the active camera's frustum is refreshed, systems run
// in registration order and finally the post chain advances.
func (s *Scene) Simulate(dt time.Duration) {
	s.dispatchMessages()

	result := s.commands.Flush(s.entities, s.systems)
	if result != (ecs.FlushResult{}) {
		s.log.Debug("flushed entity commands",
			zap.Uint64("frame", s.frame),
			zap.Int("destroyed", result.Destroyed),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated))
	}

	s.updateFrustum()
	s.systems.Process(dt)

	for _, p := range s.post {
		p.Process(dt)
	}
	s.frame++
}

// Run calls Simulate at a fixed interval until ctx is cancelled.
// dt is the wall time elapsed since the previous tick.
func (s *Scene) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now
			s.Simulate(dt)
		}
	}
}

func (s *Scene) dispatchMessages() {
	if s.bus == nil {
		return
	}
	s.bus.Swap()
	for msg := range s.bus.Poll() {
		s.ForwardMessage(msg)
	}
}

// ForwardMessage delivers msg to every system that handles messages. Window resize
// events also resize the offscreen buffers and the active camera's aspect ratio.
func (s *Scene) ForwardMessage(msg message.Message) {
	if msg.ID == message.WindowMessage {
		if ev, ok := message.TryData[message.WindowEvent](msg); ok && ev.Type == message.WindowResized {
			s.resize(ev.Width, ev.Height)
		}
	}
	s.systems.ForwardMessage(msg)
}

func (s *Scene) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for _, b := range s.buffers {
		if b != nil {
			b.Resize(width, height)
		}
	}
	if cam, ok := ecs.TryGetComponent[Camera](s.entities, s.activeCamera); ok {
		cam.SetAspect(float32(width) / float32(height))
	}
	s.log.Debug("scene resized", zap.Int("width", width), zap.Int("height", height))
}

// DefaultCamera returns the camera entity created with the scene.
func (s *Scene) DefaultCamera() ecs.Entity {
	return s.defaultCamera
}

// ActiveCamera returns the camera entity used for frustum computation and rendering.
func (s *Scene) ActiveCamera() ecs.Entity {
	return s.activeCamera
}

// SetActiveCamera makes e the active camera and returns the previous one so the
// caller can restore it. e must belong to this scene and have both a Transform
// and a Camera.
func (s *Scene) SetActiveCamera(e ecs.Entity) ecs.Entity {
	s.mustOwn(e, "SetActiveCamera")
	if !ecs.HasComponent[Transform](s.entities, e) || !ecs.HasComponent[Camera](s.entities, e) {
		panic(fmt.Sprintf("scene: SetActiveCamera: %s needs both a Transform and a Camera", e))
	}

	prev := s.activeCamera
	s.activeCamera = e
	s.log.Debug("active camera changed", zap.Stringer("from", prev), zap.Stringer("to", e))
	if s.bus != nil {
		*message.Post[message.SceneEvent](s.bus, message.SceneMessage) = message.SceneEvent{
			Type:   message.CameraChanged,
			Entity: uint64(e),
		}
	}
	return prev
}

// camera returns the active camera component, or nil if the active camera is gone.
func (s *Scene) camera() *Camera {
	cam, _ := ecs.TryGetComponent[Camera](s.entities, s.activeCamera)
	return cam
}

func (s *Scene) updateFrustum() {
	tr, ok := ecs.TryGetComponent[Transform](s.entities, s.activeCamera)
	if !ok {
		return
	}
	if cam := s.camera(); cam != nil {
		cam.update(tr.WorldTransform())
	}
}

// SetParent parents child's Transform to parent's. A nil parent detaches child.
func (s *Scene) SetParent(child, parent ecs.Entity) {
	ct := s.transformOf(child, "SetParent")

	var pt *Transform
	if !parent.IsNil() {
		pt = s.transformOf(parent, "SetParent")
		for p := pt; p != nil; p = p.parentXf {
			if p == ct {
				panic(fmt.Sprintf("scene: SetParent: parenting %s to %s would create a cycle", child, parent))
			}
		}
	}

	if ct.parentXf != nil {
		ct.parentXf.removeChild(child)
	}
	ct.detach()

	if pt != nil {
		ct.parent = parent
		ct.parentXf = pt
		pt.addChild(child)
	}
}

func (s *Scene) transformOf(e ecs.Entity, op string) *Transform {
	s.mustOwn(e, op)
	t, ok := ecs.TryGetComponent[Transform](s.entities, e)
	if !ok {
		panic(fmt.Sprintf("scene: %s: %s has no Transform", op, e))
	}
	return t
}

// unlink detaches e's Transform from its parent and children.
func (s *Scene) unlink(e ecs.Entity) {
	t, ok := ecs.TryGetComponent[Transform](s.entities, e)
	if !ok {
		return
	}
	for _, child := range t.children {
		if ct, ok := ecs.TryGetComponent[Transform](s.entities, child); ok {
			ct.detach()
		}
	}
	t.children = nil
	if t.parentXf != nil {
		t.parentXf.removeChild(e)
	}
	t.detach()
}

// dropCamera moves the active camera back to the default when e stops being usable.
func (s *Scene) dropCamera(e ecs.Entity) {
	if e != s.activeCamera {
		return
	}
	if e == s.defaultCamera {
		s.activeCamera = ecs.NilEntity
	} else {
		s.activeCamera = s.defaultCamera
	}
	s.log.Debug("active camera reset", zap.Stringer("from", e), zap.Stringer("to", s.activeCamera))
}

// beforeDestroy runs after e left every system and before its components are freed.
func (s *Scene) beforeDestroy(e ecs.Entity) {
	s.unlink(e)
	s.dropCamera(e)
	if e == s.defaultCamera {
		s.defaultCamera = ecs.NilEntity
	}

	if s.bus != nil {
		*message.Post[message.SceneEvent](s.bus, message.SceneMessage) = message.SceneEvent{
			Type:   message.EntityDestroyed,
			Entity: uint64(e),
		}
	}
}

func (s *Scene) mustOwn(e ecs.Entity, op string) {
	if !e.IsNil() && !s.entities.Owns(e) {
		panic(fmt.Sprintf("scene: %s: %s belongs to another scene", op, e))
	}
	if !s.entities.IsValid(e) {
		panic(fmt.Sprintf("scene: %s: invalid entity %s", op, e))
	}
}
