package script

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script binds an entity to Lua functions. Update is called every frame as
// update(self, dt) where self carries the entity's position and Params. Init, if
// set, is called once as init(self) when the entity joins the System.
type Script struct {
	Init   string
	Update string
	Params map[string]float64
}

// System runs entity scripts each frame. Script errors are logged and do not
// stop the frame.
type System struct {
	ecs.SystemBase
	scene   *scene.Scene
	engine  *Engine
	log     *zap.Logger
	current ecs.Entity
	failed  map[ecs.Entity]bool
}

// NewSystem creates a script system for entities with a Script and a Transform.
// Scripts may call destroy_self() to queue the running entity for destruction.
func NewSystem(s *scene.Scene, engine *Engine, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	sys := &System{
		scene:  s,
		engine: engine,
		log:    log,
		failed: make(map[ecs.Entity]bool),
	}
	ecs.RequireComponent[Script](&sys.SystemBase)
	ecs.RequireComponent[scene.Transform](&sys.SystemBase)

	engine.Register("destroy_self", sys.luaDestroySelf)
	return sys
}

func (s *System) OnEntityAdded(e ecs.Entity) {
	sc := scene.GetComponent[Script](s.scene, e)
	if sc.Init == "" {
		return
	}
	s.run(e, sc.Init, sc)
}

func (s *System) OnEntityRemoved(e ecs.Entity) {
	delete(s.failed, e)
}

func (s *System) Process(dt time.Duration) {
	for _, e := range s.Entities() {
		sc := scene.GetComponent[Script](s.scene, e)
		if sc.Update == "" || s.failed[e] {
			continue
		}
		if !s.run(e, sc.Update, sc, lua.LNumber(dt.Seconds())) {
			// a failing script is logged once and then skipped until the entity is re-routed
			s.failed[e] = true
		}
	}
}

// run calls fn with a self table for e and copies the position back afterwards.
func (s *System) run(e ecs.Entity, fn string, sc *Script, args ...lua.LValue) bool {
	tr := scene.GetComponent[scene.Transform](s.scene, e)
	self := s.selfTable(tr, sc)

	s.current = e
	err := s.engine.call(fn, append([]lua.LValue{self}, args...)...)
	s.current = ecs.NilEntity
	if err != nil {
		s.log.Error("lua script error",
			zap.Stringer("entity", e),
			zap.String("function", fn),
			zap.Error(err))
		return false
	}

	tr.Position = mgl32.Vec3{
		float32(lua.LVAsNumber(self.RawGetString("x"))),
		float32(lua.LVAsNumber(self.RawGetString("y"))),
		float32(lua.LVAsNumber(self.RawGetString("z"))),
	}
	for k := range sc.Params {
		sc.Params[k] = float64(lua.LVAsNumber(self.RawGetString(k)))
	}
	return true
}

func (s *System) selfTable(tr *scene.Transform, sc *Script) *lua.LTable {
	vm := s.engine.vm
	t := vm.NewTable()
	for k, v := range sc.Params {
		t.RawSetString(k, lua.LNumber(v))
	}
	t.RawSetString("x", lua.LNumber(tr.Position.X()))
	t.RawSetString("y", lua.LNumber(tr.Position.Y()))
	t.RawSetString("z", lua.LNumber(tr.Position.Z()))
	return t
}

// luaDestroySelf implements destroy_self() for scripts.
func (s *System) luaDestroySelf(L *lua.LState) int {
	if s.current.IsNil() {
		L.RaiseError("destroy_self called outside an entity script")
		return 0
	}
	s.scene.DestroyEntity(s.current)
	return 0
}
