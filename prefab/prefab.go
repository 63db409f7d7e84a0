// Package prefab builds scene entities from YAML descriptions.
package prefab

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
	"github.com/plus3/scenecs/script"
	"gopkg.in/yaml.v3"
)

// File is the top level of a prefab document.
type File struct {
	ActiveCamera string   `yaml:"active_camera"`
	Entities     []Entity `yaml:"entities"`
}

// Entity describes one entity. Components other than the built-in ones are kept
// as raw nodes and decoded by the hook registered under their key.
type Entity struct {
	Name       string               `yaml:"name"`
	Parent     string               `yaml:"parent"`
	Transform  *TransformSpec       `yaml:"transform"`
	Camera     *CameraSpec          `yaml:"camera"`
	Script     *ScriptSpec          `yaml:"script"`
	Components map[string]yaml.Node `yaml:"components"`
}

type TransformSpec struct {
	Position [3]float32  `yaml:"position"`
	Rotation [3]float32  `yaml:"rotation"` // euler degrees, XYZ order
	Scale    *[3]float32 `yaml:"scale"`
	Origin   [3]float32  `yaml:"origin"`
}

type CameraSpec struct {
	FOV    float32 `yaml:"fov"`
	Aspect float32 `yaml:"aspect"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`

	// Ortho switches to an orthographic projection of the given half extents.
	Ortho *[2]float32 `yaml:"ortho"`
}

type ScriptSpec struct {
	Init   string             `yaml:"init"`
	Update string             `yaml:"update"`
	Params map[string]float64 `yaml:"params"`
}

// Hook attaches a custom component described by node to e.
type Hook func(s *scene.Scene, e ecs.Entity, node *yaml.Node) error

// Loader turns prefab documents into entities.
type Loader struct {
	hooks map[string]Hook
}

// NewLoader creates a loader with no custom component hooks.
func NewLoader() *Loader {
	return &Loader{hooks: make(map[string]Hook)}
}

// Register installs the hook for the components key name, replacing any previous one.
func (l *Loader) Register(name string, hook Hook) {
	l.hooks[name] = hook
}

// Load reads a prefab file and instantiates it into s.
func (l *Loader) Load(path string, s *scene.Scene) (map[string]ecs.Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab %s: %w", path, err)
	}
	named, err := l.Decode(raw, s)
	if err != nil {
		return nil, fmt.Errorf("load prefab %s: %w", path, err)
	}
	return named, nil
}

// Decode parses a prefab document and instantiates it into s. It returns the
// created entities by name. Entities join their systems on the next Simulate.
//
// On error, entities created so far are queued for destruction.
func (l *Loader) Decode(data []byte, s *scene.Scene) (map[string]ecs.Entity, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prefab: %w", err)
	}

	named := make(map[string]ecs.Entity, len(f.Entities))
	created := make([]ecs.Entity, 0, len(f.Entities))
	fail := func(err error) (map[string]ecs.Entity, error) {
		for _, e := range created {
			s.DestroyEntity(e)
		}
		return nil, err
	}

	for i := range f.Entities {
		spec := &f.Entities[i]
		if spec.Name != "" {
			if _, dup := named[spec.Name]; dup {
				return fail(fmt.Errorf("entity %q defined twice", spec.Name))
			}
		}

		e := s.CreateEntity()
		created = append(created, e)
		if spec.Name != "" {
			named[spec.Name] = e
		}
		if err := l.build(s, e, spec); err != nil {
			return fail(fmt.Errorf("entity %s: %w", spec.label(i), err))
		}
	}

	// parents may be declared after their children
	for i := range f.Entities {
		spec := &f.Entities[i]
		if spec.Parent == "" {
			continue
		}
		parent, ok := named[spec.Parent]
		if !ok {
			return fail(fmt.Errorf("entity %s: unknown parent %q", spec.label(i), spec.Parent))
		}
		if spec.Transform == nil || !scene.HasComponent[scene.Transform](s, parent) {
			return fail(fmt.Errorf("entity %s: parenting needs a transform on both entities", spec.label(i)))
		}
		if err := setParent(s, created[i], parent); err != nil {
			return fail(fmt.Errorf("entity %s: %w", spec.label(i), err))
		}
	}

	if f.ActiveCamera != "" {
		cam, ok := named[f.ActiveCamera]
		if !ok {
			return fail(fmt.Errorf("unknown active camera %q", f.ActiveCamera))
		}
		if !scene.HasComponent[scene.Camera](s, cam) || !scene.HasComponent[scene.Transform](s, cam) {
			return fail(fmt.Errorf("active camera %q needs a transform and a camera", f.ActiveCamera))
		}
		s.SetActiveCamera(cam)
	}

	return named, nil
}

func (l *Loader) build(s *scene.Scene, e ecs.Entity, spec *Entity) error {
	if spec.Transform != nil {
		scene.AddComponent(s, e, spec.Transform.build())
	}
	if spec.Camera != nil {
		cam, err := spec.Camera.build()
		if err != nil {
			return err
		}
		scene.AddComponent(s, e, cam)
	}
	if spec.Script != nil {
		if spec.Script.Init == "" && spec.Script.Update == "" {
			return fmt.Errorf("script needs an init or update function")
		}
		params := spec.Script.Params
		if params == nil {
			params = make(map[string]float64)
		}
		scene.AddComponent(s, e, script.Script{
			Init:   spec.Script.Init,
			Update: spec.Script.Update,
			Params: params,
		})
	}

	for name, node := range spec.Components {
		hook, ok := l.hooks[name]
		if !ok {
			return fmt.Errorf("no hook registered for component %q", name)
		}
		if err := hook(s, e, &node); err != nil {
			return fmt.Errorf("component %s: %w", name, err)
		}
	}
	return nil
}

func (t *TransformSpec) build() scene.Transform {
	tr := scene.NewTransform(mgl32.Vec3(t.Position))
	if t.Rotation != ([3]float32{}) {
		tr.Rotation = mgl32.AnglesToQuat(
			mgl32.DegToRad(t.Rotation[0]),
			mgl32.DegToRad(t.Rotation[1]),
			mgl32.DegToRad(t.Rotation[2]),
			mgl32.XYZ,
		)
	}
	if t.Scale != nil {
		tr.Scale = mgl32.Vec3(*t.Scale)
	}
	tr.Origin = mgl32.Vec3(t.Origin)
	return tr
}

func (c *CameraSpec) build() (scene.Camera, error) {
	near, far := c.Near, c.Far
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 1000
	}
	if far <= near {
		return scene.Camera{}, fmt.Errorf("camera far plane %g must lie beyond near plane %g", far, near)
	}

	if c.Ortho != nil {
		w, h := c.Ortho[0], c.Ortho[1]
		if w <= 0 || h <= 0 {
			return scene.Camera{}, fmt.Errorf("orthographic extents must be positive, got %gx%g", w, h)
		}
		var cam scene.Camera
		cam.SetOrthographic(-w, w, -h, h, near, far)
		return cam, nil
	}

	fov, aspect := c.FOV, c.Aspect
	if fov == 0 {
		fov = 60
	}
	if aspect == 0 {
		aspect = 16.0 / 9.0
	}
	if fov <= 0 || fov >= 180 {
		return scene.Camera{}, fmt.Errorf("camera fov %g out of range", fov)
	}
	return scene.NewPerspectiveCamera(fov, aspect, near, far), nil
}

func (e *Entity) label(i int) string {
	if e.Name != "" {
		return fmt.Sprintf("%q", e.Name)
	}
	return fmt.Sprintf("#%d", i)
}

// setParent converts the cycle panic of Scene.SetParent into an error.
func setParent(s *scene.Scene, child, parent ecs.Entity) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	s.SetParent(child, parent)
	return nil
}
