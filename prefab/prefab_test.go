package prefab_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/prefab"
	"github.com/plus3/scenecs/scene"
	"github.com/plus3/scenecs/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type Health struct {
	Max     int `yaml:"max"`
	Current int `yaml:"current"`
}

const level = `
active_camera: eye
entities:
  - name: player
    transform:
      position: [1, 2, -10]
      scale: [2, 2, 2]
    script:
      update: walk
      params:
        speed: 3
    components:
      health:
        max: 100
        current: 80
  - name: eye
    parent: player
    transform:
      position: [0, 1, 5]
    camera:
      fov: 45
      near: 0.5
      far: 200
  - transform:
      position: [0, 0, -50]
`

func newLoader() *prefab.Loader {
	l := prefab.NewLoader()
	l.Register("health", func(s *scene.Scene, e ecs.Entity, node *yaml.Node) error {
		var h Health
		if err := node.Decode(&h); err != nil {
			return err
		}
		scene.AddComponent(s, e, h)
		return nil
	})
	return l
}

func TestDecode(t *testing.T) {
	s := scene.New()
	named, err := newLoader().Decode([]byte(level), s)
	require.NoError(t, err)
	require.Len(t, named, 2)

	// default camera plus three prefab entities
	assert.Equal(t, 4, s.Entities().Count())

	player := named["player"]
	tr := scene.GetComponent[scene.Transform](s, player)
	assert.Equal(t, float32(1), tr.Position.X())
	assert.Equal(t, float32(-10), tr.Position.Z())
	assert.Equal(t, float32(2), tr.Scale.X())

	sc := scene.GetComponent[script.Script](s, player)
	assert.Equal(t, "walk", sc.Update)
	assert.Equal(t, 3.0, sc.Params["speed"])

	assert.Equal(t, Health{Max: 100, Current: 80}, *scene.GetComponent[Health](s, player))

	eye := named["eye"]
	assert.Equal(t, player, scene.GetComponent[scene.Transform](s, eye).Parent())
	assert.Equal(t, []ecs.Entity{eye}, tr.Children())
	assert.Equal(t, eye, s.ActiveCamera())
}

func TestDecodeParentDeclaredLater(t *testing.T) {
	s := scene.New()
	named, err := prefab.NewLoader().Decode([]byte(`
entities:
  - name: child
    parent: root
    transform: {position: [1, 0, 0]}
  - name: root
    transform: {position: [10, 0, 0]}
`), s)
	require.NoError(t, err)

	child := scene.GetComponent[scene.Transform](s, named["child"])
	assert.InDelta(t, 11, child.WorldPosition().X(), 1e-5)
}

func TestDecodeEntitiesActivateOnSimulate(t *testing.T) {
	s := scene.New()
	named, err := prefab.NewLoader().Decode([]byte(`
entities:
  - name: a
    transform: {}
`), s)
	require.NoError(t, err)

	sys := scene.AddSystem(s, newTransformCounter())
	assert.Empty(t, sys.Entities())

	s.Simulate(time.Millisecond)
	assert.Contains(t, sys.Entities(), named["a"])
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"syntax", "entities: [", "parse prefab"},
		{"duplicate name", "entities:\n  - name: a\n  - name: a\n", `"a" defined twice`},
		{"unknown parent", "entities:\n  - name: a\n    parent: b\n    transform: {}\n", `unknown parent "b"`},
		{"parent without transform", "entities:\n  - name: a\n  - name: b\n    parent: a\n    transform: {}\n", "needs a transform"},
		{"unknown hook", "entities:\n  - components:\n      shield: {}\n", `component "shield"`},
		{"empty script", "entities:\n  - script: {}\n", "init or update"},
		{"bad camera planes", "entities:\n  - camera: {near: 10, far: 1}\n", "far plane"},
		{"bad ortho", "entities:\n  - camera: {ortho: [0, 1]}\n", "orthographic"},
		{"unknown camera", "active_camera: nope\nentities: []\n", `unknown active camera "nope"`},
		{"camera without camera", "active_camera: a\nentities:\n  - name: a\n    transform: {}\n", "needs a transform and a camera"},
		{"cycle", "entities:\n  - name: a\n    parent: b\n    transform: {}\n  - name: b\n    parent: a\n    transform: {}\n", "cycle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scene.New()
			_, err := prefab.NewLoader().Decode([]byte(tt.doc), s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)

			s.Simulate(time.Millisecond)
			assert.Equal(t, 1, s.Entities().Count(), "partially built entities are destroyed")
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(level), 0o644))

	s := scene.New()
	named, err := newLoader().Load(path, s)
	require.NoError(t, err)
	assert.Contains(t, named, "player")

	_, err = newLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type transformCounter struct {
	ecs.SystemBase
}

func newTransformCounter() *transformCounter {
	sys := &transformCounter{}
	ecs.RequireComponent[scene.Transform](&sys.SystemBase)
	return sys
}
