package scene

import (
	"time"

	"go.uber.org/zap"
)

// RenderTarget is a surface systems draw into.
type RenderTarget interface {
	Size() (width, height int)
}

// Buffer is an offscreen render target owned by the Scene's post path.
type Buffer interface {
	RenderTarget
	Resize(width, height int)
	Clear()
}

// Backend creates offscreen buffers for the post-processing path.
type Backend interface {
	NewBuffer(width, height int) Buffer
}

// Renderer is implemented by systems that draw during Scene.Render.
// Renderers are visited in system registration order.
type Renderer interface {
	Render(target RenderTarget, camera *Camera)
}

// PostProcess is one effect of the Scene's post chain.
type PostProcess interface {
	// Process advances the effect's own state once per Simulate.
	Process(dt time.Duration)
	// Apply draws src into dst.
	Apply(src Buffer, dst RenderTarget)
}

// SetPostEnabled toggles the offscreen render path. Enabling it without a
// backend panics.
func (s *Scene) SetPostEnabled(enabled bool) {
	if enabled && s.backend == nil {
		panic("scene: post processing requires a backend")
	}
	s.postEnabled = enabled
}

// PostEnabled reports whether the offscreen render path is selected.
func (s *Scene) PostEnabled() bool {
	return s.postEnabled
}

// AddPostProcess appends p to the post chain. Effects are processed and applied
// in the order they were added.
func (s *Scene) AddPostProcess(p PostProcess) {
	s.post = append(s.post, p)
}

// PostProcesses returns the post chain.
func (s *Scene) PostProcesses() []PostProcess {
	return s.post
}

// Render draws every active Renderer system into target. With post processing
// enabled the systems draw into an offscreen buffer which the post chain then
// applies into target, skipping targets of zero area.
func (s *Scene) Render(target RenderTarget) {
	camera := s.camera()

	if !s.postEnabled || len(s.post) == 0 {
		s.renderSystems(target, camera)
		return
	}

	// nothing is visible on an empty target, e.g. a minimised window
	width, height := target.Size()
	if width <= 0 || height <= 0 {
		return
	}
	src := s.buffer(0, width, height)
	src.Clear()
	s.renderSystems(src, camera)

	for i, p := range s.post {
		if i == len(s.post)-1 {
			p.Apply(src, target)
			break
		}
		dst := s.buffer((i+1)%2, width, height)
		dst.Clear()
		p.Apply(src, dst)
		src = dst
	}
}

func (s *Scene) renderSystems(target RenderTarget, camera *Camera) {
	for _, sys := range s.systems.Systems() {
		if !sys.Active() {
			continue
		}
		if r, ok := sys.(Renderer); ok {
			r.Render(target, camera)
		}
	}
}

// buffer returns offscreen buffer i sized to width x height, allocating it on first use.
func (s *Scene) buffer(i, width, height int) Buffer {
	b := s.buffers[i]
	if b == nil {
		b = s.backend.NewBuffer(width, height)
		s.buffers[i] = b
		return b
	}
	if w, h := b.Size(); w != width || h != height {
		b.Resize(width, height)
		s.log.Debug("offscreen buffer resized",
			zap.Int("buffer", i), zap.Int("width", width), zap.Int("height", height))
	}
	return b
}
