// Package ebiten renders scenes with the Ebiten game engine.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/scenecs/scene"
)

// ImageTarget is a render target backed by an Ebiten image.
type ImageTarget interface {
	scene.RenderTarget
	Image() *ebiten.Image
}

// Target wraps an image owned by someone else, typically the screen.
type Target struct {
	img *ebiten.Image
}

// NewTarget wraps img.
func NewTarget(img *ebiten.Image) *Target {
	return &Target{img: img}
}

func (t *Target) Image() *ebiten.Image {
	return t.img
}

// Reset points the target at a new image.
func (t *Target) Reset(img *ebiten.Image) {
	t.img = img
}

func (t *Target) Size() (int, int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Buffer is an offscreen image owned by the scene's post path.
type Buffer struct {
	Target
}

// Resize replaces the image with a cleared one of the new size. Sizes of zero
// or less keep the current image.
func (b *Buffer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if w, h := b.Size(); w == width && h == height {
		return
	}
	if b.img != nil {
		b.img.Deallocate()
	}
	b.img = ebiten.NewImage(width, height)
}

func (b *Buffer) Clear() {
	if b.img != nil {
		b.img.Clear()
	}
}

// Backend allocates Ebiten offscreen buffers for scene.WithBackend.
type Backend struct{}

func (Backend) NewBuffer(width, height int) scene.Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

func imageOf(target scene.RenderTarget) *ebiten.Image {
	if t, ok := target.(ImageTarget); ok {
		return t.Image()
	}
	return nil
}
