package ebiten

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/scenecs/scene"
)

// Tint is a post effect multiplying every pixel by a color. With a non-zero
// Pulse the strength of the tint oscillates between none and full over that period.
type Tint struct {
	Color [4]float32
	Pulse time.Duration

	elapsed time.Duration
	opts    ebiten.DrawImageOptions
}

func NewTint(rgba [4]float32) *Tint {
	return &Tint{Color: rgba}
}

func (t *Tint) Process(dt time.Duration) {
	t.elapsed += dt
	if t.Pulse > 0 {
		t.elapsed %= t.Pulse
	}
}

func (t *Tint) Apply(src scene.Buffer, dst scene.RenderTarget) {
	img := imageOf(src)
	if img == nil {
		return
	}
	t.opts.ColorScale.Reset()
	r, g, b, a := t.scale()
	t.opts.ColorScale.Scale(r, g, b, a)
	DrawImage(dst, img, &t.opts)
}

// scale returns the color multiplier for the current point of the pulse.
func (t *Tint) scale() (r, g, b, a float32) {
	strength := float32(1)
	if t.Pulse > 0 {
		phase := float64(t.elapsed) / float64(t.Pulse)
		strength = float32(0.5 - 0.5*math.Cos(2*math.Pi*phase))
	}
	mix := func(c float32) float32 { return 1 + (c-1)*strength }
	return mix(t.Color[0]), mix(t.Color[1]), mix(t.Color[2]), mix(t.Color[3])
}

var _ scene.PostProcess = (*Tint)(nil)
