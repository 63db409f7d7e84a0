package ebiten

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTintScale(t *testing.T) {
	tint := NewTint([4]float32{0.5, 1, 0, 1})

	r, g, b, a := tint.scale()
	assert.Equal(t, []float32{0.5, 1, 0, 1}, []float32{r, g, b, a})
}

func TestTintPulse(t *testing.T) {
	tint := NewTint([4]float32{0, 0, 0, 1})
	tint.Pulse = time.Second

	r, _, _, _ := tint.scale()
	assert.InDelta(t, 1, r, 1e-5, "no tint at the start of a pulse")

	tint.Process(500 * time.Millisecond)
	r, _, _, _ = tint.scale()
	assert.InDelta(t, 0, r, 1e-5, "full tint halfway through")

	tint.Process(750 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, tint.elapsed, "elapsed wraps at the pulse period")
	r, _, _, _ = tint.scale()
	assert.InDelta(t, 0.5, r, 1e-5)
}
