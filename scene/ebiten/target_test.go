package ebiten

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferIgnoresEmptySize(t *testing.T) {
	var b *Buffer
	assert.NotPanics(t, func() { b = Backend{}.NewBuffer(0, 0).(*Buffer) })
	assert.Nil(t, b.Image())

	w, h := b.Size()
	assert.Equal(t, []int{0, 0}, []int{w, h})

	assert.NotPanics(t, func() {
		b.Resize(-1, 10)
		b.Clear()
	})
	assert.Nil(t, b.Image())
}
