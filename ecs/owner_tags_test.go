package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagPool(t *testing.T) {
	p := &tagPool{limit: 3}

	a, b, c := p.acquire(), p.acquire(), p.acquire()
	assert.Equal(t, []uint16{1, 2, 3}, []uint16{a, b, c})
	assert.Panics(t, func() { p.acquire() }, "every tag is held by a live manager")

	p.release(b)
	assert.Equal(t, b, p.acquire(), "released tags are reused")
	assert.Panics(t, func() { p.acquire() })
}
