package ecs

import "sync"

// tagPool hands out manager tags. A tag is only reused after the manager
// holding it is closed, so two live managers never share one.
type tagPool struct {
	mu    sync.Mutex
	next  uint32
	limit uint32
	free  []uint16
}

var managerTags = &tagPool{limit: 1<<16 - 1}

func (p *tagPool) acquire() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		tag := p.free[n-1]
		p.free = p.free[:n-1]
		return tag
	}
	if p.next >= p.limit {
		panic("ecs: too many live entity managers; Close unused ones")
	}
	p.next++
	return uint16(p.next)
}

func (p *tagPool) release(tag uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, tag)
}
