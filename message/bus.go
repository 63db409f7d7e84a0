package message

import "iter"

// Bus is a double-buffered message queue. Messages posted in frame N are
// readable in frame N+1, after Swap.
type Bus struct {
	front []Message
	back  []Message
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		front: make([]Message, 0, 64),
		back:  make([]Message, 0, 64),
	}
}

// Post queues a message with a zero payload of type T and returns a pointer
// to the payload so the caller can fill it in.
func Post[T any](b *Bus, id ID) *T {
	data := new(T)
	b.back = append(b.back, Message{ID: id, data: data})
	return data
}

// Swap makes the messages posted since the last Swap pollable and clears the post buffer.
func (b *Bus) Swap() {
	clear(b.front)
	b.front, b.back = b.back, b.front[:0]
}

// Poll iterates over the readable messages in post order.
func (b *Bus) Poll() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for _, msg := range b.front {
			if !yield(msg) {
				return
			}
		}
	}
}

// Pending returns the number of messages posted since the last Swap.
func (b *Bus) Pending() int {
	return len(b.back)
}

// Readable returns the number of messages Poll will yield.
func (b *Bus) Readable() int {
	return len(b.front)
}
