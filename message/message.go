// Package message provides the engine message bus. Messages are posted during a frame,
// become readable after the next Swap and are then forwarded to scenes and systems.
package message

import "fmt"

// ID identifies the kind of payload a Message carries.
type ID int32

const (
	// WindowMessage carries a WindowEvent.
	WindowMessage ID = iota
	// SceneMessage carries a SceneEvent.
	SceneMessage
	// UserMessage is the first ID available to applications.
	UserMessage ID = 1000
)

// Message is a single posted message.
type Message struct {
	ID   ID
	data any
}

// Data returns the payload of m as T. It panics if the payload is of another type.
func Data[T any](m Message) T {
	v, ok := m.data.(*T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("message: payload of message %d is %T, not %T", m.ID, m.data, zero))
	}
	return *v
}

// TryData returns the payload of m as T if it has that type.
func TryData[T any](m Message) (T, bool) {
	v, ok := m.data.(*T)
	if !ok {
		var zero T
		return zero, false
	}
	return *v, true
}

// WindowEventType enumerates window events.
type WindowEventType int

const (
	WindowResized WindowEventType = iota
	WindowFocusLost
	WindowFocusGained
)

// WindowEvent is the payload of WindowMessage.
type WindowEvent struct {
	Type   WindowEventType
	Width  int
	Height int
}

// SceneEventType enumerates scene events.
type SceneEventType int

const (
	EntityDestroyed SceneEventType = iota
	CameraChanged
)

// SceneEvent is the payload of SceneMessage. Entity holds the raw handle value
// so this package does not depend on the ECS.
type SceneEvent struct {
	Type   SceneEventType
	Entity uint64
}
