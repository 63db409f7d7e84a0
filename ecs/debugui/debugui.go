// Package debugui provides immediate-mode GUI integration for scenes using Dear ImGui.
// Panels inspect the entities, masks and systems of a scene while it runs.
package debugui

import (
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenecs/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func(dt time.Duration)
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem calls the render function of every entity with an ImguiItem. It
// must run between the ImGui backend's BeginFrame and EndFrame.
type ImguiSystem struct {
	ecs.SystemBase
	entities *ecs.EntityManager
	input    ImguiInputState
}

func NewImguiSystem(entities *ecs.EntityManager) *ImguiSystem {
	sys := &ImguiSystem{entities: entities}
	ecs.RequireComponent[ImguiItem](&sys.SystemBase)
	return sys
}

// InputState returns the capture state sampled during the last Process.
func (i *ImguiSystem) InputState() ImguiInputState {
	return i.input
}

func (i *ImguiSystem) Process(dt time.Duration) {
	io := imgui.CurrentIO()
	i.input.WantCaptureMouse = io.WantCaptureMouse()
	i.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, e := range i.Entities() {
		if item := ecs.GetComponent[ImguiItem](i.entities, e); item.Render != nil {
			item.Render(dt)
		}
	}
}
