// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	sceneebiten "github.com/plus3/scenecs/scene/ebiten"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// It satisfies the scene Game's Overlay, so the ImGui frame brackets each
// simulation step and is drawn over the rendered scene.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the ImGui context and the Ebiten window it draws into.
// ImGui's ini file is disabled.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: backend}
}

var _ sceneebiten.Overlay = (*ImguiBackend)(nil)
