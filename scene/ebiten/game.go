package ebiten

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/scenecs/message"
	"github.com/plus3/scenecs/scene"
)

// Overlay draws on top of the scene, e.g. a Dear ImGui backend.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(width, height int)
}

// Game runs a Scene as an ebiten.Game: Update simulates one tick, Draw renders
// into the screen and Layout reports size changes on the bus.
type Game struct {
	Scene *scene.Scene
	Bus   *message.Bus
	Tick  time.Duration

	// Overlay, if set, wraps every Update in BeginFrame/EndFrame and draws last.
	Overlay Overlay
	// BeforeUpdate runs ahead of each simulation step. Returning an error
	// (ebiten.Termination to quit cleanly) stops the game.
	BeforeUpdate func() error

	screen        Target
	width, height int
}

// NewGame creates a game simulating s at Ebiten's tick rate. bus should be the
// one the scene was created with.
func NewGame(s *scene.Scene, bus *message.Bus) *Game {
	return &Game{
		Scene: s,
		Bus:   bus,
		Tick:  time.Second / time.Duration(ebiten.TPS()),
	}
}

func (g *Game) Update() error {
	if g.BeforeUpdate != nil {
		if err := g.BeforeUpdate(); err != nil {
			return err
		}
	}
	if g.Overlay != nil {
		g.Overlay.BeginFrame()
		defer g.Overlay.EndFrame()
	}
	g.Scene.Simulate(g.Tick)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.Reset(screen)
	g.Scene.Render(&g.screen)
	if g.Overlay != nil {
		g.Overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		if g.Bus != nil {
			*message.Post[message.WindowEvent](g.Bus, message.WindowMessage) = message.WindowEvent{
				Type:   message.WindowResized,
				Width:  outsideWidth,
				Height: outsideHeight,
			}
		}
	}
	if g.Overlay != nil {
		g.Overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

var _ ebiten.Game = (*Game)(nil)
