package debugui

import (
	"time"

	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
)

// Panels is the set of debug windows for one scene.
type Panels struct {
	Browser     *EntityBrowser
	Inspector   *ComponentInspector
	Signatures  *SignatureViewer
	Performance *PerformanceStats
	Queries     *QueryDebugger

	entities *ecs.EntityManager
	systems  *ecs.SystemManager
}

func NewPanels(entities *ecs.EntityManager, systems *ecs.SystemManager) *Panels {
	return &Panels{
		Browser:     NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Signatures:  NewSignatureViewer(),
		Performance: NewPerformanceStats(120),
		Queries:     NewQueryDebugger(),
		entities:    entities,
		systems:     systems,
	}
}

// Render draws every panel. Selecting a signature filters the entity browser and
// selecting an entity opens it in the inspector.
func (p *Panels) Render(dt time.Duration) {
	if mask, ok := p.Signatures.Render(p.entities); ok {
		p.Browser.FilterSignature(mask)
	}
	p.Browser.Render(p.entities, p.systems)
	p.Inspector.Render(p.entities, p.Browser.Selected())
	p.Performance.Render(p.entities, p.systems, dt)
	p.Queries.Render(p.entities, p.systems)
}

// SpawnDebugUI adds an ImguiSystem to s if it has none and creates an entity
// rendering the debug panels. The entity joins the system on the next Simulate.
func SpawnDebugUI(s *scene.Scene) (ecs.Entity, *Panels) {
	if !scene.HasSystem[ImguiSystem](s) {
		scene.AddSystem(s, NewImguiSystem(s.Entities()))
	}
	panels := NewPanels(s.Entities(), s.Systems())
	e := s.CreateEntity()
	scene.AddComponent(s, e, ImguiItem{Render: panels.Render})
	return e, panels
}
