package debugui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenecs/ecs"
)

// QueryDebugger builds a mask from picked component types and shows which
// entities carry it and which systems it would satisfy.
type QueryDebugger struct {
	selected map[ecs.ComponentID]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{selected: make(map[ecs.ComponentID]bool)}
}

type queryResult struct {
	mask     ecs.ComponentMask
	entities int
	systems  []string
}

// run evaluates the current selection against the live entities and the systems.
func (qd *QueryDebugger) run(entities *ecs.EntityManager, systems *ecs.SystemManager) queryResult {
	var r queryResult
	for id, on := range qd.selected {
		if on {
			r.mask.Set(id)
		}
	}
	for e := range entities.Entities() {
		if entities.Mask(e).Contains(r.mask) {
			r.entities++
		}
	}
	for _, sys := range systems.Systems() {
		m, ok := sys.(interface{ Mask() ecs.ComponentMask })
		if ok && r.mask.Contains(m.Mask()) {
			r.systems = append(r.systems, sys.Name())
		}
	}
	return r
}

func (qd *QueryDebugger) Render(entities *ecs.EntityManager, systems *ecs.SystemManager) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(qd.selected)
	}

	registry := entities.Registry()
	ids := make([]ecs.ComponentID, registry.Count())
	for i := range ids {
		ids[i] = ecs.ComponentID(i)
	}
	slices.SortFunc(ids, func(a, b ecs.ComponentID) int {
		return cmp.Compare(shortTypeName(registry.TypeOf(a)), shortTypeName(registry.TypeOf(b)))
	})
	for _, id := range ids {
		on := qd.selected[id]
		if imgui.Checkbox(shortTypeName(registry.TypeOf(id)), &on) {
			qd.selected[id] = on
		}
	}

	imgui.Separator()

	r := qd.run(entities, systems)
	if r.mask.IsZero() {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Mask: %s", r.mask))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", r.entities))
	if imgui.TreeNodeStr(fmt.Sprintf("Systems satisfied (%d)", len(r.systems))) {
		for _, name := range r.systems {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}
