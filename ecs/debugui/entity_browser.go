package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenecs/ecs"
)

// entity snapshots older than this many renders are rebuilt even if the entity
// count did not change
const browserRefreshInterval = 30

type EntityBrowser struct {
	entities      []EntityInfo
	lastCount     int
	age           int
	sortColumn    int
	sortAscending bool

	selected           ecs.Entity
	filterText         string
	filterMask         *ecs.ComponentMask
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		lastCount:          -1,
		sortAscending:      true,
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

// FilterSignature restricts the browser to entities with exactly mask.
func (eb *EntityBrowser) FilterSignature(mask ecs.ComponentMask) {
	eb.filterMask = &mask
	eb.currentPage = 0
}

// Selected returns the entity picked in the browser, or NilEntity.
func (eb *EntityBrowser) Selected() ecs.Entity {
	return eb.selected
}

func (eb *EntityBrowser) Render(entities *ecs.EntityManager, systems *ecs.SystemManager) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.refresh(entities, systems)
	if !entities.IsValid(eb.selected) {
		eb.selected = ecs.NilEntity
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterMask = nil
	}

	filtered := eb.filtered()
	pages := max(1, (len(filtered)+eb.maxEntitiesPerPage-1)/eb.maxEntitiesPerPage)
	eb.currentPage = min(eb.currentPage, pages-1)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Mask")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Systems")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sort()
			sortSpecs.SetSpecsDirty(false)
		}

		start := eb.currentPage * eb.maxEntitiesPerPage
		end := min(start+eb.maxEntitiesPerPage, len(filtered))
		for _, info := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(info.ID.String(), eb.selected == info.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = info.ID
			}

			imgui.TableNextColumn()
			imgui.Text(info.Mask.String())

			imgui.TableNextColumn()
			imgui.Text(strings.Join(info.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Systems))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, pages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < pages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func (eb *EntityBrowser) refresh(entities *ecs.EntityManager, systems *ecs.SystemManager) {
	eb.age++
	if eb.lastCount == entities.Count() && eb.age < browserRefreshInterval {
		return
	}
	eb.entities = collectEntities(entities, systems)
	eb.lastCount = entities.Count()
	eb.age = 0
	eb.sort()
}

func (eb *EntityBrowser) sort() {
	slices.SortStableFunc(eb.entities, func(a, b EntityInfo) int {
		var c int
		switch eb.sortColumn {
		case 1:
			c = slices.Compare(a.Mask[:], b.Mask[:])
		case 2:
			c = cmp.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		case 3:
			c = cmp.Compare(a.Systems, b.Systems)
		}
		if c == 0 {
			c = cmp.Compare(a.ID.Index(), b.ID.Index())
		}
		if !eb.sortAscending {
			return -c
		}
		return c
	})
}

func (eb *EntityBrowser) filtered() []EntityInfo {
	if eb.filterText == "" && eb.filterMask == nil {
		return eb.entities
	}

	out := make([]EntityInfo, 0, len(eb.entities))
	for _, info := range eb.entities {
		if eb.filterMask != nil && info.Mask != *eb.filterMask {
			continue
		}
		if !info.matchesFilter(eb.filterText) {
			continue
		}
		out = append(out, info)
	}
	return out
}
