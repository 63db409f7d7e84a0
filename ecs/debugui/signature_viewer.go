package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenecs/ecs"
)

// SignatureViewer lists the distinct component masks of live entities.
type SignatureViewer struct {
	signatures    []SignatureInfo
	selected      *ecs.ComponentMask
	sortColumn    int
	sortAscending bool
}

func NewSignatureViewer() *SignatureViewer {
	return &SignatureViewer{
		sortColumn:    2,
		sortAscending: false,
	}
}

// Render draws the viewer and reports a signature clicked this frame.
func (sv *SignatureViewer) Render(entities *ecs.EntityManager) (ecs.ComponentMask, bool) {
	var clicked ecs.ComponentMask
	var ok bool

	if !imgui.BeginV("Signatures", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return clicked, false
	}

	sv.signatures = collectSignatures(entities)
	sv.sort()

	maxEntityCount := 0
	for _, sig := range sv.signatures {
		maxEntityCount = max(maxEntityCount, sig.EntityCount)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SignatureTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Mask")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.sortColumn = int(spec.ColumnIndex())
			sv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sv.sort()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, sig := range sv.signatures {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := sv.selected != nil && *sv.selected == sig.Mask
			if imgui.SelectableBoolV(sig.Mask.String(), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				mask := sig.Mask
				sv.selected = &mask
				clicked, ok = mask, true
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(sig.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", sig.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(sig.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked, ok
}

func (sv *SignatureViewer) sort() {
	slices.SortStableFunc(sv.signatures, func(a, b SignatureInfo) int {
		var c int
		switch sv.sortColumn {
		case 0:
			c = slices.Compare(a.Mask[:], b.Mask[:])
		case 1:
			c = cmp.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		default:
			c = cmp.Compare(a.EntityCount, b.EntityCount)
		}
		if !sv.sortAscending {
			return -c
		}
		return c
	})
}
