package debugui

import (
	"fmt"
	"slices"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenecs/ecs"
)

type PerformanceStats struct {
	frameHistory []float32
	frameIndex   int
	frames       int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		frameHistory: make([]float32, historyFrames),
	}
}

// record adds a frame time and returns the average over the recorded history in ms.
func (ps *PerformanceStats) record(dt time.Duration) float32 {
	ps.frameHistory[ps.frameIndex] = float32(dt.Seconds() * 1000)
	ps.frameIndex = (ps.frameIndex + 1) % len(ps.frameHistory)
	ps.frames = min(ps.frames+1, len(ps.frameHistory))

	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.frames)
}

func (ps *PerformanceStats) Render(entities *ecs.EntityManager, systems *ecs.SystemManager, dt time.Duration) {
	avgFrameTime := ps.record(dt)

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := entities.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d alive, %d slots, %d free", stats.Alive, stats.Capacity, stats.Free))
	imgui.Text(fmt.Sprintf("Component Types: %d", stats.ComponentTypes))

	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	report := systems.Stats()
	if imgui.TreeNodeStr(fmt.Sprintf("Systems (%d)", report.SystemCount)) {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Entities")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, sys := range report.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				if sys.Active {
					imgui.Text(sys.Name)
				} else {
					imgui.TextDisabled(sys.Name + " (inactive)")
				}
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.EntityCount))
				imgui.TableNextColumn()
				imgui.Text(sys.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Component Storage") {
		names := make([]string, 0, len(stats.ComponentCounts))
		for name := range stats.ComponentCounts {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			imgui.BulletText(fmt.Sprintf("%s: %d", name, stats.ComponentCounts[name]))
		}
		imgui.TreePop()
	}

	imgui.End()
}
