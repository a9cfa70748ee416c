package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/prt-relight/internal/app"
	"github.com/Faultbox/prt-relight/internal/session"
)

// Panel draws the lighting controls: model and light pickers, the
// light-only toggle and one 0-360 degree slider per rotation axis.
type Panel struct {
	lightOnly bool
	degrees   [3]float32
	synced    bool
}

// Draw renders the controls inside the current window and returns the
// commands the user issued this frame.
func (p *Panel) Draw(v app.View) []session.Command {
	var cmds []session.Command

	if !p.synced || !imgui.IsAnyItemActive() {
		p.lightOnly = v.LightOnly
		for i, d := range v.RotationDegrees {
			p.degrees[i] = float32(d)
		}
		p.synced = true
	}

	preview := "-"
	if v.ModelIndex >= 0 {
		preview = v.Models[v.ModelIndex].Label
	}
	if imgui.BeginCombo("models", preview) {
		for i, m := range v.Models {
			label := fmt.Sprintf("%s##model%d", m.Label, i)
			if imgui.SelectableBoolV(label, i == v.ModelIndex, 0, imgui.NewVec2(0, 0)) && i != v.ModelIndex {
				cmds = append(cmds, session.SelectModel{ID: m.ID})
			}
		}
		imgui.EndCombo()
	}

	if imgui.BeginCombo("lights", v.Lights[v.Light]) {
		for i, name := range v.Lights {
			if imgui.SelectableBoolV(name, i == v.Light, 0, imgui.NewVec2(0, 0)) && i != v.Light {
				cmds = append(cmds, session.SelectLight{Index: i})
			}
		}
		imgui.EndCombo()
	}

	if imgui.Checkbox("light_color", &p.lightOnly) {
		cmds = append(cmds, session.SetLightOnly{Enabled: p.lightOnly})
	}
	if imgui.IsItemHovered() {
		imgui.SetTooltip("Show transferred light only, without vertex colour")
	}

	imgui.Separator()

	axes := [3]session.Axis{session.AxisX, session.AxisY, session.AxisZ}
	for i, axis := range axes {
		if imgui.SliderFloatV(axis.String(), &p.degrees[i], 0, 360, "%.0f", imgui.SliderFlagsNone) {
			cmds = append(cmds, session.SetRotationDegrees{Axis: axis, Degrees: float64(p.degrees[i])})
		}
	}
	if imgui.Button("Reset rotation") {
		cmds = append(cmds, session.ResetRotation{})
	}

	imgui.Separator()

	switch {
	case v.LoadErr != nil && v.Loading:
		imgui.TextColored(imgui.NewVec4(0.9, 0.35, 0.3, 1), "Load failed")
		imgui.TextWrapped(v.LoadErr.Error())
	case v.Loading:
		imgui.TextDisabled("Loading...")
	}
	imgui.Text(fmt.Sprintf("Vertices: %d", v.Vertices))
	imgui.Text(fmt.Sprintf("Triangles: %d", v.Triangles))

	return cmds
}
