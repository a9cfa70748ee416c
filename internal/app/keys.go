package app

import (
	"github.com/Faultbox/prt-relight/internal/session"
	"github.com/Faultbox/prt-relight/pkg/prt"
)

// RotateStepDegrees is the light rotation applied per key press.
const RotateStepDegrees = 5

// CommandForKey maps a viewer key to a command. Digits select lights, Tab
// cycles models, M toggles light-only shading, X/Y/Z rotate the light
// (Shift reverses) and R resets the rotation. ok is false for unbound keys.
func (c *Controller) CommandForKey(r rune, shift bool) (cmd session.Command, ok bool) {
	step := float64(RotateStepDegrees)
	if shift {
		step = -step
	}

	switch {
	case r >= '1' && r <= '9':
		idx := int(r - '1')
		if idx >= c.state.Lights().Len() {
			return nil, false
		}
		return session.SelectLight{Index: idx}, true
	case r == '\t':
		return c.NextModel(), true
	case r == 'm':
		return session.SetLightOnly{Enabled: c.state.Mode != prt.ModeLight}, true
	case r == 'x':
		return session.RotateBy{Axis: session.AxisX, Degrees: step}, true
	case r == 'y':
		return session.RotateBy{Axis: session.AxisY, Degrees: step}, true
	case r == 'z':
		return session.RotateBy{Axis: session.AxisZ, Degrees: step}, true
	case r == 'r':
		return session.ResetRotation{}, true
	}
	return nil, false
}
