package session

import (
	"fmt"

	"github.com/Faultbox/prt-relight/pkg/prt"
	"github.com/Faultbox/prt-relight/pkg/sh"
)

// Command is one user intent coming from a front end.
type Command interface {
	apply(s *State) (Recompute, error)
}

// SelectModel switches to another model.
type SelectModel struct{ ID string }

// SelectLight switches to another preset.
type SelectLight struct{ Index int }

// SetShadingMode sets the shading mode directly.
type SetShadingMode struct{ Mode prt.Mode }

// SetLightOnly is the light/colour toggle: true shows light only.
type SetLightOnly struct{ Enabled bool }

// SetRotationDegrees sets one axis from a degree slider.
type SetRotationDegrees struct {
	Axis    Axis
	Degrees float64
}

// SetRotationRadians sets all three angles.
type SetRotationRadians struct{ X, Y, Z float64 }

// RotateBy adds a delta in degrees to one axis.
type RotateBy struct {
	Axis    Axis
	Degrees float64
}

// ResetRotation returns the light to its unrotated orientation.
type ResetRotation struct{}

func (c SelectModel) apply(s *State) (Recompute, error) {
	if c.ID == "" {
		return RecomputeNone, fmt.Errorf("%w: empty model id", sh.ErrMalformedInput)
	}
	return s.SetModel(c.ID), nil
}

func (c SelectLight) apply(s *State) (Recompute, error) { return s.SetLight(c.Index) }

func (c SetShadingMode) apply(s *State) (Recompute, error) { return s.SetMode(c.Mode) }

func (c SetLightOnly) apply(s *State) (Recompute, error) {
	if c.Enabled {
		return s.SetMode(prt.ModeLight)
	}
	return s.SetMode(prt.ModeColor)
}

func (c SetRotationDegrees) apply(s *State) (Recompute, error) {
	return s.SetAxis(c.Axis, DegreesToRadians(c.Degrees))
}

func (c SetRotationRadians) apply(s *State) (Recompute, error) {
	return s.SetRotation(c.X, c.Y, c.Z), nil
}

func (c RotateBy) apply(s *State) (Recompute, error) {
	if c.Axis < AxisX || c.Axis > AxisZ {
		return RecomputeNone, fmt.Errorf("%w: unknown axis %d", sh.ErrMalformedInput, int(c.Axis))
	}
	return s.SetAxis(c.Axis, s.Rotation[c.Axis]+DegreesToRadians(c.Degrees))
}

func (ResetRotation) apply(s *State) (Recompute, error) {
	return s.SetRotation(0, 0, 0), nil
}

// Apply executes cmd and reports what must be recomputed. A failed command
// leaves the state unchanged.
func (s *State) Apply(cmd Command) (Recompute, error) {
	if cmd == nil {
		return RecomputeNone, fmt.Errorf("%w: nil command", sh.ErrMalformedInput)
	}
	return cmd.apply(s)
}

// ApplyAll executes commands in order and merges their recompute sets. It
// stops at the first error.
func (s *State) ApplyAll(cmds ...Command) (Recompute, error) {
	var total Recompute
	for _, c := range cmds {
		r, err := s.Apply(c)
		total |= r
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
