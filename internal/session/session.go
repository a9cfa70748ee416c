// Package session holds the user-facing viewer state: which model and light
// are selected, how the light is rotated and which shading mode is active.
package session

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/prt-relight/pkg/prt"
	"github.com/Faultbox/prt-relight/pkg/sh"
)

// Recompute is a set of invalidations a state change requires.
type Recompute uint8

// RecomputeNone means nothing changed.
const RecomputeNone Recompute = 0

const (
	// RecomputeRotation means the light rotation changed.
	RecomputeRotation Recompute = 1 << iota
	// RecomputeLight means a different preset was selected.
	RecomputeLight
	// RecomputeShading means the shading mode changed.
	RecomputeShading
	// ReloadAsset means a different model was selected.
	ReloadAsset
)

// NeedsShading reports whether vertex colours must be recomputed.
func (r Recompute) NeedsShading() bool {
	return r&(RecomputeRotation|RecomputeLight|RecomputeShading) != 0
}

// Has reports whether every flag in f is set.
func (r Recompute) Has(f Recompute) bool {
	return f != 0 && r&f == f
}

func (r Recompute) String() string {
	if r == RecomputeNone {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		flag Recompute
		name string
	}{
		{RecomputeRotation, "rotation"},
		{RecomputeLight, "light"},
		{RecomputeShading, "shading"},
		{ReloadAsset, "asset"},
	} {
		if r&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// Axis names one rotation component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// State is the current viewer selection. It is owned by the render goroutine.
type State struct {
	Model    string
	Light    int
	Rotation [3]float64 // radians, X then Y then Z
	Mode     prt.Mode

	lights *sh.Library
}

// New creates a state validated against lights.
func New(lights *sh.Library, model string, light int, mode prt.Mode) (*State, error) {
	if lights == nil {
		lights = sh.DefaultLibrary()
	}
	if _, err := lights.Get(light); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown shading mode %d", sh.ErrMalformedInput, int(mode))
	}
	return &State{Model: model, Light: light, Mode: mode, lights: lights}, nil
}

// Lights returns the catalog the state validates against.
func (s *State) Lights() *sh.Library {
	return s.lights
}

// Preset returns the selected light preset.
func (s *State) Preset() sh.Preset {
	p, _ := s.lights.Get(s.Light)
	return p
}

// RotationMatrix returns the light rotation as a matrix.
func (s *State) RotationMatrix() mgl64.Mat3 {
	return sh.RotationMatrix(s.Rotation[0], s.Rotation[1], s.Rotation[2])
}

// RotationDegrees returns the rotation in UI units.
func (s *State) RotationDegrees() [3]float64 {
	var out [3]float64
	for i, r := range s.Rotation {
		out[i] = RadiansToDegrees(r)
	}
	return out
}

// SetModel selects a model by id.
func (s *State) SetModel(id string) Recompute {
	if id == s.Model {
		return RecomputeNone
	}
	s.Model = id
	return ReloadAsset
}

// SetLight selects a preset. Out-of-range indices leave the state untouched.
func (s *State) SetLight(index int) (Recompute, error) {
	if _, err := s.lights.Get(index); err != nil {
		return RecomputeNone, err
	}
	if index == s.Light {
		return RecomputeNone, nil
	}
	s.Light = index
	return RecomputeLight, nil
}

// SetMode changes the shading mode.
func (s *State) SetMode(m prt.Mode) (Recompute, error) {
	if !m.Valid() {
		return RecomputeNone, fmt.Errorf("%w: unknown shading mode %d", sh.ErrMalformedInput, int(m))
	}
	if m == s.Mode {
		return RecomputeNone, nil
	}
	s.Mode = m
	return RecomputeShading, nil
}

// SetRotation replaces all three angles (radians). Angles are kept as given.
func (s *State) SetRotation(x, y, z float64) Recompute {
	r := [3]float64{x, y, z}
	if r == s.Rotation {
		return RecomputeNone
	}
	s.Rotation = r
	return RecomputeRotation
}

// SetAxis replaces one angle (radians).
func (s *State) SetAxis(a Axis, radians float64) (Recompute, error) {
	if a < AxisX || a > AxisZ {
		return RecomputeNone, fmt.Errorf("%w: unknown axis %d", sh.ErrMalformedInput, int(a))
	}
	r := s.Rotation
	r[a] = radians
	return s.SetRotation(r[0], r[1], r[2]), nil
}

// DegreesToRadians converts a slider value.
func DegreesToRadians(deg float64) float64 {
	return deg / 180 * math.Pi
}

// RadiansToDegrees is the inverse of DegreesToRadians.
func RadiansToDegrees(rad float64) float64 {
	return rad / math.Pi * 180
}
