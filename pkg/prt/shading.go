package prt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/prt-relight/pkg/sh"
)

// Mode selects what the shading engine outputs.
type Mode int

const (
	// ModeColor modulates transferred light by the vertex colour.
	ModeColor Mode = iota
	// ModeLight outputs transferred light only, ignoring vertex colour.
	ModeLight
)

// String returns the mode name used in config files and flags.
func (m Mode) String() string {
	switch m {
	case ModeColor:
		return "color"
	case ModeLight:
		return "light"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeColor || m == ModeLight
}

// ParseMode parses "color" or "light".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "color", "colour", "":
		return ModeColor, nil
	case "light":
		return ModeLight, nil
	}
	return ModeColor, fmt.Errorf("%w: unknown shading mode %q", ErrMalformedInput, s)
}

// MarshalYAML encodes the mode by name.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML decodes a mode name.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Radiance returns the transferred radiance Σ t[i]·light[i].
func Radiance(t Transfer, light sh.Coefficients) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range light {
		out = out.Add(light[i].Mul(t[i]))
	}
	return out
}

// Shade computes the colour of one vertex lit by light spun by rotation.
// Output is not clamped.
func Shade(t Transfer, albedo mgl64.Vec3, light sh.Coefficients, rotation mgl64.Mat3, mode Mode) (mgl64.Vec3, error) {
	return ShadeUnrotated(t, albedo, sh.Rotate(light, rotation), mode)
}

// ShadeUnrotated is Shade with the light used as given.
func ShadeUnrotated(t Transfer, albedo mgl64.Vec3, light sh.Coefficients, mode Mode) (mgl64.Vec3, error) {
	return applyMode(Radiance(t, light), albedo, mode)
}

func applyMode(radiance, albedo mgl64.Vec3, mode Mode) (mgl64.Vec3, error) {
	switch mode {
	case ModeLight:
		return radiance, nil
	case ModeColor:
		return mgl64.Vec3{radiance[0] * albedo[0], radiance[1] * albedo[1], radiance[2] * albedo[2]}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("%w: unknown shading mode %d", ErrMalformedInput, int(mode))
}

// ErrNotPrepared is returned by Engine when no light has been prepared.
var ErrNotPrepared = errors.New("prt: engine not prepared")

// Engine shades whole assets. The light is rotated once in Prepare and then
// reused for every vertex of the frame.
type Engine struct {
	light    sh.Coefficients
	mode     Mode
	prepared bool
}

// NewEngine creates an engine with no light.
func NewEngine() *Engine {
	return &Engine{}
}

// Prepare sets the light, rotation and mode for subsequent shading.
// Nothing from a previous Prepare call is retained.
func (e *Engine) Prepare(light sh.Coefficients, rotation mgl64.Mat3, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown shading mode %d", ErrMalformedInput, int(mode))
	}
	e.light = sh.Rotate(light, rotation)
	e.mode = mode
	e.prepared = true
	return nil
}

// Mode returns the prepared shading mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Light returns the prepared, already rotated light.
func (e *Engine) Light() sh.Coefficients {
	return e.light
}

// ShadeAsset writes 3N float32 colours for a into dst, growing it as needed,
// and returns the filled slice.
//
// Color mode output is computed as the float32 Light mode output multiplied
// by the vertex colour, so the two modes agree exactly.
func (e *Engine) ShadeAsset(a *Asset, dst []float32) ([]float32, error) {
	if !e.prepared {
		return dst, ErrNotPrepared
	}
	if a == nil {
		return dst, fmt.Errorf("%w: nil asset", ErrMalformedInput)
	}
	n := len(a.Positions)
	if n%3 != 0 || len(a.Colors) != n || len(a.PRT1) != n || len(a.PRT2) != n || len(a.PRT3) != n {
		return dst, fmt.Errorf("%w: asset %q has mismatched per-vertex arrays", ErrMalformedInput, a.ID)
	}

	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for v := 0; v < n/3; v++ {
		r := Radiance(a.Transfer(v), e.light)
		o := v * 3
		for k := 0; k < 3; k++ {
			lit := float32(r[k])
			if e.mode == ModeColor {
				lit *= a.Colors[o+k]
			}
			dst[o+k] = lit
		}
	}
	return dst, nil
}
