// Package prt implements precomputed radiance transfer shading: per-vertex
// transfer assets and the shading engine that relights them with SH light.
package prt

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/multierr"

	"github.com/Faultbox/prt-relight/pkg/sh"
)

// ErrMalformedInput is returned for transfer data with the wrong shape.
var ErrMalformedInput = sh.ErrMalformedInput

// Transfer is the per-vertex response to each of the nine SH light
// coefficients, in the same order as sh.Coefficients.
type Transfer [sh.NumCoefficients]float64

// TransferFromPacked unpacks the three packed response vectors:
// prt1 holds responses 0-2, prt2 3-5 and prt3 6-8.
func TransferFromPacked(prt1, prt2, prt3 [3]float32) Transfer {
	return Transfer{
		float64(prt1[0]), float64(prt1[1]), float64(prt1[2]),
		float64(prt2[0]), float64(prt2[1]), float64(prt2[2]),
		float64(prt3[0]), float64(prt3[1]), float64(prt3[2]),
	}
}

// TransferFromSlices unpacks responses given as loosely sized slices.
func TransferFromSlices(prt1, prt2, prt3 []float64) (Transfer, error) {
	var t Transfer
	if len(prt1) != 3 || len(prt2) != 3 || len(prt3) != 3 {
		return t, fmt.Errorf("%w: packed transfer vectors must have 3 components, got %d/%d/%d",
			ErrMalformedInput, len(prt1), len(prt2), len(prt3))
	}
	copy(t[0:3], prt1)
	copy(t[3:6], prt2)
	copy(t[6:9], prt3)
	return t, nil
}

// Asset is an immutable mesh with per-vertex PRT data.
//
// All per-vertex arrays are flat float32 triples of identical length 3N;
// Indices holds triangles. Construct with NewAsset.
type Asset struct {
	ID        string
	Positions []float32
	Colors    []float32
	PRT1      []float32
	PRT2      []float32
	PRT3      []float32
	Indices   []uint32
}

// NewAsset validates the arrays and returns the asset.
// Every violated invariant is reported in the returned error.
// The asset holds copies, so callers may reuse their slices.
func NewAsset(id string, positions []float32, indices []uint32, colors, prt1, prt2, prt3 []float32) (*Asset, error) {
	a := &Asset{
		ID:        id,
		Positions: slices.Clone(positions),
		Colors:    slices.Clone(colors),
		PRT1:      slices.Clone(prt1),
		PRT2:      slices.Clone(prt2),
		PRT3:      slices.Clone(prt3),
		Indices:   slices.Clone(indices),
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("asset %q: %w", id, err)
	}
	return a, nil
}

// Validate checks every structural invariant of the asset.
func (a *Asset) Validate() error {
	var err error

	if len(a.Positions)%3 != 0 {
		err = multierr.Append(err, fmt.Errorf("%w: positions length %d is not a multiple of 3", ErrMalformedInput, len(a.Positions)))
	}
	if len(a.Positions) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: no vertices", ErrMalformedInput))
	}

	n := len(a.Positions)
	named := []struct {
		name string
		data []float32
	}{
		{"colors", a.Colors},
		{"prt1", a.PRT1},
		{"prt2", a.PRT2},
		{"prt3", a.PRT3},
	}
	for _, arr := range named {
		if len(arr.data) != n {
			err = multierr.Append(err, fmt.Errorf("%w: %s length %d, want %d", ErrMalformedInput, arr.name, len(arr.data), n))
		}
	}

	if len(a.Indices)%3 != 0 {
		err = multierr.Append(err, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrMalformedInput, len(a.Indices)))
	}
	vertexCount := uint32(n / 3)
	for i, idx := range a.Indices {
		if idx >= vertexCount {
			err = multierr.Append(err, fmt.Errorf("%w: index %d at %d exceeds vertex count %d", ErrMalformedInput, idx, i, vertexCount))
			break
		}
	}

	return err
}

// VertexCount returns N.
func (a *Asset) VertexCount() int {
	return len(a.Positions) / 3
}

// TriangleCount returns the number of indexed triangles.
func (a *Asset) TriangleCount() int {
	return len(a.Indices) / 3
}

// Transfer returns the unpacked transfer responses of vertex i.
func (a *Asset) Transfer(i int) Transfer {
	o := i * 3
	return Transfer{
		float64(a.PRT1[o]), float64(a.PRT1[o+1]), float64(a.PRT1[o+2]),
		float64(a.PRT2[o]), float64(a.PRT2[o+1]), float64(a.PRT2[o+2]),
		float64(a.PRT3[o]), float64(a.PRT3[o+1]), float64(a.PRT3[o+2]),
	}
}

// Albedo returns the intrinsic colour of vertex i.
func (a *Asset) Albedo(i int) mgl64.Vec3 {
	o := i * 3
	return mgl64.Vec3{float64(a.Colors[o]), float64(a.Colors[o+1]), float64(a.Colors[o+2])}
}

// Position returns the position of vertex i.
func (a *Asset) Position(i int) mgl64.Vec3 {
	o := i * 3
	return mgl64.Vec3{float64(a.Positions[o]), float64(a.Positions[o+1]), float64(a.Positions[o+2])}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (a *Asset) Bounds() (lo, hi mgl64.Vec3) {
	if a.VertexCount() == 0 {
		return lo, hi
	}
	lo = a.Position(0)
	hi = lo
	for i := 1; i < a.VertexCount(); i++ {
		p := a.Position(i)
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return lo, hi
}
