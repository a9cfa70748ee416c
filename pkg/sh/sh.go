// Package sh implements order-2 real spherical harmonics lighting: the
// coefficient set, its evaluation, frame rotation and the bundled catalog of
// environment light presets.
package sh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NumCoefficients is the number of basis functions in an order-2 expansion.
const NumCoefficients = 9

var (
	// ErrOutOfRange is returned when a preset index falls outside the catalog.
	ErrOutOfRange = errors.New("sh: index out of range")

	// ErrMalformedInput is returned when coefficient or transfer data does not
	// have the expected shape.
	ErrMalformedInput = errors.New("sh: malformed input")
)

// Basis normalisation constants (Sloan, "Stupid SH Tricks").
var (
	k00 = 0.5 * math.Sqrt(1/math.Pi)
	k1  = math.Sqrt(3 / (4 * math.Pi))
	k2  = 0.5 * math.Sqrt(15/math.Pi)
	k20 = 0.25 * math.Sqrt(5/math.Pi)
	k22 = 0.25 * math.Sqrt(15/math.Pi)
)

// Coefficients is an order-2 SH expansion of RGB radiance.
//
// Index order (constant, linear x3, quadratic x5):
//
//	0: Y00          1: Y1-1 (y)     2: Y10 (z)
//	3: Y11 (x)      4: Y2-2 (xy)    5: Y2-1 (yz)
//	6: Y20 (3z²-1)  7: Y21 (xz)     8: Y22 (x²-y²)
//
// Transfer responses use the same order.
type Coefficients [NumCoefficients]mgl64.Vec3

// FromSlice builds Coefficients from loosely typed RGB triples.
func FromSlice(values [][3]float64) (Coefficients, error) {
	var c Coefficients
	if len(values) != NumCoefficients {
		return c, fmt.Errorf("%w: want %d coefficients, got %d", ErrMalformedInput, NumCoefficients, len(values))
	}
	for i, v := range values {
		c[i] = mgl64.Vec3{v[0], v[1], v[2]}
	}
	return c, nil
}

// DC returns the constant (band 0) coefficient.
func (c Coefficients) DC() mgl64.Vec3 {
	return c[0]
}

// Basis evaluates the nine real SH basis functions at dir.
// dir is expected to be unit length.
func Basis(dir mgl64.Vec3) [NumCoefficients]float64 {
	x, y, z := dir[0], dir[1], dir[2]
	return [NumCoefficients]float64{
		k00,
		k1 * y,
		k1 * z,
		k1 * x,
		k2 * x * y,
		k2 * y * z,
		k20 * (3*z*z - 1),
		k2 * x * z,
		k22 * (x*x - y*y),
	}
}

// Eval reconstructs the radiance encoded by c in direction dir.
func Eval(c Coefficients, dir mgl64.Vec3) mgl64.Vec3 {
	b := Basis(dir)
	var out mgl64.Vec3
	for i := range c {
		out = out.Add(c[i].Mul(b[i]))
	}
	return out
}

// BandEnergy returns the squared norm of each band (0, 1, 2) per channel.
// Rotation leaves every band's energy unchanged.
func BandEnergy(c Coefficients) [3]mgl64.Vec3 {
	var e [3]mgl64.Vec3
	for i := range c {
		band := 2
		switch {
		case i == 0:
			band = 0
		case i < 4:
			band = 1
		}
		sq := mgl64.Vec3{c[i][0] * c[i][0], c[i][1] * c[i][1], c[i][2] * c[i][2]}
		e[band] = e[band].Add(sq)
	}
	return e
}
