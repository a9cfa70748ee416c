package sh

import "github.com/go-gl/mathgl/mgl64"

// RotationMatrix returns the light rotation for Euler angles x, y, z in
// radians, composed intrinsically as Rx(x) * Ry(y) * Rz(z).
//
// Angles are not wrapped: any real value is accepted and, since the
// elemental rotations are periodic, x and x+2π yield the same matrix up to
// rounding.
func RotationMatrix(x, y, z float64) mgl64.Mat3 {
	return mgl64.Rotate3DX(x).Mul3(mgl64.Rotate3DY(y)).Mul3(mgl64.Rotate3DZ(z))
}

// Rotate spins the environment encoded by c by r, so that
// Eval(Rotate(c, r), ω) == Eval(c, rᵀω).
//
// The frame is rotated rather than the individual coefficients: band 1 is
// handled as the vector (x, y, z) it weights, band 2 as the traceless
// quadratic form Q with L₂(ω) = ωᵀQω, which maps to r·Q·rᵀ.
func Rotate(c Coefficients, r mgl64.Mat3) Coefficients {
	if r == mgl64.Ident3() {
		return c
	}

	var out Coefficients
	out[0] = c[0]

	rt := r.Transpose()
	for ch := 0; ch < 3; ch++ {
		v := r.Mul3x1(mgl64.Vec3{c[3][ch], c[1][ch], c[2][ch]})
		out[1][ch] = v[1]
		out[2][ch] = v[2]
		out[3][ch] = v[0]

		q := r.Mul3(quadraticForm(c, ch)).Mul3(rt)
		fromQuadraticForm(&out, ch, q)
	}
	return out
}

// quadraticForm packs the band 2 coefficients of one channel into the
// symmetric traceless matrix Q (column-major, rows/cols x, y, z).
func quadraticForm(c Coefficients, ch int) mgl64.Mat3 {
	xy := 0.5 * k2 * c[4][ch]
	yz := 0.5 * k2 * c[5][ch]
	xz := 0.5 * k2 * c[7][ch]
	a := k20 * c[6][ch]
	b := k22 * c[8][ch]

	xx := b - a
	yy := -b - a
	zz := 2 * a

	return mgl64.Mat3{
		xx, xy, xz,
		xy, yy, yz,
		xz, yz, zz,
	}
}

func fromQuadraticForm(out *Coefficients, ch int, q mgl64.Mat3) {
	out[4][ch] = 2 * q.At(0, 1) / k2
	out[5][ch] = 2 * q.At(1, 2) / k2
	out[7][ch] = 2 * q.At(0, 2) / k2
	out[6][ch] = q.At(2, 2) / (2 * k20)
	out[8][ch] = (q.At(0, 0) - q.At(1, 1)) / (2 * k22)
}
