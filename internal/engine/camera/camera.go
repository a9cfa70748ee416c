// Package camera provides the orbit camera used by the viewers.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Polar    float32 // Angle from +Y, radians
	Azimuth  float32 // Angle around +Y from +Z, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	// Projection
	FOVDegrees float32
	Near       float32
	Far        float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a camera locked to the equator at a fixed distance,
// the way the reference viewer frames its meshes.
func NewOrbitCamera(distance, fovDegrees, near, far float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:        distance,
		Polar:           math.Pi / 2,
		MinDistance:     distance,
		MaxDistance:     distance,
		MinPolar:        math.Pi / 2,
		MaxPolar:        math.Pi / 2,
		FOVDegrees:      fovDegrees,
		Near:            near,
		Far:             far,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sp, cp := math.Sincos(float64(c.Polar))
	sa, ca := math.Sincos(float64(c.Azimuth))
	offset := mgl32.Vec3{
		float32(sp * sa),
		float32(cp),
		float32(sp * ca),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOVDegrees), aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// HandleDrag updates the orbit angles from a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Azimuth -= deltaX * c.DragSensitivity
	c.Polar = clamp(c.Polar-deltaY*c.DragSensitivity, c.MinPolar, c.MaxPolar)

	// Keep azimuth bounded so float precision does not drift over long sessions.
	c.Azimuth = float32(math.Remainder(float64(c.Azimuth), 2*math.Pi))
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Unlock lifts the distance and polar constraints.
func (c *OrbitCamera) Unlock(minDistance, maxDistance float32) {
	c.MinDistance = minDistance
	c.MaxDistance = maxDistance
	c.MinPolar = 0.01
	c.MaxPolar = math.Pi - 0.01
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
