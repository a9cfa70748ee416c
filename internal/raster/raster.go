// Package raster renders shaded PRT meshes into images without a GPU. It is
// used by prttool to produce previews.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/prt-relight/pkg/prt"
)

// Rasterizer draws Gouraud-shaded triangles with a depth buffer.
type Rasterizer struct {
	img    *image.RGBA
	zbuf   []float32
	width  int
	height int

	// CullBackFaces skips triangles that are clockwise on screen.
	CullBackFaces bool
}

// New creates a rasterizer with its own target image.
func New(width, height int) *Rasterizer {
	return &Rasterizer{
		img:           image.NewRGBA(image.Rect(0, 0, width, height)),
		zbuf:          make([]float32, width*height),
		width:         width,
		height:        height,
		CullBackFaces: true,
	}
}

// Image returns the render target.
func (r *Rasterizer) Image() *image.RGBA {
	return r.img
}

// Clear fills the target with c and resets depth.
func (r *Rasterizer) Clear(c color.RGBA) {
	for i := 0; i < len(r.img.Pix); i += 4 {
		r.img.Pix[i] = c.R
		r.img.Pix[i+1] = c.G
		r.img.Pix[i+2] = c.B
		r.img.Pix[i+3] = c.A
	}
	if len(r.zbuf) == 0 {
		return
	}
	r.zbuf[0] = math.MaxFloat32
	for i := 1; i < len(r.zbuf); i *= 2 {
		copy(r.zbuf[i:], r.zbuf[:i])
	}
}

// screenVertex is a vertex after projection.
type screenVertex struct {
	x, y, z float32
	invW    float32
	rgb     mgl32.Vec3
}

// DrawMesh draws every triangle of a using colors (3 floats per vertex).
// Colours are clamped to [0, 1] for display only.
func (r *Rasterizer) DrawMesh(a *prt.Asset, colors []float32, viewProj mgl32.Mat4) error {
	if len(colors) != len(a.Positions) {
		return fmt.Errorf("%w: %d colour floats for %d vertices", prt.ErrMalformedInput, len(colors), a.VertexCount())
	}

	verts := make([]screenVertex, a.VertexCount())
	visible := make([]bool, len(verts))
	for i := range verts {
		p := mgl32.Vec4{a.Positions[i*3], a.Positions[i*3+1], a.Positions[i*3+2], 1}
		clip := viewProj.Mul4x1(p)
		if clip.W() <= 0 {
			continue
		}
		visible[i] = true
		inv := 1 / clip.W()
		verts[i] = screenVertex{
			x:    (clip.X()*inv + 1) * 0.5 * float32(r.width),
			y:    (1 - clip.Y()*inv) * 0.5 * float32(r.height),
			z:    clip.Z() * inv,
			invW: inv,
			rgb:  mgl32.Vec3{colors[i*3], colors[i*3+1], colors[i*3+2]},
		}
	}

	for t := 0; t+2 < len(a.Indices); t += 3 {
		i0, i1, i2 := a.Indices[t], a.Indices[t+1], a.Indices[t+2]
		// Near-plane clipping is not implemented; triangles crossing it are dropped.
		if !visible[i0] || !visible[i1] || !visible[i2] {
			continue
		}
		r.drawTriangle(verts[i0], verts[i1], verts[i2])
	}
	return nil
}

func (r *Rasterizer) drawTriangle(v0, v1, v2 screenVertex) {
	area := edge(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area == 0 {
		return
	}
	// Screen y points down, so counter-clockwise in NDC has negative area here.
	if r.CullBackFaces && area > 0 {
		return
	}

	minX := max(0, int(floor3(v0.x, v1.x, v2.x)))
	maxX := min(r.width-1, int(ceil3(v0.x, v1.x, v2.x)))
	minY := max(0, int(floor3(v0.y, v1.y, v2.y)))
	maxY := min(r.height-1, int(ceil3(v0.y, v1.y, v2.y)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5

			w0 := edge(v1.x, v1.y, v2.x, v2.y, px, py) / area
			w1 := edge(v2.x, v2.y, v0.x, v0.y, px, py) / area
			w2 := edge(v0.x, v0.y, v1.x, v1.y, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*v0.z + w1*v1.z + w2*v2.z
			if z < -1 || z > 1 {
				continue
			}
			idx := y*r.width + x
			if z >= r.zbuf[idx] {
				continue
			}

			// Perspective-correct colour.
			p0, p1, p2 := w0*v0.invW, w1*v1.invW, w2*v2.invW
			sum := p0 + p1 + p2
			if sum == 0 {
				continue
			}
			c := v0.rgb.Mul(p0).Add(v1.rgb.Mul(p1)).Add(v2.rgb.Mul(p2)).Mul(1 / sum)

			r.zbuf[idx] = z
			o := r.img.PixOffset(x, y)
			r.img.Pix[o] = toByte(c[0])
			r.img.Pix[o+1] = toByte(c[1])
			r.img.Pix[o+2] = toByte(c[2])
			r.img.Pix[o+3] = 255
		}
	}
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func toByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

func floor3(a, b, c float32) float32 {
	return float32(math.Floor(float64(min(a, b, c))))
}

func ceil3(a, b, c float32) float32 {
	return float32(math.Ceil(float64(max(a, b, c))))
}
