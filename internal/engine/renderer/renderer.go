// Package renderer draws PRT-shaded meshes with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/internal/engine/shader"
	"github.com/Faultbox/prt-relight/internal/logger"
	"github.com/Faultbox/prt-relight/pkg/prt"
)

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uViewProj;

out vec3 vColor;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
	vColor = aColor;
}
`

const fragmentShaderSource = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor, 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
}

// MeshRenderer draws one indexed mesh whose per-vertex colours are computed
// on the CPU and re-uploaded when the lighting changes.
type MeshRenderer struct {
	config  Config
	program *shader.Program
	log     *zap.Logger

	vao, positionVBO, colorVBO, ebo uint32
	indexCount                      int32
	vertexCount                     int
	assetID                         string
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*MeshRenderer, error) {
	r := &MeshRenderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)

	var err error
	r.program, err = shader.New(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.positionVBO)
	gl.GenBuffers(1, &r.colorVBO)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.positionVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.colorVBO)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return r, nil
}

// Close cleans up renderer resources.
func (r *MeshRenderer) Close() {
	r.log.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	for _, b := range []*uint32{&r.positionVBO, &r.colorVBO, &r.ebo} {
		if *b != 0 {
			gl.DeleteBuffers(1, b)
		}
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *MeshRenderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the current viewport aspect ratio.
func (r *MeshRenderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// AssetID returns the id of the uploaded mesh.
func (r *MeshRenderer) AssetID() string {
	return r.assetID
}

// Upload replaces the geometry with a's positions and indices. Colours are
// uploaded separately with UpdateColors.
func (r *MeshRenderer) Upload(a *prt.Asset) {
	gl.BindVertexArray(r.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.positionVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(a.Positions)*4, gl.Ptr(a.Positions), gl.STATIC_DRAW)

	// Allocate the colour store now so UpdateColors can use BufferSubData.
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colorVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(a.Positions)*4, nil, gl.DYNAMIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	if len(a.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(a.Indices)*4, gl.Ptr(a.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.indexCount = int32(len(a.Indices))
	r.vertexCount = a.VertexCount()
	r.assetID = a.ID

	r.log.Debug("mesh uploaded",
		zap.String("model", a.ID),
		zap.Int("vertices", r.vertexCount),
		zap.Int32("indices", r.indexCount))
}

// UpdateColors uploads 3 floats per vertex.
func (r *MeshRenderer) UpdateColors(colors []float32) error {
	if len(colors) != r.vertexCount*3 {
		return fmt.Errorf("colour buffer has %d floats, mesh needs %d", len(colors), r.vertexCount*3)
	}
	if len(colors) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colorVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(colors)*4, unsafe.Pointer(&colors[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Begin clears the current render target.
func (r *MeshRenderer) Begin() {
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders the uploaded mesh.
func (r *MeshRenderer) Draw(viewProj mgl32.Mat4) {
	if r.indexCount == 0 {
		return
	}
	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}
