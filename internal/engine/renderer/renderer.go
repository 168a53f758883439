// Package renderer uploads built mesh resources to OpenGL and draws them
// one submesh at a time.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/bifrost/internal/engine/mesh"
	"github.com/Faultbox/bifrost/internal/engine/shader"
	"github.com/Faultbox/bifrost/internal/logger"
)

// Interleaved vertex layout: position(3) normal(3) uv0(2) uv1(2) color(4)
// tangent(4), all float32.
const vertexStride = 18 * 4

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	VSync  bool
}

// Renderer owns the GL state for mesh preview rendering.
type Renderer struct {
	config  Config
	program uint32

	uniformMVP   int32
	uniformModel int32
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := shader.CompileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.program = program
	r.uniformMVP = shader.GetUniform(program, "uMVP")
	r.uniformModel = shader.GetUniform(program, "uModel")

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(r.program)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// GPUMesh is an uploaded mesh: one interleaved vertex buffer, one index
// buffer and the per-submesh draw ranges.
type GPUMesh struct {
	vao uint32
	vbo uint32
	ebo uint32

	submeshes []gltfSubmesh
	bounds    mesh.Bounds
}

type gltfSubmesh struct {
	offset   int32 // first index
	count    int32
	material mesh.MaterialHandle
}

// Bounds returns the uploaded mesh's bounding volume.
func (m *GPUMesh) Bounds() mesh.Bounds { return m.bounds }

// UploadMesh interleaves a build result into a VAO/VBO/EBO triple. The
// result's buffers are read only; the GPU copy is independent.
func (r *Renderer) UploadMesh(res *mesh.BuildResult) (*GPUMesh, error) {
	if len(res.Vertices) == 0 || len(res.Indices) == 0 {
		return nil, fmt.Errorf("mesh %q has no drawable geometry", res.Name)
	}

	interleaved := make([]float32, 0, len(res.Vertices)*18)
	for i, v := range res.Vertices {
		interleaved = append(interleaved, v.Position[0], v.Position[1], v.Position[2])
		interleaved = append(interleaved, v.Normal[0], v.Normal[1], v.Normal[2])
		interleaved = append(interleaved, v.UV0[0], v.UV0[1])
		interleaved = append(interleaved, v.UV1[0], v.UV1[1])
		interleaved = append(interleaved, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
		tan := [4]float32{1, 0, 0, 1}
		if i < len(res.Tangents) {
			tan = res.Tangents[i]
		}
		interleaved = append(interleaved, tan[0], tan[1], tan[2], tan[3])
	}

	m := &GPUMesh{bounds: res.Bounds}
	for i, sm := range res.Submeshes {
		var handle mesh.MaterialHandle
		if i < len(res.Materials) {
			handle = res.Materials[i]
		}
		m.submeshes = append(m.submeshes, gltfSubmesh{
			offset:   sm.IndexOffset,
			count:    sm.IndexCount,
			material: handle,
		})
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, unsafe.Pointer(&interleaved[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(res.Indices)*4, unsafe.Pointer(&res.Indices[0]), gl.STATIC_DRAW)

	// Position (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, nil)
	gl.EnableVertexAttribArray(0)
	// Normal (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	// UV0 (location = 2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(6*4)))
	gl.EnableVertexAttribArray(2)
	// UV1 (location = 3)
	gl.VertexAttribPointer(3, 2, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(8*4)))
	gl.EnableVertexAttribArray(3)
	// Color (location = 4)
	gl.VertexAttribPointer(4, 4, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(10*4)))
	gl.EnableVertexAttribArray(4)
	// Tangent (location = 5)
	gl.VertexAttribPointer(5, 4, gl.FLOAT, false, vertexStride, unsafe.Pointer(uintptr(14*4)))
	gl.EnableVertexAttribArray(5)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	logger.Debug("mesh uploaded",
		zap.String("mesh", res.Name),
		zap.Uint32("vao", m.vao),
		zap.Int("vertices", len(res.Vertices)),
		zap.Int("indices", len(res.Indices)),
		zap.Int("submeshes", len(m.submeshes)),
	)
	return m, nil
}

// DrawMesh issues one draw call per submesh.
func (r *Renderer) DrawMesh(m *GPUMesh, mvp, model mgl32.Mat4) {
	gl.UniformMatrix4fv(r.uniformMVP, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.uniformModel, 1, false, &model[0])

	gl.BindVertexArray(m.vao)
	for _, sm := range m.submeshes {
		gl.DrawElements(gl.TRIANGLES, sm.count, gl.UNSIGNED_INT,
			unsafe.Pointer(uintptr(sm.offset)*4))
	}
	gl.BindVertexArray(0)
}

// DeleteMesh releases the mesh's GL objects.
func (r *Renderer) DeleteMesh(m *GPUMesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV0;
layout (location = 3) in vec2 aUV1;
layout (location = 4) in vec4 aColor;
layout (location = 5) in vec4 aTangent;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec4 vColor;
out vec2 vUV;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vNormal = mat3(uModel) * aNormal;
	vColor = aColor;
	vUV = aUV0;
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec4 vColor;
in vec2 vUV;

out vec4 FragColor;

void main() {
	vec3 lightDir = normalize(vec3(0.4, 0.8, 0.5));
	float diffuse = max(dot(normalize(vNormal), lightDir), 0.0);
	vec3 shade = vColor.rgb * (0.25 + 0.75 * diffuse);
	FragColor = vec4(shade, vColor.a);
}
`
