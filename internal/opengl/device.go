package opengl

import (
	"cloudsim/core"
	"cloudsim/math"
	"cloudsim/scene"
)

// InvalidIndex is returned by index queries for names the program does not
// declare (GL_INVALID_INDEX).
const InvalidIndex = ^uint32(0)

// UniformInfo is the reflected placement of one uniform inside its block.
// Offset is -1 when the program does not know the name. Size is the array
// length, 1 for a non-array uniform.
type UniformInfo struct {
	Block        uint32
	Offset       int
	Size         int
	ArrayStride  int
	MatrixStride int
}

// FramebufferStatus is the result of a completeness check.
type FramebufferStatus uint32

// Info describes the active context, as printed at startup.
type Info struct {
	Vendor      string
	Renderer    string
	Version     string
	GLSLVersion string
	Major       int32
	Minor       int32
}

// Device is the slice of the graphics API the renderer issues calls against.
// GLDevice forwards to OpenGL; opengltest.Device records calls for tests.
// All methods must be called from the thread that owns the context.
type Device interface {
	// Programs
	CompileProgram(vertSrc, fragSrc string) (uint32, error)
	ProgramLinked(prog uint32) bool
	UseProgram(prog uint32)
	DeleteProgram(prog uint32)
	SetSampler(prog uint32, name string, unit int32)

	// Uniform block reflection and storage
	UniformBlockIndex(prog uint32, name string) uint32
	UniformBlockSize(prog, block uint32) int
	UniformLayout(prog uint32, name string) UniformInfo
	UniformBlockBinding(prog, block, binding uint32)
	NewUniformBuffer(size int) uint32
	BindBufferBase(binding, buffer uint32)
	UploadUniformBuffer(buffer uint32, data []byte)
	DeleteBuffer(buffer uint32)

	// Subroutines (fragment stage)
	SubroutineIndex(prog uint32, name string) uint32
	UniformSubroutines(indices []uint32)

	// Geometry
	UploadMesh(vertices []core.Vertex, indices []uint32) (vao uint32, buffers []uint32)
	UploadQuad(positions []math.Vec3, texCoords []math.Vec2) (vao uint32, buffers []uint32)
	DeleteVertexArray(vao uint32)
	DrawElements(vao uint32, mode scene.DrawMode, count int32)
	DrawArrays(vao uint32, mode scene.DrawMode, count int32)

	// Textures and framebuffers
	NewColorTexture(width, height int) uint32
	NewDepthTexture(width, height int) uint32
	DeleteTexture(tex uint32)
	BindTexture(unit, tex uint32)
	NewFramebuffer(color, depth uint32) (uint32, FramebufferStatus)
	FramebufferComplete(status FramebufferStatus) bool
	BindFramebuffer(fbo uint32)
	DeleteFramebuffer(fbo uint32)

	// Fixed-function state
	Viewport(x, y, width, height int32)
	ClearColor(c core.Color)
	Clear(color, depth bool)
	SetDepthTest(enabled bool)

	ReadPixels(x, y, width, height int32) []byte
	Info() Info
}
