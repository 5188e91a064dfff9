package opengl

import (
	"fmt"
	"log"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"cloudsim/core"
	"cloudsim/math"
	"cloudsim/scene"
)

var _ Device = (*GLDevice)(nil)

// GLDevice issues every call to the current OpenGL context.
type GLDevice struct{}

// NewGLDevice loads the OpenGL function pointers.
// Must be called after the GLFW window context is made current.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return &GLDevice{}, nil
}

// ── Programs ──────────────────────────────────────────────────────────────────

func (d *GLDevice) CompileProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(infoLog))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(infoLog, "\x00"))
	}
	log.Printf("[Shader] program %d linked", prog)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(infoLog, "\x00"))
	}
	return shader, nil
}

func (d *GLDevice) ProgramLinked(prog uint32) bool {
	if prog == 0 || !gl.IsProgram(prog) {
		return false
	}
	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (d *GLDevice) UseProgram(prog uint32)    { gl.UseProgram(prog) }
func (d *GLDevice) DeleteProgram(prog uint32) { gl.DeleteProgram(prog) }

func (d *GLDevice) SetSampler(prog uint32, name string, unit int32) {
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str(name+"\x00")), unit)
}

// ── Uniform blocks ────────────────────────────────────────────────────────────

func (d *GLDevice) UniformBlockIndex(prog uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(prog, gl.Str(name+"\x00"))
}

func (d *GLDevice) UniformBlockSize(prog, block uint32) int {
	var size int32
	gl.GetActiveUniformBlockiv(prog, block, gl.UNIFORM_BLOCK_DATA_SIZE, &size)
	return int(size)
}

func (d *GLDevice) UniformLayout(prog uint32, name string) UniformInfo {
	names, free := gl.Strs(name + "\x00")
	defer free()

	var index uint32
	gl.GetUniformIndices(prog, 1, names, &index)
	if index == gl.INVALID_INDEX {
		return UniformInfo{Block: InvalidIndex, Offset: -1}
	}

	var block, offset, size, arrayStride, matrixStride int32
	gl.GetActiveUniformsiv(prog, 1, &index, gl.UNIFORM_BLOCK_INDEX, &block)
	gl.GetActiveUniformsiv(prog, 1, &index, gl.UNIFORM_OFFSET, &offset)
	gl.GetActiveUniformsiv(prog, 1, &index, gl.UNIFORM_SIZE, &size)
	gl.GetActiveUniformsiv(prog, 1, &index, gl.UNIFORM_ARRAY_STRIDE, &arrayStride)
	gl.GetActiveUniformsiv(prog, 1, &index, gl.UNIFORM_MATRIX_STRIDE, &matrixStride)
	return UniformInfo{
		Block:        uint32(block),
		Offset:       int(offset),
		Size:         int(size),
		ArrayStride:  int(arrayStride),
		MatrixStride: int(matrixStride),
	}
}

func (d *GLDevice) UniformBlockBinding(prog, block, binding uint32) {
	gl.UniformBlockBinding(prog, block, binding)
}

func (d *GLDevice) NewUniformBuffer(size int) uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.UNIFORM_BUFFER, buf)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return buf
}

func (d *GLDevice) BindBufferBase(binding, buffer uint32) {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, buffer)
}

func (d *GLDevice) UploadUniformBuffer(buffer uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, buffer)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

func (d *GLDevice) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

// ── Subroutines ───────────────────────────────────────────────────────────────

func (d *GLDevice) SubroutineIndex(prog uint32, name string) uint32 {
	return gl.GetSubroutineIndex(prog, gl.FRAGMENT_SHADER, gl.Str(name+"\x00"))
}

func (d *GLDevice) UniformSubroutines(indices []uint32) {
	if len(indices) == 0 {
		return
	}
	gl.UniformSubroutinesuiv(gl.FRAGMENT_SHADER, int32(len(indices)), &indices[0])
}

// ── Geometry ──────────────────────────────────────────────────────────────────

func (d *GLDevice) UploadMesh(vertices []core.Vertex, indices []uint32) (uint32, []uint32) {
	stride := int32(unsafe.Sizeof(core.Vertex{}))

	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), gl.Ptr(vertices), gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return vao, []uint32{vbo, ebo}
}

func (d *GLDevice) UploadQuad(positions []math.Vec3, texCoords []math.Vec2) (uint32, []uint32) {
	var vao uint32
	bufs := make([]uint32, 2)
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(2, &bufs[0])
	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, bufs[0])
	gl.BufferData(gl.ARRAY_BUFFER, len(positions)*int(unsafe.Sizeof(math.Vec3{})), gl.Ptr(positions), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)

	gl.BindBuffer(gl.ARRAY_BUFFER, bufs[1])
	gl.BufferData(gl.ARRAY_BUFFER, len(texCoords)*int(unsafe.Sizeof(math.Vec2{})), gl.Ptr(texCoords), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 0, nil)

	gl.BindVertexArray(0)
	return vao, bufs
}

func (d *GLDevice) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func glMode(mode scene.DrawMode) uint32 {
	if mode == scene.DrawTriangleStrip {
		return gl.TRIANGLE_STRIP
	}
	return gl.TRIANGLES
}

func (d *GLDevice) DrawElements(vao uint32, mode scene.DrawMode, count int32) {
	gl.BindVertexArray(vao)
	gl.DrawElements(glMode(mode), count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (d *GLDevice) DrawArrays(vao uint32, mode scene.DrawMode, count int32) {
	gl.BindVertexArray(vao)
	gl.DrawArrays(glMode(mode), 0, count)
	gl.BindVertexArray(0)
}

// ── Textures & framebuffers ───────────────────────────────────────────────────

func (d *GLDevice) NewColorTexture(width, height int) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (d *GLDevice) NewDepthTexture(width, height int) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24,
		int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (d *GLDevice) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (d *GLDevice) BindTexture(unit, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (d *GLDevice) NewFramebuffer(color, depth uint32) (uint32, FramebufferStatus) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, depth, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return fbo, FramebufferStatus(status)
}

func (d *GLDevice) FramebufferComplete(status FramebufferStatus) bool {
	return uint32(status) == gl.FRAMEBUFFER_COMPLETE
}

func (d *GLDevice) BindFramebuffer(fbo uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

func (d *GLDevice) DeleteFramebuffer(fbo uint32) {
	gl.DeleteFramebuffers(1, &fbo)
}

// ── Fixed-function state ──────────────────────────────────────────────────────

func (d *GLDevice) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *GLDevice) ClearColor(c core.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
}

func (d *GLDevice) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

func (d *GLDevice) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}

// ReadPixels reads RGBA8 pixels from the bound read framebuffer, bottom row first.
func (d *GLDevice) ReadPixels(x, y, width, height int32) []byte {
	pix := make([]byte, int(width)*int(height)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}

func (d *GLDevice) Info() Info {
	var info Info
	info.Vendor = gl.GoStr(gl.GetString(gl.VENDOR))
	info.Renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	info.Version = gl.GoStr(gl.GetString(gl.VERSION))
	info.GLSLVersion = gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
	gl.GetIntegerv(gl.MAJOR_VERSION, &info.Major)
	gl.GetIntegerv(gl.MINOR_VERSION, &info.Minor)
	return info
}
