// Package opengltest provides a recording opengl.Device for tests that run
// without a GL context. Programs are "compiled" by reading their uniform
// blocks, samplers and subroutines out of the GLSL source, and blocks are laid
// out with std140 rules.
package opengltest

import (
	"errors"
	"fmt"
	"sort"

	"cloudsim/core"
	"cloudsim/internal/opengl"
	"cloudsim/math"
	"cloudsim/scene"
)

const (
	statusComplete   opengl.FramebufferStatus = 0x8CD5
	statusIncomplete opengl.FramebufferStatus = 0x8CD6
)

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// Program is a fake linked program.
type Program struct {
	ID          uint32
	Linked      bool
	Blocks      []*Block
	Samplers    map[string]int32
	Subroutines []string

	overrides  map[string]opengl.UniformInfo
	sizeFix    map[string]int
	blockBinds map[uint32]uint32
}

// Device records every call and keeps enough state to answer queries.
type Device struct {
	Calls []Call

	// CompileError, when set, is returned by the next CompileProgram.
	CompileError error
	// IncompleteFramebuffer makes NewFramebuffer report an incomplete status.
	IncompleteFramebuffer bool
	// Pixel is the RGBA value ReadPixels fills every pixel with.
	Pixel [4]byte

	Programs map[uint32]*Program
	Buffers  map[uint32][]byte
	// BufferBindings maps a binding point to the buffer bound there.
	BufferBindings map[uint32]uint32

	nextID uint32
	live   map[uint32]string
}

var _ opengl.Device = (*Device)(nil)

func New() *Device {
	return &Device{
		Programs:       map[uint32]*Program{},
		Buffers:        map[uint32][]byte{},
		BufferBindings: map[uint32]uint32{},
		live:           map[uint32]string{},
		Pixel:          [4]byte{0, 191, 254, 255},
	}
}

func (d *Device) record(op string, args ...any) {
	d.Calls = append(d.Calls, Call{Op: op, Args: args})
}

func (d *Device) alloc(kind string) uint32 {
	d.nextID++
	d.live[d.nextID] = kind
	return d.nextID
}

func (d *Device) free(id uint32, kind string) {
	if d.live[id] == kind {
		delete(d.live, id)
	}
}

// Ops returns the recorded operation names in order.
func (d *Device) Ops() []string {
	ops := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		ops[i] = c.Op
	}
	return ops
}

// CallsTo returns the recorded calls with the given operation name.
func (d *Device) CallsTo(op string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the call log.
func (d *Device) Reset() {
	d.Calls = nil
}

// Live lists the kinds of objects created and not yet deleted, sorted.
func (d *Device) Live() []string {
	var kinds []string
	for _, k := range d.live {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ── Programs ──────────────────────────────────────────────────────────────────

func (d *Device) CompileProgram(vertSrc, fragSrc string) (uint32, error) {
	d.record("CompileProgram")
	if err := d.CompileError; err != nil {
		d.CompileError = nil
		return 0, err
	}
	blocks, err := parseBlocks(vertSrc, fragSrc)
	if err != nil {
		return 0, fmt.Errorf("link failed: %w", err)
	}
	p := &Program{
		ID:          d.alloc("program"),
		Linked:      true,
		Blocks:      blocks,
		Samplers:    map[string]int32{},
		Subroutines: parseSubroutines(fragSrc),
		overrides:   map[string]opengl.UniformInfo{},
		sizeFix:     map[string]int{},
		blockBinds:  map[uint32]uint32{},
	}
	for _, s := range parseSamplers(vertSrc, fragSrc) {
		p.Samplers[s] = -1
	}
	d.Programs[p.ID] = p
	return p.ID, nil
}

// AddUnlinkedProgram registers a program object whose link failed.
func (d *Device) AddUnlinkedProgram() uint32 {
	p := &Program{ID: d.alloc("program"), Samplers: map[string]int32{}}
	d.Programs[p.ID] = p
	return p.ID
}

// OverrideLayout makes UniformLayout report info for name in prog.
func (d *Device) OverrideLayout(prog uint32, name string, info opengl.UniformInfo) {
	d.Programs[prog].overrides[name] = info
}

// OverrideBlockSize makes UniformBlockSize report size for the named block.
func (d *Device) OverrideBlockSize(prog uint32, block string, size int) {
	d.Programs[prog].sizeFix[block] = size
}

// BlockBinding returns the binding point assigned to a block of prog.
func (d *Device) BlockBinding(prog uint32, block string) (uint32, bool) {
	p := d.Programs[prog]
	for i, b := range p.Blocks {
		if b.Name == block {
			binding, ok := p.blockBinds[uint32(i)]
			return binding, ok
		}
	}
	return 0, false
}

func (d *Device) ProgramLinked(prog uint32) bool {
	p, ok := d.Programs[prog]
	return ok && p.Linked
}

func (d *Device) UseProgram(prog uint32) {
	d.record("UseProgram", prog)
}

func (d *Device) DeleteProgram(prog uint32) {
	d.record("DeleteProgram", prog)
	d.free(prog, "program")
	delete(d.Programs, prog)
}

func (d *Device) SetSampler(prog uint32, name string, unit int32) {
	d.record("SetSampler", prog, name, unit)
	if p, ok := d.Programs[prog]; ok {
		if _, declared := p.Samplers[name]; declared {
			p.Samplers[name] = unit
		}
	}
}

// ── Uniform blocks ────────────────────────────────────────────────────────────

func (d *Device) UniformBlockIndex(prog uint32, name string) uint32 {
	if p, ok := d.Programs[prog]; ok {
		for i, b := range p.Blocks {
			if b.Name == name {
				return uint32(i)
			}
		}
	}
	return opengl.InvalidIndex
}

func (d *Device) UniformBlockSize(prog, block uint32) int {
	p, ok := d.Programs[prog]
	if !ok || int(block) >= len(p.Blocks) {
		return 0
	}
	b := p.Blocks[block]
	if size, ok := p.sizeFix[b.Name]; ok {
		return size
	}
	return b.Size
}

func (d *Device) UniformLayout(prog uint32, name string) opengl.UniformInfo {
	p, ok := d.Programs[prog]
	if !ok {
		return opengl.UniformInfo{Block: opengl.InvalidIndex, Offset: -1}
	}
	if info, ok := p.overrides[name]; ok {
		return info
	}
	for i, b := range p.Blocks {
		if m, ok := b.member(name); ok {
			return opengl.UniformInfo{
				Block:        uint32(i),
				Offset:       m.Offset,
				Size:         m.Count,
				ArrayStride:  m.ArrayStride,
				MatrixStride: m.MatrixStride,
			}
		}
	}
	return opengl.UniformInfo{Block: opengl.InvalidIndex, Offset: -1}
}

func (d *Device) UniformBlockBinding(prog, block, binding uint32) {
	d.record("UniformBlockBinding", prog, block, binding)
	if p, ok := d.Programs[prog]; ok {
		p.blockBinds[block] = binding
	}
}

func (d *Device) NewUniformBuffer(size int) uint32 {
	id := d.alloc("buffer")
	d.record("NewUniformBuffer", size)
	d.Buffers[id] = make([]byte, size)
	return id
}

func (d *Device) BindBufferBase(binding, buffer uint32) {
	d.record("BindBufferBase", binding, buffer)
	d.BufferBindings[binding] = buffer
}

func (d *Device) UploadUniformBuffer(buffer uint32, data []byte) {
	d.record("UploadUniformBuffer", buffer, len(data))
	d.Buffers[buffer] = append([]byte(nil), data...)
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.record("DeleteBuffer", buffer)
	d.free(buffer, "buffer")
	delete(d.Buffers, buffer)
}

// ── Subroutines ───────────────────────────────────────────────────────────────

func (d *Device) SubroutineIndex(prog uint32, name string) uint32 {
	if p, ok := d.Programs[prog]; ok {
		for i, s := range p.Subroutines {
			if s == name {
				return uint32(i)
			}
		}
	}
	return opengl.InvalidIndex
}

func (d *Device) UniformSubroutines(indices []uint32) {
	d.record("UniformSubroutines", append([]uint32(nil), indices...))
}

// ── Geometry ──────────────────────────────────────────────────────────────────

func (d *Device) UploadMesh(vertices []core.Vertex, indices []uint32) (uint32, []uint32) {
	vao := d.alloc("vertex array")
	bufs := []uint32{d.alloc("buffer"), d.alloc("buffer")}
	d.record("UploadMesh", vao, len(vertices), len(indices))
	return vao, bufs
}

func (d *Device) UploadQuad(positions []math.Vec3, texCoords []math.Vec2) (uint32, []uint32) {
	vao := d.alloc("vertex array")
	bufs := []uint32{d.alloc("buffer"), d.alloc("buffer")}
	d.record("UploadQuad", vao, len(positions), len(texCoords))
	return vao, bufs
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.record("DeleteVertexArray", vao)
	d.free(vao, "vertex array")
}

func (d *Device) DrawElements(vao uint32, mode scene.DrawMode, count int32) {
	d.record("DrawElements", vao, mode, count)
}

func (d *Device) DrawArrays(vao uint32, mode scene.DrawMode, count int32) {
	d.record("DrawArrays", vao, mode, count)
}

// ── Textures & framebuffers ───────────────────────────────────────────────────

func (d *Device) NewColorTexture(width, height int) uint32 {
	id := d.alloc("texture")
	d.record("NewColorTexture", width, height)
	return id
}

func (d *Device) NewDepthTexture(width, height int) uint32 {
	id := d.alloc("texture")
	d.record("NewDepthTexture", width, height)
	return id
}

func (d *Device) DeleteTexture(tex uint32) {
	d.record("DeleteTexture", tex)
	d.free(tex, "texture")
}

func (d *Device) BindTexture(unit, tex uint32) {
	d.record("BindTexture", unit, tex)
}

func (d *Device) NewFramebuffer(color, depth uint32) (uint32, opengl.FramebufferStatus) {
	id := d.alloc("framebuffer")
	d.record("NewFramebuffer", color, depth)
	if d.IncompleteFramebuffer {
		return id, statusIncomplete
	}
	return id, statusComplete
}

func (d *Device) FramebufferComplete(status opengl.FramebufferStatus) bool {
	return status == statusComplete
}

func (d *Device) BindFramebuffer(fbo uint32) {
	d.record("BindFramebuffer", fbo)
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	d.record("DeleteFramebuffer", fbo)
	d.free(fbo, "framebuffer")
}

// ── Fixed-function state ──────────────────────────────────────────────────────

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
}

func (d *Device) ClearColor(c core.Color) {
	d.record("ClearColor", c)
}

func (d *Device) Clear(color, depth bool) {
	d.record("Clear", color, depth)
}

func (d *Device) SetDepthTest(enabled bool) {
	d.record("SetDepthTest", enabled)
}

func (d *Device) ReadPixels(x, y, width, height int32) []byte {
	d.record("ReadPixels", x, y, width, height)
	pix := make([]byte, int(width)*int(height)*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], d.Pixel[:])
	}
	return pix
}

func (d *Device) Info() opengl.Info {
	return opengl.Info{
		Vendor:      "opengltest",
		Renderer:    "recording device",
		Version:     "4.1 fake",
		GLSLVersion: "4.10",
		Major:       4,
		Minor:       1,
	}
}

// ErrCompile is a ready-made compile failure for CompileError.
var ErrCompile = errors.New("compile failed: 0:1: syntax error")
