package opengl

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"cloudsim/math"
)

var (
	ErrProgramNotLinked = errors.New("program not linked")
	ErrBlockNotFound    = errors.New("uniform block not found")
	ErrFieldNotFound    = errors.New("uniform block field not found")
	ErrFieldOutOfBounds = errors.New("uniform block field out of bounds")
	ErrLayoutMismatch   = errors.New("uniform block layout mismatch")
	ErrFieldType        = errors.New("uniform block field type mismatch")
	ErrDuplicateField   = errors.New("duplicate uniform block field")
	ErrBlockDestroyed   = errors.New("uniform block destroyed")
)

// Binder creates uniform blocks and hands out binding points. Binding points
// only ever increase, so two blocks created by the same binder never share one.
type Binder struct {
	dev  Device
	next uint32
}

func NewBinder(dev Device) *Binder {
	return &Binder{dev: dev}
}

// NextBinding is the binding point the next created block will receive.
func (b *Binder) NextBinding() uint32 {
	return b.next
}

// UniformBlock is a host-side mirror of a GPU uniform block plus the buffer
// backing it. Field placement is reflected from the linked program, so writes
// land where the driver put each member.
type UniformBlock struct {
	Name    string
	Binding uint32

	dev    Device
	buffer uint32
	size   int
	mirror []byte

	order  []string
	fields map[string]*fieldLayout

	destroyed bool
}

// CreateBlock reflects the block called name in every program, validates the
// requested fields against it and binds one shared buffer to a fresh binding
// point in all of them. Layout is taken from the first program; the others must
// agree with it.
func (b *Binder) CreateBlock(name string, fields []Field, programs ...uint32) (*UniformBlock, error) {
	if len(programs) == 0 {
		return nil, fmt.Errorf("block %q: %w: no programs given", name, ErrProgramNotLinked)
	}
	indices := make([]uint32, len(programs))
	for i, prog := range programs {
		if !b.dev.ProgramLinked(prog) {
			return nil, fmt.Errorf("block %q: %w: program %d", name, ErrProgramNotLinked, prog)
		}
		idx := b.dev.UniformBlockIndex(prog, name)
		if idx == InvalidIndex {
			return nil, fmt.Errorf("%w: %q in program %d", ErrBlockNotFound, name, prog)
		}
		indices[i] = idx
	}

	size := b.dev.UniformBlockSize(programs[0], indices[0])
	layouts, err := reflectFields(b.dev, programs[0], indices[0], size, fields)
	if err != nil {
		return nil, fmt.Errorf("block %q: %w", name, err)
	}

	for i := 1; i < len(programs); i++ {
		if s := b.dev.UniformBlockSize(programs[i], indices[i]); s != size {
			return nil, fmt.Errorf("block %q: %w: size %d in program %d, %d in program %d",
				name, ErrLayoutMismatch, size, programs[0], s, programs[i])
		}
		for _, fl := range layouts {
			info := b.dev.UniformLayout(programs[i], fl.Name)
			if info.Block != indices[i] || info.Offset != fl.offset || info.Size != fl.count() ||
				(fl.count() > 1 && info.ArrayStride != fl.arrayStride) ||
				(fl.Type == Mat4 && info.MatrixStride > 0 && info.MatrixStride != fl.matrixStride) {
				return nil, fmt.Errorf("block %q: %w: field %q differs in program %d",
					name, ErrLayoutMismatch, fl.Name, programs[i])
			}
		}
	}

	ub := &UniformBlock{
		Name:    name,
		Binding: b.next,
		dev:     b.dev,
		size:    size,
		mirror:  make([]byte, size),
		order:   make([]string, len(layouts)),
		fields:  make(map[string]*fieldLayout, len(layouts)),
	}
	for i := range layouts {
		ub.order[i] = layouts[i].Name
		ub.fields[layouts[i].Name] = &layouts[i]
	}
	b.next++

	ub.buffer = b.dev.NewUniformBuffer(size)
	for i, prog := range programs {
		b.dev.UniformBlockBinding(prog, indices[i], ub.Binding)
	}
	b.dev.BindBufferBase(ub.Binding, ub.buffer)
	return ub, nil
}

func reflectFields(dev Device, prog, block uint32, size int, fields []Field) ([]fieldLayout, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields requested", ErrFieldNotFound)
	}
	seen := make(map[string]bool, len(fields))
	layouts := make([]fieldLayout, 0, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true

		info := dev.UniformLayout(prog, f.Name)
		if info.Offset >= 0 && info.Block != block {
			// Declared, but in another block or the default block.
			info.Offset = -1
		}
		fl, err := resolve(f, info)
		if err != nil {
			return nil, err
		}
		if fl.end() > size {
			return nil, fmt.Errorf("%w: %q spans [%d, %d) in a %d-byte block",
				ErrFieldOutOfBounds, f.Name, fl.offset, fl.end(), size)
		}
		layouts = append(layouts, fl)
	}

	// No two fields may share bytes.
	sorted := make([]*fieldLayout, len(layouts))
	for i := range layouts {
		sorted[i] = &layouts[i]
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].offset < sorted[j].offset })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].offset < sorted[i-1].end() {
			return nil, fmt.Errorf("%w: %q overlaps %q", ErrLayoutMismatch, sorted[i].Name, sorted[i-1].Name)
		}
	}
	return layouts, nil
}

// Size is the block's byte size as reported by the driver.
func (ub *UniformBlock) Size() int {
	return ub.size
}

// Offsets returns the reflected byte offset of every field, in the order the
// fields were requested.
func (ub *UniformBlock) Offsets() []int {
	out := make([]int, len(ub.order))
	for i, name := range ub.order {
		out[i] = ub.fields[name].offset
	}
	return out
}

// Offset returns the reflected offset of one field.
func (ub *UniformBlock) Offset(name string) (int, bool) {
	fl, ok := ub.fields[name]
	if !ok {
		return -1, false
	}
	return fl.offset, true
}

// Bytes returns a copy of the mirror.
func (ub *UniformBlock) Bytes() []byte {
	out := make([]byte, len(ub.mirror))
	copy(out, ub.mirror)
	return out
}

func (ub *UniformBlock) field(name string, t FieldType) (*fieldLayout, error) {
	if ub.destroyed {
		return nil, fmt.Errorf("block %q: %w", ub.Name, ErrBlockDestroyed)
	}
	fl, ok := ub.fields[name]
	if !ok {
		return nil, fmt.Errorf("block %q: %w: %q", ub.Name, ErrFieldNotFound, name)
	}
	if fl.Type != t {
		return nil, fmt.Errorf("block %q: %w: %q is %v, not %v", ub.Name, ErrFieldType, name, fl.Type, t)
	}
	return fl, nil
}

func (ub *UniformBlock) putFloats(at int, vs ...float32) {
	for i, v := range vs {
		binary.NativeEndian.PutUint32(ub.mirror[at+4*i:], gomath.Float32bits(v))
	}
}

func (ub *UniformBlock) SetFloat(name string, v float32) error {
	fl, err := ub.field(name, Float)
	if err != nil {
		return err
	}
	ub.putFloats(fl.offset, v)
	return nil
}

func (ub *UniformBlock) SetInt(name string, v int32) error {
	fl, err := ub.field(name, Int)
	if err != nil {
		return err
	}
	binary.NativeEndian.PutUint32(ub.mirror[fl.offset:], uint32(v))
	return nil
}

// SetVec3 writes 12 bytes; the padding the driver may place after a vec3 is
// left alone.
func (ub *UniformBlock) SetVec3(name string, v math.Vec3) error {
	fl, err := ub.field(name, Vec3)
	if err != nil {
		return err
	}
	if fl.count() > 1 {
		return fmt.Errorf("block %q: %w: %q is an array, use SetVec3Array", ub.Name, ErrFieldType, name)
	}
	ub.putFloats(fl.offset, v.X, v.Y, v.Z)
	return nil
}

func (ub *UniformBlock) SetVec4(name string, v math.Vec4) error {
	fl, err := ub.field(name, Vec4)
	if err != nil {
		return err
	}
	ub.putFloats(fl.offset, v.X, v.Y, v.Z, v.W)
	return nil
}

// SetMat4 writes the four columns of m at the reflected matrix stride.
func (ub *UniformBlock) SetMat4(name string, m math.Mat4) error {
	fl, err := ub.field(name, Mat4)
	if err != nil {
		return err
	}
	for col := 0; col < 4; col++ {
		ub.putFloats(fl.offset+col*fl.matrixStride, m[col][0], m[col][1], m[col][2], m[col][3])
	}
	return nil
}

// SetVec3Array writes vs starting at element 0. Supplying more elements than
// the array declares is an error; fewer leaves the tail untouched.
func (ub *UniformBlock) SetVec3Array(name string, vs []math.Vec3) error {
	fl, err := ub.field(name, Vec3)
	if err != nil {
		return err
	}
	if len(vs) > fl.count() {
		return fmt.Errorf("block %q: %w: %d elements for %q[%d]",
			ub.Name, ErrFieldOutOfBounds, len(vs), name, fl.count())
	}
	for i, v := range vs {
		ub.putFloats(fl.offset+i*fl.arrayStride, v.X, v.Y, v.Z)
	}
	return nil
}

// Upload pushes the whole mirror to the GPU buffer in one transfer.
func (ub *UniformBlock) Upload() error {
	if ub.destroyed {
		return fmt.Errorf("block %q: %w", ub.Name, ErrBlockDestroyed)
	}
	ub.dev.UploadUniformBuffer(ub.buffer, ub.mirror)
	return nil
}

// Destroy frees the GPU buffer and the mirror. Calling it again does nothing.
func (ub *UniformBlock) Destroy() {
	if ub.destroyed {
		return
	}
	ub.destroyed = true
	ub.dev.DeleteBuffer(ub.buffer)
	ub.buffer = 0
	ub.mirror = nil
}
