package opengl

import "fmt"

// FieldType is the GLSL type of a uniform block member.
type FieldType int

const (
	Float FieldType = iota
	Int
	Vec3
	Vec4
	Mat4
)

func (t FieldType) String() string {
	switch t {
	case Float:
		return "float"
	case Int:
		return "int"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	case Mat4:
		return "mat4"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Field declares one member of a uniform block. Count > 1 declares an array.
type Field struct {
	Name  string
	Type  FieldType
	Count int
}

// F is shorthand for a scalar or vector field.
func F(name string, t FieldType) Field {
	return Field{Name: name, Type: t, Count: 1}
}

// Array is shorthand for an array field of n elements.
func Array(name string, t FieldType, n int) Field {
	return Field{Name: name, Type: t, Count: n}
}

func (f Field) count() int {
	if f.Count < 1 {
		return 1
	}
	return f.Count
}

// elemSize is the number of bytes a single element write covers. A mat4
// occupies four columns spaced by the matrix stride, of which only the last
// column's 16 bytes are not followed by padding.
func (f Field) elemSize(matrixStride int) int {
	switch f.Type {
	case Float, Int:
		return 4
	case Vec3:
		return 12
	case Vec4:
		return 16
	case Mat4:
		if matrixStride <= 0 {
			matrixStride = 16
		}
		return 3*matrixStride + 16
	}
	return 0
}

// fieldLayout is a field resolved against a linked program.
type fieldLayout struct {
	Field
	offset       int
	arrayStride  int
	matrixStride int
	width        int
}

// resolve checks the reflected placement of f and computes the byte range a
// write touches: [offset, offset+width).
func resolve(f Field, info UniformInfo) (fieldLayout, error) {
	if info.Offset < 0 {
		return fieldLayout{}, fmt.Errorf("%w: %q", ErrFieldNotFound, f.Name)
	}
	fl := fieldLayout{
		Field:        f,
		offset:       info.Offset,
		arrayStride:  info.ArrayStride,
		matrixStride: info.MatrixStride,
	}
	if fl.Type == Mat4 && fl.matrixStride <= 0 {
		fl.matrixStride = 16
	}
	elem := f.elemSize(fl.matrixStride)
	if elem == 0 {
		return fieldLayout{}, fmt.Errorf("%w: %q has unknown type %v", ErrFieldType, f.Name, f.Type)
	}
	n := f.count()
	if info.Size != n {
		return fieldLayout{}, fmt.Errorf("%w: %q declared with %d elements, program has %d",
			ErrLayoutMismatch, f.Name, n, info.Size)
	}
	if n > 1 && fl.arrayStride < elem {
		return fieldLayout{}, fmt.Errorf("%w: %q array stride %d smaller than element size %d",
			ErrLayoutMismatch, f.Name, fl.arrayStride, elem)
	}
	fl.width = (n-1)*fl.arrayStride + elem
	return fl, nil
}

func (fl *fieldLayout) end() int {
	return fl.offset + fl.width
}
