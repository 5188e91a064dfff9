package opengl_test

import (
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"

	"cloudsim/internal/opengl"
	"cloudsim/internal/opengl/opengltest"
	"cloudsim/internal/opengl/shaders"
	"cloudsim/math"
)

const camVert = `#version 410 core
void main() {}
`

const camFrag = `#version 410 core
layout(std140) uniform camData {
    vec3 camPosition;
    vec3 camDirection;
    float camDist;
    float nearClip;
    float farClip;
};
void main() {}
`

// Same members as camFrag, different order.
const camFragReordered = `#version 410 core
layout(std140) uniform camData {
    float camDist;
    vec3 camPosition;
    vec3 camDirection;
    float nearClip;
    float farClip;
};
void main() {}
`

var camFields = []opengl.Field{
	opengl.F("camPosition", opengl.Vec3),
	opengl.F("camDirection", opengl.Vec3),
	opengl.F("camDist", opengl.Float),
	opengl.F("nearClip", opengl.Float),
	opengl.F("farClip", opengl.Float),
}

var cloudFields = []opengl.Field{
	opengl.F("coverage", opengl.Float),
	opengl.F("mainStepCount", opengl.Int),
	opengl.F("lightStepCount", opengl.Int),
	opengl.F("cloudColor", opengl.Vec3),
	opengl.Array("boundingBox", opengl.Vec3, 2),
	opengl.F("cloudScale", opengl.Float),
	opengl.F("cloudOffset", opengl.Vec3),
}

// withField returns fields with the entry of the same name replaced by f.
func withField(fields []opengl.Field, f opengl.Field) []opengl.Field {
	out := make([]opengl.Field, len(fields))
	for i, old := range fields {
		if old.Name == f.Name {
			old = f
		}
		out[i] = old
	}
	return out
}

func compile(t *testing.T, dev *opengltest.Device, vert, frag string) uint32 {
	t.Helper()
	prog, err := dev.CompileProgram(vert, frag)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return prog
}

func cloudProgram(t *testing.T, dev *opengltest.Device) uint32 {
	t.Helper()
	src, err := shaders.Load("")
	if err != nil {
		t.Fatalf("load shaders: %v", err)
	}
	return compile(t, dev, src.CloudVert, src.CloudFrag)
}

func readFloat(b []byte, at int) float32 {
	return gomath.Float32frombits(binary.NativeEndian.Uint32(b[at:]))
}

func TestOffsetsDistinctAndInsideBlock(t *testing.T) {
	dev := opengltest.New()
	prog := cloudProgram(t, dev)

	ub, err := opengl.NewBinder(dev).CreateBlock("cloudData", cloudFields, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	offsets := ub.Offsets()
	if len(offsets) != len(cloudFields) {
		t.Fatalf("expected %d offsets, got %d", len(cloudFields), len(offsets))
	}
	seen := map[int]bool{}
	for i, off := range offsets {
		if off < 0 || off >= ub.Size() {
			t.Errorf("%s: offset %d outside [0, %d)", cloudFields[i].Name, off, ub.Size())
		}
		if seen[off] {
			t.Errorf("%s: offset %d reused", cloudFields[i].Name, off)
		}
		seen[off] = true
	}
	if len(ub.Bytes()) != ub.Size() {
		t.Errorf("mirror is %d bytes, block is %d", len(ub.Bytes()), ub.Size())
	}
}

func TestOffsetsFollowCallerOrder(t *testing.T) {
	dev := opengltest.New()
	prog := compile(t, dev, camVert, camFrag)

	reversed := make([]opengl.Field, len(camFields))
	for i, f := range camFields {
		reversed[len(camFields)-1-i] = f
	}
	ub, err := opengl.NewBinder(dev).CreateBlock("camData", reversed, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	want := []int{36, 32, 28, 16, 0} // std140: farClip, nearClip, camDist, camDirection, camPosition
	got := ub.Offsets()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %s: expected offset %d, got %d", reversed[i].Name, want[i], got[i])
		}
	}
}

func TestBindingPointsStrictlyIncrease(t *testing.T) {
	dev := opengltest.New()
	cloud := cloudProgram(t, dev)
	b := opengl.NewBinder(dev)

	var last int64 = -1
	for _, blk := range []struct {
		name   string
		fields []opengl.Field
	}{
		{"camData", camFields},
		{"cloudData", cloudFields},
		{"lightData", []opengl.Field{opengl.F("lightPosition", opengl.Vec4)}},
	} {
		ub, err := b.CreateBlock(blk.name, blk.fields, cloud)
		if err != nil {
			t.Fatalf("%s: %v", blk.name, err)
		}
		if int64(ub.Binding) <= last {
			t.Errorf("%s: binding %d not greater than %d", blk.name, ub.Binding, last)
		}
		last = int64(ub.Binding)

		if got, ok := dev.BlockBinding(cloud, blk.name); !ok || got != ub.Binding {
			t.Errorf("%s: program block bound to %d, want %d", blk.name, got, ub.Binding)
		}
		if dev.BufferBindings[ub.Binding] == 0 {
			t.Errorf("%s: no buffer at binding %d", blk.name, ub.Binding)
		}
	}
	if b.NextBinding() != 3 {
		t.Errorf("expected next binding 3, got %d", b.NextBinding())
	}
}

func TestFailedCreateDoesNotConsumeBinding(t *testing.T) {
	dev := opengltest.New()
	prog := compile(t, dev, camVert, camFrag)
	b := opengl.NewBinder(dev)

	if _, err := b.CreateBlock("camData", []opengl.Field{opengl.F("nope", opengl.Float)}, prog); err == nil {
		t.Fatal("expected an error")
	}
	ub, err := b.CreateBlock("camData", camFields, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if ub.Binding != 0 {
		t.Errorf("expected binding 0, got %d", ub.Binding)
	}
}

func TestSharedBlockBindsEveryProgram(t *testing.T) {
	dev := opengltest.New()
	a := compile(t, dev, camVert, camFrag)
	b := compile(t, dev, camFrag, camVert)

	ub, err := opengl.NewBinder(dev).CreateBlock("camData", camFields, a, b)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	for _, prog := range []uint32{a, b} {
		if got, ok := dev.BlockBinding(prog, "camData"); !ok || got != ub.Binding {
			t.Errorf("program %d: bound to %d (ok=%v), want %d", prog, got, ok, ub.Binding)
		}
	}
	if n := len(dev.CallsTo("NewUniformBuffer")); n != 1 {
		t.Errorf("expected one buffer for a shared block, got %d", n)
	}
}

func TestCreateBlockErrors(t *testing.T) {
	dev := opengltest.New()
	good := compile(t, dev, camVert, camFrag)
	reordered := compile(t, dev, camVert, camFragReordered)
	unlinked := dev.AddUnlinkedProgram()

	tight := compile(t, dev, camVert, camFrag)
	dev.OverrideBlockSize(tight, "camData", 32)

	clouds := cloudProgram(t, dev)

	bad := compile(t, dev, camVert, camFrag)
	dev.OverrideLayout(bad, "camDist", opengl.UniformInfo{Block: 0, Offset: 20, Size: 1})

	tests := []struct {
		name     string
		block    string
		fields   []opengl.Field
		programs []uint32
		want     error
	}{
		{"no programs", "camData", camFields, nil, opengl.ErrProgramNotLinked},
		{"unlinked", "camData", camFields, []uint32{good, unlinked}, opengl.ErrProgramNotLinked},
		{"missing block", "cloudData", cloudFields, []uint32{good}, opengl.ErrBlockNotFound},
		{"missing field", "camData", append([]opengl.Field{opengl.F("camFov", opengl.Float)}, camFields...), []uint32{good}, opengl.ErrFieldNotFound},
		{"field past end", "camData", camFields, []uint32{tight}, opengl.ErrFieldOutOfBounds},
		{"overlapping fields", "camData", camFields, []uint32{bad}, opengl.ErrLayoutMismatch},
		{"layouts differ", "camData", camFields, []uint32{good, reordered}, opengl.ErrLayoutMismatch},
		{"duplicate field", "camData", append(camFields[:1:1], camFields[0]), []uint32{good}, opengl.ErrDuplicateField},
		{"array declared as scalar", "cloudData", withField(cloudFields, opengl.F("boundingBox", opengl.Vec3)), []uint32{clouds}, opengl.ErrLayoutMismatch},
		{"array too long", "cloudData", withField(cloudFields, opengl.Array("boundingBox", opengl.Vec3, 3)), []uint32{clouds}, opengl.ErrLayoutMismatch},
		{"array too short", "cloudData", withField(cloudFields, opengl.Array("boundingBox", opengl.Vec3, 1)), []uint32{clouds}, opengl.ErrLayoutMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := opengl.NewBinder(dev)
			ub, err := b.CreateBlock(tt.block, tt.fields, tt.programs...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if ub != nil {
				t.Error("expected no block on error")
			}
			if b.NextBinding() != 0 {
				t.Error("failed creation consumed a binding point")
			}
		})
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	dev := opengltest.New()
	prog := cloudProgram(t, dev)
	ub, err := opengl.NewBinder(dev).CreateBlock("cloudData", cloudFields, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	if err := ub.SetFloat("coverage", 0.75); err != nil {
		t.Fatal(err)
	}
	if err := ub.SetInt("mainStepCount", 42); err != nil {
		t.Fatal(err)
	}
	offset := math.Vec3{X: 1.5, Y: -2, Z: 1e-3}
	if err := ub.SetVec3("cloudOffset", offset); err != nil {
		t.Fatal(err)
	}
	box := []math.Vec3{{X: -5, Y: 0, Z: -5}, {X: 5, Y: 10, Z: 5}}
	if err := ub.SetVec3Array("boundingBox", box); err != nil {
		t.Fatal(err)
	}

	b := ub.Bytes()
	at := func(name string) int {
		off, ok := ub.Offset(name)
		if !ok {
			t.Fatalf("no offset for %s", name)
		}
		return off
	}
	if got := readFloat(b, at("coverage")); got != 0.75 {
		t.Errorf("coverage: got %v", got)
	}
	if got := int32(binary.NativeEndian.Uint32(b[at("mainStepCount"):])); got != 42 {
		t.Errorf("mainStepCount: got %v", got)
	}
	o := at("cloudOffset")
	if got := (math.Vec3{X: readFloat(b, o), Y: readFloat(b, o+4), Z: readFloat(b, o+8)}); got != offset {
		t.Errorf("cloudOffset: got %v", got)
	}
	bb := at("boundingBox")
	if readFloat(b, bb) != -5 || readFloat(b, bb+16+4) != 10 {
		t.Errorf("boundingBox elements not at the reflected array stride")
	}

	// The vec3 writes leave the padding word behind each element alone.
	for _, pad := range []int{o + 12, bb + 12, bb + 28} {
		if binary.NativeEndian.Uint32(b[pad:]) != 0 {
			t.Errorf("padding at %d was written", pad)
		}
	}

	// Bytes is a copy.
	b[at("coverage")] ^= 0xFF
	if got := readFloat(ub.Bytes(), at("coverage")); got != 0.75 {
		t.Error("mutating Bytes() changed the mirror")
	}
}

func TestVec3WriteDoesNotClobberPackedScalar(t *testing.T) {
	dev := opengltest.New()
	prog := compile(t, dev, camVert, camFrag)
	ub, err := opengl.NewBinder(dev).CreateBlock("camData", camFields, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	// std140 packs camDist into the four bytes after camDirection.
	if err := ub.SetFloat("camDist", 1.2071); err != nil {
		t.Fatal(err)
	}
	if err := ub.SetVec3("camDirection", math.Vec3{X: 1, Y: 2, Z: 3}); err != nil {
		t.Fatal(err)
	}
	off, _ := ub.Offset("camDist")
	if got := readFloat(ub.Bytes(), off); got != 1.2071 {
		t.Errorf("camDist overwritten: %v", got)
	}
}

func TestSetMat4WritesColumns(t *testing.T) {
	dev := opengltest.New()
	prog := compile(t, dev, camVert, `layout(std140) uniform m { mat4 a; mat4 b; };`)
	ub, err := opengl.NewBinder(dev).CreateBlock("m",
		[]opengl.Field{opengl.F("a", opengl.Mat4), opengl.F("b", opengl.Mat4)}, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	m := math.Mat4Translation(math.Vec3{X: 7, Y: 8, Z: 9})
	if err := ub.SetMat4("b", m); err != nil {
		t.Fatal(err)
	}
	b := ub.Bytes()
	off, _ := ub.Offset("b")
	if off != 64 {
		t.Fatalf("expected b at 64, got %d", off)
	}
	// Column 3 holds the translation.
	for i, want := range []float32{7, 8, 9, 1} {
		if got := readFloat(b, off+48+4*i); got != want {
			t.Errorf("column 3 row %d: expected %v, got %v", i, want, got)
		}
	}
	if readFloat(b, off) != 1 || readFloat(b, off+20) != 1 {
		t.Error("expected identity diagonal in columns 0 and 1")
	}
	for i := 0; i < 64; i += 4 {
		if readFloat(b, i) != 0 {
			t.Fatalf("write to b touched a at byte %d", i)
		}
	}
}

func TestSetterErrors(t *testing.T) {
	dev := opengltest.New()
	prog := cloudProgram(t, dev)
	ub, err := opengl.NewBinder(dev).CreateBlock("cloudData", cloudFields, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	if err := ub.SetFloat("density", 1); !errors.Is(err, opengl.ErrFieldNotFound) {
		t.Errorf("unknown field: got %v", err)
	}
	if err := ub.SetInt("coverage", 1); !errors.Is(err, opengl.ErrFieldType) {
		t.Errorf("int into float: got %v", err)
	}
	if err := ub.SetVec3("boundingBox", math.Vec3{}); !errors.Is(err, opengl.ErrFieldType) {
		t.Errorf("scalar write to array: got %v", err)
	}
	if err := ub.SetVec3Array("boundingBox", make([]math.Vec3, 3)); !errors.Is(err, opengl.ErrFieldOutOfBounds) {
		t.Errorf("array overflow: got %v", err)
	}
	if err := ub.SetVec4("cloudColor", math.Vec4{}); !errors.Is(err, opengl.ErrFieldType) {
		t.Errorf("vec4 into vec3: got %v", err)
	}
}

func TestUploadAndDestroy(t *testing.T) {
	dev := opengltest.New()
	prog := compile(t, dev, camVert, camFrag)
	ub, err := opengl.NewBinder(dev).CreateBlock("camData", camFields, prog)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	buffer := dev.BufferBindings[ub.Binding]

	if err := ub.SetFloat("farClip", 100); err != nil {
		t.Fatal(err)
	}
	if err := ub.Upload(); err != nil {
		t.Fatal(err)
	}
	uploads := dev.CallsTo("UploadUniformBuffer")
	if len(uploads) != 1 || uploads[0].Args[1] != ub.Size() {
		t.Fatalf("expected one full-size upload, got %v", uploads)
	}
	off, _ := ub.Offset("farClip")
	if got := readFloat(dev.Buffers[buffer], off); got != 100 {
		t.Errorf("uploaded farClip = %v", got)
	}

	ub.Destroy()
	ub.Destroy()
	if n := len(dev.CallsTo("DeleteBuffer")); n != 1 {
		t.Errorf("expected one DeleteBuffer, got %d", n)
	}
	if err := ub.SetFloat("farClip", 1); !errors.Is(err, opengl.ErrBlockDestroyed) {
		t.Errorf("write after destroy: got %v", err)
	}
	if err := ub.Upload(); !errors.Is(err, opengl.ErrBlockDestroyed) {
		t.Errorf("upload after destroy: got %v", err)
	}
}

func BenchmarkSetMat4(b *testing.B) {
	dev := opengltest.New()
	prog, _ := dev.CompileProgram(camVert, `layout(std140) uniform m { mat4 a; };`)
	ub, err := opengl.NewBinder(dev).CreateBlock("m", []opengl.Field{opengl.F("a", opengl.Mat4)}, prog)
	if err != nil {
		b.Fatal(err)
	}
	m := math.Mat4Identity()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ub.SetMat4("a", m)
	}
}
