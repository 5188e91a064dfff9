package math

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)
	
	// Addition
	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}
	
	// Subtraction
	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}
	
	// Scalar multiplication
	result = v1.Mul(2)
	expected = NewVec3(2, 4, 6)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}
	
	// Dot product
	dot := v1.Dot(v2)
	expectedDot := float32(32) // 1*4 + 2*5 + 3*6
	if dot != expectedDot {
		t.Errorf("Dot: expected %v, got %v", expectedDot, dot)
	}
	
	// Cross product (Right x Up = Front in right-handed system)
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	expected := NewVec3(1, 0, 0)
	
	if normalized != expected {
		t.Errorf("Normalize: expected %v, got %v", expected, normalized)
	}
	
	// Check length is 1
	length := normalized.Length()
	if math.Abs(float64(length-1)) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()
	
	// Check diagonal is 1
	for i := 0; i < 4; i++ {
		if m[i][i] != 1 {
			t.Errorf("Identity: expected diagonal to be 1, got %v", m[i][i])
		}
	}
	
	// Check non-diagonal is 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j && m[i][j] != 0 {
				t.Errorf("Identity: expected non-diagonal to be 0, got %v", m[i][j])
			}
		}
	}
}

func TestMat4Multiplication(t *testing.T) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()
	
	result := m1.Mul(m2)
	
	// Identity * Identity = Identity
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := float32(0)
			if i == j {
				expected = 1
			}
			if result[i][j] != expected {
				t.Errorf("Mul: expected [%d][%d] = %v, got %v", i, j, expected, result[i][j])
			}
		}
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)
	
	// Check translation components
	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}
	
	// Test transforming a point
	point := NewVec4(0, 0, 0, 1)
	result := point.MulMat(m)
	
	if result.ToVec3() != translation {
		t.Errorf("Translation: expected %v, got %v", translation, result.ToVec3())
	}
}

func TestMat4Perspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(16.0 / 9.0)
	near := float32(0.1)
	far := float32(100.0)
	
	m := Mat4Perspective(fov, aspect, near, far)
	
	// Check aspect ratio affects the matrix
	if m[0][0] == 0 {
		t.Error("Perspective: expected non-zero X scale")
	}
	if m[1][1] == 0 {
		t.Error("Perspective: expected non-zero Y scale")
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	target := NewVec3(0, 0, 0)
	up := Vec3Up
	
	m := Mat4LookAt(eye, target, up)
	
	// The view matrix should transform the eye position to origin
	point := eye.ToVec4(1)
	result := m.MulVec(point)
	
	tolerance := float32(0.001)
	if math.Abs(float64(result.X)) > float64(tolerance) ||
		math.Abs(float64(result.Y)) > float64(tolerance) ||
		math.Abs(float64(result.Z)) > float64(tolerance) {
		t.Errorf("LookAt: expected eye to transform to origin, got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func assertMat4Near(t *testing.T, label string, got Mat4, want mgl32.Mat4) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(float64(got[i][j]-want[i*4+j])) > 1e-4 {
				t.Errorf("%s: [%d][%d] expected %v, got %v", label, i, j, want[i*4+j], got[i][j])
			}
		}
	}
}

func TestMat4MatchesMathGL(t *testing.T) {
	eye := NewVec3(-10, 10, -10)
	dir := SphericalDirection(math.Pi/4, math.Pi/1.5)
	target := eye.Add(dir)

	view := Mat4LookAt(eye, target, Vec3Up)
	wantView := mgl32.LookAtV(
		mgl32.Vec3{eye.X, eye.Y, eye.Z},
		mgl32.Vec3{target.X, target.Y, target.Z},
		mgl32.Vec3{0, 1, 0},
	)
	assertMat4Near(t, "LookAt", view, wantView)

	proj := Mat4Perspective(float32(math.Pi/4), 1, 0.3, 100)
	assertMat4Near(t, "Perspective", proj, mgl32.Perspective(mgl32.DegToRad(45), 1, 0.3, 100))

	model := Mat4Translation(NewVec3(10, 10, 10))
	mv := model.Mul(view)
	wantMV := wantView.Mul4(mgl32.Translate3D(10, 10, 10))
	assertMat4Near(t, "ModelView", mv, wantMV)
	assertMat4Near(t, "Inverse", mv.Inverse(), wantMV.Inv())
}

func TestNormalMatrixMatchesMathGL(t *testing.T) {
	view := Mat4LookAt(NewVec3(3, 4, 5), Vec3Zero, Vec3Up)
	model := Mat4Translation(NewVec3(1, -2, 3))
	got := NormalMatrix(model.Mul(view))

	mv := mgl32.LookAtV(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}).Mul4(mgl32.Translate3D(1, -2, 3))
	want := mv.Mat3().Inv().Transpose().Mat4()
	assertMat4Near(t, "NormalMatrix", got, want)
}

func TestNormalMatrixOfRigidTransformIsRotation(t *testing.T) {
	view := Mat4LookAt(NewVec3(-10, 10, -10), Vec3Zero, Vec3Up)
	n := NormalMatrix(view)
	r := view.Mat3().Mat4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(float64(n[i][j]-r[i][j])) > 1e-5 {
				t.Errorf("NormalMatrix: [%d][%d] expected %v, got %v", i, j, r[i][j], n[i][j])
			}
		}
	}
}

func TestMat3Inverse(t *testing.T) {
	m := Mat3{{2, 0, 0}, {0, 4, 0}, {1, 0, 1}}
	p := m.Mul(m.Inverse())
	id := Mat3Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(float64(p[i][j]-id[i][j])) > 1e-6 {
				t.Errorf("Mat3 inverse: [%d][%d] expected %v, got %v", i, j, id[i][j], p[i][j])
			}
		}
	}
	singular := Mat3{}
	if singular.Inverse() != id {
		t.Error("Mat3 inverse: singular matrix should fall back to identity")
	}
}

func TestSphericalDirectionIsUnit(t *testing.T) {
	for theta := float32(-7); theta < 7; theta += 0.37 {
		for phi := float32(-7); phi < 7; phi += 0.29 {
			d := SphericalDirection(theta, phi)
			if math.Abs(float64(d.Length()-1)) > 1e-5 {
				t.Fatalf("SphericalDirection(%v, %v): expected unit length, got %v", theta, phi, d.Length())
			}
		}
	}

	up := SphericalDirection(0, 0)
	if math.Abs(float64(up.Y-1)) > 1e-6 {
		t.Errorf("SphericalDirection(0, 0): expected +Y, got %v", up)
	}
}

func TestVec3JSON(t *testing.T) {
	data, err := json.Marshal(NewVec3(1, 2.5, -3))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[1,2.5,-3]" {
		t.Errorf("MarshalJSON: got %s", data)
	}
	var v Vec3
	if err := json.Unmarshal([]byte("[4, 5, 6]"), &v); err != nil {
		t.Fatal(err)
	}
	if v != NewVec3(4, 5, 6) {
		t.Errorf("UnmarshalJSON: got %v", v)
	}
}

func BenchmarkVec3Add(b *testing.B) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)
	
	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()
	
	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
