package scene

import (
	stdmath "math"

	"cloudsim/math"
)

// Camera is a free-fly camera. Orientation is a pair of spherical angles; the
// view direction is derived from them on every call and never stored.
type Camera struct {
	Position math.Vec3 `json:"position"`
	Yaw      float32   `json:"yaw"`   // θ, radians, around +Y
	Pitch    float32   `json:"pitch"` // φ, radians, measured from +Y
	FOV      float32   `json:"fov"`   // vertical, degrees
	Near     float32   `json:"near"`
	Far      float32   `json:"far"`
	Aspect   float32   `json:"-"`
}

func DefaultCamera() Camera {
	return Camera{
		Position: math.Vec3{X: -10, Y: 10, Z: -10},
		Yaw:      stdmath.Pi / 4,
		Pitch:    stdmath.Pi / 1.5,
		FOV:      45,
		Near:     0.3,
		Far:      100,
		Aspect:   1,
	}
}

// Direction is the unit view vector for the current angles.
func (c *Camera) Direction() math.Vec3 {
	return math.SphericalDirection(c.Yaw, c.Pitch)
}

// Right is the horizontal strafe axis, direction × world up.
func (c *Camera) Right() math.Vec3 {
	return c.Direction().Cross(math.Vec3Up).Normalize()
}

func (c *Camera) Translate(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
}

// Rotate adds to both angles. Pitch is not clamped, so the camera can turn
// past either pole.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch += dPitch
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	return math.Mat4LookAt(c.Position, c.Position.Add(c.Direction()), math.Vec3Up)
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	return math.Mat4Perspective(c.fovRadians(), c.Aspect, c.Near, c.Far)
}

// Distance is the distance from the eye to a unit-height image plane:
// 0.5 / tan(FOV/2). The cloud shader rebuilds view rays from it.
func (c *Camera) Distance() float32 {
	return float32(0.5 / stdmath.Tan(float64(c.fovRadians())/2))
}

func (c *Camera) fovRadians() float32 {
	return c.FOV * stdmath.Pi / 180
}
