package core

import (
	"cloudsim/math"
)

type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorRGB8 builds an opaque colour from 0-255 channel values.
func ColorRGB8(r, g, b uint8) Color {
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// RGB drops alpha; uniform blocks store colours as vec3.
func (c Color) RGB() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the interleaved position+normal layout used by the scene meshes.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}
