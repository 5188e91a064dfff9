package scene

import (
	"cloudsim/core"
	"cloudsim/math"
)

// Light is the single point light of the scene. W = 1 marks Position as a point.
type Light struct {
	Position math.Vec4  `json:"position"`
	Ambient  core.Color `json:"ambient"`
	Diffuse  core.Color `json:"diffuse"`
	Specular core.Color `json:"specular"`
}

func DefaultLight() Light {
	return Light{
		Position: math.Vec4{X: 10, Y: 10, Z: 10, W: 1},
		Ambient:  core.ColorWhite,
		Diffuse:  core.ColorWhite,
		Specular: core.ColorWhite,
	}
}

// Model places the light proxy mesh at the light.
func (l *Light) Model() math.Mat4 {
	return math.Mat4Translation(l.Position.ToVec3())
}
