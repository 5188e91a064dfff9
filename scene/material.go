package scene

import "cloudsim/core"

// Material describes Phong surface reflectance for one draw.
type Material struct {
	Name      string     `json:"name"`
	Ambient   core.Color `json:"ambient"`
	Diffuse   core.Color `json:"diffuse"`
	Specular  core.Color `json:"specular"`
	Shininess float32    `json:"shininess"`
}

// NewMaterial creates a material reflecting albedo for both ambient and
// diffuse light, with a grey specular of the given strength.
func NewMaterial(name string, albedo core.Color, specular, shininess float32) Material {
	return Material{
		Name:      name,
		Ambient:   albedo,
		Diffuse:   albedo,
		Specular:  core.Color{R: specular, G: specular, B: specular, A: 1},
		Shininess: shininess,
	}
}

// LightProxyMaterial is the warm yellow of the icosahedron marking the light.
func LightProxyMaterial() Material {
	return NewMaterial("LightProxy", core.ColorRGB8(253, 238, 75), 0.8, 1)
}

// GroundMaterial is the dark green of the ground plane.
func GroundMaterial() Material {
	return NewMaterial("Ground", core.ColorRGB8(0, 64, 0), 0.8, 1)
}
