package scene

import (
	stdmath "math"

	"cloudsim/core"
	"cloudsim/math"
)

// Subroutine selects the cloud program's fragment path.
type Subroutine int

const (
	SimpleScene Subroutine = iota
	ShowBoundingBox
	SimpleRayMarchNoise
	RayMarchNoise

	SubroutineCount
)

var subroutineNames = [SubroutineCount]string{
	SimpleScene:         "simpleScene",
	ShowBoundingBox:     "showBoundingBox",
	SimpleRayMarchNoise: "simpleRayMarchNoise",
	RayMarchNoise:       "rayMarchNoise",
}

var subroutineLabels = [SubroutineCount]string{
	SimpleScene:         "scene only",
	ShowBoundingBox:     "bounding box",
	SimpleRayMarchNoise: "single-octave march",
	RayMarchNoise:       "lit ray march",
}

// Name is the GLSL function implementing s.
func (s Subroutine) Name() string {
	if s < 0 || s >= SubroutineCount {
		return ""
	}
	return subroutineNames[s]
}

func (s Subroutine) String() string {
	if s < 0 || s >= SubroutineCount {
		return "unknown"
	}
	return subroutineLabels[s]
}

// SubroutineNames lists every GLSL entry point in selector order.
func SubroutineNames() []string {
	return append([]string(nil), subroutineNames[:]...)
}

const (
	CoverageStep = 0.1
	ScaleStep    = 0.1
	MinScale     = 0.1
	MinSteps     = 1
)

// CloudParams are the tunable parameters of the cloud volume. Color and Box
// change rarely and are only re-sent to the GPU when they differ.
type CloudParams struct {
	Coverage   float32    `json:"coverage"`
	MainSteps  int32      `json:"mainSteps"`
	LightSteps int32      `json:"lightSteps"`
	Scale      float32    `json:"scale"`
	Color      core.Color `json:"color"`
	Box        AABB       `json:"boundingBox"`
}

func DefaultCloudParams() CloudParams {
	return CloudParams{
		Coverage:   0.5,
		MainSteps:  5,
		LightSteps: 3,
		Scale:      1,
		Color:      core.ColorWhite,
		Box: AABB{
			Min: math.Vec3{X: -5, Y: 0, Z: -5},
			Max: math.Vec3{X: 5, Y: 10, Z: 5},
		},
	}
}

// StaticEqual reports whether p and o share the same colour and bounding box.
func (p *CloudParams) StaticEqual(o *CloudParams) bool {
	return p.Color == o.Color && p.Box == o.Box
}

// snap rounds to three decimals so repeated ±0.1 steps land on exact tenths.
func snap(v float32) float32 {
	return float32(stdmath.Round(float64(v)*1000) / 1000)
}

func (p *CloudParams) AdjustCoverage(delta float32) {
	c := snap(p.Coverage + delta)
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	p.Coverage = c
}

func (p *CloudParams) AdjustScale(delta float32) {
	s := snap(p.Scale + delta)
	if s < MinScale {
		s = MinScale
	}
	p.Scale = s
}

func (p *CloudParams) AdjustMainSteps(delta int32) {
	p.MainSteps = max(p.MainSteps+delta, MinSteps)
}

func (p *CloudParams) AdjustLightSteps(delta int32) {
	p.LightSteps = max(p.LightSteps+delta, MinSteps)
}

// Wind accumulates a cloud offset from a constant per-frame velocity. The
// offset is computed as Base + Velocity·Frames rather than summed frame by
// frame, so N frames at velocity v move the clouds by exactly N·v.
type Wind struct {
	Base     math.Vec3
	Velocity math.Vec3
	Frames   int64
}

func (w *Wind) Offset() math.Vec3 {
	return w.Base.Add(w.Velocity.Mul(float32(w.Frames)))
}

// Step advances the wind by one frame.
func (w *Wind) Step() {
	w.Frames++
}

// SetVelocity folds the distance travelled so far into Base and starts
// counting frames at the new velocity.
func (w *Wind) SetVelocity(v math.Vec3) {
	w.Base = w.Offset()
	w.Velocity = v
	w.Frames = 0
}
