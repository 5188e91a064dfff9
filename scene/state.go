package scene

import (
	"cloudsim/input"
	"cloudsim/math"
)

// Input is the per-frame key and mouse state State.Update reads.
// *input.Manager implements it.
type Input interface {
	IsKeyDown(key input.Key) bool
	IsKeyPressed(key input.Key) bool
	IsMouseDown(button input.MouseButton) bool
	MouseDelta() (float64, float64)
}

// Controls are the fixed rates input is scaled by.
type Controls struct {
	MoveSpeed        float32   `json:"moveSpeed"`        // units per frame
	MouseSensitivity float32   `json:"mouseSensitivity"` // radians per pixel
	WindVelocity     math.Vec3 `json:"windVelocity"`     // offset units per frame when V is pressed
}

func DefaultControls() Controls {
	return Controls{
		MoveSpeed:        0.1,
		MouseSensitivity: 0.005,
		WindVelocity:     math.Vec3{X: 0.01, Y: 0, Z: 0.005},
	}
}

// State is everything that changes from frame to frame.
type State struct {
	Camera     Camera
	Clouds     CloudParams
	Wind       Wind
	Subroutine Subroutine
	Controls   Controls

	Frame            uint64
	Quit             bool
	CaptureRequested bool
}

func NewState(camera Camera, clouds CloudParams, controls Controls) *State {
	return &State{
		Camera:     camera,
		Clouds:     clouds,
		Controls:   controls,
		Subroutine: RayMarchNoise,
	}
}

var subroutineKeys = [SubroutineCount]input.Key{
	SimpleScene:         input.Key1,
	ShowBoundingBox:     input.Key2,
	SimpleRayMarchNoise: input.Key3,
	RayMarchNoise:       input.Key4,
}

// Update applies one frame of input and advances the wind.
func (s *State) Update(in Input) {
	s.CaptureRequested = false
	s.applyPresses(in)
	s.applyMovement(in)
	s.applyLook(in)
	s.Wind.Step()
	s.Frame++
}

// applyPresses handles edge-triggered keys: one action per press.
func (s *State) applyPresses(in Input) {
	if in.IsKeyPressed(input.KeyEscape) {
		s.Quit = true
	}
	if in.IsKeyPressed(input.KeyF12) {
		s.CaptureRequested = true
	}

	if in.IsKeyPressed(input.KeyI) {
		s.Clouds.AdjustCoverage(CoverageStep)
	}
	if in.IsKeyPressed(input.KeyK) {
		s.Clouds.AdjustCoverage(-CoverageStep)
	}
	if in.IsKeyPressed(input.KeyO) {
		s.Clouds.AdjustScale(ScaleStep)
	}
	if in.IsKeyPressed(input.KeyL) {
		s.Clouds.AdjustScale(-ScaleStep)
	}
	if in.IsKeyPressed(input.KeyU) {
		s.Clouds.AdjustMainSteps(1)
	}
	if in.IsKeyPressed(input.KeyJ) {
		s.Clouds.AdjustMainSteps(-1)
	}
	if in.IsKeyPressed(input.KeyY) {
		s.Clouds.AdjustLightSteps(1)
	}
	if in.IsKeyPressed(input.KeyH) {
		s.Clouds.AdjustLightSteps(-1)
	}

	for sub, key := range subroutineKeys {
		if in.IsKeyPressed(key) {
			s.Subroutine = Subroutine(sub)
		}
	}

	if in.IsKeyPressed(input.KeyV) {
		s.Wind.SetVelocity(s.Controls.WindVelocity)
	}
	if in.IsKeyPressed(input.KeyB) {
		s.Wind.SetVelocity(math.Vec3Zero)
	}
}

// applyMovement handles held keys: movement continues while they are down.
func (s *State) applyMovement(in Input) {
	speed := s.Controls.MoveSpeed
	if in.IsKeyDown(input.KeyShift) {
		speed *= 2
	}

	dir := s.Camera.Direction()
	right := s.Camera.Right()
	var move math.Vec3
	if in.IsKeyDown(input.KeyW) {
		move = move.Add(dir)
	}
	if in.IsKeyDown(input.KeyS) {
		move = move.Sub(dir)
	}
	if in.IsKeyDown(input.KeyD) {
		move = move.Add(right)
	}
	if in.IsKeyDown(input.KeyA) {
		move = move.Sub(right)
	}
	if in.IsKeyDown(input.KeySpace) {
		move = move.Add(math.Vec3Up)
	}
	if in.IsKeyDown(input.KeyCtrl) {
		move = move.Sub(math.Vec3Up)
	}
	if move != math.Vec3Zero {
		s.Camera.Translate(move.Mul(speed))
	}
}

func (s *State) applyLook(in Input) {
	if !in.IsMouseDown(input.MouseLeft) {
		return
	}
	dx, dy := in.MouseDelta()
	if dx == 0 && dy == 0 {
		return
	}
	sens := s.Controls.MouseSensitivity
	s.Camera.Rotate(-float32(dx)*sens, float32(dy)*sens)
}
