package input

import (
	"cloudsim/core"
)

// Key is a symbolic input identifier. Raw window key codes are mapped to it in
// keyCodes so the rest of the program never sees platform values.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyCtrl
	KeyShift
	KeyI
	KeyK
	KeyO
	KeyL
	KeyU
	KeyJ
	KeyY
	KeyH
	KeyV
	KeyB
	Key1
	Key2
	Key3
	Key4
	KeyEscape
	KeyF12

	KeyCount
)

// keyCodes lists the raw codes that drive each symbolic key. Either code held
// counts as the key being down.
var keyCodes = [KeyCount][]int{
	KeyW:      {core.KeyW},
	KeyA:      {core.KeyA},
	KeyS:      {core.KeyS},
	KeyD:      {core.KeyD},
	KeySpace:  {core.KeySpace},
	KeyCtrl:   {core.KeyLeftControl, core.KeyRightControl},
	KeyShift:  {core.KeyLeftShift, core.KeyRightShift},
	KeyI:      {core.KeyI},
	KeyK:      {core.KeyK},
	KeyO:      {core.KeyO},
	KeyL:      {core.KeyL},
	KeyU:      {core.KeyU},
	KeyJ:      {core.KeyJ},
	KeyY:      {core.KeyY},
	KeyH:      {core.KeyH},
	KeyV:      {core.KeyV},
	KeyB:      {core.KeyB},
	Key1:      {core.Key1},
	Key2:      {core.Key2},
	Key3:      {core.Key3},
	Key4:      {core.Key4},
	KeyEscape: {core.KeyEscape},
	KeyF12:    {core.KeyF12},
}

// MouseButton identifies a tracked mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota

	MouseButtonCount
)

var mouseCodes = [MouseButtonCount]int{
	MouseLeft: core.MouseButtonLeft,
}

// Source is the raw device state the manager samples. *core.Window implements it.
type Source interface {
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
	GetCursorPos() (float64, float64)
}

// PressQueue is implemented by sources that record key presses as events
// between polls. A key pressed and released within one frame is then still
// seen as pressed.
type PressQueue interface {
	DrainPresses() []int
}

func keyForCode(code int) (Key, bool) {
	for k, codes := range keyCodes {
		for _, c := range codes {
			if c == code {
				return Key(k), true
			}
		}
	}
	return 0, false
}

// Manager tracks held and edge-triggered key state plus mouse movement.
type Manager struct {
	source Source

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64

	mouseButtons [MouseButtonCount]bool

	keys     [KeyCount]bool
	keysPrev [KeyCount]bool
	tapped   [KeyCount]bool

	firstFrame bool
}

func NewManager(source Source) *Manager {
	return &Manager{
		source:     source,
		firstFrame: true,
	}
}

// Poll samples the source once. Call it once per frame after the window has
// processed its events.
func (im *Manager) Poll() {
	x, y := im.source.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y
	im.MouseX = x
	im.MouseY = y

	im.keysPrev = im.keys
	im.tapped = [KeyCount]bool{}
	if q, ok := im.source.(PressQueue); ok {
		for _, code := range q.DrainPresses() {
			if k, ok := keyForCode(code); ok {
				im.tapped[k] = true
			}
		}
	}

	for b, code := range mouseCodes {
		im.mouseButtons[b] = im.source.IsMouseButtonPressed(code)
	}

	for k, codes := range keyCodes {
		down := false
		for _, code := range codes {
			if im.source.IsKeyPressed(code) {
				down = true
				break
			}
		}
		im.keys[k] = down
	}
}

// --- Mouse Queries ---

func (im *Manager) IsMouseDown(button MouseButton) bool {
	if button < 0 || button >= MouseButtonCount {
		return false
	}
	return im.mouseButtons[button]
}

func (im *Manager) MouseDelta() (float64, float64) {
	return im.MouseDeltaX, im.MouseDeltaY
}

// --- Key Queries ---

func (im *Manager) IsKeyDown(key Key) bool {
	if key < 0 || key >= KeyCount {
		return false
	}
	return im.keys[key]
}

// IsKeyPressed reports a rising edge since the previous poll: down this frame
// and up the frame before, or a queued press from the source.
func (im *Manager) IsKeyPressed(key Key) bool {
	if key < 0 || key >= KeyCount {
		return false
	}
	return im.tapped[key] || (im.keys[key] && !im.keysPrev[key])
}
