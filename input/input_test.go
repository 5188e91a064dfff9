package input

import (
	"testing"

	"cloudsim/core"
)

type fakeSource struct {
	keys    map[int]bool
	buttons map[int]bool
	x, y    float64
}

func newFakeSource() *fakeSource {
	return &fakeSource{keys: map[int]bool{}, buttons: map[int]bool{}}
}

func (f *fakeSource) IsKeyPressed(key int) bool            { return f.keys[key] }
func (f *fakeSource) IsMouseButtonPressed(button int) bool { return f.buttons[button] }
func (f *fakeSource) GetCursorPos() (float64, float64)     { return f.x, f.y }

func TestKeyEdgeDetection(t *testing.T) {
	src := newFakeSource()
	im := NewManager(src)

	src.keys[core.KeyI] = true
	im.Poll()
	if !im.IsKeyPressed(KeyI) || !im.IsKeyDown(KeyI) {
		t.Fatal("expected I to be pressed and down on the first frame it is held")
	}

	im.Poll()
	if im.IsKeyPressed(KeyI) {
		t.Error("expected no second press while I stays held")
	}
	if !im.IsKeyDown(KeyI) {
		t.Error("expected I to remain down")
	}

	src.keys[core.KeyI] = false
	im.Poll()
	if im.IsKeyDown(KeyI) || im.IsKeyPressed(KeyI) {
		t.Error("expected I released")
	}

	src.keys[core.KeyI] = true
	im.Poll()
	if !im.IsKeyPressed(KeyI) {
		t.Error("expected a new press after release")
	}
}

func TestEitherCodeHoldsModifier(t *testing.T) {
	src := newFakeSource()
	im := NewManager(src)

	src.keys[core.KeyRightShift] = true
	src.keys[core.KeyLeftControl] = true
	im.Poll()
	if !im.IsKeyDown(KeyShift) {
		t.Error("expected right shift to count as shift")
	}
	if !im.IsKeyDown(KeyCtrl) {
		t.Error("expected left control to count as ctrl")
	}
}

func TestOutOfRangeKeysAreUp(t *testing.T) {
	im := NewManager(newFakeSource())
	im.Poll()
	for _, k := range []Key{-1, KeyCount, KeyCount + 10} {
		if im.IsKeyDown(k) || im.IsKeyPressed(k) {
			t.Errorf("key %d: expected false outside the key table", k)
		}
	}
	if im.IsMouseDown(MouseButtonCount) || im.IsMouseDown(-1) {
		t.Error("expected false for unknown mouse buttons")
	}
}

func TestMouseDelta(t *testing.T) {
	src := newFakeSource()
	src.x, src.y = 100, 200
	im := NewManager(src)

	im.Poll()
	if dx, dy := im.MouseDelta(); dx != 0 || dy != 0 {
		t.Errorf("first poll: expected zero delta, got (%v, %v)", dx, dy)
	}

	src.x, src.y = 110, 195
	src.buttons[core.MouseButtonLeft] = true
	im.Poll()
	if dx, dy := im.MouseDelta(); dx != 10 || dy != -5 {
		t.Errorf("expected delta (10, -5), got (%v, %v)", dx, dy)
	}
	if !im.IsMouseDown(MouseLeft) {
		t.Error("expected left button down")
	}
}

// queuedSource also reports presses delivered as events between polls.
type queuedSource struct {
	*fakeSource
	queued []int
}

func (q *queuedSource) DrainPresses() []int {
	out := q.queued
	q.queued = nil
	return out
}

func TestQueuedTapBetweenPolls(t *testing.T) {
	src := &queuedSource{fakeSource: newFakeSource()}
	im := NewManager(src)
	im.Poll()

	// Pressed and released before the next poll: never seen as held.
	src.queued = []int{core.KeyI, core.KeyRightShift, 9999}
	im.Poll()
	if !im.IsKeyPressed(KeyI) {
		t.Error("expected a queued tap on I to count as a press")
	}
	if !im.IsKeyPressed(KeyShift) {
		t.Error("expected right shift to map to shift")
	}
	if im.IsKeyDown(KeyI) {
		t.Error("a tap must not count as held")
	}

	im.Poll()
	if im.IsKeyPressed(KeyI) {
		t.Error("expected the tap to be consumed by one poll")
	}
}

func TestQueuedPressAndHeldEdgeCountOnce(t *testing.T) {
	src := &queuedSource{fakeSource: newFakeSource()}
	im := NewManager(src)
	im.Poll()

	src.keys[core.KeyO] = true
	src.queued = []int{core.KeyO}
	im.Poll()
	if !im.IsKeyPressed(KeyO) || !im.IsKeyDown(KeyO) {
		t.Fatal("expected O pressed and down")
	}
	im.Poll()
	if im.IsKeyPressed(KeyO) {
		t.Error("expected no repeat press while O stays held")
	}
}
