package main

import (
	"fmt"
	"log"

	"cloudsim/input"
	"cloudsim/scene"
)

// host is the part of the window the frame loop drives. *core.Window
// implements it.
type host interface {
	input.Source
	ShouldClose() bool
	SetShouldClose(v bool)
	PollEvents()
	SwapBuffers()
	SetTitle(title string)
	Time() float64
}

type frameRenderer interface {
	Render(state *scene.State) error
}

type frameLoop struct {
	win      host
	in       *input.Manager
	state    *scene.State
	pipeline frameRenderer
	capture  func() error

	frames   int
	lastTime float64
}

// run steps frames until the window closes or a frame fails to render.
func (l *frameLoop) run() error {
	l.lastTime = l.win.Time()
	for !l.win.ShouldClose() {
		if err := l.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs one frame: poll, update, render, optional capture, title, swap.
func (l *frameLoop) step() error {
	l.win.PollEvents()
	l.in.Poll()
	l.state.Update(l.in)
	if l.state.Quit {
		l.win.SetShouldClose(true)
		return nil
	}

	if err := l.pipeline.Render(l.state); err != nil {
		return fmt.Errorf("frame %d: %w", l.state.Frame, err)
	}

	if l.state.CaptureRequested && l.capture != nil {
		if err := l.capture(); err != nil {
			log.Printf("[Capture] Error: %v", err)
		}
	}

	l.frames++
	now := l.win.Time()
	if elapsed := now - l.lastTime; elapsed >= 1.0 {
		l.win.SetTitle(windowTitle(float64(l.frames)/elapsed, l.state))
		l.frames = 0
		l.lastTime = now
	}

	l.win.SwapBuffers()
	return nil
}
