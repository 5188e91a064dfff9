package opengl

import (
	"errors"
	"fmt"
)

var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

// Target is an off-screen colour + depth render target. Both attachments are
// sampleable textures so a later pass can read them.
type Target struct {
	FBO      uint32
	ColorTex uint32
	DepthTex uint32
	Width    int
	Height   int

	dev Device
}

// NewTarget allocates an RGBA8 colour texture and a 24-bit depth texture of the
// given size and attaches them to a new framebuffer. An incomplete framebuffer
// is released and reported as ErrFramebufferIncomplete.
func NewTarget(dev Device, width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrFramebufferIncomplete, width, height)
	}
	t := &Target{Width: width, Height: height, dev: dev}
	t.ColorTex = dev.NewColorTexture(width, height)
	t.DepthTex = dev.NewDepthTexture(width, height)

	fbo, status := dev.NewFramebuffer(t.ColorTex, t.DepthTex)
	t.FBO = fbo
	if !dev.FramebufferComplete(status) {
		t.Destroy()
		return nil, fmt.Errorf("%w: status=0x%X", ErrFramebufferIncomplete, uint32(status))
	}
	return t, nil
}

// Bind routes subsequent draws into the target and returns the func that
// restores the default framebuffer. Callers defer it.
func (t *Target) Bind() (unbind func()) {
	t.dev.BindFramebuffer(t.FBO)
	return func() {
		t.dev.BindFramebuffer(0)
	}
}

// Destroy frees the framebuffer and both textures. Safe to call twice.
func (t *Target) Destroy() {
	if t.FBO != 0 {
		t.dev.DeleteFramebuffer(t.FBO)
		t.FBO = 0
	}
	if t.ColorTex != 0 {
		t.dev.DeleteTexture(t.ColorTex)
		t.ColorTex = 0
	}
	if t.DepthTex != 0 {
		t.dev.DeleteTexture(t.DepthTex)
		t.DepthTex = 0
	}
}
