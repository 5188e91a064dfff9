package main

import (
	"fmt"

	"cloudsim/scene"
)

const titleFormat = "Clouds running at %.1f FPS. We are using Phong shading and Blinn-Phong specular illumination. [%s]"

// windowTitle is refreshed once per second with the measured frame rate and
// the active render mode.
func windowTitle(fps float64, state *scene.State) string {
	return fmt.Sprintf(titleFormat, fps, state.Subroutine)
}
