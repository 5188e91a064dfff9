package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"cloudsim/core"
	"cloudsim/scene"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "cloudsim.json"

// Config holds every startup setting. A JSON file only needs to name the
// fields it changes; everything else keeps the value from Default.
type Config struct {
	Window    core.WindowConfig `json:"window"`
	Camera    scene.Camera      `json:"camera"`
	Controls  scene.Controls    `json:"controls"`
	Clouds    scene.CloudParams `json:"clouds"`
	Scene     SceneConfig       `json:"scene"`
	Capture   CaptureConfig     `json:"capture"`
	ShaderDir string            `json:"shaderDir"` // empty = embedded shaders
}

// SceneConfig describes the pass-one scene.
type SceneConfig struct {
	ClearColor       core.Color     `json:"clearColor"`
	Light            scene.Light    `json:"light"`
	LightProxy       scene.Material `json:"lightProxy"`
	Ground           scene.Material `json:"ground"`
	GroundHalfExtent float32        `json:"groundHalfExtent"`
}

// CaptureConfig controls F12 screenshots.
type CaptureConfig struct {
	Dir   string `json:"dir"`
	Width int    `json:"width"` // 0 = viewport width
}

func Default() Config {
	return Config{
		Window:   core.DefaultWindowConfig(),
		Camera:   scene.DefaultCamera(),
		Controls: scene.DefaultControls(),
		Clouds:   scene.DefaultCloudParams(),
		Scene: SceneConfig{
			ClearColor:       core.ColorRGB8(0, 191, 254),
			Light:            scene.DefaultLight(),
			LightProxy:       scene.LightProxyMaterial(),
			Ground:           scene.GroundMaterial(),
			GroundHalfExtent: 10,
		},
		Capture: CaptureConfig{
			Dir: ".",
		},
	}
}

// Load decodes the JSON file at path over Default. A missing file at
// DefaultPath is not an error; a missing file that was asked for is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			log.Printf("[Config] No %s found, using defaults", DefaultPath)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	log.Printf("[Config] Loaded %s", path)
	return cfg, nil
}

// Flags holds CLI flag values that override the config file.
type Flags struct {
	ShaderDir  string
	CaptureDir string
	Width      int
	Height     int
	NoVSync    bool
}

// Resolve applies non-zero flags and derives dependent values.
func (c *Config) Resolve(flags Flags) {
	if flags.ShaderDir != "" {
		c.ShaderDir = flags.ShaderDir
	}
	if flags.CaptureDir != "" {
		c.Capture.Dir = flags.CaptureDir
	}
	if flags.Width > 0 {
		c.Window.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Window.Height = flags.Height
	}
	if flags.NoVSync {
		c.Window.VSync = false
	}
	if c.Window.Height > 0 {
		c.Camera.Aspect = float32(c.Window.Width) / float32(c.Window.Height)
	}
	if c.Capture.Dir == "" {
		c.Capture.Dir = "."
	}
}

// Validate reports the first setting that would make rendering meaningless.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("config: camera fov %v must be in (0, 180)", c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far:
		return fmt.Errorf("config: camera clip planes near=%v far=%v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	case c.Clouds.Coverage < 0 || c.Clouds.Coverage > 1:
		return fmt.Errorf("config: cloud coverage %v must be in [0, 1]", c.Clouds.Coverage)
	case c.Clouds.MainSteps < scene.MinSteps || c.Clouds.LightSteps < scene.MinSteps:
		return fmt.Errorf("config: cloud step counts main=%d light=%d must be at least %d",
			c.Clouds.MainSteps, c.Clouds.LightSteps, scene.MinSteps)
	case c.Clouds.Scale < scene.MinScale:
		return fmt.Errorf("config: cloud scale %v must be at least %v", c.Clouds.Scale, scene.MinScale)
	case !c.Clouds.Box.Valid():
		return fmt.Errorf("config: cloud bounding box min %v exceeds max %v", c.Clouds.Box.Min, c.Clouds.Box.Max)
	case c.Controls.MoveSpeed <= 0:
		return fmt.Errorf("config: move speed %v must be positive", c.Controls.MoveSpeed)
	case c.Scene.GroundHalfExtent <= 0:
		return fmt.Errorf("config: ground half extent %v must be positive", c.Scene.GroundHalfExtent)
	case c.Capture.Width < 0:
		return fmt.Errorf("config: capture width %d must not be negative", c.Capture.Width)
	}
	return nil
}
