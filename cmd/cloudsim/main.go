package main

import (
	"flag"
	"fmt"
	"log"

	"cloudsim/config"
	"cloudsim/core"
	"cloudsim/input"
	"cloudsim/internal/capture"
	"cloudsim/internal/opengl"
	"cloudsim/internal/opengl/shaders"
	"cloudsim/renderer"
	"cloudsim/scene"
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON settings file (default "+config.DefaultPath+" if present)")
		flags      config.Flags
	)
	flag.StringVar(&flags.ShaderDir, "shaders", "", "read shaders from this directory instead of the embedded copies")
	flag.StringVar(&flags.CaptureDir, "captures", "", "directory F12 captures are written to")
	flag.IntVar(&flags.Width, "width", 0, "window width in pixels")
	flag.IntVar(&flags.Height, "height", 0, "window height in pixels")
	flag.BoolVar(&flags.NoVSync, "novsync", false, "disable vertical sync")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println("Exiting...")
}

// run owns every window and GPU object. It returns instead of exiting so the
// deferred teardown runs on error paths too.
func run(cfg config.Config) error {
	fmt.Println("Starting cloud renderer...")

	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	dev, err := opengl.NewGLDevice()
	if err != nil {
		return err
	}
	printInfo(dev.Info())

	src, err := shaders.Load(cfg.ShaderDir)
	if err != nil {
		return err
	}

	// The framebuffer can be larger than the window on high-DPI displays.
	pipeCfg := cfg
	pipeCfg.Window.Width, pipeCfg.Window.Height = window.GetFramebufferSize()
	pipeline, err := renderer.NewPipeline(dev, pipeCfg, src)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer pipeline.Destroy()

	captures := capture.NewWriter(cfg.Capture.Dir, cfg.Capture.Width)

	printControls()

	loop := &frameLoop{
		win:      window,
		in:       input.NewManager(window),
		state:    scene.NewState(cfg.Camera, cfg.Clouds, cfg.Controls),
		pipeline: pipeline,
		capture: func() error {
			_, err := captures.Capture(dev, pipeCfg.Window.Width, pipeCfg.Window.Height)
			return err
		},
	}
	return loop.run()
}

func printInfo(info opengl.Info) {
	fmt.Printf("[GL] Vendor:   %s\n", info.Vendor)
	fmt.Printf("[GL] Renderer: %s\n", info.Renderer)
	fmt.Printf("[GL] Version:  %s (%d.%d)\n", info.Version, info.Major, info.Minor)
	fmt.Printf("[GL] GLSL:     %s\n", info.GLSLVersion)
}

func printControls() {
	fmt.Println("===========================================")
	fmt.Println("  Clouds")
	fmt.Println("===========================================")
	fmt.Println("")
	fmt.Println("CAMERA CONTROLS:")
	fmt.Println("  W / S           - Move forward / backward")
	fmt.Println("  A / D           - Strafe left / right")
	fmt.Println("  Space / Ctrl    - Move up / down")
	fmt.Println("  Shift           - Move faster")
	fmt.Println("  Left Mouse Drag - Look around")
	fmt.Println("")
	fmt.Println("CLOUDS:")
	fmt.Println("  I / K           - Coverage up / down")
	fmt.Println("  O / L           - Noise scale up / down")
	fmt.Println("  U / J           - Ray march steps up / down")
	fmt.Println("  Y / H           - Light march steps up / down")
	fmt.Println("  V / B           - Start / stop wind")
	fmt.Println("")
	fmt.Println("RENDER MODE:")
	for s := scene.Subroutine(0); s < scene.SubroutineCount; s++ {
		fmt.Printf("  %d               - %s\n", int(s)+1, s)
	}
	fmt.Println("")
	fmt.Println("  F12             - Save a WebP capture")
	fmt.Println("  Escape          - Quit")
	fmt.Println("===========================================")
}
