package renderer

import (
	"fmt"
	"log"

	"cloudsim/config"
	"cloudsim/core"
	"cloudsim/internal/opengl"
	"cloudsim/internal/opengl/shaders"
	"cloudsim/math"
	"cloudsim/scene"
)

// Texture units the cloud program samples pass one's output from.
const (
	SceneColorUnit = 0
	SceneDepthUnit = 1
)

var (
	matrixFields = []opengl.Field{
		opengl.F("modelMat", opengl.Mat4),
		opengl.F("viewMat", opengl.Mat4),
		opengl.F("projectionMat", opengl.Mat4),
		opengl.F("normalMat", opengl.Mat4),
	}
	lightFields = []opengl.Field{
		opengl.F("lightPosition", opengl.Vec4),
		opengl.F("ambient", opengl.Vec3),
		opengl.F("diffuse", opengl.Vec3),
		opengl.F("specular", opengl.Vec3),
	}
	materialFields = []opengl.Field{
		opengl.F("reflectionAmbient", opengl.Vec3),
		opengl.F("reflectionDiffuse", opengl.Vec3),
		opengl.F("reflectionSpecular", opengl.Vec3),
		opengl.F("shine", opengl.Float),
	}
	camFields = []opengl.Field{
		opengl.F("camPosition", opengl.Vec3),
		opengl.F("camDirection", opengl.Vec3),
		opengl.F("camDist", opengl.Float),
		opengl.F("nearClip", opengl.Float),
		opengl.F("farClip", opengl.Float),
	}
	cloudFields = []opengl.Field{
		opengl.F("coverage", opengl.Float),
		opengl.F("mainStepCount", opengl.Int),
		opengl.F("lightStepCount", opengl.Int),
		opengl.F("cloudColor", opengl.Vec3),
		opengl.Array("boundingBox", opengl.Vec3, 2),
		opengl.F("cloudScale", opengl.Float),
		opengl.F("cloudOffset", opengl.Vec3),
	}
)

// Pipeline renders one frame in two passes: the lit scene into an off-screen
// colour + depth target, then a full-screen ray march over it into the window.
type Pipeline struct {
	dev opengl.Device

	sceneProg *opengl.Program
	cloudProg *opengl.Program
	modes     *opengl.Subroutines

	icosahedron *opengl.GPUMesh
	ground      *opengl.GPUMesh
	quad        *opengl.GPUMesh
	target      *opengl.Target

	matrices  *opengl.UniformBlock
	lightData *opengl.UniformBlock
	material  *opengl.UniformBlock
	camData   *opengl.UniformBlock
	cloudData *opengl.UniformBlock

	width, height int32
	clearColor    core.Color
	light         scene.Light
	proxyMaterial scene.Material
	groundMat     scene.Material

	sentClouds scene.CloudParams
	destroyed  bool
}

// NewPipeline builds every GPU object the two passes need. On error, whatever
// was created is released before returning.
func NewPipeline(dev opengl.Device, cfg config.Config, src shaders.Set) (p *Pipeline, err error) {
	p = &Pipeline{
		dev:           dev,
		width:         int32(cfg.Window.Width),
		height:        int32(cfg.Window.Height),
		clearColor:    cfg.Scene.ClearColor,
		light:         cfg.Scene.Light,
		proxyMaterial: cfg.Scene.LightProxy,
		groundMat:     cfg.Scene.Ground,
	}
	defer func() {
		if err != nil {
			p.Destroy()
			p = nil
		}
	}()

	if p.sceneProg, err = opengl.NewProgram(dev, "scene", src.SceneVert, src.SceneFrag); err != nil {
		return
	}
	if p.cloudProg, err = opengl.NewProgram(dev, "cloud", src.CloudVert, src.CloudFrag); err != nil {
		return
	}

	p.icosahedron = opengl.UploadMesh(dev, scene.CreateIcosahedron())
	p.ground = opengl.UploadMesh(dev, scene.CreateGround(cfg.Scene.GroundHalfExtent))
	p.quad = opengl.UploadScreenQuad(dev, scene.CreateScreenQuad())

	if p.target, err = opengl.NewTarget(dev, cfg.Window.Width, cfg.Window.Height); err != nil {
		return
	}

	if err = p.createBlocks(); err != nil {
		return
	}

	if p.modes, err = opengl.ResolveSubroutines(p.cloudProg, scene.SubroutineNames()...); err != nil {
		return
	}
	p.cloudProg.SetSampler("sceneColor", SceneColorUnit)
	p.cloudProg.SetSampler("sceneDepth", SceneDepthUnit)

	if err = p.writeStatic(&cfg.Camera, &cfg.Clouds); err != nil {
		return
	}
	return p, nil
}

// createBlocks creates the five uniform blocks. Creation order fixes their
// binding points.
func (p *Pipeline) createBlocks() error {
	binder := opengl.NewBinder(p.dev)
	lit, cloud := p.sceneProg.ID, p.cloudProg.ID
	var err error
	for _, b := range []struct {
		dst      **opengl.UniformBlock
		name     string
		fields   []opengl.Field
		programs []uint32
	}{
		{&p.matrices, "matrixData", matrixFields, []uint32{lit, cloud}},
		{&p.lightData, "lightData", lightFields, []uint32{lit, cloud}},
		{&p.material, "materialData", materialFields, []uint32{lit}},
		{&p.camData, "camData", camFields, []uint32{cloud}},
		{&p.cloudData, "cloudData", cloudFields, []uint32{cloud}},
	} {
		if *b.dst, err = binder.CreateBlock(b.name, b.fields, b.programs...); err != nil {
			return err
		}
		log.Printf("[Renderer] %s: binding %d, %d bytes", b.name, (*b.dst).Binding, (*b.dst).Size())
	}
	return nil
}

// writeStatic fills the fields that do not change per frame: the light, the
// camera's projection constants and the cloud colour and bounds.
func (p *Pipeline) writeStatic(cam *scene.Camera, clouds *scene.CloudParams) error {
	var w blockWriter
	w.set(p.lightData.SetVec4("lightPosition", p.light.Position))
	w.set(p.lightData.SetVec3("ambient", p.light.Ambient.RGB()))
	w.set(p.lightData.SetVec3("diffuse", p.light.Diffuse.RGB()))
	w.set(p.lightData.SetVec3("specular", p.light.Specular.RGB()))
	w.set(p.lightData.Upload())

	w.set(p.camData.SetFloat("camDist", cam.Distance()))
	w.set(p.camData.SetFloat("nearClip", cam.Near))
	w.set(p.camData.SetFloat("farClip", cam.Far))

	p.writeCloudStatic(&w, clouds)
	return w.err
}

func (p *Pipeline) writeCloudStatic(w *blockWriter, clouds *scene.CloudParams) {
	w.set(p.cloudData.SetVec3("cloudColor", clouds.Color.RGB()))
	w.set(p.cloudData.SetVec3Array("boundingBox", []math.Vec3{clouds.Box.Min, clouds.Box.Max}))
	p.sentClouds = *clouds
}

// Render draws one frame for state.
func (p *Pipeline) Render(state *scene.State) error {
	if err := p.scenePass(state); err != nil {
		return fmt.Errorf("scene pass: %w", err)
	}
	if err := p.cloudPass(state); err != nil {
		return fmt.Errorf("cloud pass: %w", err)
	}
	return nil
}

// scenePass draws the light proxy and the ground into the off-screen target.
// The default framebuffer is restored on every return path.
func (p *Pipeline) scenePass(state *scene.State) error {
	p.dev.Viewport(0, 0, p.width, p.height)
	unbind := p.target.Bind()
	defer unbind()

	p.dev.ClearColor(p.clearColor)
	p.dev.Clear(true, true)
	p.dev.SetDepthTest(true)
	p.sceneProg.Use()

	view := state.Camera.GetViewMatrix()
	proj := state.Camera.GetProjectionMatrix()

	if err := p.drawLit(p.icosahedron, p.light.Model(), view, proj, &p.proxyMaterial); err != nil {
		return fmt.Errorf("%s: %w", p.icosahedron.Name, err)
	}
	if err := p.drawLit(p.ground, math.Mat4Identity(), view, proj, &p.groundMat); err != nil {
		return fmt.Errorf("%s: %w", p.ground.Name, err)
	}
	return nil
}

// drawLit writes the matrix and material blocks for one mesh and draws it. The
// blocks are single-buffered, so each draw is issued before the next write.
func (p *Pipeline) drawLit(mesh *opengl.GPUMesh, model, view, proj math.Mat4, mat *scene.Material) error {
	var w blockWriter
	w.set(p.matrices.SetMat4("modelMat", model))
	w.set(p.matrices.SetMat4("viewMat", view))
	w.set(p.matrices.SetMat4("projectionMat", proj))
	// model.Mul(view) applies model first: view × model in column-vector terms.
	w.set(p.matrices.SetMat4("normalMat", math.NormalMatrix(model.Mul(view))))
	w.set(p.matrices.Upload())

	w.set(p.material.SetVec3("reflectionAmbient", mat.Ambient.RGB()))
	w.set(p.material.SetVec3("reflectionDiffuse", mat.Diffuse.RGB()))
	w.set(p.material.SetVec3("reflectionSpecular", mat.Specular.RGB()))
	w.set(p.material.SetFloat("shine", mat.Shininess))
	w.set(p.material.Upload())
	if w.err != nil {
		return w.err
	}

	mesh.Draw()
	return nil
}

// cloudPass composites the ray-marched clouds over the scene texture into the
// default framebuffer.
func (p *Pipeline) cloudPass(state *scene.State) error {
	p.dev.SetDepthTest(false)
	p.dev.ClearColor(p.clearColor)
	p.dev.Clear(true, false)
	p.cloudProg.Use()
	p.dev.BindTexture(SceneColorUnit, p.target.ColorTex)
	p.dev.BindTexture(SceneDepthUnit, p.target.DepthTex)

	ident := math.Mat4Identity()
	var w blockWriter
	for _, f := range matrixFields {
		w.set(p.matrices.SetMat4(f.Name, ident))
	}
	w.set(p.matrices.Upload())

	w.set(p.camData.SetVec3("camPosition", state.Camera.Position))
	w.set(p.camData.SetVec3("camDirection", state.Camera.Direction()))
	w.set(p.camData.Upload())

	clouds := &state.Clouds
	w.set(p.cloudData.SetFloat("coverage", clouds.Coverage))
	w.set(p.cloudData.SetInt("mainStepCount", clouds.MainSteps))
	w.set(p.cloudData.SetInt("lightStepCount", clouds.LightSteps))
	w.set(p.cloudData.SetFloat("cloudScale", clouds.Scale))
	w.set(p.cloudData.SetVec3("cloudOffset", state.Wind.Offset()))
	if !clouds.StaticEqual(&p.sentClouds) {
		p.writeCloudStatic(&w, clouds)
	}
	w.set(p.cloudData.Upload())
	if w.err != nil {
		return w.err
	}

	if err := p.modes.Select(int(state.Subroutine)); err != nil {
		return err
	}
	p.quad.Draw()
	return nil
}

// Target is the off-screen colour + depth target pass one renders into.
func (p *Pipeline) Target() *opengl.Target {
	return p.target
}

// Blocks returns the uniform blocks in creation order.
func (p *Pipeline) Blocks() []*opengl.UniformBlock {
	return []*opengl.UniformBlock{p.matrices, p.lightData, p.material, p.camData, p.cloudData}
}

// Destroy releases every GPU object the pipeline owns. Calling it again does
// nothing. It tolerates a partially built pipeline.
func (p *Pipeline) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	for _, b := range p.Blocks() {
		if b != nil {
			b.Destroy()
		}
	}
	for _, m := range []*opengl.GPUMesh{p.icosahedron, p.ground, p.quad} {
		if m != nil {
			m.Destroy()
		}
	}
	if p.target != nil {
		p.target.Destroy()
	}
	if p.cloudProg != nil {
		p.cloudProg.Destroy()
	}
	if p.sceneProg != nil {
		p.sceneProg.Destroy()
	}
}

// blockWriter keeps the first error of a run of block writes.
type blockWriter struct {
	err error
}

func (w *blockWriter) set(err error) {
	if w.err == nil {
		w.err = err
	}
}
