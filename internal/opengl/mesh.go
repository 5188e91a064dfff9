package opengl

import (
	"cloudsim/scene"
)

// GPUMesh holds the OpenGL objects for an uploaded mesh.
type GPUMesh struct {
	Name    string
	VAO     uint32
	Buffers []uint32
	Count   int32
	Indexed bool
	Mode    scene.DrawMode

	dev Device
}

// UploadMesh creates a vertex array for an indexed mesh with position at
// attribute 0 and normal at attribute 1.
func UploadMesh(dev Device, mesh *scene.Mesh) *GPUMesh {
	vao, bufs := dev.UploadMesh(mesh.Vertices, mesh.Indices)
	return &GPUMesh{
		Name:    mesh.Name,
		VAO:     vao,
		Buffers: bufs,
		Count:   mesh.IndexCount(),
		Indexed: true,
		Mode:    mesh.DrawMode,
		dev:     dev,
	}
}

// UploadScreenQuad creates a vertex array with position at attribute 0 and
// texture coordinate at attribute 1.
func UploadScreenQuad(dev Device, quad *scene.ScreenQuad) *GPUMesh {
	vao, bufs := dev.UploadQuad(quad.Positions, quad.TexCoords)
	return &GPUMesh{
		Name:    "ScreenQuad",
		VAO:     vao,
		Buffers: bufs,
		Count:   quad.VertexCount(),
		Mode:    scene.DrawTriangles,
		dev:     dev,
	}
}

// Draw issues one draw call covering the whole mesh.
func (m *GPUMesh) Draw() {
	if m.Indexed {
		m.dev.DrawElements(m.VAO, m.Mode, m.Count)
		return
	}
	m.dev.DrawArrays(m.VAO, m.Mode, m.Count)
}

// Destroy frees the vertex array and its buffers. Safe to call twice.
func (m *GPUMesh) Destroy() {
	if m.VAO == 0 {
		return
	}
	m.dev.DeleteVertexArray(m.VAO)
	for _, b := range m.Buffers {
		m.dev.DeleteBuffer(b)
	}
	m.VAO = 0
	m.Buffers = nil
}
