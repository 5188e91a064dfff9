package scene

import (
	"cloudsim/core"
	"cloudsim/math"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles     DrawMode = iota // gl.TRIANGLES (default)
	DrawTriangleStrip                 // gl.TRIANGLE_STRIP
)

func (m DrawMode) String() string {
	switch m {
	case DrawTriangles:
		return "triangles"
	case DrawTriangleStrip:
		return "triangle strip"
	}
	return "unknown"
}

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode // defaults to DrawTriangles

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32, mode DrawMode) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		DrawMode: mode,
	}
	if len(vertices) > 0 {
		m.LocalAABB = computeLocalAABB(vertices)
		m.HasLocalAABB = true
	}
	return m
}

// IndexCount returns the number of indices a draw of the whole mesh consumes.
func (m *Mesh) IndexCount() int32 {
	return int32(len(m.Indices))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3 `json:"min"`
	Max math.Vec3 `json:"max"`
}

// Contains reports whether p lies inside the box, boundary included.
func (box AABB) Contains(p math.Vec3) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X &&
		p.Y >= box.Min.Y && p.Y <= box.Max.Y &&
		p.Z >= box.Min.Z && p.Z <= box.Max.Z
}

// Valid reports whether Min is component-wise no greater than Max.
func (box AABB) Valid() bool {
	return box.Min.X <= box.Max.X && box.Min.Y <= box.Max.Y && box.Min.Z <= box.Max.Z
}

// computeLocalAABB returns the tight AABB of the given vertex positions.
func computeLocalAABB(vertices []core.Vertex) AABB {
	min := vertices[0].Position
	max := vertices[0].Position
	for i := 1; i < len(vertices); i++ {
		p := vertices[i].Position
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return AABB{Min: min, Max: max}
}
