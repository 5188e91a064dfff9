package scene

import (
	"cloudsim/core"
	"cloudsim/math"
)

// Icosahedron vertex coordinates: (0, ±1, ±φ) scaled to the unit sphere.
const (
	icoX = 0.525731112119133606
	icoZ = 0.850650808352039932
)

var icosahedronPositions = [12]math.Vec3{
	{X: -icoX, Y: 0, Z: icoZ}, {X: icoX, Y: 0, Z: icoZ}, {X: -icoX, Y: 0, Z: -icoZ}, {X: icoX, Y: 0, Z: -icoZ},
	{X: 0, Y: icoZ, Z: icoX}, {X: 0, Y: icoZ, Z: -icoX}, {X: 0, Y: -icoZ, Z: icoX}, {X: 0, Y: -icoZ, Z: -icoX},
	{X: icoZ, Y: icoX, Z: 0}, {X: -icoZ, Y: icoX, Z: 0}, {X: icoZ, Y: -icoX, Z: 0}, {X: -icoZ, Y: -icoX, Z: 0},
}

var icosahedronIndices = [60]uint32{
	0, 4, 1, 0, 9, 4, 9, 5, 4, 4, 5, 8, 4, 8, 1,
	8, 10, 1, 8, 3, 10, 5, 3, 8, 5, 2, 3, 2, 7, 3,
	7, 10, 3, 7, 6, 10, 7, 11, 6, 11, 0, 6, 0, 1, 6,
	6, 1, 10, 9, 0, 11, 9, 11, 2, 9, 2, 5, 7, 2, 11,
}

// CreateIcosahedron returns the 20-face light proxy. Every vertex sits on the
// unit sphere, so its normal is its position.
func CreateIcosahedron() *Mesh {
	vertices := make([]core.Vertex, len(icosahedronPositions))
	for i, p := range icosahedronPositions {
		vertices[i] = core.Vertex{Position: p, Normal: p.Normalize()}
	}
	indices := make([]uint32, len(icosahedronIndices))
	copy(indices, icosahedronIndices[:])
	return CreateMeshFromData("Icosahedron", vertices, indices, DrawTriangles)
}

// CreateGround returns a flat square of the given half extent on the y = 0
// plane, drawn as a single triangle strip.
func CreateGround(halfExtent float32) *Mesh {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	s := halfExtent
	vertices := []core.Vertex{
		{Position: math.Vec3{X: s, Y: 0, Z: s}, Normal: up},
		{Position: math.Vec3{X: -s, Y: 0, Z: s}, Normal: up},
		{Position: math.Vec3{X: s, Y: 0, Z: -s}, Normal: up},
		{Position: math.Vec3{X: -s, Y: 0, Z: -s}, Normal: up},
	}
	return CreateMeshFromData("Ground", vertices, []uint32{0, 1, 2, 3}, DrawTriangleStrip)
}

// ScreenQuad is the non-indexed full-screen quad used by the composite pass.
type ScreenQuad struct {
	Positions []math.Vec3
	TexCoords []math.Vec2
}

// VertexCount is the number of vertices a draw of the quad consumes.
func (q *ScreenQuad) VertexCount() int32 {
	return int32(len(q.Positions))
}

// CreateScreenQuad returns two triangles covering clip space with matching
// texture coordinates.
func CreateScreenQuad() *ScreenQuad {
	return &ScreenQuad{
		Positions: []math.Vec3{
			{X: -1, Y: -1, Z: 0}, {X: 1, Y: -1, Z: 0}, {X: 1, Y: 1, Z: 0},
			{X: -1, Y: -1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: -1, Y: 1, Z: 0},
		},
		TexCoords: []math.Vec2{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
			{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		},
	}
}
