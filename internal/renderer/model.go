package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaterial provides a basic material to fall back on
var DefaultMaterial = &Material{
	Name:         "default",
	DiffuseColor: mgl32.Vec3{1.0, 1.0, 1.0},
}

type Material struct {
	DiffuseColor mgl32.Vec3 // Base color for lighting
	Name         string     // Material name for debugging
}

// ModelVertex is one corner of a scene triangle in object space.
type ModelVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

type Model struct {
	// HOT DATA - Accessed every frame in render loop
	ModelMatrix  mgl32.Mat4 // Object to world transform
	NormalMatrix mgl32.Mat4 // Inverse transpose of ModelMatrix for normals
	Position     mgl32.Vec3 // Position in world space
	Scale        mgl32.Vec3 // Scale factors
	Rotation     mgl32.Quat // Rotation quaternion
	Material     *Material  // Material properties pointer

	// MEDIUM DATA - Conditional/periodic access
	BoundingSphereCenter mgl32.Vec3 // For frustum culling, world space
	BoundingSphereRadius float32    // For frustum culling

	// COLD DATA - Initialization only or rarely accessed
	Name     string        // Model name
	Vertices []ModelVertex // Object-space vertex data
	Indices  []uint32      // Triangle list, counter-clockwise seen from outside

	objectCenter mgl32.Vec3
	objectRadius float32
}

// Scene is everything a frame draws.
type Scene struct {
	Models []*Model
	// Background radiance where no geometry is hit, before volumetrics.
	Background mgl32.Vec3
}

func NewModel(name string, vertices []ModelVertex, indices []uint32) *Model {
	m := &Model{
		Name:     name,
		Position: mgl32.Vec3{0, 0, 0},
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
		Material: DefaultMaterial,
		Vertices: vertices,
		Indices:  indices,
	}
	m.calculateObjectBounds()
	m.updateModelMatrix()
	return m
}

func (m *Model) TriangleCount() int {
	return len(m.Indices) / 3
}

// SetPosition sets the position of the model
func (m *Model) SetPosition(x, y, z float32) {
	m.Position = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

func (m *Model) SetScale(x, y, z float32) {
	m.Scale = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

func (m *Model) Rotate(angleX, angleY, angleZ float32) {
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(angleX), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(angleY), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(angleZ), mgl32.Vec3{0, 0, 1})
	m.Rotation = m.Rotation.Mul(rotationX).Mul(rotationY).Mul(rotationZ)
	m.updateModelMatrix()
}

// calculateObjectBounds finds the mean-centered bounding sphere of the
// object-space vertices once; world bounds follow the model matrix.
func (m *Model) calculateObjectBounds() {
	if len(m.Vertices) == 0 {
		return
	}
	var center mgl32.Vec3
	for _, v := range m.Vertices {
		center = center.Add(v.Position)
	}
	center = center.Mul(1.0 / float32(len(m.Vertices)))

	var maxDistanceSq float32
	for _, v := range m.Vertices {
		if d := v.Position.Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}
	m.objectCenter = center
	m.objectRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

func (m *Model) updateModelMatrix() {
	// ModelMatrix = translation * rotation * scale, scale applied first.
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	rotationMatrix := m.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	m.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
	m.NormalMatrix = m.ModelMatrix.Inv().Transpose()

	maxScale := m.Scale[0]
	if m.Scale[1] > maxScale {
		maxScale = m.Scale[1]
	}
	if m.Scale[2] > maxScale {
		maxScale = m.Scale[2]
	}
	m.BoundingSphereCenter = m.ModelMatrix.Mul4x1(m.objectCenter.Vec4(1)).Vec3()
	m.BoundingSphereRadius = m.objectRadius * maxScale
}

// NewPlane builds a size x size heightfield centered on the origin with
// cells quads per side. Vertex normals are area-weighted face normals.
func NewPlane(name string, size float32, cells int, height func(x, z float32) float32) *Model {
	if cells < 1 {
		cells = 1
	}
	side := cells + 1
	vertices := make([]ModelVertex, side*side)
	for j := 0; j < side; j++ {
		for i := 0; i < side; i++ {
			x := (float32(i)/float32(cells) - 0.5) * size
			z := (float32(j)/float32(cells) - 0.5) * size
			y := float32(0)
			if height != nil {
				y = height(x, z)
			}
			vertices[j*side+i].Position = mgl32.Vec3{x, y, z}
		}
	}

	indices := make([]uint32, 0, cells*cells*6)
	for j := 0; j < cells; j++ {
		for i := 0; i < cells; i++ {
			a := uint32(j*side + i)
			b := uint32((j+1)*side + i)
			c := uint32(j*side + i + 1)
			d := uint32((j+1)*side + i + 1)
			indices = append(indices, a, b, c, c, b, d)
		}
	}

	for t := 0; t < len(indices); t += 3 {
		p0 := vertices[indices[t]].Position
		p1 := vertices[indices[t+1]].Position
		p2 := vertices[indices[t+2]].Position
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		for k := 0; k < 3; k++ {
			v := &vertices[indices[t+k]]
			v.Normal = v.Normal.Add(face)
		}
	}
	for i := range vertices {
		if vertices[i].Normal.Len() > 0 {
			vertices[i].Normal = vertices[i].Normal.Normalize()
		} else {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
		}
	}
	return NewModel(name, vertices, indices)
}

// NewBox builds an axis-aligned box centered on the origin with flat
// face normals.
func NewBox(name string, width, height, depth float32) *Model {
	hx, hy, hz := width/2, height/2, depth/2
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hx, -hy, hz}, {-hx, -hy, -hz}, {hx, -hy, hz}, {hx, -hy, -hz}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hx, -hy, -hz}, {hx, hy, -hz}, {hx, -hy, hz}, {hx, hy, hz}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hx, -hy, hz}, {-hx, hy, hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{hx, -hy, hz}, {hx, hy, hz}, {-hx, -hy, hz}, {-hx, hy, hz}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}}},
	}

	vertices := make([]ModelVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range f.corners {
			vertices = append(vertices, ModelVertex{Position: c, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+1, base+3)
	}
	return NewModel(name, vertices, indices)
}
