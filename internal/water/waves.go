// Package water animates a Gerstner wave surface for the frame
// pipeline. The wave sum runs on the CPU and produces a fresh mesh per
// step.
package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/renderer"
)

// MaxWaves is the number of Gerstner waves in a field.
const MaxWaves = 4

type wave struct {
	direction mgl32.Vec2
	amplitude float32
	frequency float32 // spatial, radians per unit
	speed     float32 // phase rate, radians per second
	phase     float32
	steepness float32
}

// Field is a sum of Gerstner waves over the horizontal plane. Waves
// shorten and flatten down the bank, with directions fanned in 45
// degree steps.
type Field struct {
	waves [MaxWaves]wave
}

// NewField builds a wave bank from the dominant amplitude and
// wavelength. Phase rates follow the deep water dispersion relation.
func NewField(amplitude, wavelength float32) *Field {
	if wavelength <= 0 {
		wavelength = 1
	}
	f := &Field{}
	for i := range f.waves {
		var amp, freq float32
		switch i {
		case 0:
			amp = amplitude * 1.2
			freq = 2 * math.Pi / wavelength
		case 1:
			amp = amplitude * 0.8
			freq = 2 * math.Pi / (wavelength * 0.47)
		case 2:
			amp = amplitude * 0.6
			freq = 2 * math.Pi / (wavelength * 0.21)
		default:
			amp = amplitude * 0.4
			freq = 2 * math.Pi / (wavelength * 0.09)
		}

		angle := float64(i) * 45 * math.Pi / 180
		f.waves[i] = wave{
			direction: mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))},
			amplitude: amp,
			frequency: freq,
			speed:     float32(math.Sqrt(9.8 * float64(freq))),
			phase:     float32(i) * math.Pi / 3,
			steepness: 0.2 + float32(i)*0.1,
		}
	}
	return f
}

// MaxHeight bounds the vertical displacement anywhere in the field.
func (f *Field) MaxHeight() float32 {
	var sum float32
	for _, w := range f.waves {
		sum += w.amplitude
	}
	return sum
}

// Height returns the vertical displacement for the rest position
// (x, z) at time t.
func (f *Field) Height(x, z, t float32) float32 {
	var y float32
	for _, w := range f.waves {
		arg := w.frequency*(w.direction[0]*x+w.direction[1]*z) - w.speed*t + w.phase
		y += w.amplitude * float32(math.Sin(float64(arg)))
	}
	return y
}

// Displace returns the full Gerstner position for the rest position
// (x, z) at time t, including the horizontal chop.
func (f *Field) Displace(x, z, t float32) mgl32.Vec3 {
	p := mgl32.Vec3{x, 0, z}
	for _, w := range f.waves {
		arg := float64(w.frequency*(w.direction[0]*x+w.direction[1]*z) - w.speed*t + w.phase)
		s, c := math.Sincos(arg)
		chop := w.steepness * w.amplitude * float32(c)
		p[0] += chop * w.direction[0]
		p[2] += chop * w.direction[1]
		p[1] += w.amplitude * float32(s)
	}
	return p
}

// Surface meshes a size x size patch of the field at time t, centered
// on the origin with cells quads per side. Normals are area-weighted
// face normals of the displaced grid.
func (f *Field) Surface(name string, size float32, cells int, t float32) *renderer.Model {
	if cells < 1 {
		cells = 1
	}
	side := cells + 1
	vertices := make([]renderer.ModelVertex, side*side)
	for j := 0; j < side; j++ {
		for i := 0; i < side; i++ {
			x := (float32(i)/float32(cells) - 0.5) * size
			z := (float32(j)/float32(cells) - 0.5) * size
			vertices[j*side+i].Position = f.Displace(x, z, t)
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

	for tri := 0; tri < len(indices); tri += 3 {
		p0 := vertices[indices[tri]].Position
		p1 := vertices[indices[tri+1]].Position
		p2 := vertices[indices[tri+2]].Position
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		for k := 0; k < 3; k++ {
			v := &vertices[indices[tri+k]]
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
	return renderer.NewModel(name, vertices, indices)
}
