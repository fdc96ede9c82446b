package behaviour

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/renderer"
)

// Spin applies a constant Euler rotation rate, in degrees per second
// per axis.
type Spin struct {
	Model *renderer.Model
	Rate  mgl32.Vec3
}

func (s *Spin) Start() {}

func (s *Spin) Update(dt float32) {
	s.Model.Rotate(s.Rate[0]*dt, s.Rate[1]*dt, s.Rate[2]*dt)
}

// Orbit moves a model along a horizontal circle around a focus point,
// keeping its height. Radius and phase derive from the starting
// position when Radius is left zero.
type Orbit struct {
	Model            *renderer.Model
	Focus            mgl32.Vec3
	Radius           float32
	DegreesPerSecond float32
	angle            float32
}

func (o *Orbit) Start() {
	dx := o.Model.Position.X() - o.Focus.X()
	dz := o.Model.Position.Z() - o.Focus.Z()
	if o.Radius <= 0 {
		o.Radius = float32(math.Hypot(float64(dx), float64(dz)))
	}
	o.angle = float32(math.Atan2(float64(dz), float64(dx)))
}

func (o *Orbit) Update(dt float32) {
	o.angle += mgl32.DegToRad(o.DegreesPerSecond) * dt
	x := o.Focus.X() + o.Radius*float32(math.Cos(float64(o.angle)))
	z := o.Focus.Z() + o.Radius*float32(math.Sin(float64(o.angle)))
	o.Model.SetPosition(x, o.Model.Position.Y(), z)
}

// Bob oscillates a model vertically around its starting height.
type Bob struct {
	Model     *renderer.Model
	Amplitude float32
	Frequency float32 // cycles per second
	baseY     float32
	time      float32
}

func (b *Bob) Start() {
	b.baseY = b.Model.Position.Y()
}

func (b *Bob) Update(dt float32) {
	b.time += dt
	offset := b.Amplitude * float32(math.Sin(2*math.Pi*float64(b.Frequency)*float64(b.time)))
	b.Model.SetPosition(b.Model.Position.X(), b.baseY+offset, b.Model.Position.Z())
}
