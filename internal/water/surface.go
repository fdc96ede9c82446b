package water

import (
	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/renderer"
)

// Config describes an animated water sheet.
type Config struct {
	Amplitude  float32    `json:"amplitude"`
	Wavelength float32    `json:"wavelength"`
	Size       float32    `json:"size"`
	Cells      int        `json:"cells"`
	Level      float32    `json:"level"`
	Color      [3]float32 `json:"color"`
}

func DefaultConfig() Config {
	return Config{
		Amplitude:  0.4,
		Wavelength: 26,
		Size:       120,
		Cells:      48,
		Level:      14,
		Color:      [3]float32{0.06, 0.22, 0.45},
	}
}

// Surface keeps a water model in step with its wave field. The scene
// holds one model pointer for the sheet's lifetime; Update rebuilds
// the mesh underneath it.
type Surface struct {
	Field *Field
	Model *renderer.Model
	Size  float32
	Cells int
	time  float32
}

func NewSurface(name string, cfg Config) *Surface {
	field := NewField(cfg.Amplitude, cfg.Wavelength)
	s := &Surface{
		Field: field,
		Size:  cfg.Size,
		Cells: cfg.Cells,
	}
	s.Model = field.Surface(name, cfg.Size, cfg.Cells, 0)
	s.Model.Material = &renderer.Material{
		Name:         "water",
		DiffuseColor: mgl32.Vec3{cfg.Color[0], cfg.Color[1], cfg.Color[2]},
	}
	s.Model.SetPosition(0, cfg.Level, 0)
	return s
}

func (s *Surface) Start() {}

// Update advances the field and swaps the fresh mesh into the model in
// place, keeping its transform and material.
func (s *Surface) Update(dt float32) {
	s.time += dt
	fresh := s.Field.Surface(s.Model.Name, s.Size, s.Cells, s.time)

	material := s.Model.Material
	position := s.Model.Position
	rotation := s.Model.Rotation
	scale := s.Model.Scale

	*s.Model = *fresh
	s.Model.Material = material
	s.Model.Rotation = rotation
	s.Model.Scale = scale
	s.Model.SetPosition(position[0], position[1], position[2])
}
