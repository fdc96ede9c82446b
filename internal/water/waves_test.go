package water

import (
	"math"
	"testing"

	"godray/internal/behaviour"
)

var _ behaviour.Behaviour = (*Surface)(nil)

func TestFieldHeightBounded(t *testing.T) {
	field := NewField(0.5, 20)
	bound := float64(field.MaxHeight())
	if math.Abs(bound-1.5) > 1e-5 {
		t.Fatalf("Expected bound 1.5, got %f", bound)
	}

	for xi := -3; xi <= 3; xi++ {
		for zi := -3; zi <= 3; zi++ {
			for ti := 0; ti < 8; ti++ {
				h := float64(field.Height(float32(xi)*7.3, float32(zi)*5.1, float32(ti)*0.37))
				if math.Abs(h) > bound+1e-5 {
					t.Fatalf("Height %f exceeds bound %f", h, bound)
				}
			}
		}
	}
}

func TestFieldDeterministic(t *testing.T) {
	a := NewField(0.3, 15)
	b := NewField(0.3, 15)

	if a.Height(2, -4, 1.25) != b.Height(2, -4, 1.25) {
		t.Error("Same field parameters should give the same heights")
	}
	if a.Displace(2, -4, 1.25) != b.Displace(2, -4, 1.25) {
		t.Error("Same field parameters should give the same displacement")
	}
}

func TestDisplaceMatchesHeight(t *testing.T) {
	field := NewField(0.4, 24)
	for i := 0; i < 10; i++ {
		x := float32(i)*1.7 - 8
		z := float32(i)*-2.3 + 4
		tt := float32(i) * 0.21
		dy := field.Displace(x, z, tt).Y()
		h := field.Height(x, z, tt)
		if math.Abs(float64(dy-h)) > 1e-5 {
			t.Fatalf("Displace y %f disagrees with Height %f", dy, h)
		}
	}
}

func TestSurfaceMeshShape(t *testing.T) {
	field := NewField(0.3, 30)
	model := field.Surface("sea", 40, 8, 0)

	if len(model.Vertices) != 81 {
		t.Errorf("Expected 81 vertices, got %d", len(model.Vertices))
	}
	if model.TriangleCount() != 128 {
		t.Errorf("Expected 128 triangles, got %d", model.TriangleCount())
	}
	var upward int
	for i, v := range model.Vertices {
		if math.Abs(float64(v.Normal.Len())-1) > 1e-4 {
			t.Fatalf("Vertex %d normal not unit length: %v", i, v.Normal)
		}
		if v.Normal.Y() > 0 {
			upward++
		}
	}
	if upward != len(model.Vertices) {
		t.Errorf("Expected all normals upward on a gentle sea, got %d of %d", upward, len(model.Vertices))
	}
}

func TestSurfaceMovesWithTime(t *testing.T) {
	field := NewField(0.5, 25)
	before := field.Surface("sea", 30, 6, 0)
	after := field.Surface("sea", 30, 6, 0.5)

	moved := false
	for i := range before.Vertices {
		if before.Vertices[i].Position != after.Vertices[i].Position {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("Surface should move between time steps")
	}
}

func TestNewSurfaceKeepsModelThroughUpdates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = 30
	cfg.Cells = 6
	cfg.Level = 12
	surface := NewSurface("sea", cfg)

	model := surface.Model
	if model.Position.Y() != 12 {
		t.Errorf("Expected sheet at level 12, got %f", model.Position.Y())
	}
	material := model.Material
	firstY := model.Vertices[10].Position

	surface.Start()
	surface.Update(0.4)

	if surface.Model != model {
		t.Fatal("Update must keep the scene's model pointer")
	}
	if model.Material != material {
		t.Error("Update must keep the material")
	}
	if model.Position.Y() != 12 {
		t.Errorf("Update must keep the level, got %f", model.Position.Y())
	}
	if model.Vertices[10].Position == firstY {
		t.Error("Update should rebuild the mesh")
	}
}
