package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadOBJQuadWithMaterial(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "quad.mtl", `newmtl clay
Kd 0.8 0.4 0.2
newmtl unused
Kd 0 0 1
`)
	path := writeTestFile(t, dir, "quad.obj", `# flat quad
mtllib quad.mtl
v 0 0 0
v 1 0 0
v 1 0 -1
v 0 0 -1
vn 0 1 0
f 1//1 2//1 3//1 4//1
`)

	model, err := LoadOBJ(path, false)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if model.Name != "quad" {
		t.Errorf("Expected name quad, got %q", model.Name)
	}
	if len(model.Vertices) != 4 {
		t.Errorf("Expected 4 unified vertices, got %d", len(model.Vertices))
	}
	if model.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles from fanned quad, got %d", model.TriangleCount())
	}
	wantIndices := []uint32{0, 1, 2, 0, 2, 3}
	for i, want := range wantIndices {
		if model.Indices[i] != want {
			t.Errorf("Index %d: expected %d, got %d", i, want, model.Indices[i])
		}
	}
	for i, v := range model.Vertices {
		if v.Normal != (mgl32.Vec3{0, 1, 0}) {
			t.Errorf("Vertex %d: expected up normal, got %v", i, v.Normal)
		}
	}
	if model.Material.Name != "clay" {
		t.Errorf("Expected first material clay, got %q", model.Material.Name)
	}
	want := mgl32.Vec3{0.8, 0.4, 0.2}
	if model.Material.DiffuseColor.Sub(want).Len() > 1e-5 {
		t.Errorf("Expected diffuse %v, got %v", want, model.Material.DiffuseColor)
	}
}

func TestLoadOBJRebuildsMissingNormals(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "tri.obj", `v 0 0 0
v 1 0 0
v 0 0 -1
f 1 2 3
`)

	model, err := LoadOBJ(path, false)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(model.Vertices) != 3 {
		t.Fatalf("Expected 3 vertices, got %d", len(model.Vertices))
	}
	for i, v := range model.Vertices {
		if v.Normal.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
			t.Errorf("Vertex %d: expected rebuilt up normal, got %v", i, v.Normal)
		}
	}
}

func TestLoadOBJRecalculateOverridesFileNormals(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "tri.obj", `v 0 0 0
v 1 0 0
v 0 0 -1
vn 1 0 0
f 1//1 2//1 3//1
`)

	model, err := LoadOBJ(path, true)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	for i, v := range model.Vertices {
		if v.Normal.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
			t.Errorf("Vertex %d: expected recalculated up normal, got %v", i, v.Normal)
		}
	}
}

func TestLoadOBJNegativeIndices(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "tri.obj", `v 0 0 0
v 1 0 0
v 0 0 -1
f -3 -2 -1
`)

	model, err := LoadOBJ(path, false)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if model.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", model.TriangleCount())
	}
	if model.Vertices[1].Position != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Negative references resolved wrong: %v", model.Vertices[1].Position)
	}
}

func TestLoadOBJSharedCornersUnified(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "quad.obj", `v 0 0 0
v 1 0 0
v 1 0 -1
v 0 0 -1
vn 0 1 0
f 1//1 2//1 3//1
f 1//1 3//1 4//1
`)

	model, err := LoadOBJ(path, false)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(model.Vertices) != 4 {
		t.Errorf("Expected shared corners to unify to 4 vertices, got %d", len(model.Vertices))
	}
	if len(model.Indices) != 6 {
		t.Errorf("Expected 6 indices, got %d", len(model.Indices))
	}
}

func TestLoadOBJErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadOBJ(filepath.Join(dir, "missing.obj"), false); err == nil {
		t.Error("Expected error for missing file")
	}

	badIndex := writeTestFile(t, dir, "bad.obj", `v 0 0 0
v 1 0 0
f 1 2 9
`)
	if _, err := LoadOBJ(badIndex, false); err == nil {
		t.Error("Expected error for out of range face index")
	}

	noFaces := writeTestFile(t, dir, "points.obj", `v 0 0 0
v 1 0 0
v 0 1 0
`)
	if _, err := LoadOBJ(noFaces, false); err == nil {
		t.Error("Expected error for file without faces")
	}
}
