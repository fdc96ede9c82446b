package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewDefaultCamera(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	if cam == nil {
		t.Fatal("NewDefaultCamera returned nil")
	}

	if cam.Position == (mgl32.Vec3{0, 0, 0}) {
		t.Error("Camera position should not be at origin")
	}

	if cam.Near <= 0 {
		t.Error("Camera near plane should be positive")
	}

	if math.Abs(float64(cam.AspectRatio)-800.0/600.0) > 1e-6 {
		t.Errorf("Expected aspect ratio 4:3, got %f", cam.AspectRatio)
	}
}

func TestCameraGetViewMatrix(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.Front = mgl32.Vec3{0, 0, -1}
	cam.Up = mgl32.Vec3{0, 1, 0}

	view := cam.GetViewMatrix()

	if view.At(3, 3) != 1.0 {
		t.Error("View matrix should be valid (w component = 1)")
	}
}

func TestCameraReversedDepth(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 0, 0}
	cam.Front = mgl32.Vec3{0, 0, -1}
	cam.Up = mgl32.Vec3{0, 1, 0}

	vp := cam.GetViewProjection()

	project := func(p mgl32.Vec3) float32 {
		h := vp.Mul4x1(p.Vec4(1))
		return h.Z() / h.W()
	}

	atNear := project(mgl32.Vec3{0, 0, -cam.Near})
	if math.Abs(float64(atNear)-1) > 1e-5 {
		t.Errorf("Depth at near plane: %f, want 1", atNear)
	}

	mid := project(mgl32.Vec3{0, 0, -10})
	far := project(mgl32.Vec3{0, 0, -10000})
	if !(mid < atNear && far < mid && far > 0) {
		t.Errorf("Depth must fall toward 0 with distance: near=%f mid=%f far=%f", atNear, mid, far)
	}
}

func TestCameraProjectionHasNoFarPlane(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	proj := cam.GetProjectionMatrix()

	if proj.At(3, 3) != 0.0 {
		t.Error("Perspective projection should have w=0 at (3,3)")
	}
	// Row 2 is (0,0,0,near): depth no longer depends on view z linearly,
	// so nothing maps outside [0,1] no matter how far away.
	if proj.At(2, 2) != 0.0 {
		t.Errorf("Expected zero z-z term, got %f", proj.At(2, 2))
	}
	if proj.At(2, 3) != cam.Near {
		t.Errorf("Expected near constant %f, got %f", cam.Near, proj.At(2, 3))
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 5, 10}

	cam.LookAt(mgl32.Vec3{0, 5, 0})

	want := mgl32.Vec3{0, 0, -1}
	if cam.Front.Sub(want).Len() > 1e-5 {
		t.Errorf("Expected front %v, got %v", want, cam.Front)
	}
}

func TestCameraRotateClampsPitch(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	cam.Rotate(0, 500)

	if cam.Pitch > 89 {
		t.Errorf("Pitch should clamp at 89, got %f", cam.Pitch)
	}
	if math.Abs(float64(cam.Front.Len())-1.0) > 0.01 {
		t.Errorf("Front vector should stay normalized, length=%f", cam.Front.Len())
	}
}

func TestFrustumCullsBehindCamera(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 0, 0}
	cam.Front = mgl32.Vec3{0, 0, -1}
	cam.Up = mgl32.Vec3{0, 1, 0}

	frustum := cam.CalculateFrustum()

	if !frustum.IntersectsSphere(mgl32.Vec3{0, 0, -20}, 1) {
		t.Error("Sphere ahead of the camera should intersect the frustum")
	}
	if frustum.IntersectsSphere(mgl32.Vec3{0, 0, 20}, 1) {
		t.Error("Sphere behind the camera should be culled")
	}
	if frustum.IntersectsSphere(mgl32.Vec3{200, 0, -20}, 1) {
		t.Error("Sphere far off to the side should be culled")
	}
	// A sphere straddling a plane stays in.
	if !frustum.IntersectsSphere(mgl32.Vec3{0, 0, 0.2}, 5) {
		t.Error("Sphere overlapping the near plane should intersect")
	}
}
