package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/raster"
)

// GBuffer holds per-pixel surface attributes for deferred composition:
// diffuse color in plane 0, packed world normal in plane 1, reversed-Z
// depth, and the stencil plane the volumetric protocol runs in.
type GBuffer struct {
	FB *raster.Framebuffer
}

func NewGBuffer(width, height int) *GBuffer {
	return &GBuffer{FB: raster.NewFramebuffer(width, height, 2)}
}

// Render redraws the scene's surface attributes. Depth clears to 0,
// which is infinitely far under reversed Z, and the stencil plane
// resets for this frame's volumetric passes. Models whose bounding
// sphere misses the frustum are skipped.
func (g *GBuffer) Render(scene *Scene, camera *Camera) {
	g.FB.ClearColor(mgl32.Vec4{})
	g.FB.ClearDepth(0)
	g.FB.ClearStencil(0)

	pipeline := raster.Pipeline{
		DepthCompare: raster.CompareGreater,
		DepthWrite:   true,
		Blend:        raster.BlendReplace,
		Cull:         raster.CullNone,
		FrontFace:    raster.WindingCounterClockwise,
		StencilFront: raster.DisabledStencil(),
		StencilBack:  raster.DisabledStencil(),
	}

	viewProjection := camera.GetViewProjection()
	frustum := camera.CalculateFrustum()
	for _, model := range scene.Models {
		if !frustum.IntersectsSphere(model.BoundingSphereCenter, model.BoundingSphereRadius) {
			continue
		}
		vp, fp := geometryPrograms(model, viewProjection)
		g.FB.Draw(pipeline, len(model.Indices), vp, fp)
	}
}

// Normal decodes the packed world normal at (x, y).
func (g *GBuffer) Normal(x, y int) mgl32.Vec3 {
	c := g.FB.PlaneAt(1, x, y)
	return mgl32.Vec3{c.X()*2 - 1, c.Y()*2 - 1, c.Z()*2 - 1}
}

// Diffuse returns the surface color at (x, y).
func (g *GBuffer) Diffuse(x, y int) mgl32.Vec3 {
	c := g.FB.PlaneAt(0, x, y)
	return mgl32.Vec3{c.X(), c.Y(), c.Z()}
}
