package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/raster"
)

// CompositionPass folds direct surface lighting, the accumulated
// volumetric integral, and the analytic occluder term into final HDR
// radiance, in place in the accumulation plane.
type CompositionPass struct {
	// Submerged attenuates surface radiance by the medium's absorption
	// over the camera-to-surface distance. The volumetric term is
	// already distance-correct and is never attenuated.
	Submerged bool
}

func (p CompositionPass) Render(g *GBuffer, accum *raster.Framebuffer, scene *Scene, params *LightParameters, estimator DistanceEstimator) {
	w, h := g.FB.W, g.FB.H
	plane := accum.Color[0]
	raster.ParallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				ndcX, ndcY := raster.NDCForPixel(x, y, w, h)
				depth := g.FB.Depth[idx]
				stencil := g.FB.Stencil[idx]
				acc := plane[idx]
				volumetric := mgl32.Vec3{acc.X(), acc.Y(), acc.Z()}

				var surface mgl32.Vec3
				if depth > 0 {
					distance := estimator.Distance(ndcX, ndcY, depth)
					// A surface inside an open lit segment closes the
					// integral analytically; rays that already left
					// through the open far side need no closing term.
					if !ExitedThroughOpenFar(stencil) && SurfaceInLitMedium(stencil) {
						volumetric = volumetric.Sub(params.Medium.Contribution(distance))
					}

					normal := g.Normal(x, y)
					clip := params.LightClip(mgl32.Vec3{ndcX, ndcY, depth})
					shadowFactor := params.ShadowFactor(clip)
					cosine := mgl32.Clamp(-params.Direction.Dot(normal), 0, 1)
					surface = g.Diffuse(x, y).Mul(0.95*shadowFactor*cosine + 0.05)
					if p.Submerged {
						surface = mulElem(surface, params.Medium.Absorption(distance))
					}
				} else {
					surface = scene.Background
				}

				total := surface.Add(maxZero(volumetric))
				plane[idx] = total.Vec4(1)
				g.FB.Stencil[idx] = ClearCapBits(stencil)
			}
		}
	})
}
