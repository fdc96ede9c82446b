package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/raster"
)

// VolumetricPass rasterizes the volume cap mesh against the scene depth
// buffer, accumulating signed scattering terms in its own color plane
// and crossing parities in the shared stencil plane.
type VolumetricPass struct {
	// Accum has one signed HDR color plane of its own and aliases the
	// G-buffer's depth and stencil planes, so depth tests run against
	// scene depth and stencil parity lands where the composition reads
	// it. Rebuild alongside the G-buffer on resize.
	Accum *raster.Framebuffer
}

func NewVolumetricPass(g *GBuffer) *VolumetricPass {
	return &VolumetricPass{Accum: &raster.Framebuffer{
		W:       g.FB.W,
		H:       g.FB.H,
		Color:   [][]mgl32.Vec4{make([]mgl32.Vec4, g.FB.W*g.FB.H)},
		Depth:   g.FB.Depth,
		Stencil: g.FB.Stencil,
	}}
}

// Render runs the three cap draws for one sun. The far cap drapes over
// every shadow map texel, the skirt curtains the two open grid edges,
// and the near cap opens lit segments at the camera. Scene depth and
// stencil state must come in fresh from the geometry pass.
func (p *VolumetricPass) Render(shadow *ShadowMapPass, params *LightParameters, estimator DistanceEstimator) {
	p.Accum.ClearColor(mgl32.Vec4{})

	size := shadow.Size
	sampler := shadow.Sampler()
	capFP := capFragmentProgram(params.Medium, estimator, p.Accum.W, p.Accum.H)

	topVP := capVertexProgram(0, size, sampler, params.LightToScreen)
	p.Accum.Draw(FarCapPipeline(), TopVertexCount(size), topVP, capFP)

	skirtVP := capVertexProgram(TopVertexCount(size), size, sampler, params.LightToScreen)
	p.Accum.Draw(SkirtPipeline(), SkirtVertexCount(size), skirtVP, capFP)

	nearFP := nearCapFragmentProgram(params, estimator, p.Accum.W, p.Accum.H)
	p.Accum.Draw(NearCapPipeline(), 6, nearCapVertexProgram(), nearFP)
}
