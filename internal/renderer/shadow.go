package renderer

import (
	"godray/internal/raster"
)

// ShadowMapPass renders scene depth as seen by the sun. The map doubles
// as the height field the volume cap mesh drapes over, so its texel
// grid and the cap grid are the same size.
type ShadowMapPass struct {
	Size    int
	Texture *raster.DepthTexture

	target *raster.Framebuffer
}

func NewShadowMapPass(size int) *ShadowMapPass {
	texture := raster.NewDepthTexture(size)
	return &ShadowMapPass{
		Size:    size,
		Texture: texture,
		target:  texture.Target(),
	}
}

// Render redraws the shadow map for the current scene and sun. Light
// depth runs 0 at the sun-side face to 1 at the far face, cleared to 1
// so empty texels read as open sky.
func (p *ShadowMapPass) Render(scene *Scene, sun Sun) {
	p.target.ClearDepth(1)

	pipeline := raster.Pipeline{
		DepthCompare: raster.CompareLess,
		DepthWrite:   true,
		Blend:        raster.BlendReplace,
		Cull:         raster.CullNone,
		FrontFace:    raster.WindingCounterClockwise,
		StencilFront: raster.DisabledStencil(),
		StencilBack:  raster.DisabledStencil(),
	}

	for _, model := range scene.Models {
		vp := shadowVertexProgram(model, sun)
		p.target.Draw(pipeline, len(model.Indices), vp, depthOnlyFragment)
	}
}

// Sampler exposes the map to the cap mesh generator. Cap grid y runs up
// with light y while texture rows run down, so rows are flipped here.
func (p *ShadowMapPass) Sampler() DepthSampler {
	size := p.Size
	texture := p.Texture
	return func(x, y int) float32 {
		return texture.Fetch(x, size-1-y)
	}
}

func depthOnlyFragment(f *raster.Fragment) bool {
	return true
}
