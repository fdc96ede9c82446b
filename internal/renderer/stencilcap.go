package renderer

import (
	"godray/internal/raster"
)

// Stencil layout shared by the volumetric passes and the composition.
// The cap passes own bits 0 and 2 of the stencil byte. Bit 1 is never
// written, leaving it free for other per-pixel protocols.
const (
	// stencilLitParity tracks the parity of lit-segment boundaries
	// crossed in front of the scene surface: the gated near cap plus
	// every cap or skirt crossing toggles it. Odd means the surface
	// sits inside an open lit segment that still needs closing.
	stencilLitParity uint8 = 0b001
	// stencilOpenExit tracks the parity of front-facing far-cap
	// crossings. Odd means the ray leaves the lit volume through open
	// space before reaching the scene surface.
	stencilOpenExit uint8 = 0b100

	stencilCapMask uint8 = 0b101
)

// capDepthBias pushes cap fragments behind coincident scene surfaces.
// The far cap is draped over the same geometry that wrote the depth
// buffer, so exact ties must lose; only crossings strictly in front of
// visible surfaces count.
const capDepthBias = -1.0 / 4096

// SurfaceInLitMedium reports whether the pixel's surface lies inside an
// unclosed lit segment, i.e. the analytic occluder term must close the
// integral at the surface.
func SurfaceInLitMedium(stencil uint8) bool {
	return stencil&stencilLitParity != 0
}

// ExitedThroughOpenFar reports whether the pixel's ray left the lit
// volume through the open far side before hitting geometry.
func ExitedThroughOpenFar(stencil uint8) bool {
	return stencil&stencilOpenExit != 0
}

// ClearCapBits releases the cap protocol's stencil bits for the next
// frame without touching bit 1.
func ClearCapBits(stencil uint8) uint8 {
	return stencil &^ stencilCapMask
}

func capStencilToggleBoth() raster.StencilState {
	return raster.StencilState{
		Compare:     raster.CompareAlways,
		FailOp:      raster.StencilKeep,
		DepthFailOp: raster.StencilKeep,
		PassOp:      raster.StencilInvert,
		CompareMask: 0xFF,
		WriteMask:   stencilCapMask,
	}
}

func capStencilToggleParity() raster.StencilState {
	return raster.StencilState{
		Compare:     raster.CompareAlways,
		FailOp:      raster.StencilKeep,
		DepthFailOp: raster.StencilKeep,
		PassOp:      raster.StencilIncrementWrap,
		CompareMask: 0xFF,
		WriteMask:   stencilLitParity,
	}
}

func capBasePipeline() raster.Pipeline {
	return raster.Pipeline{
		DepthCompare: raster.CompareGreater,
		DepthWrite:   false,
		DepthBias:    capDepthBias,
		Blend:        raster.BlendAdd,
		Cull:         raster.CullNone,
		FrontFace:    raster.WindingClockwise,
	}
}

// FarCapPipeline rasterizes the drape. Front faces flip both tracked
// bits, back faces only the lit parity, and signed color accumulates
// additively under the same depth condition.
func FarCapPipeline() raster.Pipeline {
	p := capBasePipeline()
	p.StencilFront = capStencilToggleBoth()
	p.StencilBack = capStencilToggleParity()
	return p
}

// SkirtPipeline rasterizes the boundary curtain. Sideways crossings
// open or close lit segments but never count as an open far exit, so
// both faces touch only the lit parity.
func SkirtPipeline() raster.Pipeline {
	p := capBasePipeline()
	p.StencilFront = capStencilToggleParity()
	p.StencilBack = capStencilToggleParity()
	return p
}

// NearCapPipeline rasterizes the screen-filling near cap. The fragment
// program gates it on the ray origin seeing the sun, so facing carries
// no information here.
func NearCapPipeline() raster.Pipeline {
	return SkirtPipeline()
}
