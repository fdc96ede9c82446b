package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/raster"
)

// openSkyEpsilon separates real occluder depths from the cleared far
// plane. Light depths at or beyond 1-openSkyEpsilon mean open sky.
const openSkyEpsilon = 1e-3

// shadowSampleBias absorbs shadow-map quantization when comparing a
// surface's light depth against the stored occluder depth.
const shadowSampleBias = 0.002

// Sun is a directional light boxed into an affine light volume. Light
// clip space spans [-1,1] across the box in x and y and [0,1] along the
// travel direction of sunlight, 0 being the sun-side face.
type Sun struct {
	Direction    mgl32.Vec3
	WorldToLight mgl32.Mat4
	LightToWorld mgl32.Mat4
}

// NewSun builds the light volume around focus. radius is the half-extent
// across the beam, depth the full extent along it.
func NewSun(direction, focus mgl32.Vec3, radius, depth float32) Sun {
	f := direction
	if f.Len() < 1e-6 {
		f = mgl32.Vec3{0, -1, 0}
	}
	f = f.Normalize()

	seed := mgl32.Vec3{0, 1, 0}
	if abs32(f.Dot(seed)) > 0.99 {
		seed = mgl32.Vec3{1, 0, 0}
	}
	r := seed.Cross(f).Normalize()
	u := f.Cross(r)

	origin := focus.Sub(f.Mul(depth / 2))
	ltw := mgl32.Mat4{
		r.X() * radius, r.Y() * radius, r.Z() * radius, 0,
		u.X() * radius, u.Y() * radius, u.Z() * radius, 0,
		f.X() * depth, f.Y() * depth, f.Z() * depth, 0,
		origin.X(), origin.Y(), origin.Z(), 1,
	}
	return Sun{
		Direction:    f,
		WorldToLight: ltw.Inv(),
		LightToWorld: ltw,
	}
}

// LightParameters carries everything the volumetric passes and the
// composition need to move between camera screen space and the sun's
// clip space. Rebuilt per frame from the camera and the sun.
type LightParameters struct {
	// LightToScreen maps light clip space to camera clip space.
	LightToScreen mgl32.Mat4
	// ScreenToLight maps camera NDC (w=1) back to light clip space.
	ScreenToLight mgl32.Mat4
	Direction     mgl32.Vec3
	Medium        Medium
	Shadow        *raster.DepthTexture
	// Narrowness steepens the shadow transition. Higher is harder.
	Narrowness float32
}

// NewLightParameters couples a camera and a sun for one frame of
// volumetric passes and composition.
func NewLightParameters(camera *Camera, sun Sun, shadow *ShadowMapPass, medium Medium, narrowness float32) *LightParameters {
	vp := camera.GetViewProjection()
	return &LightParameters{
		LightToScreen: vp.Mul4(sun.LightToWorld),
		ScreenToLight: sun.WorldToLight.Mul4(vp.Inv()),
		Direction:     sun.Direction,
		Medium:        medium,
		Shadow:        shadow.Texture,
		Narrowness:    narrowness,
	}
}

// LightClip reprojects a camera NDC point into light clip space.
func (p *LightParameters) LightClip(ndc mgl32.Vec3) mgl32.Vec3 {
	h := p.ScreenToLight.Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), ndc.Z(), 1})
	w := h.W()
	if w > -1e-8 && w < 1e-8 {
		w = 1e-8
	}
	return mgl32.Vec3{h.X() / w, h.Y() / w, h.Z() / w}
}

// sunSample reads the shadow map at a light clip position. Light y runs
// up while texture rows run down.
func (p *LightParameters) sunSample(clip mgl32.Vec3) float32 {
	return p.Shadow.Sample((clip.X()+1)/2, (1-clip.Y())/2)
}

// SunLit reports whether a light clip position sees the sun. Points
// outside the light volume are lit: the volume is sized to contain all
// occluders, so beyond it nothing can shadow.
func (p *LightParameters) SunLit(clip mgl32.Vec3) bool {
	if clip.X() < -1 || clip.X() > 1 || clip.Y() < -1 || clip.Y() > 1 {
		return true
	}
	if clip.Z() < 0 || clip.Z() > 1 {
		return true
	}
	sample := p.sunSample(clip)
	if sample >= 1-openSkyEpsilon {
		return true
	}
	return clip.Z() <= sample+shadowSampleBias
}

// ShadowFactor grades SunLit into [0,1] for surface shading, fading
// over a band controlled by Narrowness instead of cutting hard.
func (p *LightParameters) ShadowFactor(clip mgl32.Vec3) float32 {
	if clip.X() < -1 || clip.X() > 1 || clip.Y() < -1 || clip.Y() > 1 {
		return 1
	}
	if clip.Z() < 0 || clip.Z() > 1 {
		return 1
	}
	sample := p.sunSample(clip)
	if sample >= 1-openSkyEpsilon {
		return 1
	}
	return mgl32.Clamp(1-(clip.Z()-sample-shadowSampleBias)*p.Narrowness, 0, 1)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
