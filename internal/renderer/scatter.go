package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Medium is a homogeneous participating medium lit by the sun. Transparency
// is the per-channel fraction of light surviving one world unit of travel and
// must lie strictly inside (0,1); Scatter scales how much of the attenuated
// light is redirected toward the camera. Both are validated at config load,
// the render path assumes the domains hold.
type Medium struct {
	Transparency mgl32.Vec3
	Scatter      float32
}

// Contribution evaluates the antiderivative of the in-scattering integrand at
// ray distance d:
//
//	contribution(d) = scatter * transparency^d / (-ln transparency)
//
// per channel. Summing +contribution at every entry into sunlit space and
// -contribution at every exit reproduces the integral of scatter*transparency^x
// over the sunlit parts of the ray. The value decreases monotonically in d and
// vanishes in the limit, which is why open-sky boundaries can be accounted at
// zero cost.
func (m Medium) Contribution(d float32) mgl32.Vec3 {
	return mgl32.Vec3{
		m.channelContribution(m.Transparency.X(), d),
		m.channelContribution(m.Transparency.Y(), d),
		m.channelContribution(m.Transparency.Z(), d),
	}
}

func (m Medium) channelContribution(t, d float32) float32 {
	lnT := math.Log(float64(t)) // negative for t in (0,1)
	return m.Scatter * float32(math.Exp(float64(d)*lnT)/-lnT)
}

// Absorption is the per-channel fraction of light surviving d units of travel
// through the medium, transparency^d. Used for submerged-camera attenuation
// of direct light.
func (m Medium) Absorption(d float32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Pow(float64(m.Transparency.X()), float64(d))),
		float32(math.Pow(float64(m.Transparency.Y()), float64(d))),
		float32(math.Pow(float64(m.Transparency.Z()), float64(d))),
	}
}

// DistanceEstimator converts a fragment's NDC position into the ray distance
// fed to Medium.Contribution. It exists so the prototype's documented
// depth-proxy inaccuracy stays isolated and replaceable.
type DistanceEstimator interface {
	Distance(ndcX, ndcY, ndcZ float32) float32
}

// ReciprocalDepth is the prototype's proxy: near/ndcZ, which under the
// reversed-Z infinite projection is the view-space depth of the fragment, not
// the true distance along the view ray. It under-measures off-axis rays by up
// to the secant of the half field of view. Kept as the default because the
// technique's look was tuned against it; ViewRay is the exact alternative.
type ReciprocalDepth struct {
	Near float32
}

func (r ReciprocalDepth) Distance(_, _, ndcZ float32) float32 {
	if ndcZ < 1e-8 {
		ndcZ = 1e-8
	}
	return r.Near / ndcZ
}

// ViewRay measures the true euclidean distance from the eye to the fragment
// by unprojecting the NDC position.
type ViewRay struct {
	Near        float32
	TanHalfFovY float32
	Aspect      float32
}

func (v ViewRay) Distance(ndcX, ndcY, ndcZ float32) float32 {
	if ndcZ < 1e-8 {
		ndcZ = 1e-8
	}
	viewZ := v.Near / ndcZ
	vx := ndcX * v.TanHalfFovY * v.Aspect * viewZ
	vy := ndcY * v.TanHalfFovY * viewZ
	return float32(math.Sqrt(float64(vx*vx + vy*vy + viewZ*viewZ)))
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

func maxZero(v mgl32.Vec3) mgl32.Vec3 {
	for i := 0; i < 3; i++ {
		if v[i] < 0 {
			v[i] = 0
		}
	}
	return v
}
