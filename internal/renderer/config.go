package renderer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Distance models for converting a depth-buffer value into the path
// length fed to the scattering integral.
const (
	DistanceReciprocal = "reciprocal" // near/ndcZ, view-space depth proxy
	DistanceViewRay    = "viewRay"    // exact euclidean ray length
)

// VolumetricConfig holds the tunable parameters of the volumetric
// lighting pipeline and the participating medium.
type VolumetricConfig struct {
	// Shadow map resolution per side. The cap mesh grid matches it
	// texel for texel.
	ShadowMapSize int `json:"shadowMapSize"`

	// Participating medium
	Transparency mgl32.Vec3 `json:"transparency"` // per channel over unit distance, each in (0,1)
	Scatter      float32    `json:"scatter"`      // in-scattered energy per unit distance
	Submerged    bool       `json:"submerged"`    // attenuate surface light by camera-to-surface absorption

	// Shading
	ShadowNarrowness float32 `json:"shadowNarrowness"` // steepness of the lit/shadowed transition
	DistanceModel    string  `json:"distanceModel"`
	Exposure         float32 `json:"exposure"` // pre-tonemap scale
}

// DefaultVolumetricConfig returns a light morning haze.
func DefaultVolumetricConfig() VolumetricConfig {
	return VolumetricConfig{
		ShadowMapSize:    512,
		Transparency:     mgl32.Vec3{0.75, 0.78, 0.82},
		Scatter:          0.12,
		Submerged:        false,
		ShadowNarrowness: 200,
		DistanceModel:    DistanceReciprocal,
		Exposure:         1.0,
	}
}

// DenseVolumetricConfig returns a thick fog with short sight lines.
func DenseVolumetricConfig() VolumetricConfig {
	config := DefaultVolumetricConfig()
	config.Transparency = mgl32.Vec3{0.55, 0.60, 0.65}
	config.Scatter = 0.3
	config.Exposure = 0.9
	return config
}

// UnderwaterVolumetricConfig returns a submerged medium. Red dies off
// first and surface light is absorbed on its way to the camera.
func UnderwaterVolumetricConfig() VolumetricConfig {
	config := DefaultVolumetricConfig()
	config.Transparency = mgl32.Vec3{0.35, 0.55, 0.65}
	config.Scatter = 0.2
	config.Submerged = true
	config.DistanceModel = DistanceViewRay
	return config
}

// Validate rejects parameter values the closed-form integral cannot
// absorb. Transparency must stay inside (0,1): at 1 the antiderivative
// divides by ln 1, at 0 it is degenerate everywhere.
func (c VolumetricConfig) Validate() error {
	if c.ShadowMapSize < 2 || c.ShadowMapSize > 8192 {
		return fmt.Errorf("shadow map size %d outside [2,8192]", c.ShadowMapSize)
	}
	for i := 0; i < 3; i++ {
		t := c.Transparency[i]
		if !(t > 0 && t < 1) || math.IsNaN(float64(t)) {
			return fmt.Errorf("transparency channel %d is %v, want inside (0,1)", i, t)
		}
	}
	if !(c.Scatter > 0) {
		return fmt.Errorf("scatter %v, want > 0", c.Scatter)
	}
	if !(c.ShadowNarrowness > 0) {
		return fmt.Errorf("shadow narrowness %v, want > 0", c.ShadowNarrowness)
	}
	if c.DistanceModel != DistanceReciprocal && c.DistanceModel != DistanceViewRay {
		return fmt.Errorf("unknown distance model %q", c.DistanceModel)
	}
	if !(c.Exposure > 0) {
		return fmt.Errorf("exposure %v, want > 0", c.Exposure)
	}
	return nil
}

// Medium returns the participating medium described by the config.
func (c VolumetricConfig) Medium() Medium {
	return Medium{Transparency: c.Transparency, Scatter: c.Scatter}
}

// Estimator builds the configured distance model for a camera.
func (c VolumetricConfig) Estimator(camera *Camera) DistanceEstimator {
	if c.DistanceModel == DistanceViewRay {
		return ViewRay{
			Near:        camera.Near,
			TanHalfFovY: float32(math.Tan(float64(mgl32.DegToRad(camera.Fov)) / 2)),
			Aspect:      camera.AspectRatio,
		}
	}
	return ReciprocalDepth{Near: camera.Near}
}

// LoadVolumetricConfig reads a JSON config file over the defaults, so
// partial files only override what they mention.
func LoadVolumetricConfig(path string) (VolumetricConfig, error) {
	config := DefaultVolumetricConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read volumetric config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse volumetric config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid volumetric config %s: %w", path, err)
	}
	return config, nil
}
