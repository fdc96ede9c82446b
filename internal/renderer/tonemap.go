package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/raster"
)

// TonemapPass compresses HDR radiance for 8-bit output: exposure scale,
// Reinhard, then gamma 2.2. Runs in place on color plane 0.
type TonemapPass struct {
	Exposure float32
}

func (p TonemapPass) Render(fb *raster.Framebuffer) {
	plane := fb.Color[0]
	raster.ParallelRows(fb.H, func(y0, y1 int) {
		for i := y0 * fb.W; i < y1*fb.W; i++ {
			c := plane[i]
			plane[i] = mgl32.Vec4{
				tonemapChannel(c.X() * p.Exposure),
				tonemapChannel(c.Y() * p.Exposure),
				tonemapChannel(c.Z() * p.Exposure),
				c.W(),
			}
		}
	})
}

func tonemapChannel(v float32) float32 {
	if v <= 0 {
		return 0
	}
	v = v / (1 + v)
	return float32(math.Pow(float64(v), 1/2.2))
}
