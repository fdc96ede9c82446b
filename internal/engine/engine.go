package engine

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	mgl "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"godray/internal/behaviour"
	"godray/internal/logger"
	"godray/internal/renderer"
)

// Engine wires the software passes into a frame pipeline: shadow map,
// geometry attributes, volumetric accumulation, composition, tonemap.
// The finished frame lives in the accumulation buffer's color plane.
type Engine struct {
	Width  int
	Height int
	Scene  *renderer.Scene
	Camera *renderer.Camera
	Sun    renderer.Sun

	config     renderer.VolumetricConfig
	shadow     *renderer.ShadowMapPass
	gbuffer    *renderer.GBuffer
	volumetric *renderer.VolumetricPass
	composite  renderer.CompositionPass
	tonemap    renderer.TonemapPass
	frameCount int
}

func New(config renderer.VolumetricConfig, width, height int) (*Engine, error) {
	logger.Init()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("volumetric config: %w", err)
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("frame size %dx%d", width, height)
	}

	e := &Engine{
		Scene:     &renderer.Scene{Background: mgl.Vec3{0.25, 0.35, 0.55}},
		Camera:    renderer.NewDefaultCamera(width, height),
		Sun:       renderer.NewSun(mgl.Vec3{-0.3, -1, -0.2}, mgl.Vec3{}, 40, 60),
		config:    config,
		shadow:    renderer.NewShadowMapPass(config.ShadowMapSize),
		composite: renderer.CompositionPass{Submerged: config.Submerged},
		tonemap:   renderer.TonemapPass{Exposure: config.Exposure},
	}
	e.Resize(width, height)

	logger.Log.Info("godray initializing",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("shadowMapSize", config.ShadowMapSize),
		zap.String("distanceModel", config.DistanceModel))
	return e, nil
}

// SetSun rebuilds the light box. The box must cover every occluder that
// should cast visible shafts; geometry outside it neither shadows nor
// scatters.
func (e *Engine) SetSun(direction, focus mgl.Vec3, radius, depth float32) {
	e.Sun = renderer.NewSun(direction, focus, radius, depth)
}

// Resize rebuilds the render targets that depend on the frame size and
// refreshes the camera's aspect ratio.
func (e *Engine) Resize(width, height int) {
	e.Width = width
	e.Height = height
	e.gbuffer = renderer.NewGBuffer(width, height)
	e.volumetric = renderer.NewVolumetricPass(e.gbuffer)
	e.Camera.SetAspectRatio(float32(width) / float32(height))
}

func (e *Engine) AddModel(model *renderer.Model) {
	e.Scene.Models = append(e.Scene.Models, model)
}

func (e *Engine) AddModelBatch(models []*renderer.Model) {
	e.Scene.Models = append(e.Scene.Models, models...)
}

// Advance steps registered scene behaviours by dt seconds. Rendering
// never mutates the scene, so animation is an explicit step between
// frames.
func (e *Engine) Advance(dt float32) {
	behaviour.GlobalManager.UpdateAll(dt)
}

// RenderFrame runs one full frame in pass order. Light parameters are
// rebuilt every frame since camera and sun move freely between frames.
func (e *Engine) RenderFrame() {
	start := time.Now()

	e.shadow.Render(e.Scene, e.Sun)
	e.gbuffer.Render(e.Scene, e.Camera)

	params := renderer.NewLightParameters(e.Camera, e.Sun, e.shadow, e.config.Medium(), e.config.ShadowNarrowness)
	estimator := e.config.Estimator(e.Camera)
	e.volumetric.Render(e.shadow, params, estimator)
	e.composite.Render(e.gbuffer, e.volumetric.Accum, e.Scene, params, estimator)
	e.tonemap.Render(e.volumetric.Accum)

	e.frameCount++
	logger.Log.Debug("frame rendered",
		zap.Int("frame", e.frameCount),
		zap.Duration("elapsed", time.Since(start)))
}

// Frame returns the last rendered frame as an 8-bit image.
func (e *Engine) Frame() *image.RGBA {
	return e.volumetric.Accum.Image()
}

// WritePNG saves the last rendered frame.
func (e *Engine) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := png.Encode(f, e.Frame()); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close frame %s: %w", path, err)
	}
	logger.Log.Info("frame written", zap.String("path", path))
	return nil
}
