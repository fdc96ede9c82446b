package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/aquilax/go-perlin"
	mgl "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"godray/internal/behaviour"
	"godray/internal/engine"
	"godray/internal/loader"
	"godray/internal/logger"
	"godray/internal/renderer"
	"godray/internal/water"
)

const (
	TerrainSize  = 90 // world units per side
	TerrainCells = 96
	TowerCount   = 7
	TowerRing    = 13.0 // ring radius the towers stand on
	OrbitRadius  = 27.0
	OrbitHeight  = 9.5
	FrameStep    = 0.2 // seconds of scene time per frame
)

type sceneOptions struct {
	seed         int64
	terrainCache string
	modelPath    string
	underwater   bool
}

func main() {
	width := flag.Int("width", 960, "frame width in pixels")
	height := flag.Int("height", 540, "frame height in pixels")
	frames := flag.Int("frames", 8, "frames to render along the camera orbit")
	out := flag.String("out", "frames", "output directory for PNG frames")
	preset := flag.String("preset", "default", "medium preset: default, dense or underwater")
	configPath := flag.String("config", "", "JSON config file, overrides the preset")
	shadowSize := flag.Int("shadow-size", 0, "shadow map resolution override")
	seed := flag.Int64("seed", 7, "terrain noise seed")
	modelPath := flag.String("model", "", "OBJ model to place at the ring center")
	terrainCache := flag.String("terrain-cache", "", "binary mesh cache for the terrain")
	hud := flag.Bool("hud", true, "stamp frame captions")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	config, err := buildConfig(*preset, *configPath, *shadowSize)
	if err != nil {
		logger.Log.Fatal("config", zap.Error(err))
	}
	e, err := engine.New(config, *width, *height)
	if err != nil {
		logger.Log.Fatal("engine", zap.Error(err))
	}

	buildScene(e, sceneOptions{
		seed:         *seed,
		terrainCache: *terrainCache,
		modelPath:    *modelPath,
		underwater:   *preset == "underwater",
	})
	e.SetSun(mgl.Vec3{-0.45, -1, -0.2}, mgl.Vec3{0, 2, 0}, 40, 60)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Log.Fatal("output directory", zap.Error(err))
	}

	for i := 0; i < *frames; i++ {
		e.Advance(FrameStep)

		angle := 2 * math.Pi * float64(i) / float64(*frames)
		e.Camera.Position = mgl.Vec3{
			float32(math.Cos(angle)) * OrbitRadius,
			OrbitHeight,
			float32(math.Sin(angle)) * OrbitRadius,
		}
		e.Camera.LookAt(mgl.Vec3{0, 4, 0})
		e.RenderFrame()

		frame := e.Frame()
		if *hud {
			engine.DrawHUD(frame, []string{
				fmt.Sprintf("godray %s", *preset),
				fmt.Sprintf("frame %d/%d", i+1, *frames),
			})
		}
		path := filepath.Join(*out, fmt.Sprintf("frame_%03d.png", i))
		if err := writeFrame(path, frame); err != nil {
			logger.Log.Fatal("frame", zap.String("path", path), zap.Error(err))
		}
		logger.Log.Info("frame saved", zap.String("path", path))
	}
}

func buildConfig(preset, configPath string, shadowSize int) (renderer.VolumetricConfig, error) {
	var config renderer.VolumetricConfig
	switch preset {
	case "default":
		config = renderer.DefaultVolumetricConfig()
	case "dense":
		config = renderer.DenseVolumetricConfig()
	case "underwater":
		config = renderer.UnderwaterVolumetricConfig()
	default:
		return config, fmt.Errorf("unknown preset %q", preset)
	}
	if configPath != "" {
		loaded, err := renderer.LoadVolumetricConfig(configPath)
		if err != nil {
			return config, err
		}
		config = loaded
	}
	if shadowSize > 0 {
		config.ShadowMapSize = shadowSize
		if err := config.Validate(); err != nil {
			return config, err
		}
	}
	return config, nil
}

// buildScene lays rolling dunes, a ring of towers and a ruined wall
// whose shadows cut visible shafts through the medium, plus a beacon
// crate that drifts through the shafts between frames.
func buildScene(e *engine.Engine, opts sceneOptions) {
	noise := perlin.NewPerlin(2, 2, 3, opts.seed)
	dune := func(x, z float32) float32 {
		return 5 * float32(noise.Noise2D(float64(x)*0.02+10, float64(z)*0.02+10))
	}

	e.AddModel(terrainModel(opts, dune))

	for i := 0; i < TowerCount; i++ {
		angle := 2 * math.Pi * float64(i) / TowerCount
		x := float32(math.Cos(angle)) * TowerRing
		z := float32(math.Sin(angle)) * TowerRing
		h := float32(11 + 3*(i%3))

		tower := renderer.NewBox(fmt.Sprintf("tower-%d", i), 2.2, h, 2.2)
		tower.Material = &renderer.Material{Name: "stone", DiffuseColor: mgl.Vec3{0.55, 0.52, 0.5}}
		tower.SetPosition(x, dune(x, z)+h/2-0.5, z)
		e.AddModel(tower)
	}

	lintel := renderer.NewBox("lintel", 12, 1.5, 2)
	lintel.Material = &renderer.Material{Name: "stone", DiffuseColor: mgl.Vec3{0.55, 0.52, 0.5}}
	lintel.SetPosition(0, 13, -TowerRing)
	e.AddModel(lintel)

	addRuin(e, dune)
	addBeacon(e)

	if opts.modelPath != "" {
		model, err := loader.LoadOBJ(opts.modelPath, false)
		if err != nil {
			logger.Log.Fatal("model", zap.String("path", opts.modelPath), zap.Error(err))
		}
		model.SetPosition(0, dune(0, 0)+1, 0)
		e.AddModel(model)
	}

	if opts.underwater {
		sheet := water.NewSurface("sea-surface", water.DefaultConfig())
		e.AddModel(sheet.Model)
		behaviour.GlobalManager.Add(sheet)
	}
}

// terrainModel reuses a cached terrain mesh when one exists, otherwise
// it meshes the dunes and fills the cache.
func terrainModel(opts sceneOptions, dune func(x, z float32) float32) *renderer.Model {
	if opts.terrainCache != "" {
		if model, err := renderer.LoadMeshFile(opts.terrainCache); err == nil {
			logger.Log.Info("terrain cache hit", zap.String("path", opts.terrainCache))
			return model
		}
	}

	terrain := renderer.NewPlane("terrain", TerrainSize, TerrainCells, dune)
	terrain.Material = &renderer.Material{Name: "sand", DiffuseColor: mgl.Vec3{0.72, 0.62, 0.45}}
	if opts.terrainCache != "" {
		if err := renderer.SaveMeshFile(opts.terrainCache, terrain); err != nil {
			logger.Log.Warn("terrain cache write", zap.Error(err))
		}
	}
	return terrain
}

// addRuin drops a broken wall east of the ring: two flank columns, a
// low wall with a door gap, all meshed from a voxel grid.
func addRuin(e *engine.Engine, dune func(x, z float32) float32) {
	grid := loader.NewVoxelWorld(9, 6, 2, 1)
	grid.Fill(func(x, y, z int) loader.VoxelID {
		switch {
		case y == 0:
			return 3
		case x < 2 || x > 6:
			return 3
		case y < 3 && x != 4:
			return 2
		default:
			return 0
		}
	})

	floor := dune(-18, 7) - 0.5
	for _, model := range grid.BuildModels("ruin") {
		model.SetPosition(-22, floor, 6)
		e.AddModel(model)
	}
}

// addBeacon floats a crate that circles the towers and bobs through
// the shafts.
func addBeacon(e *engine.Engine) {
	beacon := renderer.NewBox("beacon", 1.4, 1.4, 1.4)
	beacon.Material = &renderer.Material{Name: "beacon", DiffuseColor: mgl.Vec3{0.9, 0.35, 0.2}}
	beacon.SetPosition(TowerRing-4, 6, 0)
	e.AddModel(beacon)

	behaviour.GlobalManager.Add(&behaviour.Orbit{Model: beacon, DegreesPerSecond: 40})
	behaviour.GlobalManager.Add(&behaviour.Bob{Model: beacon, Amplitude: 1.2, Frequency: 0.3})
	behaviour.GlobalManager.Add(&behaviour.Spin{Model: beacon, Rate: mgl.Vec3{0, 90, 0}})
}

func writeFrame(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
