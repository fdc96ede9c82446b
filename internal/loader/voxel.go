package loader

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"godray/internal/logger"
	"godray/internal/renderer"
)

// VoxelID identifies a voxel type. Zero is air.
type VoxelID uint16

var defaultVoxelColors = map[VoxelID]mgl32.Vec3{
	1: {0.35, 0.55, 0.25}, // grass
	2: {0.45, 0.33, 0.22}, // dirt
	3: {0.52, 0.52, 0.55}, // stone
	4: {0.85, 0.80, 0.62}, // sand
}

var customVoxelColors = map[VoxelID]mgl32.Vec3{}

// GetVoxelColor returns the diffuse color for a voxel type. Air is
// black, unknown types fall back to a neutral gray.
func GetVoxelColor(id VoxelID) mgl32.Vec3 {
	if id == 0 {
		return mgl32.Vec3{}
	}
	if color, ok := customVoxelColors[id]; ok {
		return color
	}
	if color, ok := defaultVoxelColors[id]; ok {
		return color
	}
	return mgl32.Vec3{0.8, 0.8, 0.8}
}

func SetVoxelColor(id VoxelID, color mgl32.Vec3) {
	customVoxelColors[id] = color
}

func ClearCustomVoxelColors() {
	customVoxelColors = map[VoxelID]mgl32.Vec3{}
}

// VoxelWorld is a dense grid of voxel types. Coordinates outside the
// grid read as air and writes to them are dropped.
type VoxelWorld struct {
	SizeX, SizeY, SizeZ int
	VoxelSize           float32
	ActiveVoxels        int
	voxels              []VoxelID
}

func NewVoxelWorld(sizeX, sizeY, sizeZ int, voxelSize float32) *VoxelWorld {
	if sizeX < 1 {
		sizeX = 1
	}
	if sizeY < 1 {
		sizeY = 1
	}
	if sizeZ < 1 {
		sizeZ = 1
	}
	if voxelSize <= 0 {
		voxelSize = 1
	}
	return &VoxelWorld{
		SizeX:     sizeX,
		SizeY:     sizeY,
		SizeZ:     sizeZ,
		VoxelSize: voxelSize,
		voxels:    make([]VoxelID, sizeX*sizeY*sizeZ),
	}
}

func (w *VoxelWorld) InBounds(x, y, z int) bool {
	return x >= 0 && x < w.SizeX && y >= 0 && y < w.SizeY && z >= 0 && z < w.SizeZ
}

func (w *VoxelWorld) index(x, y, z int) int {
	return (y*w.SizeZ+z)*w.SizeX + x
}

func (w *VoxelWorld) SetVoxel(x, y, z int, id VoxelID) {
	if !w.InBounds(x, y, z) {
		return
	}
	slot := &w.voxels[w.index(x, y, z)]
	wasActive := *slot != 0
	*slot = id
	if wasActive && id == 0 {
		w.ActiveVoxels--
	} else if !wasActive && id != 0 {
		w.ActiveVoxels++
	}
}

func (w *VoxelWorld) GetVoxel(x, y, z int) VoxelID {
	if !w.InBounds(x, y, z) {
		return 0
	}
	return w.voxels[w.index(x, y, z)]
}

// Fill evaluates fn for every cell and stores the result.
func (w *VoxelWorld) Fill(fn func(x, y, z int) VoxelID) {
	for y := 0; y < w.SizeY; y++ {
		for z := 0; z < w.SizeZ; z++ {
			for x := 0; x < w.SizeX; x++ {
				w.SetVoxel(x, y, z, fn(x, y, z))
			}
		}
	}
}

// Cell face layout matches NewBox: corner offsets in half-cell units,
// ordered so the base,+1,+2 / +2,+1,+3 triangles wind outward.
var voxelFaces = [6]struct {
	dx, dy, dz int
	normal     mgl32.Vec3
	corners    [4]mgl32.Vec3
}{
	{0, 1, 0, mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-1, 1, -1}, {-1, 1, 1}, {1, 1, -1}, {1, 1, 1}}},
	{0, -1, 0, mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-1, -1, 1}, {-1, -1, -1}, {1, -1, 1}, {1, -1, -1}}},
	{1, 0, 0, mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{1, -1, -1}, {1, 1, -1}, {1, -1, 1}, {1, 1, 1}}},
	{-1, 0, 0, mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-1, -1, 1}, {-1, 1, 1}, {-1, -1, -1}, {-1, 1, -1}}},
	{0, 0, 1, mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{1, -1, 1}, {1, 1, 1}, {-1, -1, 1}, {-1, 1, 1}}},
	{0, 0, -1, mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{-1, -1, -1}, {-1, 1, -1}, {1, -1, -1}, {1, 1, -1}}},
}

type voxelMesh struct {
	vertices []renderer.ModelVertex
	indices  []uint32
}

func (m *voxelMesh) addFace(center mgl32.Vec3, half float32, face int) {
	base := uint32(len(m.vertices))
	for _, c := range voxelFaces[face].corners {
		m.vertices = append(m.vertices, renderer.ModelVertex{
			Position: center.Add(c.Mul(half)),
			Normal:   voxelFaces[face].normal,
		})
	}
	m.indices = append(m.indices, base, base+1, base+2, base+2, base+1, base+3)
}

// BuildModels merges the grid into one mesh per voxel type, emitting
// only faces between a solid cell and air. The grid origin sits at the
// model origin; placement happens through Model.Position.
func (w *VoxelWorld) BuildModels(name string) []*renderer.Model {
	meshes := map[VoxelID]*voxelMesh{}
	half := w.VoxelSize / 2
	for y := 0; y < w.SizeY; y++ {
		for z := 0; z < w.SizeZ; z++ {
			for x := 0; x < w.SizeX; x++ {
				id := w.voxels[w.index(x, y, z)]
				if id == 0 {
					continue
				}
				center := mgl32.Vec3{
					(float32(x) + 0.5) * w.VoxelSize,
					(float32(y) + 0.5) * w.VoxelSize,
					(float32(z) + 0.5) * w.VoxelSize,
				}
				for f, face := range voxelFaces {
					if w.GetVoxel(x+face.dx, y+face.dy, z+face.dz) != 0 {
						continue
					}
					mesh, ok := meshes[id]
					if !ok {
						mesh = &voxelMesh{}
						meshes[id] = mesh
					}
					mesh.addFace(center, half, f)
				}
			}
		}
	}

	ids := make([]VoxelID, 0, len(meshes))
	for id := range meshes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	models := make([]*renderer.Model, 0, len(ids))
	for _, id := range ids {
		mesh := meshes[id]
		model := renderer.NewModel(fmt.Sprintf("%s-%d", name, id), mesh.vertices, mesh.indices)
		model.Material = &renderer.Material{
			Name:         fmt.Sprintf("voxel-%d", id),
			DiffuseColor: GetVoxelColor(id),
		}
		models = append(models, model)
	}
	logger.Log.Debug("voxel grid meshed",
		zap.String("name", name),
		zap.Int("active", w.ActiveVoxels),
		zap.Int("models", len(models)))
	return models
}
