package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"godray/internal/logger"
	"godray/internal/renderer"
)

// LoadOBJ parses a Wavefront OBJ file into a renderable model. Position
// and normal references are unified into one vertex stream and faces
// with more than three corners are fanned into triangles. Normals are
// rebuilt from the geometry when the file carries none, or always when
// recalculateNormals is set, since exported normals are often broken.
func LoadOBJ(path string, recalculateNormals bool) (*renderer.Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer file.Close()

	type cornerKey struct{ v, vn int }
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		vertices  []renderer.ModelVertex
		indices   []uint32
		material  *renderer.Material
		lookup    = make(map[cornerKey]uint32)
		sawNormal bool
	)

	resolveCorner := func(corner string) (uint32, error) {
		fields := strings.Split(corner, "/")
		vIdx, err := parseObjIndex(fields[0], len(positions))
		if err != nil {
			return 0, fmt.Errorf("vertex reference %q: %w", corner, err)
		}
		vnIdx := -1
		if len(fields) == 3 && fields[2] != "" {
			vnIdx, err = parseObjIndex(fields[2], len(normals))
			if err != nil {
				return 0, fmt.Errorf("normal reference %q: %w", corner, err)
			}
			sawNormal = true
		}

		key := cornerKey{vIdx, vnIdx}
		if idx, ok := lookup[key]; ok {
			return idx, nil
		}
		vertex := renderer.ModelVertex{Position: positions[vIdx]}
		if vnIdx >= 0 {
			vertex.Normal = normals[vnIdx]
		}
		idx := uint32(len(vertices))
		vertices = append(vertices, vertex)
		lookup[key] = idx
		return idx, nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		switch parts[0] {
		case "v":
			p, err := parseVec3(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: vertex: %w", path, lineNo, err)
			}
			positions = append(positions, p)
		case "vn":
			n, err := parseVec3(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: normal: %w", path, lineNo, err)
			}
			normals = append(normals, n)
		case "f":
			corners := parts[1:]
			if len(corners) < 3 {
				return nil, fmt.Errorf("%s:%d: face with %d corners", path, lineNo, len(corners))
			}
			face := make([]uint32, len(corners))
			for i, corner := range corners {
				idx, err := resolveCorner(corner)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
				}
				face[i] = idx
			}
			for i := 2; i < len(face); i++ {
				indices = append(indices, face[0], face[i-1], face[i])
			}
		case "mtllib":
			if len(parts) >= 2 {
				if m := loadFirstMaterial(filepath.Join(filepath.Dir(path), parts[1])); m != nil {
					material = m
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%s contains no faces", path)
	}

	if recalculateNormals || !sawNormal {
		rebuildNormals(vertices, indices)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model := renderer.NewModel(name, vertices, indices)
	if material != nil {
		model.Material = material
	}
	logger.Log.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", len(vertices)),
		zap.Int("triangles", len(indices)/3))
	return model, nil
}

// parseObjIndex resolves a one-based OBJ reference, with negative
// values counting back from the end of the list.
func parseObjIndex(field string, count int) (int, error) {
	raw, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	idx := raw - 1
	if raw < 0 {
		idx = count + raw
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d outside 1..%d", raw, count)
	}
	return idx, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, fmt.Errorf("want 3 components, have %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// rebuildNormals accumulates area-weighted face normals per vertex.
func rebuildNormals(vertices []renderer.ModelVertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Normal = mgl32.Vec3{}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a := vertices[indices[i]].Position
		b := vertices[indices[i+1]].Position
		c := vertices[indices[i+2]].Position
		face := b.Sub(a).Cross(c.Sub(a))
		vertices[indices[i]].Normal = vertices[indices[i]].Normal.Add(face)
		vertices[indices[i+1]].Normal = vertices[indices[i+1]].Normal.Add(face)
		vertices[indices[i+2]].Normal = vertices[indices[i+2]].Normal.Add(face)
	}
	for i := range vertices {
		if vertices[i].Normal.Len() > 1e-12 {
			vertices[i].Normal = vertices[i].Normal.Normalize()
		} else {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
		}
	}
}

// loadFirstMaterial reads the first material in an MTL library, keeping
// only the diffuse color. Missing libraries are not an error; the model
// falls back to the default material.
func loadFirstMaterial(path string) *renderer.Material {
	file, err := os.Open(path)
	if err != nil {
		logger.Log.Debug("material library not found", zap.String("path", path))
		return nil
	}
	defer file.Close()

	var material *renderer.Material
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "newmtl":
			if material != nil {
				return material // first material wins
			}
			name := "default"
			if len(parts) >= 2 {
				name = parts[1]
			}
			material = &renderer.Material{Name: name, DiffuseColor: mgl32.Vec3{1, 1, 1}}
		case "Kd":
			if material == nil {
				continue
			}
			if kd, err := parseVec3(parts[1:]); err == nil {
				material.DiffuseColor = kd
			}
		}
	}
	return material
}
