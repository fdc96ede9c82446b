package renderer

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Binary mesh cache format: gzip around a little-endian stream of
// magic, version, name, material, position/normal pairs and indices.
// Procedural meshes (terrain, voxel shells) cache here so repeated runs
// skip regeneration.
const (
	meshMagic   = uint32(0x4D455348) // "MESH"
	meshVersion = uint32(2)
)

// EncodeMeshBinary encodes a model's geometry and material.
func EncodeMeshBinary(model *Model) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if err := binary.Write(gz, binary.LittleEndian, meshMagic); err != nil {
		return nil, err
	}
	if err := binary.Write(gz, binary.LittleEndian, meshVersion); err != nil {
		return nil, err
	}
	if err := writeString(gz, model.Name); err != nil {
		return nil, err
	}

	material := model.Material
	if material == nil {
		material = DefaultMaterial
	}
	if err := writeString(gz, material.Name); err != nil {
		return nil, err
	}
	if err := binary.Write(gz, binary.LittleEndian, [3]float32{
		material.DiffuseColor.X(), material.DiffuseColor.Y(), material.DiffuseColor.Z(),
	}); err != nil {
		return nil, err
	}

	if err := binary.Write(gz, binary.LittleEndian, int32(len(model.Vertices))); err != nil {
		return nil, err
	}
	for _, v := range model.Vertices {
		record := [6]float32{
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			v.Normal.X(), v.Normal.Y(), v.Normal.Z(),
		}
		if err := binary.Write(gz, binary.LittleEndian, record); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(gz, binary.LittleEndian, int32(len(model.Indices))); err != nil {
		return nil, err
	}
	if err := binary.Write(gz, binary.LittleEndian, model.Indices); err != nil {
		return nil, err
	}

	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMeshBinary reconstructs a model with identity transform and a
// fresh bounding sphere.
func DecodeMeshBinary(data []byte) (*Model, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mesh cache gzip: %w", err)
	}
	defer gz.Close()

	var magic, version uint32
	if err := binary.Read(gz, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != meshMagic {
		return nil, fmt.Errorf("invalid mesh cache magic: %x", magic)
	}
	if err := binary.Read(gz, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != meshVersion {
		return nil, fmt.Errorf("unsupported mesh cache version: %d", version)
	}

	name, err := readString(gz)
	if err != nil {
		return nil, err
	}
	materialName, err := readString(gz)
	if err != nil {
		return nil, err
	}
	var diffuse [3]float32
	if err := binary.Read(gz, binary.LittleEndian, &diffuse); err != nil {
		return nil, err
	}

	var vertexCount int32
	if err := binary.Read(gz, binary.LittleEndian, &vertexCount); err != nil {
		return nil, err
	}
	if vertexCount < 0 || vertexCount > 1<<24 {
		return nil, fmt.Errorf("mesh cache vertex count %d", vertexCount)
	}
	vertices := make([]ModelVertex, vertexCount)
	for i := range vertices {
		var record [6]float32
		if err := binary.Read(gz, binary.LittleEndian, &record); err != nil {
			return nil, err
		}
		vertices[i] = ModelVertex{
			Position: mgl32.Vec3{record[0], record[1], record[2]},
			Normal:   mgl32.Vec3{record[3], record[4], record[5]},
		}
	}

	var indexCount int32
	if err := binary.Read(gz, binary.LittleEndian, &indexCount); err != nil {
		return nil, err
	}
	if indexCount < 0 || indexCount > 1<<26 || indexCount%3 != 0 {
		return nil, fmt.Errorf("mesh cache index count %d", indexCount)
	}
	indices := make([]uint32, indexCount)
	if err := binary.Read(gz, binary.LittleEndian, indices); err != nil {
		return nil, err
	}
	for _, idx := range indices {
		if idx >= uint32(vertexCount) {
			return nil, fmt.Errorf("mesh cache index %d out of range", idx)
		}
	}

	model := NewModel(name, vertices, indices)
	model.Material = &Material{
		Name:         materialName,
		DiffuseColor: mgl32.Vec3{diffuse[0], diffuse[1], diffuse[2]},
	}
	return model, nil
}

// SaveMeshFile writes a model's mesh cache to disk.
func SaveMeshFile(path string, model *Model) error {
	data, err := EncodeMeshBinary(model)
	if err != nil {
		return fmt.Errorf("encode mesh %s: %w", model.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write mesh cache: %w", err)
	}
	return nil
}

// LoadMeshFile reads a mesh cache from disk.
func LoadMeshFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mesh cache: %w", err)
	}
	model, err := DecodeMeshBinary(data)
	if err != nil {
		return nil, fmt.Errorf("decode mesh cache %s: %w", path, err)
	}
	return model, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	if length < 0 || length > 1<<20 {
		return "", fmt.Errorf("mesh cache string length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
