package renderer

import "github.com/go-gl/mathgl/mgl32"

// The volume cap mesh is the boundary surface of the sunlit region, generated
// procedurally from the shadow map: a "top" region draping one grid cell over
// every shadow texel (sunlit geometry and open-sky floor alike, with
// silhouette cliffs forming wherever neighboring texels disagree), and a
// "skirt" of curtain quads hanging from the open rim down to the far plane so
// the boundary stays closed at the light frustum's edge. Vertices are a pure
// function of the vertex index, the shadow resolution and the sampled depths;
// no vertex buffer ever exists.
//
// Winding: faces are ordered so that watched from the sunlit side they
// rasterize clockwise, which the volumetric pipelines declare front facing.
// A front fragment is therefore the camera ray leaving sunlit space and a
// back fragment is it entering; the signed contributions and the stencil
// protocol both build on that orientation.

// DepthSampler fetches one shadow texel; coordinates are pre-clamped.
type DepthSampler func(x, y int) float32

// Corner offsets of the two triangles of a top-region cell, wound CCW as seen
// from +z (the away-from-sun side).
var topCorners = [6][2]int{
	{0, 0}, {1, 0}, {0, 1},
	{1, 0}, {1, 1}, {0, 1},
}

// Skirt corner table: step selects the quad's leading or trailing rim track,
// drop selects rim depth versus far plane. Order keeps the face toward the
// open outside front, the lit side like everywhere else on the mesh.
var skirtCorners = [6][2]int{
	{0, 0}, {1, 0}, {1, 1},
	{0, 0}, {1, 1}, {0, 1},
}

// TopVertexCount is the size of the top region: (S+1)^2 cells of 6 vertices.
// The outermost ring of cells lies outside the clip square, flat at far
// depth, so its crossings take the same zero-contribution path as open sky;
// emitting it keeps the index math branch-free.
func TopVertexCount(size int) int {
	return 6 * (size + 1) * (size + 1)
}

// SkirtVertexCount covers four boundary edges of `size` quads each.
func SkirtVertexCount(size int) int {
	return 24 * size
}

// CapVertexCount is the full draw size for one cap mesh.
func CapVertexCount(size int) int {
	return TopVertexCount(size) + SkirtVertexCount(size)
}

// CapVertex returns the light-clip-space position of cap mesh vertex `index`
// for shadow resolution `size`. Grid coordinate g maps to clip x = 2g/size-1,
// so coordinate 0 sits on the -1 edge and coordinate size on the +1 edge.
// A corner whose coordinates survive clamping into [0,size-1] samples the
// shadow map there; a clamped corner reads as the far plane 1.0, which is
// what seals the +x/+y rim inline and keeps every out-of-grid direction
// "open sky" rather than spuriously occluded.
func CapVertex(index, size int, depth DepthSampler) mgl32.Vec4 {
	if index < TopVertexCount(size) {
		cell := index / 6
		corner := topCorners[index%6]
		u := cell%(size+1) + corner[0]
		v := cell/(size+1) + corner[1]
		return mgl32.Vec4{gridToClip(u, size), gridToClip(v, size), rimDepth(u, v, size, depth), 1}
	}

	idx := index - TopVertexCount(size)
	quad := idx / 6
	corner := skirtCorners[idx%6]
	edge := quad / size
	pos := quad%size + corner[0]

	// Ring walk, counter-clockwise seen from +z: up the -x edge, right along
	// +y, down the +x edge, left along -y.
	var u, v int
	switch edge {
	case 0:
		u, v = 0, pos
	case 1:
		u, v = pos, size
	case 2:
		u, v = size, size-pos
	default:
		u, v = size-pos, 0
	}

	d := float32(1)
	if corner[1] == 0 {
		d = rimDepth(u, v, size, depth)
	}
	return mgl32.Vec4{gridToClip(u, size), gridToClip(v, size), d, 1}
}

func gridToClip(g, size int) float32 {
	return 2*float32(g)/float32(size) - 1
}

func rimDepth(u, v, size int, depth DepthSampler) float32 {
	uc := clampGrid(u, size)
	vc := clampGrid(v, size)
	if u != uc || v != vc {
		return 1
	}
	return depth(uc, vc)
}

func clampGrid(g, size int) int {
	if g < 0 {
		return 0
	}
	if g > size-1 {
		return size - 1
	}
	return g
}
