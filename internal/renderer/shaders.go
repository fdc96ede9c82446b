package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"godray/internal/raster"
)

// shadowVertexProgram projects a model into the sun's affine clip box.
func shadowVertexProgram(model *Model, sun Sun) raster.VertexProgram {
	transform := sun.WorldToLight.Mul4(model.ModelMatrix)
	return func(index int) raster.Vertex {
		position := model.Vertices[model.Indices[index]].Position
		return raster.Vertex{Position: transform.Mul4x1(position.Vec4(1))}
	}
}

// geometryPrograms fill the G-buffer: diffuse color in plane 0, world
// normal packed into [0,1] in plane 1.
func geometryPrograms(model *Model, viewProjection mgl32.Mat4) (raster.VertexProgram, raster.FragmentProgram) {
	mvp := viewProjection.Mul4(model.ModelMatrix)
	normalMatrix := model.NormalMatrix
	diffuse := model.Material.DiffuseColor

	vp := func(index int) raster.Vertex {
		v := model.Vertices[model.Indices[index]]
		var out raster.Vertex
		out.Position = mvp.Mul4x1(v.Position.Vec4(1))
		n := normalMatrix.Mul4x1(v.Normal.Vec4(0))
		out.Vary[0], out.Vary[1], out.Vary[2] = n.X(), n.Y(), n.Z()
		return out
	}
	fp := func(f *raster.Fragment) bool {
		n := mgl32.Vec3{f.Vary[0], f.Vary[1], f.Vary[2]}
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		// Two-sided: shade the side facing the camera.
		if !f.Front {
			n = n.Mul(-1)
		}
		f.Out[0] = diffuse.Vec4(1)
		f.Out[1] = mgl32.Vec4{n.X()*0.5 + 0.5, n.Y()*0.5 + 0.5, n.Z()*0.5 + 0.5, 1}
		return true
	}
	return vp, fp
}

// capVertexProgram feeds cap mesh vertices from base onward through the
// light-to-screen transform. The light-space depth rides along as a
// varying for the open-sky test.
func capVertexProgram(base, size int, sampler DepthSampler, lightToScreen mgl32.Mat4) raster.VertexProgram {
	return func(index int) raster.Vertex {
		lightPos := CapVertex(base+index, size, sampler)
		var out raster.Vertex
		out.Position = lightToScreen.Mul4x1(lightPos)
		out.Vary[0] = lightPos.Z()
		return out
	}
}

// capFragmentProgram emits the signed scattering term for one cap
// crossing. Front faces close a lit segment, back faces open one.
// Crossings at the light far plane keep their stencil effect but
// contribute the zero limit of the integral at infinity.
func capFragmentProgram(medium Medium, estimator DistanceEstimator, width, height int) raster.FragmentProgram {
	return func(f *raster.Fragment) bool {
		if f.Vary[0] >= 1-openSkyEpsilon {
			return true
		}
		ndcX, ndcY := raster.NDCForPixel(f.X, f.Y, width, height)
		c := medium.Contribution(estimator.Distance(ndcX, ndcY, f.Depth))
		if f.Front {
			c = c.Mul(-1)
		}
		f.Out[0] = c.Vec4(0)
		return true
	}
}

// nearCapVertexProgram spans the screen at the camera near plane, which
// sits at depth 1 under reversed Z.
func nearCapVertexProgram() raster.VertexProgram {
	quad := [6][2]float32{{-1, -1}, {-1, 1}, {1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	return func(index int) raster.Vertex {
		return raster.Vertex{Position: mgl32.Vec4{quad[index][0], quad[index][1], 1, 1}}
	}
}

// nearCapFragmentProgram opens the lit segment at the camera for rays
// whose origin sees the sun. Shadowed origins discard, leaving both
// color and parity untouched.
func nearCapFragmentProgram(params *LightParameters, estimator DistanceEstimator, width, height int) raster.FragmentProgram {
	return func(f *raster.Fragment) bool {
		ndcX, ndcY := raster.NDCForPixel(f.X, f.Y, width, height)
		if !params.SunLit(params.LightClip(mgl32.Vec3{ndcX, ndcY, 1})) {
			return false
		}
		f.Out[0] = params.Medium.Contribution(estimator.Distance(ndcX, ndcY, 1)).Vec4(0)
		return true
	}
}
