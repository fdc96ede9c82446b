package raster

import "github.com/go-gl/mathgl/mgl32"

// MaxVaryings is the number of float varyings interpolated per fragment.
const MaxVaryings = 8

// MaxColorOut is the number of color attachments a fragment can write.
const MaxColorOut = 2

// wClipEpsilon is the near clip boundary in homogeneous w.
const wClipEpsilon = 1e-5

// Vertex is a vertex program result: clip-space position plus varyings.
type Vertex struct {
	Position mgl32.Vec4
	Vary     [MaxVaryings]float32
}

// Fragment carries interpolated values into a fragment program. Programs
// write their outputs into Out and report whether the fragment is emitted;
// discarded fragments touch neither color nor depth nor stencil.
type Fragment struct {
	X, Y  int
	Depth float32 // interpolated NDC depth, before bias
	Front bool
	Vary  [MaxVaryings]float32
	Out   [MaxColorOut]mgl32.Vec4
}

// VertexProgram produces the vertex for an index. Draws are index-only; there
// is no vertex buffer.
type VertexProgram func(index int) Vertex

// FragmentProgram shades one fragment. Returning false discards it.
type FragmentProgram func(f *Fragment) bool

type screenVertex struct {
	x, y, z float32 // viewport x/y, NDC z
	invW    float32
	vary    [MaxVaryings]float32
}

// Draw rasterizes count/3 triangles through the pipeline into fb. Triangles
// are processed in submission order; blending is read-modify-write, so draw
// order is deterministic.
func (fb *Framebuffer) Draw(p Pipeline, count int, vp VertexProgram, fp FragmentProgram) {
	var frag Fragment
	for base := 0; base+2 < count; base += 3 {
		tri := [3]Vertex{vp(base), vp(base + 1), vp(base + 2)}
		polys := clipNear(tri)
		for _, poly := range polys {
			fb.rasterize(p, poly, &frag, fp)
		}
	}
}

// clipNear clips one triangle against w >= wClipEpsilon and fans the
// resulting polygon back into triangles. Varyings are interpolated linearly
// in clip space, which is exact for clipping.
func clipNear(tri [3]Vertex) [][3]Vertex {
	inside := 0
	for _, v := range tri {
		if v.Position.W() >= wClipEpsilon {
			inside++
		}
	}
	switch inside {
	case 3:
		return [][3]Vertex{tri}
	case 0:
		return nil
	}

	var poly [4]Vertex
	n := 0
	for i := 0; i < 3; i++ {
		a := tri[i]
		b := tri[(i+1)%3]
		aIn := a.Position.W() >= wClipEpsilon
		bIn := b.Position.W() >= wClipEpsilon
		if aIn {
			poly[n] = a
			n++
		}
		if aIn != bIn {
			t := (wClipEpsilon - a.Position.W()) / (b.Position.W() - a.Position.W())
			poly[n] = lerpVertex(a, b, t)
			n++
		}
	}
	if n < 3 {
		return nil
	}
	out := make([][3]Vertex, 0, 2)
	for i := 2; i < n; i++ {
		out = append(out, [3]Vertex{poly[0], poly[i-1], poly[i]})
	}
	return out
}

func lerpVertex(a, b Vertex, t float32) Vertex {
	var v Vertex
	v.Position = a.Position.Add(b.Position.Sub(a.Position).Mul(t))
	for i := range v.Vary {
		v.Vary[i] = a.Vary[i] + (b.Vary[i]-a.Vary[i])*t
	}
	return v
}

// edgeFn is the y-down screen-space edge function. Positive for points left
// of the directed edge a->b when y grows downward; a triangle whose three
// edges are all positive is wound clockwise on the image.
func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// topLeft reports whether the directed edge a->b is a top or left edge of a
// positively wound triangle. Pixels exactly on such edges belong to the
// triangle; pixels on other edges do not, so adjacent triangles never shade
// a shared-edge pixel twice. That single-coverage rule is what keeps stencil
// parity and additive accumulation exact across cap mesh seams.
func topLeft(ax, ay, bx, by float32) bool {
	dy := by - ay
	if dy == 0 {
		return bx > ax
	}
	return dy < 0
}

func (fb *Framebuffer) rasterize(p Pipeline, tri [3]Vertex, frag *Fragment, fp FragmentProgram) {
	var sv [3]screenVertex
	for i, v := range tri {
		invW := 1 / v.Position.W()
		nx := v.Position.X() * invW
		ny := v.Position.Y() * invW
		nz := v.Position.Z() * invW
		sv[i] = screenVertex{
			x:    (nx*0.5 + 0.5) * float32(fb.W),
			y:    (0.5 - ny*0.5) * float32(fb.H),
			z:    nz,
			invW: invW,
			vary: v.Vary,
		}
	}

	area2 := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, sv[2].x, sv[2].y)
	if area2 == 0 {
		return
	}
	front := (area2 > 0) == (p.FrontFace == WindingClockwise)
	if (p.Cull == CullFront && front) || (p.Cull == CullBack && !front) {
		return
	}
	if area2 < 0 {
		sv[1], sv[2] = sv[2], sv[1]
		area2 = -area2
	}

	minX := clampi(floorInt(min3(sv[0].x, sv[1].x, sv[2].x)), 0, fb.W-1)
	maxX := clampi(floorInt(max3(sv[0].x, sv[1].x, sv[2].x))+1, 0, fb.W-1)
	minY := clampi(floorInt(min3(sv[0].y, sv[1].y, sv[2].y)), 0, fb.H-1)
	maxY := clampi(floorInt(max3(sv[0].y, sv[1].y, sv[2].y))+1, 0, fb.H-1)

	accept0 := topLeft(sv[1].x, sv[1].y, sv[2].x, sv[2].y)
	accept1 := topLeft(sv[2].x, sv[2].y, sv[0].x, sv[0].y)
	accept2 := topLeft(sv[0].x, sv[0].y, sv[1].x, sv[1].y)

	st := p.StencilFront
	if !front {
		st = p.StencilBack
	}

	invArea := 1 / area2
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			e0 := edgeFn(sv[1].x, sv[1].y, sv[2].x, sv[2].y, px, py)
			e1 := edgeFn(sv[2].x, sv[2].y, sv[0].x, sv[0].y, px, py)
			e2 := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, px, py)
			if !covers(e0, accept0) || !covers(e1, accept1) || !covers(e2, accept2) {
				continue
			}
			b0 := e0 * invArea
			b1 := e1 * invArea
			b2 := e2 * invArea

			frag.X = x
			frag.Y = y
			frag.Depth = b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
			frag.Front = front

			w0 := b0 * sv[0].invW
			w1 := b1 * sv[1].invW
			w2 := b2 * sv[2].invW
			invDenom := 1 / (w0 + w1 + w2)
			for k := 0; k < MaxVaryings; k++ {
				frag.Vary[k] = (w0*sv[0].vary[k] + w1*sv[1].vary[k] + w2*sv[2].vary[k]) * invDenom
			}
			for k := range frag.Out {
				frag.Out[k] = mgl32.Vec4{}
			}

			if !fp(frag) {
				continue
			}
			fb.writeFragment(p, st, frag)
		}
	}
}

func covers(e float32, acceptEdge bool) bool {
	if e > 0 {
		return true
	}
	return e == 0 && acceptEdge
}

func (fb *Framebuffer) writeFragment(p Pipeline, st StencilState, frag *Fragment) {
	idx := frag.Y*fb.W + frag.X

	hasStencil := fb.Stencil != nil
	var stored uint8
	if hasStencil {
		stored = fb.Stencil[idx]
		if !st.test(stored) {
			fb.Stencil[idx] = st.write(stored, st.FailOp)
			return
		}
	}

	if fb.Depth != nil {
		if !p.DepthCompare.Eval(frag.Depth+p.DepthBias, fb.Depth[idx]) {
			if hasStencil {
				fb.Stencil[idx] = st.write(stored, st.DepthFailOp)
			}
			return
		}
		if p.DepthWrite {
			fb.Depth[idx] = frag.Depth
		}
	}
	if hasStencil {
		fb.Stencil[idx] = st.write(stored, st.PassOp)
	}

	for i, plane := range fb.Color {
		if i >= MaxColorOut {
			break
		}
		switch p.Blend {
		case BlendAdd:
			plane[idx] = plane[idx].Add(frag.Out[i])
		default:
			plane[idx] = frag.Out[i]
		}
	}
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
