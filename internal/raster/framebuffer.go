package raster

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer is a render target: zero or more color planes plus optional
// depth and stencil planes, all sharing one resolution. Planes are flat
// row-major slices indexed y*W+x.
type Framebuffer struct {
	W, H    int
	Color   [][]mgl32.Vec4
	Depth   []float32
	Stencil []uint8
}

// NewFramebuffer allocates colorPlanes color attachments plus depth and
// stencil planes.
func NewFramebuffer(w, h, colorPlanes int) *Framebuffer {
	fb := &Framebuffer{
		W:       w,
		H:       h,
		Depth:   make([]float32, w*h),
		Stencil: make([]uint8, w*h),
	}
	for i := 0; i < colorPlanes; i++ {
		fb.Color = append(fb.Color, make([]mgl32.Vec4, w*h))
	}
	return fb
}

// NewColorBuffer allocates a single color plane with no depth or stencil.
func NewColorBuffer(w, h int) *Framebuffer {
	return &Framebuffer{W: w, H: h, Color: [][]mgl32.Vec4{make([]mgl32.Vec4, w*h)}}
}

// ClearColor fills every color plane with c.
func (fb *Framebuffer) ClearColor(c mgl32.Vec4) {
	for _, plane := range fb.Color {
		for i := range plane {
			plane[i] = c
		}
	}
}

// ClearDepth fills the depth plane with z.
func (fb *Framebuffer) ClearDepth(z float32) {
	for i := range fb.Depth {
		fb.Depth[i] = z
	}
}

// ClearStencil fills the stencil plane with s.
func (fb *Framebuffer) ClearStencil(s uint8) {
	for i := range fb.Stencil {
		fb.Stencil[i] = s
	}
}

// At returns the color of plane 0 at (x, y).
func (fb *Framebuffer) At(x, y int) mgl32.Vec4 {
	return fb.Color[0][y*fb.W+x]
}

// PlaneAt returns the color of the given plane at (x, y).
func (fb *Framebuffer) PlaneAt(plane, x, y int) mgl32.Vec4 {
	return fb.Color[plane][y*fb.W+x]
}

// DepthAt returns the stored depth at (x, y).
func (fb *Framebuffer) DepthAt(x, y int) float32 {
	return fb.Depth[y*fb.W+x]
}

// StencilAt returns the stored stencil byte at (x, y).
func (fb *Framebuffer) StencilAt(x, y int) uint8 {
	return fb.Stencil[y*fb.W+x]
}

// NDCForPixel maps a pixel center to NDC, inverting the viewport transform.
// NDC y points up; image y points down.
func NDCForPixel(x, y, w, h int) (float32, float32) {
	nx := (float32(x)+0.5)/float32(w)*2 - 1
	ny := 1 - (float32(y)+0.5)/float32(h)*2
	return nx, ny
}

// Image converts color plane 0 to an 8-bit RGBA image, clamping to [0,1].
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.W, fb.H))
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			c := fb.Color[0][y*fb.W+x]
			img.SetRGBA(x, y, color.RGBA{
				R: channelByte(c.X()),
				G: channelByte(c.Y()),
				B: channelByte(c.Z()),
				A: 0xff,
			})
		}
	}
	return img
}

func channelByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

// DepthTexture is a square depth map sampled by downstream passes. It can
// alias a Framebuffer's depth plane so a depth-only pass renders straight
// into it.
type DepthTexture struct {
	Size int
	Pix  []float32
}

// NewDepthTexture allocates a size x size depth texture cleared to far (1).
func NewDepthTexture(size int) *DepthTexture {
	t := &DepthTexture{Size: size, Pix: make([]float32, size*size)}
	for i := range t.Pix {
		t.Pix[i] = 1
	}
	return t
}

// Target wraps the texture as a depth-only framebuffer rendering into Pix.
func (t *DepthTexture) Target() *Framebuffer {
	return &Framebuffer{W: t.Size, H: t.Size, Depth: t.Pix}
}

// Fetch returns the texel at (x, y), clamping coordinates to the edge.
func (t *DepthTexture) Fetch(x, y int) float32 {
	x = clampi(x, 0, t.Size-1)
	y = clampi(y, 0, t.Size-1)
	return t.Pix[y*t.Size+x]
}

// Sample bilinearly filters the texture at texture coordinates in [0,1],
// clamping to the edge. Matches a LINEAR/CLAMP_TO_EDGE sampler.
func (t *DepthTexture) Sample(u, v float32) float32 {
	fx := u*float32(t.Size) - 0.5
	fy := v*float32(t.Size) - 0.5
	x0 := floorInt(fx)
	y0 := floorInt(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	d00 := t.Fetch(x0, y0)
	d10 := t.Fetch(x0+1, y0)
	d01 := t.Fetch(x0, y0+1)
	d11 := t.Fetch(x0+1, y0+1)
	top := d00 + (d10-d00)*tx
	bot := d01 + (d11-d01)*tx
	return top + (bot-top)*ty
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorInt(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}
