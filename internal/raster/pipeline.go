package raster

// Pipeline state for the software rasterizer. The shape deliberately follows
// Vulkan's fixed-function blocks (compare ops, per-face stencil op state,
// write masks) so render passes read like their GPU counterparts.

// CompareFunc decides whether an incoming value passes against a stored one.
type CompareFunc uint8

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// Eval reports whether incoming passes the test against stored.
func (c CompareFunc) Eval(incoming, stored float32) bool {
	switch c {
	case CompareLess:
		return incoming < stored
	case CompareEqual:
		return incoming == stored
	case CompareLessEqual:
		return incoming <= stored
	case CompareGreater:
		return incoming > stored
	case CompareNotEqual:
		return incoming != stored
	case CompareGreaterEqual:
		return incoming >= stored
	case CompareAlways:
		return true
	default:
		return false
	}
}

// StencilOp mutates the stored stencil value when its trigger fires.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilInvert
	StencilIncrementWrap
	StencilDecrementWrap
	StencilIncrementClamp
	StencilDecrementClamp
)

func (op StencilOp) apply(stored, ref uint8) uint8 {
	switch op {
	case StencilZero:
		return 0
	case StencilReplace:
		return ref
	case StencilInvert:
		return ^stored
	case StencilIncrementWrap:
		return stored + 1
	case StencilDecrementWrap:
		return stored - 1
	case StencilIncrementClamp:
		if stored == 0xff {
			return stored
		}
		return stored + 1
	case StencilDecrementClamp:
		if stored == 0 {
			return stored
		}
		return stored - 1
	default:
		return stored
	}
}

// StencilState is the per-face stencil block: one compare, three ops, and the
// masks and reference the ops run under. WriteMask is per face, which is what
// lets one draw toggle different bits on front and back facing fragments.
type StencilState struct {
	Compare     CompareFunc
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	CompareMask uint8
	WriteMask   uint8
	Reference   uint8
}

// DisabledStencil leaves the stencil plane untouched.
func DisabledStencil() StencilState {
	return StencilState{Compare: CompareAlways}
}

func (s StencilState) test(stored uint8) bool {
	return s.Compare.Eval(float32(s.Reference&s.CompareMask), float32(stored&s.CompareMask))
}

func (s StencilState) write(stored uint8, op StencilOp) uint8 {
	if s.WriteMask == 0 {
		return stored
	}
	return (stored &^ s.WriteMask) | (op.apply(stored, s.Reference) & s.WriteMask)
}

// BlendMode selects how fragment color combines with the attachment.
type BlendMode uint8

const (
	// BlendReplace overwrites the stored color.
	BlendReplace BlendMode = iota
	// BlendAdd sums ONE/ONE onto the stored color, the accumulation mode the
	// signed scattering integral relies on.
	BlendAdd
)

// CullMode discards triangles by facing before rasterization.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// Winding names a triangle orientation as it appears on the output image
// (x right, y down).
type Winding uint8

const (
	// WindingClockwise is positive signed area under the y-down edge function.
	WindingClockwise Winding = iota
	WindingCounterClockwise
)

// Pipeline is the full fixed-function state for one draw.
type Pipeline struct {
	DepthCompare CompareFunc
	DepthWrite   bool
	// DepthBias is added to the fragment depth before the compare only. With
	// reversed-Z camera depth a negative bias requires fragments to be
	// meaningfully nearer than the stored surface, which is how cap geometry
	// draped exactly over scene surfaces is kept out of the integral.
	DepthBias float32

	StencilFront StencilState
	StencilBack  StencilState

	Blend     BlendMode
	Cull      CullMode
	FrontFace Winding
}
