package roomplane

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at submit time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGB returns an opaque Color from a packed 0xRRGGBB value.
func RGB(hex uint32) Color {
	return Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// Hex packs the RGB components back into a 0xRRGGBB value.
func (c Color) Hex() uint32 {
	return uint32(c.R*255+0.5)<<16 | uint32(c.G*255+0.5)<<8 | uint32(c.B*255+0.5)
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// Vec2 is a 2D vector used for screen positions and offsets.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Intersects reports whether r and other overlap. Rectangles that only share
// an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// WhitePixel is a 1x1 white image used for solid fills and untextured planes.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
	whiteTexture = NewTexture("white", WhitePixel)
}

// PlaneType selects how a plane is measured, tiled and composited.
type PlaneType uint8

const (
	PlaneUndefined PlaneType = iota // plain white quad
	PlaneWall                       // vertical wall, offset fractions scale the texture
	PlaneFloor                      // floor, tile origin follows one world unit on screen
	PlaneLandscape                  // outdoor backdrop behind windows, layered composition
)

// String returns the visualization section name style label for the type.
func (t PlaneType) String() string {
	switch t {
	case PlaneWall:
		return "wall"
	case PlaneFloor:
		return "floor"
	case PlaneLandscape:
		return "landscape"
	default:
		return "undefined"
	}
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendErase                   // destination-out (punch transparent holes)
	BlendNone                    // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}
