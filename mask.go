package roomplane

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BitmapMask cuts a named shape (a door or window outline) out of a plane at
// a location measured along the plane's left and right sides.
type BitmapMask struct {
	Type     string
	LeftLoc  float64
	RightLoc float64
}

// RectangleMask cuts a solid rectangle out of a plane. Locations and lengths
// are in world units along the plane's sides.
type RectangleMask struct {
	LeftLoc     float64
	RightLoc    float64
	LeftLength  float64
	RightLength float64
}

// WindowMask marks a window opening on a landscape that may show avatar
// reflections.
type WindowMask struct {
	LeftLoc  float64
	RightLoc float64
}

// MaskShape is the image drawn for a bitmap mask, positioned at the mask's
// projected location plus Offset.
type MaskShape struct {
	Texture *Texture
	Offset  Vec2
}

// MaskShapeProvider supplies named cut-out shapes. normal is the plane
// normal in camera axes so providers can pick a left- or right-facing shape.
type MaskShapeProvider interface {
	MaskShape(name string, scale int, normal mgl64.Vec3) (MaskShape, bool)
}

// maskSprite is one resolved mask drawn by the cutout filter, in layer space.
type maskSprite struct {
	Texture *Texture
	Rect    Rect
}

// maskCompositor accumulates a plane's bitmap and rectangle masks and turns
// them into the sprites the cutout filter subtracts.
type maskCompositor struct {
	bitmaps    []BitmapMask
	rectangles []RectangleMask
	windows    []WindowMask
	changed    bool

	sprites []maskSprite
	filter  *cutoutFilter
}

// addBitmap appends m unless an identical mask exists.
func (c *maskCompositor) addBitmap(m BitmapMask) bool {
	for _, existing := range c.bitmaps {
		if existing == m {
			return false
		}
	}
	c.bitmaps = append(c.bitmaps, m)
	c.changed = true
	return true
}

// addRectangle appends m unless an identical mask exists.
func (c *maskCompositor) addRectangle(m RectangleMask) bool {
	for _, existing := range c.rectangles {
		if existing == m {
			return false
		}
	}
	c.rectangles = append(c.rectangles, m)
	c.changed = true
	return true
}

func (c *maskCompositor) resetBitmaps() {
	if len(c.bitmaps) == 0 {
		return
	}
	c.bitmaps = c.bitmaps[:0]
	c.changed = true
}

func (c *maskCompositor) resetRectangles() {
	if len(c.rectangles) == 0 {
		return
	}
	c.rectangles = c.rectangles[:0]
	c.changed = true
}

// empty reports whether there is nothing to cut out.
func (c *maskCompositor) empty() bool {
	return len(c.sprites) == 0
}

// maskPosition converts locations along the plane sides into layer pixels.
// Location 0 maps to the far (right/bottom) edge of the layer.
func maskPosition(width, height, leftLoc, rightLoc, leftLen, rightLen float64) (float64, float64) {
	var x, y float64
	if leftLen > 0 {
		x = width - width*leftLoc/leftLen
	}
	if rightLen > 0 {
		y = height - height*rightLoc/rightLen
	}
	return x, y
}

// rebuild resolves every mask into layer-space sprites for a layer of
// width x height. Shapes the provider cannot supply are skipped.
func (c *maskCompositor) rebuild(shapes MaskShapeProvider, width, height, leftLen, rightLen float64, scale int, normal mgl64.Vec3) {
	c.sprites = c.sprites[:0]
	c.changed = false

	if shapes != nil {
		for _, m := range c.bitmaps {
			shape, ok := shapes.MaskShape(m.Type, scale, normal)
			if !ok || !shape.Texture.Valid() {
				continue
			}
			x, y := maskPosition(width, height, m.LeftLoc, m.RightLoc, leftLen, rightLen)
			c.sprites = append(c.sprites, maskSprite{
				Texture: shape.Texture,
				Rect: Rect{
					X:      x + shape.Offset.X,
					Y:      y + shape.Offset.Y,
					Width:  float64(shape.Texture.Width()),
					Height: float64(shape.Texture.Height()),
				},
			})
		}
	}

	for _, m := range c.rectangles {
		x, y := maskPosition(width, height, m.LeftLoc, m.RightLoc, leftLen, rightLen)
		var w, h float64
		if leftLen > 0 {
			w = width * m.LeftLength / leftLen
		}
		if rightLen > 0 {
			h = height * m.RightLength / rightLen
		}
		c.sprites = append(c.sprites, maskSprite{
			Texture: whiteTexture,
			Rect:    Rect{X: math.Trunc(x - w), Y: math.Trunc(y - h), Width: w, Height: h},
		})
	}

	if len(c.sprites) > 0 && c.filter == nil {
		c.filter = newCutoutFilter(c)
	}
}

// activeFilter returns the cutout filter when there is something to cut.
func (c *maskCompositor) activeFilter() Filter {
	if c.empty() || c.filter == nil {
		return nil
	}
	return c.filter
}

// MaskShapeSet is a MaskShapeProvider backed by a map. Shapes registered for
// a specific scale take precedence over scale-independent ones; normals are
// ignored.
type MaskShapeSet struct {
	shapes map[maskShapeKey]MaskShape
}

type maskShapeKey struct {
	name  string
	scale int
}

// NewMaskShapeSet creates an empty shape set.
func NewMaskShapeSet() *MaskShapeSet {
	return &MaskShapeSet{shapes: make(map[maskShapeKey]MaskShape)}
}

// Add registers shape under name for scale. A scale of 0 matches any scale.
func (s *MaskShapeSet) Add(name string, scale int, shape MaskShape) {
	s.shapes[maskShapeKey{name, scale}] = shape
}

// MaskShape implements MaskShapeProvider.
func (s *MaskShapeSet) MaskShape(name string, scale int, _ mgl64.Vec3) (MaskShape, bool) {
	if shape, ok := s.shapes[maskShapeKey{name, scale}]; ok {
		return shape, true
	}
	shape, ok := s.shapes[maskShapeKey{name, 0}]
	return shape, ok
}
