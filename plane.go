package roomplane

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// animationInterval is the minimum time between two renders driven only by
// animation layers.
const animationInterval = 500

// planeIDCounter is a plain counter (no atomic, planes are single-threaded).
// The first plane gets id 2.
var planeIDCounter = 1

func nextPlaneID() int {
	planeIDCounter++
	return planeIDCounter
}

// PlaneConfig describes a plane in world space. The plane spans LeftSide and
// RightSide from Location; Origin is the point reported as Offset.
type PlaneConfig struct {
	Origin    mgl64.Vec3
	Location  mgl64.Vec3
	LeftSide  mgl64.Vec3
	RightSide mgl64.Vec3
	Type      PlaneType

	// UseMask enables bitmap and rectangle masks.
	UseMask          bool
	SecondaryNormals []mgl64.Vec3
	RandomSeed       int

	// Texture offset and clamp, as fractions of the measured pixel span.
	TextureOffsetX float64
	TextureOffsetY float64
	TextureMaxX    float64
	TextureMaxY    float64
}

// Providers are the collaborators a plane reads from. Any of them may be nil
// except Buffers.
type Providers struct {
	Assets     AssetLibrary
	MaskShapes MaskShapeProvider
	Buffers    BufferPool
}

// Plane is one planar room surface (floor, wall or landscape) composited into
// its own offscreen buffer. Create with NewPlane, call Update every tick and
// draw Texture at Offset, ordered by RelativeDepth.
type Plane struct {
	cfg      PlaneConfig
	normal   mgl64.Vec3
	id       string
	uniqueID int

	color         Color
	hasColor      bool
	canBeVisible  bool
	hasTexture    bool
	isHighlighter bool
	extraDepth    float64

	isVisible        bool
	disposed         bool
	geometryUpdateID int

	corners       [4]Vec2
	offset        Vec2
	width, height int
	relativeDepth float64

	layer planeLayer
	data  PlaneData

	masks   maskCompositor
	windows []WindowMask

	assets AssetLibrary
	shapes MaskShapeProvider
	pool   BufferPool
	buffer *ebiten.Image

	isAnimated          bool
	lastAnimationUpdate float64

	lastReflectionID int
	fader            *reflectionFader

	passes    []renderPass
	renders   int
	signature landscapeSignature
}

// NewPlane creates a plane. The normal is the unit cross product of the
// sides, or zero when the sides are parallel.
func NewPlane(cfg PlaneConfig, providers Providers) *Plane {
	p := &Plane{
		cfg:              cfg,
		uniqueID:         nextPlaneID(),
		color:            ColorWhite,
		canBeVisible:     true,
		hasTexture:       true,
		geometryUpdateID: -1,
		lastReflectionID: -1,
		assets:           providers.Assets,
		shapes:           providers.MaskShapes,
		pool:             providers.Buffers,
		fader:            newReflectionFader(),
	}
	p.cfg.SecondaryNormals = append([]mgl64.Vec3(nil), cfg.SecondaryNormals...)

	n := cfg.LeftSide.Cross(cfg.RightSide)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	p.normal = n
	return p
}

// ID returns the visualization key.
func (p *Plane) ID() string { return p.id }

// SetID changes the visualization key. It takes effect on the next geometry
// change or forced update.
func (p *Plane) SetID(id string) { p.id = id }

// UniqueID returns the process-unique plane id.
func (p *Plane) UniqueID() int { return p.uniqueID }

// Type returns the plane type.
func (p *Plane) Type() PlaneType { return p.cfg.Type }

// Normal returns the unit normal.
func (p *Plane) Normal() mgl64.Vec3 { return p.normal }

// Origin returns the world point the plane is anchored at.
func (p *Plane) Origin() mgl64.Vec3 { return p.cfg.Origin }

// Location returns the plane's world location.
func (p *Plane) Location() mgl64.Vec3 { return p.cfg.Location }

// LeftSide returns the plane's left side vector.
func (p *Plane) LeftSide() mgl64.Vec3 { return p.cfg.LeftSide }

// RightSide returns the plane's right side vector.
func (p *Plane) RightSide() mgl64.Vec3 { return p.cfg.RightSide }

// Color returns the fallback landscape tint.
func (p *Plane) Color() Color { return p.color }

// SetColor sets the tint used for landscape layers that declare none.
func (p *Plane) SetColor(c Color) {
	p.color = c
	p.hasColor = true
}

// CanBeVisible reports whether the plane may be shown at all.
func (p *Plane) CanBeVisible() bool { return p.canBeVisible }

// SetCanBeVisible hides or allows the plane independently of culling.
func (p *Plane) SetCanBeVisible(v bool) { p.canBeVisible = v }

// SetHasTexture selects between the resolved texture and a flat fill.
func (p *Plane) SetHasTexture(v bool) { p.hasTexture = v }

// IsHighlighter reports whether the plane is a selection highlight.
func (p *Plane) IsHighlighter() bool { return p.isHighlighter }

// SetIsHighlighter marks the plane as a selection highlight.
func (p *Plane) SetIsHighlighter(v bool) { p.isHighlighter = v }

// SetExtraDepth adds a bias to RelativeDepth.
func (p *Plane) SetExtraDepth(d float64) { p.extraDepth = d }

// Visible reports whether the plane faces the camera and may be shown.
func (p *Plane) Visible() bool { return p.isVisible && p.canBeVisible }

// RelativeDepth is the draw-order key; larger is further away.
func (p *Plane) RelativeDepth() float64 { return p.relativeDepth + p.extraDepth }

// Offset is the projected origin relative to the buffer's top-left corner.
func (p *Plane) Offset() Vec2 { return p.offset }

// Corners returns the projected corners A, B, C, D in buffer space.
func (p *Plane) Corners() [4]Vec2 { return p.corners }

// Width returns the buffer width in pixels.
func (p *Plane) Width() int { return p.width }

// Height returns the buffer height in pixels.
func (p *Plane) Height() int { return p.height }

// Texture returns the composited buffer, or nil before the first visible
// update and after Dispose.
func (p *Plane) Texture() *ebiten.Image { return p.buffer }

// Data returns the decoration resolved on the last geometry change.
func (p *Plane) Data() PlaneData { return p.data }

// Disposed reports whether Dispose has been called.
func (p *Plane) Disposed() bool { return p.disposed }

// Update advances the plane to the current geometry and time. reflections is
// the frame's avatar registry snapshot. Returns true when the visibility
// changed or the buffer was re-rendered.
func (p *Plane) Update(geom Geometry, timeMs float64, force bool, reflections ReflectionSnapshot) bool {
	if geom == nil || p.disposed {
		return false
	}

	needsUpdate := force
	if p.geometryUpdateID != geom.UpdateID() {
		p.geometryUpdateID = geom.UpdateID()
		needsUpdate = true
	}
	landscape := p.cfg.Type == PlaneLandscape
	needsAnimation := p.isAnimated && landscape && timeMs-p.lastAnimationUpdate >= animationInterval

	if !needsUpdate && !needsAnimation && !p.Visible() {
		return false
	}

	transitioned := false
	if needsUpdate {
		transitioned = p.classifyVisibility(geom.DirectionAxis())
		if !p.isVisible {
			return transitioned
		}
		p.updateCorners(geom)
		p.updateDepth(geom)
		p.measure(geom)
	}
	if !p.isVisible {
		return transitioned
	}

	if needsUpdate || p.masks.changed {
		normal := geom.CoordinatePosition(p.normal)
		p.masks.rebuild(p.shapes, p.layer.width, p.layer.height,
			p.cfg.LeftSide.Len(), p.cfg.RightSide.Len(), geom.Scale(), normal)
		needsUpdate = true
	}

	if p.buffer != nil {
		b := p.buffer.Bounds()
		if b.Dx() != max(p.width, 1) || b.Dy() != max(p.height, 1) {
			p.pool.Release(p.buffer)
			p.buffer = nil
		}
	}
	if p.buffer == nil {
		p.buffer = p.pool.Acquire(p.width, p.height)
	}

	reflectionUpdate := false
	if landscape && len(p.windows) > 0 && reflections.UpdateID != p.lastReflectionID {
		p.lastReflectionID = reflections.UpdateID
		reflectionUpdate = true
	}

	animationUpdate := false
	if p.isAnimated && landscape {
		if timeMs-p.lastAnimationUpdate >= animationInterval || needsUpdate || reflectionUpdate {
			animationUpdate = true
			p.lastAnimationUpdate = timeMs
		}
	}

	fading := landscape && len(p.windows) > 0 && p.fader.ramping()

	if !needsUpdate && !animationUpdate && !reflectionUpdate && !fading {
		return transitioned
	}
	p.passes = p.buildPasses(timeMs, reflections.Avatars)
	submitPasses(p.buffer, p.passes, p.pool, p.masks.activeFilter())
	p.renders++
	return true
}

// updateCorners projects the four corners, rounds them to whole pixels and
// shifts everything so the bounding box starts at (0, 0).
func (p *Plane) updateCorners(geom Geometry) {
	loc, left, right := p.cfg.Location, p.cfg.LeftSide, p.cfg.RightSide
	world := [4]mgl64.Vec3{
		loc,
		loc.Add(right),
		loc.Add(left).Add(right),
		loc.Add(left),
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, w := range world {
		s := geom.ScreenPosition(w)
		c := Vec2{roundHalfUp(s.X()), roundHalfUp(s.Y())}
		p.corners[i] = c
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	for i := range p.corners {
		p.corners[i].X -= minX
		p.corners[i].Y -= minY
	}

	o := geom.ScreenPoint(p.cfg.Origin)
	p.offset = Vec2{roundHalfUp(o.X) - minX, roundHalfUp(o.Y) - minY}
	p.width = int(maxX - minX)
	p.height = int(maxY - minY)
}

// updateDepth computes the draw-order key from the deepest corner.
func (p *Plane) updateDepth(geom Geometry) {
	loc, left, right := p.cfg.Location, p.cfg.LeftSide, p.cfg.RightSide
	deepest := math.Inf(-1)
	for _, w := range [4]mgl64.Vec3{loc, loc.Add(right), loc.Add(left).Add(right), loc.Add(left)} {
		deepest = math.Max(deepest, geom.ScreenPosition(w).Z())
	}
	depth := deepest - geom.ScreenPosition(p.cfg.Origin).Z()

	switch p.cfg.Type {
	case PlaneFloor:
		depth -= (loc.Z() + min(0, left.Z(), right.Z())) * float64(geom.Scale())
	case PlaneLandscape:
		depth += 0.02
	}
	p.relativeDepth = depth
}

// AddBitmapMask cuts the named shape out of the plane at the given side
// locations. Returns false when masks are disabled or the mask exists.
func (p *Plane) AddBitmapMask(shape string, leftLoc, rightLoc float64) bool {
	if p.disposed || !p.cfg.UseMask {
		return false
	}
	return p.masks.addBitmap(BitmapMask{Type: shape, LeftLoc: leftLoc, RightLoc: rightLoc})
}

// ResetBitmapMasks removes every bitmap mask and every window mask.
func (p *Plane) ResetBitmapMasks() {
	if p.disposed {
		return
	}
	p.windows = p.windows[:0]
	if !p.cfg.UseMask {
		return
	}
	p.masks.resetBitmaps()
}

// AddRectangleMask cuts a rectangle of leftLength x rightLength world units
// ending at the given side locations. Returns false when masks are disabled
// or the mask exists.
func (p *Plane) AddRectangleMask(leftLoc, rightLoc, leftLength, rightLength float64) bool {
	if p.disposed || !p.cfg.UseMask {
		return false
	}
	return p.masks.addRectangle(RectangleMask{
		LeftLoc:     leftLoc,
		RightLoc:    rightLoc,
		LeftLength:  leftLength,
		RightLength: rightLength,
	})
}

// ResetRectangleMasks removes every rectangle mask.
func (p *Plane) ResetRectangleMasks() {
	if p.disposed || !p.cfg.UseMask {
		return
	}
	p.masks.resetRectangles()
}

// AddWindowMask declares a window that may show avatar reflections.
func (p *Plane) AddWindowMask(leftLoc, rightLoc float64) {
	if p.disposed {
		return
	}
	p.windows = append(p.windows, WindowMask{LeftLoc: leftLoc, RightLoc: rightLoc})
}

// HasWindowMask reports whether any window mask is declared.
func (p *Plane) HasWindowMask() bool { return len(p.windows) > 0 }

// Dispose returns the buffer to the pool and drops animation layers. Every
// later call on the plane is a no-op.
func (p *Plane) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.buffer != nil {
		p.pool.Release(p.buffer)
		p.buffer = nil
	}
	p.disposeAnimationLayers()
	p.fader.reset()
	p.masks.sprites = nil
	p.masks.filter = nil
	p.passes = nil
}

func (p *Plane) disposeAnimationLayers() {
	for _, l := range p.data.AnimationLayers {
		l.Dispose()
	}
	p.data.AnimationLayers = nil
	p.isAnimated = false
}
