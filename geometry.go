package roomplane

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Geometry projects world coordinates into the room's screen space. The
// scene driver owns it; planes only read from it during Update.
type Geometry interface {
	// Scale is the zoom level in pixels per world unit (32 or 64 in practice).
	Scale() int
	// UpdateID changes whenever the projection changes.
	UpdateID() int
	// DirectionAxis is the unit viewing direction, pointing into the scene.
	DirectionAxis() mgl64.Vec3
	// ScreenPosition returns the screen x, y and the depth along the view axis.
	ScreenPosition(world mgl64.Vec3) mgl64.Vec3
	// ScreenPoint returns only the screen x, y of ScreenPosition.
	ScreenPoint(world mgl64.Vec3) Vec2
	// CoordinatePosition expresses a world direction in camera axes
	// (x right, y up, z into the scene) without scaling or translation.
	CoordinatePosition(v mgl64.Vec3) mgl64.Vec3
}

// Default camera angles in degrees used by room views.
const (
	HorizontalAngleDefault = 45.0
	VerticalAngleDefault   = 30.0
)

// RoomGeometry is an orthographic isometric camera. Direction holds the
// horizontal and vertical viewing angles in degrees in its X and Y.
type RoomGeometry struct {
	scale     int
	updateID  int
	direction mgl64.Vec3
	location  mgl64.Vec3

	xAxis, yAxis, depthAxis mgl64.Vec3
}

// NewRoomGeometry creates a camera at location looking along the given
// horizontal/vertical angles.
func NewRoomGeometry(scale int, direction, location mgl64.Vec3) *RoomGeometry {
	g := &RoomGeometry{scale: scale, location: location}
	g.SetDirection(direction)
	return g
}

// Scale implements Geometry.
func (g *RoomGeometry) Scale() int { return g.scale }

// UpdateID implements Geometry.
func (g *RoomGeometry) UpdateID() int { return g.updateID }

// DirectionAxis implements Geometry.
func (g *RoomGeometry) DirectionAxis() mgl64.Vec3 { return g.depthAxis }

// Location returns the camera location in world space.
func (g *RoomGeometry) Location() mgl64.Vec3 { return g.location }

// SetScale changes the zoom level. Planes re-render on their next Update.
func (g *RoomGeometry) SetScale(scale int) {
	if scale == g.scale {
		return
	}
	g.scale = scale
	g.updateID++
}

// SetLocation moves the camera.
func (g *RoomGeometry) SetLocation(location mgl64.Vec3) {
	if location == g.location {
		return
	}
	g.location = location
	g.updateID++
}

// SetDirection rebuilds the camera basis from horizontal/vertical angles.
func (g *RoomGeometry) SetDirection(direction mgl64.Vec3) {
	g.direction = direction
	h := mgl64.DegToRad(direction.X())
	v := mgl64.DegToRad(direction.Y())
	sinH, cosH := math.Sincos(h)
	sinV, cosV := math.Sincos(v)

	g.xAxis = mgl64.Vec3{sinH, -cosH, 0}
	g.depthAxis = mgl64.Vec3{-cosV * cosH, -cosV * sinH, -sinV}
	g.yAxis = mgl64.Vec3{-sinV * cosH, -sinV * sinH, cosV}
	g.updateID++
}

// ScreenPosition implements Geometry.
func (g *RoomGeometry) ScreenPosition(world mgl64.Vec3) mgl64.Vec3 {
	diff := world.Sub(g.location)
	s := float64(g.scale)
	return mgl64.Vec3{
		diff.Dot(g.xAxis) * s,
		-diff.Dot(g.yAxis) * s,
		diff.Dot(g.depthAxis),
	}
}

// ScreenPoint implements Geometry.
func (g *RoomGeometry) ScreenPoint(world mgl64.Vec3) Vec2 {
	p := g.ScreenPosition(world)
	return Vec2{p.X(), p.Y()}
}

// CoordinatePosition implements Geometry.
func (g *RoomGeometry) CoordinatePosition(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.Dot(g.xAxis), v.Dot(g.yAxis), v.Dot(g.depthAxis)}
}

// planeGeometries holds the fixed measuring cameras, one per scale. Plane
// sizes and tile origins are measured against these rather than the live
// camera so panning never shifts texture alignment.
var planeGeometries = map[int]*RoomGeometry{}

func planeGeometry(scale int) *RoomGeometry {
	if g, ok := planeGeometries[scale]; ok {
		return g
	}
	g := NewRoomGeometry(scale,
		mgl64.Vec3{HorizontalAngleDefault, VerticalAngleDefault, 0},
		mgl64.Vec3{-10, 0, 0})
	planeGeometries[scale] = g
	return g
}

// cosAngle returns the cosine of the angle between a and b, or 0 when either
// vector has zero length.
func cosAngle(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	return a.Dot(b) / (la * lb)
}

// scalarProjection returns the length of a projected onto b.
func scalarProjection(a, b mgl64.Vec3) float64 {
	l := b.Len()
	if l == 0 {
		return 0
	}
	return a.Dot(b) / l
}

// roundHalfUp rounds to the nearest integer with halves rounded toward +Inf,
// so negative screen coordinates round the same way as positive ones.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
