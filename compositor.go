package roomplane

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// LandscapeSkyColor fills layered landscapes that declare no background.
const LandscapeSkyColor = 0x84C6DF

// planeLayer is the measured layer a plane composites into before it is
// mapped onto the projected quad.
type planeLayer struct {
	width, height float64

	// base decoration of non-layered planes
	texture *Texture
	tint    Color
	tile    Vec2

	// landscape span, in pixels
	offsetX, offsetY float64
	animationWidth   float64
	animationHeight  float64
	landscapeTint    Color
}

// measure resolves the plane's decoration and measures its layer against the
// fixed plane geometry for the current scale.
func (p *Plane) measure(geom Geometry) {
	scale := geom.Scale()
	pg := planeGeometry(scale)
	s := float64(scale)
	width := p.cfg.LeftSide.Len() * s
	height := p.cfg.RightSide.Len() * s

	p.disposeAnimationLayers()
	normal := geom.CoordinatePosition(p.normal)
	p.data = assemblePlane(p.assets, p.id, p.cfg.Type, Vec2{normal.X(), normal.Y()}, scale)

	texture := whiteTexture
	if p.hasTexture && p.data.Texture.Valid() {
		texture = p.data.Texture
	}
	tint := ColorWhite
	if p.data.HasTint {
		tint = p.data.Tint
	}

	l := planeLayer{texture: texture, tint: tint}
	origin := pg.ScreenPoint(mgl64.Vec3{0, 0, 0})
	tw := float64(texture.Width())
	th := float64(texture.Height())

	switch p.cfg.Type {
	case PlaneFloor:
		along := pg.ScreenPoint(mgl64.Vec3{0, height / s, 0})
		across := pg.ScreenPoint(mgl64.Vec3{width / s, 0, 0})
		width = roundHalfUp(math.Abs(origin.X - across.X))
		height = roundHalfUp(math.Abs(origin.X - along.X))

		unit := math.Trunc(math.Abs(origin.X - pg.ScreenPoint(mgl64.Vec3{1, 0, 0}).X))
		x := p.cfg.TextureOffsetX * unit
		y := p.cfg.TextureOffsetY * unit
		if tw > 0 && th > 0 {
			if x != 0 || y != 0 {
				for x < 0 {
					x += tw
				}
				for y < 0 {
					y += th
				}
			}
			l.tile = Vec2{
				X: math.Mod(x, tw) + p.cfg.TextureOffsetX*tw,
				Y: math.Mod(y, th) + p.cfg.TextureOffsetY*th,
			}
		}

	case PlaneWall:
		up := pg.ScreenPoint(mgl64.Vec3{0, 0, height / s})
		across := pg.ScreenPoint(mgl64.Vec3{0, width / s, 0})
		width = roundHalfUp(math.Abs(origin.X - across.X))
		height = roundHalfUp(math.Abs(origin.Y - up.Y))
		l.tile = Vec2{p.cfg.TextureOffsetX * tw, p.cfg.TextureOffsetY * th}

	case PlaneLandscape:
		up := pg.ScreenPoint(mgl64.Vec3{0, 0, 1})
		across := pg.ScreenPoint(mgl64.Vec3{0, 1, 0})
		spanX := math.Abs(origin.X - across.X)
		spanY := math.Abs(origin.Y - up.Y)
		width = roundHalfUp(spanX * width / s)
		height = roundHalfUp(spanY * height / s)

		l.offsetX = math.Trunc(p.cfg.TextureOffsetX * spanX)
		l.offsetY = math.Trunc(p.cfg.TextureOffsetY * spanY)
		l.animationWidth = math.Trunc(p.cfg.TextureMaxX * spanX)
		if l.animationWidth == 0 {
			l.animationWidth = width
		}
		l.animationHeight = height

		l.landscapeTint = ColorWhite
		switch {
		case p.data.HasTint:
			l.landscapeTint = p.data.Tint
		case p.hasColor:
			l.landscapeTint = p.color
		}
		l.texture = whiteTexture
		l.tint = l.landscapeTint
		l.tile = Vec2{l.offsetX, l.offsetY}
		p.isAnimated = len(p.data.AnimationLayers) > 0
		p.logLandscape()

	default:
		l.texture = whiteTexture
		l.tint = ColorWhite
	}

	l.width, l.height = width, height
	p.layer = l
}

// layered reports whether a landscape composites separate background,
// animation and foreground passes instead of a single tinted base.
func (p *Plane) layered() bool {
	if p.cfg.Type != PlaneLandscape {
		return false
	}
	d := &p.data
	return d.Texture.Valid() || d.ForegroundTexture.Valid() || len(d.AnimationLayers) > 0 || d.HasBackground
}

// buildPasses lays out the plane's render passes back to front.
func (p *Plane) buildPasses(timeMs float64, avatars []ReflectionAvatar) []renderPass {
	w, h := p.layer.width, p.layer.height
	iw, ih := int(w), int(h)
	m := planeTransform(p.corners, p.cfg.Type, w, h)
	pass := func(kind PassKind, masked bool, cmds []RenderCommand) renderPass {
		return renderPass{Kind: kind, Width: iw, Height: ih, Transform: m, Masked: masked, Commands: cmds}
	}
	full := Rect{Width: w, Height: h}

	passes := make([]renderPass, 0, 5)
	if !p.layered() {
		bg := pass(PassBackground, true, []RenderCommand{{
			Type:    CommandTile,
			Texture: p.layer.texture,
			Rect:    full,
			Tile:    p.layer.tile,
			Color:   p.layer.tint,
		}})
		bg.Clear = true
		return append(passes, bg)
	}

	fill := RGB(LandscapeSkyColor)
	if p.data.HasBackground {
		fill = p.data.Background
	}
	bg := pass(PassBackground, false, []RenderCommand{{Type: CommandFill, Rect: full, Color: fill}})
	bg.Clear = true
	passes = append(passes, bg)

	if tex := p.data.Texture; tex.Valid() {
		passes = append(passes, pass(PassBase, true, []RenderCommand{
			p.landscapeLayer(tex, p.data.BaseAlignBottom),
		}))
	}

	if p.isAnimated && p.layer.animationWidth > 0 && p.layer.animationHeight > 0 {
		var cmds []RenderCommand
		for _, l := range p.data.AnimationLayers {
			cmds = l.render(cmds, w, h, p.layer.offsetX, p.layer.offsetY,
				p.layer.animationWidth, p.layer.animationHeight,
				p.cfg.TextureMaxX, p.cfg.TextureMaxY, timeMs)
		}
		passes = append(passes, pass(PassAnimation, true, cmds))
	}

	if tex := p.data.ForegroundTexture; tex.Valid() {
		passes = append(passes, pass(PassForeground, true, []RenderCommand{
			p.landscapeLayer(tex, p.data.ForegroundAlignBottom),
		}))
	}

	if len(p.windows) > 0 && p.cfg.LeftSide.Len() > 0 && p.cfg.RightSide.Len() > 0 {
		surface := reflectionSurface{
			location:  p.cfg.Location,
			leftSide:  p.cfg.LeftSide,
			rightSide: p.cfg.RightSide,
			normal:    p.normal,
			windows:   p.windows,
			width:     w,
			height:    h,
		}
		if cmds := p.fader.render(nil, &surface, timeMs, avatars); len(cmds) > 0 {
			passes = append(passes, pass(PassReflection, true, cmds))
		}
	}
	return passes
}

// landscapeLayer tiles tex across the layer width, at most one texture high,
// pinned to the top or bottom edge.
func (p *Plane) landscapeLayer(tex *Texture, alignBottom bool) RenderCommand {
	w, h := p.layer.width, p.layer.height
	lh := math.Min(float64(tex.Height()), h)
	y := 0.0
	if alignBottom {
		y = h - lh
	}
	return RenderCommand{
		Type:    CommandTile,
		Texture: tex,
		Rect:    Rect{Y: y, Width: w, Height: lh},
		Tile:    Vec2{p.layer.offsetX, p.layer.offsetY},
		Color:   p.layer.landscapeTint,
	}
}

// landscapeSignature summarizes a landscape's resolved composition so a log
// record is only written when it changes.
type landscapeSignature struct {
	id         string
	background uint32
	hasBg      bool
	source     BackgroundSource
	baseTex    string
	fgTex      string
	animated   bool
}

func textureName(t *Texture) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func (p *Plane) logLandscape() {
	sig := landscapeSignature{
		id:       p.id,
		hasBg:    p.data.HasBackground,
		source:   p.data.BackgroundSource,
		baseTex:  textureName(p.data.Texture),
		fgTex:    textureName(p.data.ForegroundTexture),
		animated: p.isAnimated,
	}
	if sig.hasBg {
		sig.background = p.data.Background.Hex()
	}
	if sig == p.signature {
		return
	}
	p.signature = sig
	logger.Debug("landscape composition",
		zap.String("plane", sig.id),
		zap.Int("uniqueID", p.uniqueID),
		zap.Bool("hasBackground", sig.hasBg),
		zap.Uint32("background", sig.background),
		zap.Stringer("backgroundSource", sig.source),
		zap.String("backgroundTexture", sig.baseTex),
		zap.String("foregroundTexture", sig.fgTex),
		zap.Bool("animated", sig.animated),
	)
}
