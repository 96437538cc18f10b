package roomplane

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandFill   CommandType = iota // solid color over Rect
	CommandTile                      // Texture repeated over Rect from Tile origin
	CommandSprite                    // Texture drawn once with its top-left at Rect.X, Rect.Y
)

// RenderCommand is a single draw instruction in layer space.
type RenderCommand struct {
	Type      CommandType
	Texture   *Texture
	Rect      Rect
	Tile      Vec2
	Color     Color
	BlendMode BlendMode
}

// PassKind names the composition step a pass belongs to, back to front.
type PassKind uint8

const (
	PassBackground PassKind = iota // clear plus fill, or the base texture of non-layered planes
	PassBase                       // landscape background texture
	PassAnimation                  // landscape animation layers
	PassForeground                 // landscape foreground texture
	PassReflection                 // window reflections
)

func (k PassKind) String() string {
	switch k {
	case PassBackground:
		return "background"
	case PassBase:
		return "base"
	case PassAnimation:
		return "animation"
	case PassForeground:
		return "foreground"
	case PassReflection:
		return "reflection"
	default:
		return "unknown"
	}
}

// renderPass is one layer container: commands are drawn into a scratch
// buffer of Width x Height, cut out by the plane's mask filter when Masked,
// and drawn into the plane buffer through Transform.
type renderPass struct {
	Kind      PassKind
	Width     int
	Height    int
	Transform [6]float64
	Clear     bool
	Masked    bool
	Commands  []RenderCommand
}

// commandCount returns the number of commands of type t across passes.
func commandCount(passes []renderPass, t CommandType) int {
	n := 0
	for i := range passes {
		for j := range passes[i].Commands {
			if passes[i].Commands[j].Type == t {
				n++
			}
		}
	}
	return n
}

// submitPasses draws passes into target in order. Every scratch buffer taken
// from pool is released before returning.
func submitPasses(target *ebiten.Image, passes []renderPass, pool BufferPool, mask Filter) {
	var op ebiten.DrawImageOptions
	for i := range passes {
		pass := &passes[i]
		if pass.Clear {
			target.Clear()
		}
		if pass.Width <= 0 || pass.Height <= 0 || len(pass.Commands) == 0 {
			continue
		}

		scratch := pool.Acquire(pass.Width, pass.Height)
		for j := range pass.Commands {
			submitCommand(scratch, &pass.Commands[j], &op)
		}

		result := scratch
		if pass.Masked && mask != nil {
			result = applyFilters([]Filter{mask}, scratch, pool)
			if result != scratch {
				pool.Release(scratch)
			}
		}

		op.GeoM = transformGeoM(pass.Transform)
		op.ColorScale.Reset()
		op.Blend = ebiten.BlendSourceOver
		op.Filter = ebiten.FilterNearest
		target.DrawImage(result, &op)
		pool.Release(result)
	}
}

// submitCommand draws a single command into dst.
func submitCommand(dst *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.Filter = ebiten.FilterNearest
	op.Blend = cmd.BlendMode.EbitenBlend()
	setColorScale(op, cmd.Color)

	switch cmd.Type {
	case CommandFill:
		op.GeoM.Scale(cmd.Rect.Width, cmd.Rect.Height)
		op.GeoM.Translate(cmd.Rect.X, cmd.Rect.Y)
		dst.DrawImage(WhitePixel, op)
	case CommandSprite:
		img := cmd.Texture.Image()
		if img == nil {
			return
		}
		op.GeoM.Translate(cmd.Rect.X, cmd.Rect.Y)
		dst.DrawImage(img, op)
	case CommandTile:
		submitTiles(dst, cmd, op)
	}
}

// submitTiles repeats the command texture across its rect. The texture pixel
// at layer position p is taken from (p - Tile) modulo the texture size.
func submitTiles(dst *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	img := cmd.Texture.Image()
	if img == nil {
		return
	}
	tw := float64(img.Bounds().Dx())
	th := float64(img.Bounds().Dy())
	r := cmd.Rect
	if tw <= 0 || th <= 0 || r.Width <= 0 || r.Height <= 0 {
		return
	}

	clip := dst.SubImage(rectBounds(r)).(*ebiten.Image)
	startX := tileStart(cmd.Tile.X, tw)
	startY := tileStart(cmd.Tile.Y, th)
	base := op.GeoM
	for y := startY; y < r.Height; y += th {
		for x := startX; x < r.Width; x += tw {
			op.GeoM = base
			op.GeoM.Translate(r.X+x, r.Y+y)
			clip.DrawImage(img, op)
		}
	}
}

// tileStart returns the first tile position at or left of zero for a tiling
// origin of origin and tile size size.
func tileStart(origin, size float64) float64 {
	s := math.Mod(origin, size)
	if s > 0 {
		s -= size
	}
	return s
}

func setColorScale(op *ebiten.DrawImageOptions, c Color) {
	op.ColorScale.Reset()
	a := float32(c.A)
	op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
}

// rectBounds returns the smallest integer rectangle covering r.
func rectBounds(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}
