package roomplane

import (
	"math"
	"strconv"
	"strings"
)

// animationSeed is the initial state of every layer's generator, so item
// placement is identical for every plane and every run.
const animationSeed = 131071

// lcg is the linear congruential generator used for animated item offsets.
type lcg struct {
	state uint64
}

// next advances the generator and returns a value in [0, 1) with four
// decimal digits of resolution.
func (r *lcg) next() float64 {
	r.state = (r.state*1103515245 + 12345) & 0x7fffffff
	return float64(r.state%10000) / 10000
}

// AnimationItem is one moving sprite of an animation layer. X and Y are
// fractions of the layer span; speeds are in pixels per second.
type AnimationItem struct {
	X, Y           float64
	SpeedX, SpeedY float64
	Texture        *Texture
}

// position returns the item's wrapped pixel position at timeMs inside a span
// of maxX x maxY. dimX and dimY convert the pixel speed into span fractions.
func (it *AnimationItem) position(maxX, maxY, dimX, dimY, timeMs float64) (float64, float64) {
	return wrapAxis(it.X, it.SpeedX, dimX, timeMs) * maxX,
		wrapAxis(it.Y, it.SpeedY, dimY, timeMs) * maxY
}

// wrapAxis advances v by speed over timeMs and folds the result into [0, 1).
func wrapAxis(v, speed, dim, timeMs float64) float64 {
	if dim > 0 {
		v += speed / dim * timeMs / 1000
	}
	return v - math.Floor(v)
}

// AnimationLayer is a set of decorative sprites (clouds, birds) drifting
// across a landscape. Items wrap around the span and are drawn at up to four
// positions so they cross the seam without popping.
type AnimationLayer struct {
	items    []AnimationItem
	rng      lcg
	disposed bool
}

// NewAnimationLayer builds a layer from declared items, resolving each
// item's asset in assets. Items without a resolvable asset are skipped.
func NewAnimationLayer(items []AnimatedItem, assets AssetCollection) *AnimationLayer {
	l := &AnimationLayer{rng: lcg{state: animationSeed}}
	if assets == nil {
		return l
	}
	for i := range items {
		decl := &items[i]
		if decl.AssetID == "" {
			continue
		}
		tex := assets.Texture(decl.AssetID)
		if tex == nil {
			continue
		}
		x := l.parseCoordinate(decl.X, decl.RandomX)
		y := l.parseCoordinate(decl.Y, decl.RandomY)
		l.items = append(l.items, AnimationItem{
			X:       x,
			Y:       y,
			SpeedX:  decl.SpeedX,
			SpeedY:  decl.SpeedY,
			Texture: tex,
		})
	}
	return l
}

// parseCoordinate reads "35%" as 0.35 and plain numbers as themselves, then
// adds a seeded share of random when it parses. The generator only advances
// for items that declare a random range.
func (l *AnimationLayer) parseCoordinate(value, random string) float64 {
	var v float64
	if value != "" {
		if s, ok := strings.CutSuffix(strings.TrimSpace(value), "%"); ok {
			v = parseFloat(s) / 100
		} else {
			v = parseFloat(s)
		}
	}
	if random != "" {
		if r, err := strconv.ParseFloat(strings.TrimSpace(random), 64); err == nil {
			v += l.rng.next() * r
		}
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Items returns the layer's resolved items.
func (l *AnimationLayer) Items() []AnimationItem { return l.items }

// HasItems reports whether any item resolved to an asset.
func (l *AnimationLayer) HasItems() bool { return len(l.items) > 0 }

// Disposed reports whether Dispose has been called.
func (l *AnimationLayer) Disposed() bool { return l.disposed }

// Dispose drops the layer's items. Textures belong to the asset collection
// and are not released.
func (l *AnimationLayer) Dispose() {
	l.disposed = true
	l.items = nil
}

// render appends a sprite command for every visible wrap position of every
// item. offsetX/offsetY shift the span into the canvas; maxX/maxY are the
// span size in pixels and dimX/dimY the span in texture units.
func (l *AnimationLayer) render(dst []RenderCommand, canvasW, canvasH, offsetX, offsetY, maxX, maxY, dimX, dimY, timeMs float64) []RenderCommand {
	if maxX <= 0 || maxY <= 0 {
		return dst
	}
	for i := range l.items {
		it := &l.items[i]
		if !it.Texture.Valid() {
			continue
		}
		px, py := it.position(maxX, maxY, dimX, dimY, timeMs)
		x := math.Trunc(px - offsetX)
		y := math.Trunc(py - offsetY)
		w := float64(it.Texture.Width())
		h := float64(it.Texture.Height())

		for _, p := range [4]Vec2{{x, y}, {x - maxX, y}, {x, y - maxY}, {x - maxX, y - maxY}} {
			if !spriteOnCanvas(p.X, p.Y, w, h, canvasW, canvasH) {
				continue
			}
			dst = append(dst, RenderCommand{
				Type:    CommandSprite,
				Texture: it.Texture,
				Rect:    Rect{X: p.X, Y: p.Y, Width: w, Height: h},
				Color:   ColorWhite,
			})
		}
	}
	return dst
}

// spriteOnCanvas reports whether a w x h sprite at (x, y) overlaps the canvas.
func spriteOnCanvas(x, y, w, h, canvasW, canvasH float64) bool {
	return x > -w && x < canvasW && y > -h && y < canvasH
}
