package roomplane

import "github.com/hajimehoshi/ebiten/v2"

// Filter is the interface for post-processing applied to a pass's scratch
// buffer before it is drawn into the plane buffer.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
}

// cutoutFilter punches the plane's mask sprites out of a layer: the layer is
// copied, then every opaque mask pixel is subtracted with destination-out
// blending. One instance lives per plane and reads the plane's current mask
// sprites, so it never needs rebuilding when masks change.
type cutoutFilter struct {
	masks *maskCompositor
	imgOp ebiten.DrawImageOptions
}

func newCutoutFilter(m *maskCompositor) *cutoutFilter {
	return &cutoutFilter{masks: m}
}

// Apply implements Filter.
func (f *cutoutFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	dst.DrawImage(src, op)

	op.Blend = BlendErase.EbitenBlend()
	for i := range f.masks.sprites {
		s := &f.masks.sprites[i]
		img := s.Texture.Image()
		if img == nil {
			continue
		}
		op.GeoM.Reset()
		b := img.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			op.GeoM.Scale(s.Rect.Width/float64(b.Dx()), s.Rect.Height/float64(b.Dy()))
		}
		op.GeoM.Translate(s.Rect.X, s.Rect.Y)
		dst.DrawImage(img, op)
	}
}

// applyFilters runs a filter chain on src, ping-ponging between pooled
// images. Returns the image containing the final result, which is src when
// filters is empty. The caller releases the result and, when it differs, src.
func applyFilters(filters []Filter, src *ebiten.Image, pool BufferPool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	for _, f := range filters {
		next := pool.Acquire(w, h)
		f.Apply(current, next)
		if current != src {
			pool.Release(current)
		}
		current = next
	}
	return current
}
