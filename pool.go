package roomplane

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// BufferPool hands out offscreen render targets. Every Acquire must be
// paired with exactly one Release.
type BufferPool interface {
	Acquire(w, h int) *ebiten.Image
	Release(img *ebiten.Image)
}

// BufferArena is a BufferPool keyed by exact (width, height). After warmup,
// Acquire/Release are zero-alloc. It is not safe for concurrent use; planes
// are updated from a single goroutine.
type BufferArena struct {
	buckets     map[uint64][]*ebiten.Image
	outstanding int
	created     int
}

// NewBufferArena creates an empty arena.
func NewBufferArena() *BufferArena {
	return &BufferArena{buckets: make(map[uint64][]*ebiten.Image)}
}

// arenaKey packs width and height into a single uint64.
func arenaKey(w, h int) uint64 {
	return uint64(uint32(w))<<32 | uint64(uint32(h))
}

// Acquire returns a cleared image of exactly (w, h) pixels. Sizes below one
// pixel are raised to one.
func (a *BufferArena) Acquire(w, h int) *ebiten.Image {
	w = max(w, 1)
	h = max(h, 1)
	a.outstanding++

	key := arenaKey(w, h)
	if stack := a.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		a.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		return img
	}

	a.created++
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the arena. The image is cleared on next
// Acquire, not here.
func (a *BufferArena) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	a.outstanding--
	b := img.Bounds()
	key := arenaKey(b.Dx(), b.Dy())
	if a.buckets == nil {
		a.buckets = make(map[uint64][]*ebiten.Image)
	}
	a.buckets[key] = append(a.buckets[key], img)
}

// Outstanding returns acquired-but-not-released images. Zero means every
// acquisition has been paired with its release.
func (a *BufferArena) Outstanding() int { return a.outstanding }

// Created returns how many images the arena has allocated.
func (a *BufferArena) Created() int { return a.created }

// Free returns the number of idle images of size (w, h).
func (a *BufferArena) Free(w, h int) int { return len(a.buckets[arenaKey(w, h)]) }
