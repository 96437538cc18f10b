package roomplane

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ReflectionAvatar is an avatar silhouette that landscapes with window masks
// mirror. Direction is the avatar's facing in degrees.
type ReflectionAvatar struct {
	ID              int
	Texture         *Texture
	OppositeTexture *Texture
	Location        mgl64.Vec3
	VerticalOffset  float64
	Direction       float64
}

// ReflectionState is the frame's registry of reflectable avatars. The scene
// driver writes it, then hands Snapshot to every plane's Update.
type ReflectionState struct {
	avatars  map[int]ReflectionAvatar
	updateID int
}

// NewReflectionState creates an empty registry.
func NewReflectionState() *ReflectionState {
	return &ReflectionState{avatars: make(map[int]ReflectionAvatar)}
}

// SetAvatar registers or replaces an avatar. OppositeTexture defaults to
// Texture. The update counter advances on every call, even when nothing
// changed, since avatar textures are often recycled frames of a walk cycle.
func (s *ReflectionState) SetAvatar(a ReflectionAvatar) {
	if a.Texture == nil {
		return
	}
	if a.OppositeTexture == nil {
		a.OppositeTexture = a.Texture
	}
	s.avatars[a.ID] = a
	s.updateID++
}

// RemoveAvatar unregisters an avatar. The update counter only advances when
// the avatar was present.
func (s *ReflectionState) RemoveAvatar(id int) {
	if _, ok := s.avatars[id]; !ok {
		return
	}
	delete(s.avatars, id)
	s.updateID++
}

// UpdateID returns the monotonic change counter.
func (s *ReflectionState) UpdateID() int { return s.updateID }

// Len returns the number of registered avatars.
func (s *ReflectionState) Len() int { return len(s.avatars) }

// Snapshot returns an immutable copy of the registry, ordered by avatar id.
func (s *ReflectionState) Snapshot() ReflectionSnapshot {
	snap := ReflectionSnapshot{UpdateID: s.updateID}
	if len(s.avatars) == 0 {
		return snap
	}
	snap.Avatars = make([]ReflectionAvatar, 0, len(s.avatars))
	for _, a := range s.avatars {
		snap.Avatars = append(snap.Avatars, a)
	}
	sort.Slice(snap.Avatars, func(i, j int) bool { return snap.Avatars[i].ID < snap.Avatars[j].ID })
	return snap
}

// ReflectionSnapshot is the registry content a plane reads during Update.
type ReflectionSnapshot struct {
	UpdateID int
	Avatars  []ReflectionAvatar
}

const (
	reflectionFadeMs    = 150
	reflectionMaxAlpha  = 0.4
	reflectionTint      = 0xCFE3FF
	reflectionMaxDepth  = 0.8 // world units between avatar and plane
	reflectionMaxScore  = 3.0 // summed side deltas to the nearest window
	reflectionNearScore = 2.0
	reflectionNearSide  = 0.9

	mirrorLow    = 0.6
	mirrorHigh   = 0.8
	mirrorCenter = (mirrorLow + mirrorHigh) / 2
	mirrorWidth  = mirrorHigh - mirrorLow
)

// mirrorWeight maps |facing · normal| to the share drawn with the opposite
// texture: 0 up to mirrorLow, 1 from mirrorHigh, linear in between.
func mirrorWeight(dot float64) float64 {
	switch {
	case dot <= mirrorLow:
		return 0
	case dot >= mirrorHigh:
		return 1
	default:
		return 0.5 + (dot-mirrorCenter)/mirrorWidth
	}
}

// reflectionSurface is the part of a plane the reflection pass projects onto.
type reflectionSurface struct {
	location, leftSide, rightSide, normal mgl64.Vec3
	windows                               []WindowMask
	width, height                         float64
}

// place appends the sprites reflecting a at alpha. It reports false when the
// avatar is too far from the plane or from every window.
func (s *reflectionSurface) place(dst []RenderCommand, a *ReflectionAvatar, alpha float64) ([]RenderCommand, bool) {
	if !a.Texture.Valid() || alpha < 0 || len(s.windows) == 0 {
		return dst, false
	}
	leftLen, rightLen := s.leftSide.Len(), s.rightSide.Len()
	if leftLen <= 0 || rightLen <= 0 {
		return dst, false
	}

	rel := a.Location.Sub(s.location)
	if math.Abs(scalarProjection(rel, s.normal)) > reflectionMaxDepth {
		return dst, false
	}
	left := scalarProjection(rel, s.leftSide)
	right := scalarProjection(rel, s.rightSide)

	best := -1
	bestScore := 0.0
	for i, w := range s.windows {
		score := math.Abs(w.LeftLoc-left) + math.Abs(w.RightLoc-right)
		if best < 0 || score < bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore > reflectionMaxScore {
		return dst, false
	}

	x := math.Trunc(s.width - s.width*left/leftLen)
	y := math.Trunc(s.height - s.height*right/rightLen + a.VerticalOffset)

	deltaLeft := math.Abs(s.windows[best].LeftLoc - left)
	deltaRight := math.Abs(s.windows[best].RightLoc - right)
	inFront := bestScore <= reflectionNearScore && (deltaLeft <= reflectionNearSide || deltaRight <= reflectionNearSide)

	weight := 0.0
	if inFront && a.OppositeTexture != nil {
		weight = mirrorWeight(s.facingDot(a.Direction))
	}

	if weight < 1 {
		dst = appendReflectionSprite(dst, a.Texture, x, y, alpha*(1-weight))
	}
	if weight > 0 && a.OppositeTexture.Valid() {
		dst = appendReflectionSprite(dst, a.OppositeTexture, x, y, alpha*weight)
	}
	return dst, true
}

// facingDot returns |facing · normal| in the floor plane for an avatar
// facing direction degrees.
func (s *reflectionSurface) facingDot(direction float64) float64 {
	deg := math.Mod(math.Mod(direction-90, 360)+360, 360)
	fy, fx := math.Sincos(mgl64.DegToRad(deg))

	nx, ny := s.normal.X(), s.normal.Y()
	if l := math.Hypot(nx, ny); l > 0.0001 {
		nx, ny = nx/l, ny/l
	} else {
		nx, ny = 0, 0
	}
	return math.Abs(fx*nx + fy*ny)
}

// appendReflectionSprite anchors tex at its bottom centre on (x, y).
func appendReflectionSprite(dst []RenderCommand, tex *Texture, x, y, alpha float64) []RenderCommand {
	w := float64(tex.Width())
	h := float64(tex.Height())
	c := RGB(reflectionTint)
	c.A = alpha
	return append(dst, RenderCommand{
		Type:    CommandSprite,
		Texture: tex,
		Rect:    Rect{X: x - w*0.5, Y: y - h, Width: w, Height: h},
		Color:   c,
	})
}

// fadeRamp is a linear alpha tween sampled by elapsed milliseconds.
type fadeRamp struct {
	tween    *gween.Tween
	advanced float64
	alpha    float32
}

func newFadeRamp(from, to float32) fadeRamp {
	return fadeRamp{tween: gween.New(from, to, reflectionFadeMs, ease.Linear), alpha: from}
}

// at advances the tween to elapsed and returns the alpha. Time never runs
// backwards; an earlier elapsed returns the current value.
func (r *fadeRamp) at(elapsed float64) float64 {
	elapsed = math.Min(reflectionFadeMs, math.Max(0, elapsed))
	if elapsed > r.advanced {
		r.alpha, _ = r.tween.Update(float32(elapsed - r.advanced))
		r.advanced = elapsed
	}
	return float64(r.alpha)
}

// visibleReflection is an avatar reflected on the last render.
type visibleReflection struct {
	avatar      ReflectionAvatar
	firstSeenAt float64
	fadeIn      fadeRamp
}

// fadingReflection is an avatar that disappeared and is fading out.
type fadingReflection struct {
	avatar    ReflectionAvatar
	startedAt float64
	fadeOut   fadeRamp
}

// reflectionFader is a plane's per-avatar fade state: absent, visible
// (fading in) or fading out.
type reflectionFader struct {
	visible map[int]*visibleReflection
	fading  map[int]*fadingReflection
	seen    map[int]bool
}

func newReflectionFader() *reflectionFader {
	return &reflectionFader{
		visible: make(map[int]*visibleReflection),
		fading:  make(map[int]*fadingReflection),
		seen:    make(map[int]bool),
	}
}

// ramping reports whether a fade has not yet been rendered to its end.
func (f *reflectionFader) ramping() bool {
	if len(f.fading) > 0 {
		return true
	}
	for _, v := range f.visible {
		if v.fadeIn.advanced < reflectionFadeMs {
			return true
		}
	}
	return false
}

// render advances every avatar's fade state to now and appends the
// reflection sprites for avatars and fading entries.
func (f *reflectionFader) render(dst []RenderCommand, s *reflectionSurface, now float64, avatars []ReflectionAvatar) []RenderCommand {
	start := len(dst)
	clear(f.seen)

	for i := range avatars {
		a := &avatars[i]
		if !a.Texture.Valid() {
			continue
		}
		v, ok := f.visible[a.ID]
		if !ok {
			v = &visibleReflection{
				firstSeenAt: now,
				fadeIn:      newFadeRamp(0, reflectionMaxAlpha),
			}
		}
		var placed bool
		dst, placed = s.place(dst, a, v.fadeIn.at(now-v.firstSeenAt))
		if !placed {
			continue
		}
		v.avatar = *a
		f.visible[a.ID] = v
		f.seen[a.ID] = true
		delete(f.fading, a.ID)
	}

	for id, v := range f.visible {
		if f.seen[id] {
			continue
		}
		delete(f.visible, id)
		if !v.avatar.Texture.Valid() {
			continue
		}
		f.fading[id] = &fadingReflection{
			avatar:    v.avatar,
			startedAt: now,
			fadeOut:   newFadeRamp(reflectionMaxAlpha, 0),
		}
	}

	for _, id := range sortedKeys(f.fading) {
		fo := f.fading[id]
		elapsed := now - fo.startedAt
		if elapsed >= reflectionFadeMs {
			delete(f.fading, id)
			continue
		}
		var placed bool
		dst, placed = s.place(dst, &fo.avatar, fo.fadeOut.at(elapsed))
		if !placed {
			delete(f.fading, id)
		}
	}

	if len(dst) == start && len(avatars) == 0 {
		clear(f.visible)
	}
	return dst
}

// reset forgets every avatar.
func (f *reflectionFader) reset() {
	clear(f.visible)
	clear(f.fading)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
