package roomplane

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// roomLibrary returns the test visualization without any textures, so every
// plane resolves to flat colors.
func roomLibrary(t *testing.T) MapLibrary {
	t.Helper()
	room := NewMapCollection(CollectionRoom, mustParseVisualization(t, testVisualization))
	return MapLibrary{CollectionRoom: room}
}

func newFloor(lib AssetLibrary, arena *BufferArena) *Plane {
	return NewPlane(PlaneConfig{
		LeftSide:  mgl64.Vec3{2, 0, 0},
		RightSide: mgl64.Vec3{0, 2, 0},
		Type:      PlaneFloor,
	}, Providers{Assets: lib, Buffers: arena})
}

func newLandscape(lib AssetLibrary, arena *BufferArena) *Plane {
	return NewPlane(PlaneConfig{
		LeftSide:  mgl64.Vec3{0, 2, 0},
		RightSide: mgl64.Vec3{0, 0, 2},
		Type:      PlaneLandscape,
	}, Providers{Assets: lib, Buffers: arena})
}

func passKinds(passes []renderPass) []PassKind {
	kinds := make([]PassKind, len(passes))
	for i := range passes {
		kinds[i] = passes[i].Kind
	}
	return kinds
}

func hasPass(passes []renderPass, kind PassKind) bool {
	for i := range passes {
		if passes[i].Kind == kind {
			return true
		}
	}
	return false
}

func TestNewPlaneNormal(t *testing.T) {
	tests := []struct {
		name        string
		left, right mgl64.Vec3
		want        mgl64.Vec3
	}{
		{"floor", mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 0, 1}},
		{"wall", mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}},
		{"parallel", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}},
	}
	for _, tt := range tests {
		p := NewPlane(PlaneConfig{LeftSide: tt.left, RightSide: tt.right}, Providers{})
		if p.Normal() != tt.want {
			t.Errorf("%s: Normal = %v, want %v", tt.name, p.Normal(), tt.want)
		}
	}
}

func TestPlaneUniqueIDs(t *testing.T) {
	a := NewPlane(PlaneConfig{}, Providers{})
	b := NewPlane(PlaneConfig{}, Providers{})
	if a.UniqueID() < 2 {
		t.Errorf("UniqueID = %d, want >= 2", a.UniqueID())
	}
	if b.UniqueID() != a.UniqueID()+1 {
		t.Errorf("UniqueID = %d, want %d", b.UniqueID(), a.UniqueID()+1)
	}
}

func TestFloorEndToEnd(t *testing.T) {
	arena := NewBufferArena()
	p := newFloor(roomLibrary(t), arena)
	p.SetID("flat")
	geom := newTestGeometry(64)

	if !p.Update(geom, 0, false, ReflectionSnapshot{}) {
		t.Fatal("first Update should report a change")
	}
	if !p.Visible() {
		t.Fatal("floor should face the camera")
	}
	if p.Width() != 182 || p.Height() != 91 {
		t.Errorf("buffer = %dx%d, want 182x91", p.Width(), p.Height())
	}
	if b := p.Texture().Bounds(); b.Dx() != 182 || b.Dy() != 91 {
		t.Errorf("texture = %dx%d, want 182x91", b.Dx(), b.Dy())
	}
	if p.layer.width != 91 || p.layer.height != 91 {
		t.Errorf("layer = %vx%v, want 91x91", p.layer.width, p.layer.height)
	}

	wantCorners := [4]Vec2{{X: 91, Y: 0}, {X: 0, Y: 45}, {X: 91, Y: 91}, {X: 182, Y: 45}}
	if p.Corners() != wantCorners {
		t.Errorf("Corners = %v, want %v", p.Corners(), wantCorners)
	}
	if p.Offset() != (Vec2{X: 91, Y: 0}) {
		t.Errorf("Offset = %v, want {91 0}", p.Offset())
	}

	if len(p.passes) != 1 {
		t.Fatalf("passes = %v, want one background pass", passKinds(p.passes))
	}
	pass := p.passes[0]
	if !pass.Clear || !pass.Masked || len(pass.Commands) != 1 {
		t.Fatalf("pass = %+v", pass)
	}
	cmd := pass.Commands[0]
	if cmd.Type != CommandTile || cmd.Texture != whiteTexture {
		t.Errorf("command = %+v, want white tile", cmd)
	}
	if cmd.Color.Hex() != 0x996633 {
		t.Errorf("tint = %06X, want 996633", cmd.Color.Hex())
	}

	if p.Update(geom, 16, false, ReflectionSnapshot{}) {
		t.Error("unchanged floor should not re-render")
	}
	if !p.Update(geom, 32, true, ReflectionSnapshot{}) {
		t.Error("forced update should re-render")
	}
	if p.renders != 2 {
		t.Errorf("renders = %d, want 2", p.renders)
	}
}

func TestFloorWithoutDataIsWhite(t *testing.T) {
	p := newFloor(nil, NewBufferArena())
	p.Update(newTestGeometry(64), 0, false, ReflectionSnapshot{})

	cmd := p.passes[0].Commands[0]
	if cmd.Color != ColorWhite || cmd.Texture != whiteTexture {
		t.Errorf("command = %+v, want white", cmd)
	}
}

func TestBackfacingPlane(t *testing.T) {
	arena := NewBufferArena()
	p := NewPlane(PlaneConfig{
		LeftSide:  mgl64.Vec3{0, 2, 0},
		RightSide: mgl64.Vec3{2, 0, 0},
		Type:      PlaneFloor,
	}, Providers{Buffers: arena})

	if p.Update(newTestGeometry(64), 0, false, ReflectionSnapshot{}) {
		t.Error("hidden plane should not report a change")
	}
	if p.Visible() || p.Texture() != nil {
		t.Error("hidden plane should have no buffer")
	}
	if arena.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", arena.Outstanding())
	}
}

func TestPlaneVisibilityTransition(t *testing.T) {
	p := newFloor(nil, NewBufferArena())
	geom := newTestGeometry(64)
	p.Update(geom, 0, false, ReflectionSnapshot{})

	// Looking from below hides the floor.
	geom.SetDirection(mgl64.Vec3{45, -30, 0})
	if !p.Update(geom, 16, false, ReflectionSnapshot{}) {
		t.Error("becoming hidden should report a change")
	}
	if p.Visible() {
		t.Error("floor seen from below should be hidden")
	}
}

func TestPlaneCanBeVisible(t *testing.T) {
	p := newFloor(nil, NewBufferArena())
	p.SetCanBeVisible(false)
	p.Update(newTestGeometry(64), 0, false, ReflectionSnapshot{})
	if p.Visible() {
		t.Error("Visible = true, want false when the plane cannot be visible")
	}
	p.SetCanBeVisible(true)
	if !p.Visible() {
		t.Error("Visible = false, want true")
	}
}

func TestLandscapeEndToEnd(t *testing.T) {
	arena := NewBufferArena()
	p := newLandscape(roomLibrary(t), arena)
	p.SetID("default")

	if !p.Update(newTestGeometry(64), 0, false, ReflectionSnapshot{}) {
		t.Fatal("first Update should report a change")
	}
	if p.layer.width != 91 || p.layer.height != 111 {
		t.Errorf("layer = %vx%v, want 91x111", p.layer.width, p.layer.height)
	}
	if p.Width() != 91 || p.Height() != 156 {
		t.Errorf("buffer = %dx%d, want 91x156", p.Width(), p.Height())
	}
	if !p.layered() {
		t.Fatal("landscape with a background should be layered")
	}

	if commandCount(p.passes, CommandTile) != 0 {
		t.Errorf("tile commands = %d, want 0 without textures", commandCount(p.passes, CommandTile))
	}
	if commandCount(p.passes, CommandFill) != 1 {
		t.Fatalf("fill commands = %d, want 1", commandCount(p.passes, CommandFill))
	}
	fill := p.passes[0]
	if fill.Kind != PassBackground || fill.Masked {
		t.Errorf("fill pass = %s masked %v, want unmasked background", fill.Kind, fill.Masked)
	}
	if got := fill.Commands[0].Color; got != RGB(0x84C6DF) {
		t.Errorf("fill color = %06X, want 84C6DF", got.Hex())
	}
	if p.RelativeDepth() <= 0 {
		t.Errorf("RelativeDepth = %v, want the landscape bias applied", p.RelativeDepth())
	}
}

func TestLandscapeTint(t *testing.T) {
	tests := []struct {
		name     string
		lib      AssetLibrary
		id       string
		color    *Color
		wantTint uint32
	}{
		{"declared color", nil, "plain", nil, 0xFFCC00},
		{"plane color", MapLibrary{}, "none", &Color{R: 0x12 / 255.0, G: 0x34 / 255.0, B: 0x56 / 255.0, A: 1}, 0x123456},
		{"white", MapLibrary{}, "none", nil, 0xFFFFFF},
	}
	for _, tt := range tests {
		lib := tt.lib
		if lib == nil {
			lib = roomLibrary(t)
		}
		p := newLandscape(lib, NewBufferArena())
		p.SetID(tt.id)
		if tt.color != nil {
			p.SetColor(*tt.color)
		}
		p.Update(newTestGeometry(64), 0, false, ReflectionSnapshot{})

		if p.layered() {
			t.Errorf("%s: landscape should not be layered", tt.name)
			continue
		}
		if commandCount(p.passes, CommandFill) != 0 {
			t.Errorf("%s: unexpected fill", tt.name)
		}
		if got := p.passes[0].Commands[0].Color.Hex(); got != tt.wantTint {
			t.Errorf("%s: tint = %06X, want %06X", tt.name, got, tt.wantTint)
		}
	}
}

func TestLandscapeAnimation(t *testing.T) {
	room := NewMapCollection(CollectionRoom, mustParseVisualization(t, testVisualization))
	room.AddTexture("cloud", ebiten.NewImage(12, 6))
	arena := NewBufferArena()
	p := newLandscape(MapLibrary{CollectionRoom: room}, arena)
	p.SetID("default")
	geom := newTestGeometry(64)

	if !p.Update(geom, 0, false, ReflectionSnapshot{}) {
		t.Fatal("first Update should render")
	}
	if !hasPass(p.passes, PassAnimation) {
		t.Fatalf("passes = %v, want an animation pass", passKinds(p.passes))
	}
	if p.Update(geom, 100, false, ReflectionSnapshot{}) {
		t.Error("animation should not re-render within the interval")
	}
	if !p.Update(geom, 600, false, ReflectionSnapshot{}) {
		t.Error("animation should re-render after the interval")
	}

	layers := p.Data().AnimationLayers
	p.Dispose()
	for _, l := range layers {
		if !l.Disposed() {
			t.Error("Dispose should dispose animation layers")
		}
	}
	if arena.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", arena.Outstanding())
	}
}

func TestLandscapeReflectionFade(t *testing.T) {
	arena := NewBufferArena()
	p := newLandscape(roomLibrary(t), arena)
	p.SetID("default")
	p.AddWindowMask(1, 1)
	geom := newTestGeometry(64)

	state := NewReflectionState()
	state.SetAvatar(ReflectionAvatar{
		ID:       1,
		Texture:  NewTexture("avatar", ebiten.NewImage(8, 16)),
		Location: mgl64.Vec3{0.3, 1, 1},
	})
	snap := state.Snapshot()

	steps := []struct {
		at         float64
		want       bool
		reflection bool
	}{
		{0, true, true},   // first render, fade-in starts
		{50, true, true},  // fade-in ramping
		{200, true, true}, // fade-in completes
		{300, false, true},
	}
	for _, s := range steps {
		if got := p.Update(geom, s.at, false, snap); got != s.want {
			t.Errorf("t=%v: Update = %v, want %v", s.at, got, s.want)
		}
		if hasPass(p.passes, PassReflection) != s.reflection {
			t.Errorf("t=%v: passes = %v", s.at, passKinds(p.passes))
		}
	}

	state.RemoveAvatar(1)
	snap = state.Snapshot()
	steps = []struct {
		at         float64
		want       bool
		reflection bool
	}{
		{400, true, true},  // fade-out starts
		{450, true, true},  // fading
		{560, true, false}, // fade-out over, entry purged
		{600, false, false},
	}
	for _, s := range steps {
		if got := p.Update(geom, s.at, false, snap); got != s.want {
			t.Errorf("t=%v: Update = %v, want %v", s.at, got, s.want)
		}
		if hasPass(p.passes, PassReflection) != s.reflection {
			t.Errorf("t=%v: passes = %v", s.at, passKinds(p.passes))
		}
	}

	p.Dispose()
	if arena.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", arena.Outstanding())
	}
}

func TestBufferBalanceAcrossResize(t *testing.T) {
	arena := NewBufferArena()
	lib := roomLibrary(t)
	floor := newFloor(lib, arena)
	land := newLandscape(lib, arena)
	land.SetID("default")
	wall := NewPlane(PlaneConfig{
		LeftSide:  mgl64.Vec3{0, 2, 0},
		RightSide: mgl64.Vec3{0, 0, 2},
		Type:      PlaneWall,
		UseMask:   true,
	}, Providers{Assets: lib, Buffers: arena})
	wall.AddRectangleMask(1, 1, 0.5, 0.5)
	planes := []*Plane{floor, land, wall}

	geom := newTestGeometry(64)
	for _, p := range planes {
		p.Update(geom, 0, false, ReflectionSnapshot{})
	}
	if arena.Outstanding() != len(planes) {
		t.Errorf("Outstanding = %d, want %d", arena.Outstanding(), len(planes))
	}

	geom.SetScale(32)
	for _, p := range planes {
		if !p.Update(geom, 16, false, ReflectionSnapshot{}) {
			t.Error("scale change should re-render")
		}
	}
	if floor.Width() != 90 || floor.Height() != 45 {
		t.Errorf("floor at scale 32 = %dx%d, want 90x45", floor.Width(), floor.Height())
	}
	if arena.Outstanding() != len(planes) {
		t.Errorf("Outstanding after resize = %d, want %d", arena.Outstanding(), len(planes))
	}

	for _, p := range planes {
		p.Dispose()
	}
	if arena.Outstanding() != 0 {
		t.Errorf("Outstanding after Dispose = %d, want 0", arena.Outstanding())
	}
}

func TestDisposedPlaneIsInert(t *testing.T) {
	arena := NewBufferArena()
	p := NewPlane(PlaneConfig{
		LeftSide:  mgl64.Vec3{0, 2, 0},
		RightSide: mgl64.Vec3{0, 0, 2},
		Type:      PlaneWall,
		UseMask:   true,
	}, Providers{Buffers: arena})
	geom := newTestGeometry(64)
	p.Update(geom, 0, false, ReflectionSnapshot{})

	p.Dispose()
	p.Dispose()
	if !p.Disposed() || p.Texture() != nil {
		t.Error("disposed plane should drop its buffer")
	}
	if p.Update(geom, 16, true, ReflectionSnapshot{}) {
		t.Error("Update after Dispose should do nothing")
	}
	if p.AddBitmapMask("door", 1, 0) || p.AddRectangleMask(1, 1, 1, 1) {
		t.Error("masks should not be added after Dispose")
	}
	p.AddWindowMask(1, 1)
	if p.HasWindowMask() {
		t.Error("window masks should not be added after Dispose")
	}
	if arena.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", arena.Outstanding())
	}
}

func TestPlaneExtraDepth(t *testing.T) {
	p := newFloor(nil, NewBufferArena())
	p.Update(newTestGeometry(64), 0, false, ReflectionSnapshot{})
	base := p.RelativeDepth()
	p.SetExtraDepth(5)
	assertNear(t, "RelativeDepth", p.RelativeDepth(), base+5)
}
