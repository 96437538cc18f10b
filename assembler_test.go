package roomplane

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

const testLandscapeCollection = `
landscapeData:
  planes:
    - id: beach
      visualizations:
        - size: 64
          layers:
            - materialId: sand
              color: "#FFEEAA"
`

func newTestLibrary(t *testing.T) (MapLibrary, *MapCollection) {
	t.Helper()
	room := NewMapCollection(CollectionRoom, mustParseVisualization(t, testVisualization))
	room.AddTexture("room_wood_r", ebiten.NewImage(64, 32))
	room.AddTexture("wood_l", ebiten.NewImage(64, 32))
	room.AddTexture("cloud", ebiten.NewImage(12, 6))

	landscape := NewMapCollection(CollectionLandscape, mustParseVisualization(t, testLandscapeCollection))
	landscape.AddTexture("sand", ebiten.NewImage(32, 32))

	return MapLibrary{CollectionRoom: room, CollectionLandscape: landscape}, room
}

func TestAssemblePlaneMaterialByNormal(t *testing.T) {
	lib, _ := newTestLibrary(t)

	tests := []struct {
		name   string
		normal Vec2
		want   string
	}{
		{"right facing", Vec2{X: 0.7}, "room_wood_r"},
		{"left facing", Vec2{X: -0.7}, "wood_l"},
		{"no range matches", Vec2{}, "room_wood_r"},
	}
	for _, tt := range tests {
		data := assemblePlane(lib, "default", PlaneFloor, tt.normal, 64)
		if got := textureName(data.Texture); got != tt.want {
			t.Errorf("%s: texture = %q, want %q", tt.name, got, tt.want)
		}
		if !data.HasTint || data.Tint.Hex() != 0x996633 {
			t.Errorf("%s: tint = %06X, want 996633", tt.name, data.Tint.Hex())
		}
	}
}

func TestAssemblePlaneScale(t *testing.T) {
	lib, _ := newTestLibrary(t)

	data := assemblePlane(lib, "default", PlaneFloor, Vec2{}, 32)
	if data.Texture != nil {
		t.Errorf("size 32 texture = %q, want none", textureName(data.Texture))
	}
	if data.Tint.Hex() != 0x336699 {
		t.Errorf("size 32 tint = %06X, want 336699", data.Tint.Hex())
	}

	missing := assemblePlane(lib, "default", PlaneFloor, Vec2{}, 16)
	if missing.HasTint || missing.Texture != nil {
		t.Errorf("unknown scale should give zero data, got %+v", missing)
	}
}

func TestAssemblePlaneMissing(t *testing.T) {
	lib, _ := newTestLibrary(t)

	tests := []struct {
		name string
		lib  AssetLibrary
		id   string
		typ  PlaneType
	}{
		{"nil library", nil, "default", PlaneFloor},
		{"unknown floor", lib, "marble", PlaneFloor},
		{"empty library", MapLibrary{}, "default", PlaneWall},
	}
	for _, tt := range tests {
		data := assemblePlane(tt.lib, tt.id, tt.typ, Vec2{}, 64)
		if data.Texture != nil || data.HasTint || data.HasBackground || len(data.AnimationLayers) != 0 {
			t.Errorf("%s: expected zero data, got %+v", tt.name, data)
		}
	}
}

func TestAssembleLandscapeCollectionLookup(t *testing.T) {
	lib, _ := newTestLibrary(t)

	beach := assemblePlane(lib, "beach", PlaneLandscape, Vec2{}, 64)
	if got := textureName(beach.Texture); got != "sand" {
		t.Errorf("beach texture = %q, want sand", got)
	}
	if beach.Tint.Hex() != 0xFFEEAA {
		t.Errorf("beach tint = %06X, want FFEEAA", beach.Tint.Hex())
	}

	// Unknown landscapes fall back to the room's "default" plane.
	unknown := assemblePlane(lib, "volcano", PlaneLandscape, Vec2{}, 64)
	if !unknown.HasBackground || unknown.Background.Hex() != 0x84C6DF {
		t.Errorf("fallback background = %06X, want 84C6DF", unknown.Background.Hex())
	}
	if unknown.BackgroundSource != BackgroundDirect {
		t.Errorf("BackgroundSource = %s, want direct", unknown.BackgroundSource)
	}
	if !unknown.BaseAlignBottom || unknown.ForegroundAlignBottom {
		t.Errorf("alignments = %v/%v, want bottom/top", unknown.BaseAlignBottom, unknown.ForegroundAlignBottom)
	}
}

func TestAssembleLandscapeFallbackBackground(t *testing.T) {
	lib, _ := newTestLibrary(t)

	dusk := assemblePlane(lib, "dusk", PlaneLandscape, Vec2{}, 64)
	if !dusk.HasBackground {
		t.Fatal("dusk should inherit a background")
	}
	if dusk.Background.Hex() != 0x84C6DF {
		t.Errorf("Background = %06X, want 84C6DF", dusk.Background.Hex())
	}
	if dusk.BackgroundSource != BackgroundFallbackMaterial {
		t.Errorf("BackgroundSource = %s, want fallback-material", dusk.BackgroundSource)
	}

	plain := assemblePlane(lib, "plain", PlaneLandscape, Vec2{}, 64)
	if plain.HasBackground {
		t.Error("color-only landscape should have no background")
	}
	if plain.Tint.Hex() != 0xFFCC00 {
		t.Errorf("plain tint = %06X, want FFCC00", plain.Tint.Hex())
	}
}

func TestAssembleLandscapeAnimationLayers(t *testing.T) {
	lib, _ := newTestLibrary(t)

	data := assemblePlane(lib, "default", PlaneLandscape, Vec2{}, 64)
	if len(data.AnimationLayers) != 1 {
		t.Fatalf("AnimationLayers = %d, want 1", len(data.AnimationLayers))
	}
	items := data.AnimationLayers[0].Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	assertNear(t, "item.X", items[0].X, 0.35+0.9644*0.5)
	assertNear(t, "item.Y", items[0].Y, 0.1)

	// Non-landscape planes never carry animation.
	floor := assemblePlane(lib, "default", PlaneFloor, Vec2{}, 64)
	if len(floor.AnimationLayers) != 0 {
		t.Error("floor should not have animation layers")
	}
}

func TestSelectMatrixFallsBackToFirst(t *testing.T) {
	lo := 0.9
	matrices := []MaterialMatrix{
		{NormalRange: NormalRange{MinX: &lo}, Columns: []MaterialColumn{{Cells: []MaterialCell{{TextureID: "a"}}}}},
		{NormalRange: NormalRange{MinY: &lo}, Columns: []MaterialColumn{{Cells: []MaterialCell{{TextureID: "b"}}}}},
	}
	tests := []struct {
		normal Vec2
		want   string
	}{
		{Vec2{X: 1}, "a"},
		{Vec2{Y: 1}, "b"},
		{Vec2{}, "a"},
	}
	for _, tt := range tests {
		if got := selectMatrix(matrices, tt.normal).firstTextureID(); got != tt.want {
			t.Errorf("selectMatrix(%v) = %q, want %q", tt.normal, got, tt.want)
		}
	}
	if selectMatrix(nil, Vec2{}) != nil {
		t.Error("selectMatrix(nil) should be nil")
	}
}

func TestCollectionTexturePrefix(t *testing.T) {
	_, room := newTestLibrary(t)
	if got := textureName(collectionTexture(room, "wood_r")); got != "room_wood_r" {
		t.Errorf("collectionTexture(wood_r) = %q, want room_wood_r", got)
	}
	if collectionTexture(room, "") != nil || collectionTexture(nil, "x") != nil {
		t.Error("empty lookups should return nil")
	}
}
