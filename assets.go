package roomplane

import "github.com/hajimehoshi/ebiten/v2"

// Texture is a decoded image handed out by an asset collection. The asset
// side may release a texture at any time; planes check Valid before drawing
// one and drop state that still refers to a released texture.
type Texture struct {
	Name     string
	image    *ebiten.Image
	released bool
}

// NewTexture wraps an image that the caller has finished loading.
func NewTexture(name string, img *ebiten.Image) *Texture {
	return &Texture{Name: name, image: img}
}

// Image returns the backing image, or nil once released.
func (t *Texture) Image() *ebiten.Image {
	if !t.Valid() {
		return nil
	}
	return t.image
}

// Valid reports whether the texture can still be drawn.
func (t *Texture) Valid() bool {
	return t != nil && !t.released && t.image != nil
}

// Width returns the texture width in pixels (0 when invalid).
func (t *Texture) Width() int {
	if !t.Valid() {
		return 0
	}
	return t.image.Bounds().Dx()
}

// Height returns the texture height in pixels (0 when invalid).
func (t *Texture) Height() int {
	if !t.Valid() {
		return 0
	}
	return t.image.Bounds().Dy()
}

// Release marks the texture invalid and frees its image.
func (t *Texture) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
}

// whiteTexture is the flat fallback used when a plane has no texture.
var whiteTexture *Texture

// AssetCollection is a named set of textures plus the visualization document
// that references them.
type AssetCollection interface {
	Name() string
	Texture(name string) *Texture
	Visualization() *RoomVisualization
}

// AssetLibrary resolves collections by name. Planes read the "room" and
// "landscape" collections.
type AssetLibrary interface {
	Collection(name string) AssetCollection
}

// Collection names consulted by the surface assembler.
const (
	CollectionRoom      = "room"
	CollectionLandscape = "landscape"
)

// collectionTexture looks a name up in c, trying the collection-prefixed
// form "<collection>_<name>" when the plain name is missing.
func collectionTexture(c AssetCollection, name string) *Texture {
	if c == nil || name == "" {
		return nil
	}
	if t := c.Texture(name); t != nil {
		return t
	}
	return c.Texture(c.Name() + "_" + name)
}

// MapCollection is an in-memory AssetCollection.
type MapCollection struct {
	name     string
	textures map[string]*Texture
	vis      *RoomVisualization
}

// NewMapCollection creates an empty collection with the given visualization
// document (which may be nil).
func NewMapCollection(name string, vis *RoomVisualization) *MapCollection {
	return &MapCollection{name: name, textures: make(map[string]*Texture), vis: vis}
}

// Name implements AssetCollection.
func (c *MapCollection) Name() string { return c.name }

// Texture implements AssetCollection.
func (c *MapCollection) Texture(name string) *Texture { return c.textures[name] }

// Visualization implements AssetCollection.
func (c *MapCollection) Visualization() *RoomVisualization { return c.vis }

// AddTexture registers img under name and returns its handle.
func (c *MapCollection) AddTexture(name string, img *ebiten.Image) *Texture {
	t := NewTexture(name, img)
	c.textures[name] = t
	return t
}

// SetVisualization replaces the collection's visualization document.
func (c *MapCollection) SetVisualization(vis *RoomVisualization) { c.vis = vis }

// MapLibrary is an in-memory AssetLibrary.
type MapLibrary map[string]AssetCollection

// Collection implements AssetLibrary.
func (l MapLibrary) Collection(name string) AssetCollection {
	c, ok := l[name]
	if !ok {
		return nil
	}
	return c
}
