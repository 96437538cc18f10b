package roomplane

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoomVisualization is the data-driven description of how room planes are
// decorated. It decodes from YAML, and from JSON since YAML is a superset.
type RoomVisualization struct {
	Floor     *PlaneSection `yaml:"floorData"`
	Wall      *PlaneSection `yaml:"wallData"`
	Landscape *PlaneSection `yaml:"landscapeData"`
}

// Section returns the section that decorates planes of typ. Undefined planes
// share the landscape section.
func (v *RoomVisualization) Section(typ PlaneType) *PlaneSection {
	if v == nil {
		return nil
	}
	switch typ {
	case PlaneFloor:
		return v.Floor
	case PlaneWall:
		return v.Wall
	default:
		return v.Landscape
	}
}

// PlaneSection lists plane definitions and the materials and textures they
// reference.
type PlaneSection struct {
	Planes    []PlaneDefinition `yaml:"planes"`
	Materials []Material        `yaml:"materials"`
	Textures  []TextureDef      `yaml:"textures"`
}

// Plane returns the plane definition with the given id.
func (s *PlaneSection) Plane(id string) *PlaneDefinition {
	if s == nil {
		return nil
	}
	for i := range s.Planes {
		if s.Planes[i].ID == id {
			return &s.Planes[i]
		}
	}
	return nil
}

// Material returns the material with the given id.
func (s *PlaneSection) Material(id string) *Material {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Materials {
		if s.Materials[i].ID == id {
			return &s.Materials[i]
		}
	}
	return nil
}

// Texture returns the texture definition with the given id.
func (s *PlaneSection) Texture(id string) *TextureDef {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Textures {
		if s.Textures[i].ID == id {
			return &s.Textures[i]
		}
	}
	return nil
}

// PlaneDefinition holds the static and animated visualizations of one plane id.
type PlaneDefinition struct {
	ID             string               `yaml:"id"`
	Visualizations []PlaneVisualization `yaml:"visualizations"`
	Animated       []PlaneVisualization `yaml:"animatedVisualization"`
}

// Visualization returns the static visualization for size.
func (d *PlaneDefinition) Visualization(size int) *PlaneVisualization {
	return findVisualization(d.Visualizations, size)
}

// AnimatedVisualization returns the animated visualization for size.
func (d *PlaneDefinition) AnimatedVisualization(size int) *PlaneVisualization {
	return findVisualization(d.Animated, size)
}

func findVisualization(list []PlaneVisualization, size int) *PlaneVisualization {
	for i := range list {
		if list[i].Size == size {
			return &list[i]
		}
	}
	return nil
}

// PlaneVisualization is the layer stack used at one geometry scale.
type PlaneVisualization struct {
	Size            int     `yaml:"size"`
	HorizontalAngle float64 `yaml:"horizontalAngle"`
	VerticalAngle   float64 `yaml:"verticalAngle"`
	Layers          []Layer `yaml:"layers"`
}

// materialLayers returns the material layers in declaration order.
func (v *PlaneVisualization) materialLayers() []*MaterialLayer {
	var out []*MaterialLayer
	for i := range v.Layers {
		if v.Layers[i].Kind == LayerMaterial {
			out = append(out, &v.Layers[i].Material)
		}
	}
	return out
}

// LayerKind discriminates the Layer union.
type LayerKind uint8

const (
	LayerEmpty    LayerKind = iota // declares nothing usable
	LayerColor                     // plain tint
	LayerMaterial                  // textured material, optionally with a background fill
	LayerAnimated                  // moving decorative items
)

// Layer is one entry of a visualization's layer list. Exactly the variant
// selected by Kind is meaningful.
type Layer struct {
	Kind     LayerKind
	Color    Color
	Material MaterialLayer
	Animated AnimatedLayer
}

// MaterialLayer references a material by id.
type MaterialLayer struct {
	MaterialID      string
	AlignBottom     bool
	Tint            Color
	HasTint         bool
	BackgroundColor Color
	HasBackground   bool
}

// AnimatedLayer lists the items of a decorative animation layer.
type AnimatedLayer struct {
	Items []AnimatedItem
}

// AnimatedItem is the declaration of one moving sprite. X and Y accept plain
// numbers or percentages ("35%"); RandomX and RandomY add a seeded random
// share of their value.
type AnimatedItem struct {
	ID      string  `yaml:"id"`
	AssetID string  `yaml:"assetId"`
	X       string  `yaml:"x"`
	Y       string  `yaml:"y"`
	RandomX string  `yaml:"randomX"`
	RandomY string  `yaml:"randomY"`
	SpeedX  float64 `yaml:"speedX"`
	SpeedY  float64 `yaml:"speedY"`
}

// rawLayer is the decoded shape of a layer before it is discriminated.
type rawLayer struct {
	Color           *HexColor      `yaml:"color"`
	MaterialID      string         `yaml:"materialId"`
	Align           string         `yaml:"align"`
	BackgroundColor *HexColor      `yaml:"backgroundColor"`
	Items           []AnimatedItem `yaml:"items"`
}

// UnmarshalYAML decodes a layer and resolves its variant once, so callers
// switch on Kind instead of probing optional fields.
func (l *Layer) UnmarshalYAML(node *yaml.Node) error {
	var raw rawLayer
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*l = Layer{}
	switch {
	case len(raw.Items) > 0:
		l.Kind = LayerAnimated
		l.Animated.Items = raw.Items
	case raw.MaterialID != "":
		l.Kind = LayerMaterial
		l.Material = MaterialLayer{
			MaterialID:  raw.MaterialID,
			AlignBottom: raw.Align == "bottom",
		}
		if raw.Color != nil {
			l.Material.Tint, l.Material.HasTint = raw.Color.Color(), true
		}
		if raw.BackgroundColor != nil {
			l.Material.BackgroundColor, l.Material.HasBackground = raw.BackgroundColor.Color(), true
		}
	case raw.Color != nil:
		l.Kind = LayerColor
		l.Color = raw.Color.Color()
	}
	return nil
}

// tint returns the plain tint declared by the layer, if any.
func (l *Layer) tint() (Color, bool) {
	switch l.Kind {
	case LayerColor:
		return l.Color, true
	case LayerMaterial:
		return l.Material.Tint, l.Material.HasTint
	default:
		return Color{}, false
	}
}

// HexColor decodes either a number (16777215, 0xFFFFFF) or a hex string
// ("#84C6DF", "84C6DF").
type HexColor uint32

// Color returns the opaque Color for h.
func (h HexColor) Color() Color { return RGB(uint32(h)) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexColor) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseHexColor(node.Value, node.ShortTag() == "!!int")
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*h = HexColor(v)
	return nil
}

func parseHexColor(s string, numeric bool) (uint32, error) {
	s = strings.TrimSpace(s)
	if numeric {
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return uint32(v), nil
	}
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

// NormalRange limits a matrix or bitmap to surfaces whose 2D normal lies in
// [MinX, MaxX] x [MinY, MaxY]. Missing bounds default to -1 and 1.
type NormalRange struct {
	MinX *float64 `yaml:"normalMinX"`
	MaxX *float64 `yaml:"normalMaxX"`
	MinY *float64 `yaml:"normalMinY"`
	MaxY *float64 `yaml:"normalMaxY"`
}

// Contains reports whether the normal (x, y) lies within the range.
func (r NormalRange) Contains(x, y float64) bool {
	return x >= bound(r.MinX, -1) && x <= bound(r.MaxX, 1) &&
		y >= bound(r.MinY, -1) && y <= bound(r.MaxY, 1)
}

func bound(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Material is a named set of direction-filtered texture matrices.
type Material struct {
	ID       string           `yaml:"id"`
	Matrices []MaterialMatrix `yaml:"matrices"`
}

// MaterialMatrix is a grid of texture cells for one normal range.
type MaterialMatrix struct {
	NormalRange `yaml:",inline"`
	RepeatMode  string           `yaml:"repeatMode"`
	Align       string           `yaml:"align"`
	Columns     []MaterialColumn `yaml:"columns"`
}

// MaterialColumn is one column of a material matrix.
type MaterialColumn struct {
	Width int            `yaml:"width"`
	Cells []MaterialCell `yaml:"cells"`
}

// MaterialCell references a texture definition.
type MaterialCell struct {
	TextureID string `yaml:"textureId"`
}

// firstTextureID returns the texture id of the matrix's first cell.
func (m *MaterialMatrix) firstTextureID() string {
	if m == nil || len(m.Columns) == 0 || len(m.Columns[0].Cells) == 0 {
		return ""
	}
	return m.Columns[0].Cells[0].TextureID
}

// TextureDef maps a texture id to direction-filtered bitmap assets.
type TextureDef struct {
	ID      string          `yaml:"id"`
	Bitmaps []TextureBitmap `yaml:"bitmaps"`
}

// TextureBitmap names the asset used for one normal range.
type TextureBitmap struct {
	NormalRange `yaml:",inline"`
	AssetName   string `yaml:"assetName"`
}

// ParseVisualization decodes a visualization document. The document may be
// wrapped in a top-level "roomVisualization" key.
func ParseVisualization(data []byte) (*RoomVisualization, error) {
	var wrapped struct {
		RoomVisualization *RoomVisualization `yaml:"roomVisualization"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing visualization: %w", err)
	}
	if wrapped.RoomVisualization != nil {
		return wrapped.RoomVisualization, nil
	}
	vis := &RoomVisualization{}
	if err := yaml.Unmarshal(data, vis); err != nil {
		return nil, fmt.Errorf("parsing visualization: %w", err)
	}
	return vis, nil
}
