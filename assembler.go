package roomplane

import "go.uber.org/zap"

// BackgroundSource reports where a landscape's background fill came from.
type BackgroundSource uint8

const (
	BackgroundNone             BackgroundSource = iota // no fill declared
	BackgroundDirect                                   // declared on the plane's own layer
	BackgroundFallbackMaterial                         // inherited from a plane sharing the material
)

func (s BackgroundSource) String() string {
	switch s {
	case BackgroundDirect:
		return "direct"
	case BackgroundFallbackMaterial:
		return "fallback-material"
	default:
		return "none"
	}
}

// PlaneData is everything the compositor needs to decorate one plane at one
// scale. The zero value is an undecorated plane.
type PlaneData struct {
	Texture           *Texture
	ForegroundTexture *Texture

	Tint    Color
	HasTint bool

	BaseAlignBottom       bool
	ForegroundAlignBottom bool

	Background       Color
	HasBackground    bool
	BackgroundSource BackgroundSource

	AnimationLayers []*AnimationLayer
}

// defaultLandscapeID is the landscape plane used when a room names an
// unknown landscape.
const defaultLandscapeID = "default"

// assemblePlane resolves the decoration of plane id from the library. normal
// is the plane normal in camera axes; only its x and y select
// direction-filtered variants.
func assemblePlane(lib AssetLibrary, id string, typ PlaneType, normal Vec2, scale int) PlaneData {
	var data PlaneData
	if lib == nil {
		return data
	}

	room := lib.Collection(CollectionRoom)
	collection := room
	section := collectionSection(room, typ)
	plane := section.Plane(id)

	if plane == nil && typ == PlaneLandscape {
		if landscape := lib.Collection(CollectionLandscape); landscape != nil {
			if s := collectionSection(landscape, typ); s != nil {
				section = s
				if plane = s.Plane(id); plane != nil {
					collection = landscape
				}
			}
		}
	}
	if plane == nil && typ == PlaneLandscape {
		s := collectionSection(room, typ)
		if plane = s.Plane(defaultLandscapeID); plane != nil {
			section = s
			collection = room
		}
	}
	if plane == nil {
		logger.Debug("no visualization for plane",
			zap.String("plane", id), zap.Stringer("type", typ), zap.Int("scale", scale))
		return data
	}

	var vis *PlaneVisualization
	if typ == PlaneLandscape {
		vis = plane.AnimatedVisualization(scale)
	}
	if vis == nil {
		vis = plane.Visualization(scale)
	}
	if vis == nil {
		logger.Debug("no visualization for scale",
			zap.String("plane", id), zap.Stringer("type", typ), zap.Int("scale", scale))
		return data
	}

	for i := range vis.Layers {
		if c, ok := vis.Layers[i].tint(); ok {
			data.Tint, data.HasTint = c, true
			break
		}
	}

	materials := vis.materialLayers()
	var baseID, foregroundID string
	if len(materials) > 0 {
		baseID = materials[0].MaterialID
		data.BaseAlignBottom = materials[0].AlignBottom
		if materials[0].HasBackground {
			data.Background, data.HasBackground = materials[0].BackgroundColor, true
			data.BackgroundSource = BackgroundDirect
		}
	}
	if len(materials) > 1 {
		foregroundID = materials[1].MaterialID
		data.ForegroundAlignBottom = materials[1].AlignBottom
	}
	if !data.HasBackground && baseID != "" {
		if c, ok := fallbackBackground(section, baseID, scale); ok {
			data.Background, data.HasBackground = c, true
			data.BackgroundSource = BackgroundFallbackMaterial
		}
	}

	data.Texture = resolveMaterialTexture(section, collection, baseID, normal)
	data.ForegroundTexture = resolveMaterialTexture(section, collection, foregroundID, normal)

	if typ == PlaneLandscape {
		for i := range vis.Layers {
			l := &vis.Layers[i]
			if l.Kind != LayerAnimated {
				continue
			}
			layer := NewAnimationLayer(l.Animated.Items, room)
			if layer.HasItems() {
				data.AnimationLayers = append(data.AnimationLayers, layer)
			}
		}
	}
	return data
}

func collectionSection(c AssetCollection, typ PlaneType) *PlaneSection {
	if c == nil {
		return nil
	}
	return c.Visualization().Section(typ)
}

// fallbackBackground searches every plane of the section at the same scale
// for one whose background material layer is materialID and declares a
// background color.
func fallbackBackground(section *PlaneSection, materialID string, scale int) (Color, bool) {
	if section == nil {
		return Color{}, false
	}
	for i := range section.Planes {
		p := &section.Planes[i]
		for _, list := range [][]PlaneVisualization{p.Visualizations, p.Animated} {
			for j := range list {
				if list[j].Size != scale {
					continue
				}
				layers := list[j].materialLayers()
				if len(layers) == 0 || layers[0].MaterialID != materialID {
					continue
				}
				if layers[0].HasBackground {
					return layers[0].BackgroundColor, true
				}
			}
		}
	}
	return Color{}, false
}

// selectMatrix returns the first matrix whose normal range contains normal,
// or the first matrix when none does.
func selectMatrix(matrices []MaterialMatrix, normal Vec2) *MaterialMatrix {
	if len(matrices) == 0 {
		return nil
	}
	for i := range matrices {
		if matrices[i].Contains(normal.X, normal.Y) {
			return &matrices[i]
		}
	}
	return &matrices[0]
}

// selectBitmap returns the first bitmap whose normal range contains normal,
// or the first bitmap when none does.
func selectBitmap(bitmaps []TextureBitmap, normal Vec2) *TextureBitmap {
	if len(bitmaps) == 0 {
		return nil
	}
	for i := range bitmaps {
		if bitmaps[i].Contains(normal.X, normal.Y) {
			return &bitmaps[i]
		}
	}
	return &bitmaps[0]
}

// resolveMaterialTexture follows material -> matrix cell -> texture ->
// bitmap -> asset for materialID, falling back to looking up the texture id
// and then the material id itself as asset names.
func resolveMaterialTexture(section *PlaneSection, c AssetCollection, materialID string, normal Vec2) *Texture {
	if materialID == "" || c == nil {
		return nil
	}

	var textureID string
	if m := section.Material(materialID); m != nil {
		textureID = selectMatrix(m.Matrices, normal).firstTextureID()
	}

	def := section.Texture(materialID)
	if def == nil {
		def = section.Texture(textureID)
	}
	if def != nil {
		if b := selectBitmap(def.Bitmaps, normal); b != nil && b.AssetName != "" {
			return collectionTexture(c, b.AssetName)
		}
	}
	if textureID != "" {
		return collectionTexture(c, textureID)
	}
	return collectionTexture(c, materialID)
}
