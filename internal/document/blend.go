package document

type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "color-dodge"
	BlendColorBurn  BlendMode = "color-burn"
	BlendHardLight  BlendMode = "hard-light"
	BlendSoftLight  BlendMode = "soft-light"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
	BlendHue        BlendMode = "hue"
	BlendSaturation BlendMode = "saturation"
	BlendColor      BlendMode = "color"
	BlendLuminosity BlendMode = "luminosity"
)

var BlendModes = []BlendMode{
	BlendNormal, BlendMultiply, BlendScreen, BlendOverlay,
	BlendDarken, BlendLighten, BlendColorDodge, BlendColorBurn,
	BlendHardLight, BlendSoftLight, BlendDifference, BlendExclusion,
	BlendHue, BlendSaturation, BlendColor, BlendLuminosity,
}

// IsNormal reports whether the mode leaves compositing untouched. The
// empty mode counts as normal.
func (m BlendMode) IsNormal() bool {
	return m == "" || m == BlendNormal
}

// CompositeOperation returns the Canvas2D globalCompositeOperation name.
func (m BlendMode) CompositeOperation() string {
	if m.IsNormal() {
		return "source-over"
	}
	for _, known := range BlendModes {
		if m == known {
			return string(m)
		}
	}
	return "source-over"
}

type ClipMode string

const (
	ClipContent ClipMode = "content"
	ClipStroke  ClipMode = "stroke"
)

// ClipSpec restricts a layer's paintable area to another layer's geometry.
type ClipSpec struct {
	ClipLayerID string   `json:"clipLayerId"`
	ClipMode    ClipMode `json:"clipMode"`
}

type MaskMode string

const (
	MaskAlpha     MaskMode = "alpha"
	MaskLuminance MaskMode = "luminance"
)

type MaskSpec struct {
	MaskLayerID string   `json:"maskLayerId"`
	MaskMode    MaskMode `json:"maskMode"`
	Invert      bool     `json:"invert"`
}
