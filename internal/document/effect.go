package document

type EffectKind string

const (
	EffectDropShadow  EffectKind = "drop-shadow"
	EffectInnerShadow EffectKind = "inner-shadow"
	EffectBlur        EffectKind = "blur"
	EffectGlow        EffectKind = "glow"
	EffectOutline     EffectKind = "outline"
	EffectColorAdjust EffectKind = "color-adjust"
	EffectNoise       EffectKind = "noise"
)

type BlurType string

const (
	BlurGaussian BlurType = "gaussian"
	BlurMotion   BlurType = "motion"
)

type GlowType string

const (
	GlowInner GlowType = "inner"
	GlowOuter GlowType = "outer"
)

// EffectPhase says whether an effect is applied before or after the
// layer's own content is painted.
type EffectPhase int

const (
	PhasePre EffectPhase = iota
	PhasePost
)

// Effect is a non-destructive render-time modifier. Kind selects the
// meaningful fields:
//
//	drop-shadow, inner-shadow: Color, OffsetX, OffsetY, Radius, Spread
//	blur:                      BlurType, Radius, Angle
//	glow:                      GlowType, Color, Radius, Spread
//	outline:                   Color, Width
//	color-adjust:              Brightness, Contrast, Saturation,
//	                           Temperature, Tint, HueRotate
//	noise:                     Amount, Monochrome
//
// Adjustment values are in [-100,100] with 0 neutral; HueRotate is degrees.
type Effect struct {
	Kind    EffectKind `json:"kind"`
	Enabled bool       `json:"enabled"`

	Color   RGBA    `json:"color,omitzero"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
	Spread  float64 `json:"spread,omitempty"`

	BlurType BlurType `json:"blurType,omitempty"`
	Angle    float64  `json:"angle,omitempty"`
	GlowType GlowType `json:"glowType,omitempty"`
	Width    float64  `json:"width,omitempty"`

	Brightness  float64 `json:"brightness,omitempty"`
	Contrast    float64 `json:"contrast,omitempty"`
	Saturation  float64 `json:"saturation,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Tint        float64 `json:"tint,omitempty"`
	HueRotate   float64 `json:"hueRotate,omitempty"`

	Amount     float64 `json:"amount,omitempty"`
	Monochrome bool    `json:"monochrome,omitempty"`
}

// Phase reports when the effect runs. Drop shadows set surface state
// before the content is drawn; everything else post-processes it.
func (e Effect) Phase() EffectPhase {
	if e.Kind == EffectDropShadow {
		return PhasePre
	}
	return PhasePost
}

func DropShadow(c RGBA, dx, dy, radius float64) Effect {
	return Effect{Kind: EffectDropShadow, Enabled: true, Color: c, OffsetX: dx, OffsetY: dy, Radius: radius}
}

func InnerShadow(c RGBA, dx, dy, radius float64) Effect {
	return Effect{Kind: EffectInnerShadow, Enabled: true, Color: c, OffsetX: dx, OffsetY: dy, Radius: radius}
}

func Blur(radius float64) Effect {
	return Effect{Kind: EffectBlur, Enabled: true, BlurType: BlurGaussian, Radius: radius}
}

func MotionBlur(radius, angle float64) Effect {
	return Effect{Kind: EffectBlur, Enabled: true, BlurType: BlurMotion, Radius: radius, Angle: angle}
}

func Glow(kind GlowType, c RGBA, radius float64) Effect {
	return Effect{Kind: EffectGlow, Enabled: true, GlowType: kind, Color: c, Radius: radius}
}

func Outline(c RGBA, width float64) Effect {
	return Effect{Kind: EffectOutline, Enabled: true, Color: c, Width: width}
}

func Noise(amount float64, monochrome bool) Effect {
	return Effect{Kind: EffectNoise, Enabled: true, Amount: amount, Monochrome: monochrome}
}

// EnabledEffects returns the enabled effects of the given phase in list order.
func EnabledEffects(effects []Effect, phase EffectPhase) []Effect {
	var out []Effect
	for _, e := range effects {
		if e.Enabled && e.Phase() == phase {
			out = append(out, e)
		}
	}
	return out
}
