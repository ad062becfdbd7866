package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 85 {
				c := RGBA{R: float64(r), G: float64(g), B: float64(b), A: 1}
				assert.Equal(t, c, HexToRGBA(RGBAToHex(c), 1))
			}
		}
	}
}

func TestHexToRGBA(t *testing.T) {
	tests := []struct {
		name  string
		hex   string
		alpha float64
		want  RGBA
	}{
		{name: "Long", hex: "#e94560", alpha: 1, want: RGBA{233, 69, 96, 1}},
		{name: "NoHash", hex: "E94560", alpha: 0.5, want: RGBA{233, 69, 96, 0.5}},
		{name: "Short", hex: "#fff", alpha: 1, want: White},
		{name: "WithAlpha", hex: "#00000080", alpha: 1, want: RGBA{0, 0, 0, 128.0 / 255}},
		{name: "Garbage", hex: "#zzzzzz", alpha: 1, want: Black},
		{name: "WrongLength", hex: "#12345", alpha: 1, want: Black},
		{name: "Empty", hex: "", alpha: 1, want: Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HexToRGBA(tt.hex, tt.alpha)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
			assert.InDelta(t, tt.want.A, got.A, 1e-9)
		})
	}
}

func TestRGBAToHexRoundsAndClamps(t *testing.T) {
	assert.Equal(t, "#0a0b00", RGBAToHex(RGBA{R: 9.6, G: 10.5, B: -3, A: 0.2}))
	assert.Equal(t, "#ff0000", RGBAToHex(RGBA{R: 300, G: 0, B: 0, A: 1}))
}

func TestBlendCompositeOperation(t *testing.T) {
	assert.Equal(t, "source-over", BlendNormal.CompositeOperation())
	assert.Equal(t, "source-over", BlendMode("").CompositeOperation())
	assert.Equal(t, "multiply", BlendMultiply.CompositeOperation())
	assert.Equal(t, "color-dodge", BlendColorDodge.CompositeOperation())
	assert.Equal(t, "source-over", BlendMode("bogus").CompositeOperation())
	assert.Len(t, BlendModes, 16)
}
