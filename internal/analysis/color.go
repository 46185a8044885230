package analysis

import (
	"fmt"
	"math"
)

// Normalization maps a value in [min, max] onto [0, 1].
type Normalization int

const (
	// LogNormalization is log(v-min+1) / log(max-min+1).
	LogNormalization Normalization = iota
	// SqrtNormalization is sqrt((v-min) / (max-min)).
	SqrtNormalization
	// LinearNormalization is (v-min) / (max-min).
	LinearNormalization
)

// ParseNormalization converts a flag value into a Normalization.
func ParseNormalization(s string) (Normalization, error) {
	switch s {
	case "log", "":
		return LogNormalization, nil
	case "sqrt":
		return SqrtNormalization, nil
	case "linear":
		return LinearNormalization, nil
	default:
		return 0, fmt.Errorf("unknown normalization: %s (want log, sqrt or linear)", s)
	}
}

// NodeAlpha is the fixed alpha channel of node fill colors.
const NodeAlpha = 127

// RGBA is an 8-bit color.
type RGBA struct {
	R, G, B, A uint8
}

// Hex renders the color as #rrggbbaa.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Normalize maps value into [0, 1]. A degenerate range (max == min) and NaN
// inputs map to 0; values outside the range are clamped.
func Normalize(value, min, max float64, norm Normalization) float64 {
	span := max - min
	if span <= 0 || math.IsNaN(value) || math.IsNaN(span) {
		return 0
	}

	offset := value - min
	if offset < 0 {
		offset = 0
	}
	if offset > span {
		offset = span
	}

	switch norm {
	case SqrtNormalization:
		return math.Sqrt(offset / span)
	case LinearNormalization:
		return offset / span
	default:
		return math.Log(offset+1) / math.Log(span+1)
	}
}

// Summer samples the 256-entry "summer" colormap at x in [0, 1]:
// red rises 0..1, green rises 0.5..1, blue stays at 0.4.
func Summer(x float64) (r, g, b float64) {
	i := int(x * 256)
	if i < 0 {
		i = 0
	}
	if i > 255 {
		i = 255
	}
	t := float64(i) / 255
	return t, 0.5 + 0.5*t, 0.4
}

// Color maps value through the normalization and the summer colormap.
// Channels are floor(c*255); alpha is NodeAlpha.
func Color(value, min, max float64, norm Normalization) RGBA {
	r, g, b := Summer(Normalize(value, min, max, norm))
	return RGBA{
		R: uint8(math.Floor(r * 255)),
		G: uint8(math.Floor(g * 255)),
		B: uint8(math.Floor(b * 255)),
		A: NodeAlpha,
	}
}
