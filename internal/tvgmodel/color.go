package tvgmodel

import "image/color"

// NRGBA64 converts c into the standard library's non-premultiplied 16-bit
// representation, for host programs that bridge a decoded Image into Go's
// image/color ecosystem (e.g. to hand colors to an external rasterizer).
// Values outside [0,1] — which RGBAF32 colors are explicitly allowed to
// carry, see Color's doc comment — are clamped.
func (c Color) NRGBA64() color.NRGBA64 {
	return color.NRGBA64{R: clamp16(c.R), G: clamp16(c.G), B: clamp16(c.B), A: clamp16(c.A)}
}

func clamp16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xFFFF
	}
	return uint16(v * 0xFFFF)
}

// FromColor builds a Color from any standard library color.Color, undoing
// the alpha premultiplication color.Color.RGBA always applies.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	return Color{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: float64(a) / 0xFFFF,
	}
}
