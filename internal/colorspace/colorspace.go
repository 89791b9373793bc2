// Package colorspace converts 8-bit sRGB samples to HSV and CIE L*a*b* (D65).
package colorspace

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV holds hue in degrees [0, 360) and saturation/value in [0, 1]
type HSV struct {
	H, S, V float64
}

// LAB holds lightness in [0, 100] and the signed a*/b* channels
type LAB struct {
	L, A, B float64
}

func toColor(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

// ToHSV converts an sRGB triple to HSV
func ToHSV(r, g, b uint8) HSV {
	h, s, v := toColor(r, g, b).Hsv()
	if h >= 360 {
		h -= 360
	}
	return HSV{H: h, S: s, V: v}
}

// ToLAB converts an sRGB triple to L*a*b* against the D65 white point.
// go-colorful reports L in [0, 1] and a/b scaled by 1/100, so values are rescaled.
func ToLAB(r, g, b uint8) LAB {
	return toLAB(toColor(r, g, b))
}

// toLAB rescales go-colorful's Lab and pins L to [0, 100] against rounding at the extremes
func toLAB(c colorful.Color) LAB {
	l, a, b := c.Lab()
	return LAB{L: math.Min(math.Max(l*100, 0), 100), A: a * 100, B: b * 100}
}

// Convert returns both representations of one pixel
func Convert(r, g, b uint8) (HSV, LAB) {
	c := toColor(r, g, b)
	h, s, v := c.Hsv()
	if h >= 360 {
		h -= 360
	}
	return HSV{H: h, S: s, V: v}, toLAB(c)
}

// Luma returns the Rec. 601 luma of an sRGB triple in [0, 255]
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
