// Package color provides the linear-light color arithmetic used when
// interpolating gradient stops and averaging anti-aliasing sub-samples.
//
// Colors are stored as sRGB bytes in images, but mixing must happen in
// linear space; the lookup tables make both directions O(1).
//
// References:
//   - sRGB standard: https://www.w3.org/Graphics/Color/sRGB
//   - GPU Gems 3, Chapter 24: https://developer.nvidia.com/gpugems/gpugems3/part-iv-image-effects/chapter-24-importance-being-linear
package color

import "math"

// toLinearLUT converts an sRGB byte [0-255] to linear float32 [0.0-1.0].
var toLinearLUT [256]float32

// toSRGBLUT converts linear light to an sRGB byte with 12-bit input precision.
var toSRGBLUT [4096]uint8

func init() {
	for i := 0; i < 256; i++ {
		toLinearLUT[i] = float32(decode(float64(i) / 255.0))
	}

	for i := 0; i < 4096; i++ {
		s := encode(float64(i) / 4095.0)
		srgb := int(s*255.0 + 0.5)
		if srgb < 0 {
			srgb = 0
		}
		if srgb > 255 {
			srgb = 255
		}
		//nolint:gosec // G115: srgb is clamped to [0,255] range
		toSRGBLUT[i] = uint8(srgb)
	}
}

// decode is the sRGB electro-optical transfer function.
func decode(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// encode is the inverse of decode.
func encode(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

// ToLinear converts an sRGB channel byte to linear light.
func ToLinear(s uint8) float32 {
	return toLinearLUT[s]
}

// ToSRGB converts a linear channel value to an sRGB byte.
// Input outside [0, 1] is clamped.
func ToSRGB(l float32) uint8 {
	if l <= 0 {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return toSRGBLUT[int(l*4095.0+0.5)]
}

// SRGBToLinear converts one sRGB channel in [0, 1] to linear light at full
// precision. Gradient stops use it; per-pixel work uses the tables.
func SRGBToLinear(s float64) float64 {
	return decode(s)
}

// LinearToSRGB is the inverse of SRGBToLinear.
func LinearToSRGB(l float64) float64 {
	return encode(l)
}
