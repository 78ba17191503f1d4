package color

// Linear is a color with linear-light RGB components and straight alpha,
// all in [0, 1].
type Linear struct {
	R, G, B, A float32
}

// SRGB8 is a color with 8-bit sRGB-encoded channels and straight alpha.
type SRGB8 struct {
	R, G, B, A uint8
}

// Decode converts an sRGB color to linear light.
func Decode(c SRGB8) Linear {
	return Linear{
		R: ToLinear(c.R),
		G: ToLinear(c.G),
		B: ToLinear(c.B),
		A: float32(c.A) / 255,
	}
}

// Encode converts a linear color back to 8-bit sRGB.
func Encode(c Linear) SRGB8 {
	a := c.A
	switch {
	case a <= 0:
		a = 0
	case a >= 1:
		a = 1
	}
	return SRGB8{
		R: ToSRGB(c.R),
		G: ToSRGB(c.G),
		B: ToSRGB(c.B),
		A: uint8(a*255 + 0.5),
	}
}

// Average accumulates sub-sample colors of one pixel in linear light.
// The zero value is ready to use.
type Average struct {
	sum   Linear
	first SRGB8
	n     int
}

// Add accumulates one sub-sample.
func (a *Average) Add(c SRGB8) {
	if a.n == 0 {
		a.first = c
	}
	l := Decode(c)
	a.sum.R += l.R
	a.sum.G += l.G
	a.sum.B += l.B
	a.sum.A += l.A
	a.n++
}

// Result returns the mean of all added samples, or transparent black when
// nothing was added.
func (a *Average) Result() SRGB8 {
	if a.n == 0 {
		return SRGB8{}
	}
	if a.n == 1 {
		return a.first
	}
	inv := 1 / float32(a.n)
	return Encode(Linear{
		R: a.sum.R * inv,
		G: a.sum.G * inv,
		B: a.sum.B * inv,
		A: a.sum.A * inv,
	})
}

// Reset clears the accumulator for reuse on the next pixel.
func (a *Average) Reset() {
	*a = Average{}
}
