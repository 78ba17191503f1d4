package color

import (
	"math"
	"testing"
)

func TestToLinearEndpoints(t *testing.T) {
	if got := ToLinear(0); got != 0 {
		t.Errorf("ToLinear(0) = %v, want 0", got)
	}
	if got := ToLinear(255); math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("ToLinear(255) = %v, want 1", got)
	}
}

func TestRoundTripAllBytes(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := uint8(i)
		got := ToSRGB(ToLinear(s))
		diff := int(got) - int(s)
		if diff < -1 || diff > 1 {
			t.Errorf("ToSRGB(ToLinear(%d)) = %d, want within 1", s, got)
		}
	}
}

func TestToSRGBClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want uint8
	}{
		{"negative", -0.5, 0},
		{"zero", 0, 0},
		{"one", 1, 255},
		{"over", 3, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToSRGB(tt.in); got != tt.want {
				t.Errorf("ToSRGB(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestAverageSingleSampleIsExact(t *testing.T) {
	var avg Average
	c := SRGB8{R: 13, G: 200, B: 77, A: 255}
	avg.Add(c)
	if got := avg.Result(); got != c {
		t.Errorf("Result() = %+v, want %+v", got, c)
	}
}

func TestAverageBlackWhiteIsLinearMidpoint(t *testing.T) {
	var avg Average
	avg.Add(SRGB8{A: 255})
	avg.Add(SRGB8{R: 255, G: 255, B: 255, A: 255})
	got := avg.Result()

	// 50% linear light encodes to ~188 in sRGB, not 128.
	if got.R < 186 || got.R > 190 {
		t.Errorf("Result().R = %d, want ~188", got.R)
	}
	if got.A != 255 {
		t.Errorf("Result().A = %d, want 255", got.A)
	}
}

func TestAverageEmptyAndReset(t *testing.T) {
	var avg Average
	if got := avg.Result(); got != (SRGB8{}) {
		t.Errorf("empty Result() = %+v, want zero", got)
	}
	avg.Add(SRGB8{R: 1, A: 255})
	avg.Reset()
	if got := avg.Result(); got != (SRGB8{}) {
		t.Errorf("Result() after Reset = %+v, want zero", got)
	}
}

func TestFloatTransferRoundTrip(t *testing.T) {
	for _, s := range []float64{0, 0.01, 0.04045, 0.2, 0.5, 0.9, 1} {
		if got := LinearToSRGB(SRGBToLinear(s)); math.Abs(got-s) > 1e-12 {
			t.Errorf("LinearToSRGB(SRGBToLinear(%v)) = %v", s, got)
		}
	}
}
