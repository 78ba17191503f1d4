package fractal

import "testing"

func TestColorize_SentinelAndGradient(t *testing.T) {
	buf := &RawBuffer{
		Family:        FamilyEscapeTime,
		Cols:          3,
		Rows:          1,
		Subsamples:    1,
		MaxIterations: 10,
		Data: []RawSample{
			{Value: 1, Escaped: true},
			{Value: 10, Iterations: 10},
			{Value: 9, Escaped: true},
		},
	}
	cmap := testColorMap(t)
	img := Colorize(buf, BuildHistogram(buf, 1), cmap)

	if !isSentinel(img, 1, 0) {
		t.Errorf("in-set pixel = %+v, want the sentinel", img.GetPixel(1, 0))
	}
	low, high := img.GetPixel(0, 0), img.GetPixel(2, 0)
	if low.R >= high.R {
		t.Errorf("gradient not increasing: %+v then %+v", low, high)
	}
	if high.R != high.G || high.G != high.B {
		t.Errorf("gray map produced %+v", high)
	}
}

func TestColorize_AveragesSubsamplesInLinearLight(t *testing.T) {
	// One pixel, two sub-samples: black gradient end and white sentinel.
	buf := &RawBuffer{
		Family:        FamilyEscapeTime,
		Cols:          1,
		Rows:          1,
		Subsamples:    2,
		MaxIterations: 4,
		Data: []RawSample{
			{Value: 0, Escaped: true},
			{Value: 4, Iterations: 4},
		},
	}
	cmap, err := NewColorMap([]ColorStop{{Offset: 0, Color: Black}, {Offset: 1, Color: Black}}, WithSentinel(White))
	if err != nil {
		t.Fatal(err)
	}
	img := Colorize(buf, BuildHistogram(buf, 1), cmap)

	// Half white in linear light encodes to about 188 in sRGB, not 128.
	got := img.Data()[0]
	if got < 185 || got > 190 {
		t.Errorf("averaged channel = %d, want about 188", got)
	}
}
