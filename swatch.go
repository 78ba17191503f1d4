package fractal

import (
	"fmt"
	"image"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Swatch layout, in pixels.
const (
	swatchLabelHeight = 20
	swatchFontSize    = 12
)

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error
)

func loadLabelFont() (*opentype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// RenderSwatch draws a preview of cmap: the gradient from left to right,
// a block of the sentinel color at the right edge, and, when the image is
// tall enough, the stop offsets labeled underneath.
func RenderSwatch(cmap *ColorMap, width, height int) (*Image, error) {
	if width < 2 || height < 1 {
		return nil, &ValidationError{Subject: "swatch", Fields: []FieldError{
			{Field: "size", Reason: fmt.Sprintf("must be at least 2x1, got %dx%d", width, height)},
		}}
	}

	img := NewImage(width, height)
	img.Clear(Black)

	barHeight := height
	if height >= 2*swatchLabelHeight {
		barHeight = height - swatchLabelHeight
	}
	sentinelWidth := max(1, width/8)
	gradWidth := width - sentinelWidth

	sentinel := cmap.Sentinel().srgb8()
	gradient := cmap.Table(gradWidth)
	for x := range width {
		c := sentinel
		if x < gradWidth {
			c = gradient[x].srgb8()
		}
		for y := range barHeight {
			img.set8(x, y, c)
		}
	}

	if barHeight == height {
		return img, nil
	}
	if err := drawStopLabels(img, cmap, gradWidth, barHeight); err != nil {
		return nil, err
	}
	return img, nil
}

// drawStopLabels writes each stop offset below its position on the bar.
func drawStopLabels(img *Image, cmap *ColorMap, gradWidth, top int) error {
	f, err := loadLabelFont()
	if err != nil {
		return fmt.Errorf("fractal: parse label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    swatchFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("fractal: label face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(White.Color()),
		Face: face,
	}
	baseline := top + face.Metrics().Ascent.Ceil() + 2

	for _, s := range cmap.Stops() {
		x := int(s.Offset * float64(gradWidth-1))
		// Tick mark at the stop position.
		for y := top; y < top+3 && y < img.Height(); y++ {
			img.SetPixel(x, y, White)
		}

		label := strconv.FormatFloat(s.Offset, 'f', -1, 64)
		w := d.MeasureString(label).Ceil()
		lx := min(max(x-w/2, 0), max(img.Width()-w, 0))
		d.Dot = fixed.P(lx, baseline)
		d.DrawString(label)
	}
	return nil
}
