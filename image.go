package fractal

import (
	"bufio"
	"errors"
	"image"
	imgcolor "image/color"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/fractal/internal/color"
)

// Image is a dense RGBA8 pixel buffer with straight alpha. It implements
// image.Image and draw.Image.
type Image struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel
}

// NewImage creates a new image with the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the image.
func (p *Image) Width() int {
	return p.width
}

// Height returns the height of the image.
func (p *Image) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA format).
func (p *Image) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel.
func (p *Image) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	p.set8(x, y, c.srgb8())
}

func (p *Image) set8(x, y int, c color.SRGB8) {
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel.
func (p *Image) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return RGBA{}
	}
	i := (y*p.width + x) * 4
	return RGBA{
		R: float64(p.data[i+0]) / 255,
		G: float64(p.data[i+1]) / 255,
		B: float64(p.data[i+2]) / 255,
		A: float64(p.data[i+3]) / 255,
	}
}

// Clear fills the entire image with a color.
func (p *Image) Clear(c RGBA) {
	s := c.srgb8()
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = s.R
		p.data[i+1] = s.G
		p.data[i+2] = s.B
		p.data[i+3] = s.A
	}
}

// ToImage copies the image into an image.NRGBA.
func (p *Image) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// Upscale resamples the image to width x height. Smooth selects bilinear
// filtering; otherwise each source pixel becomes a solid block, which suits
// reduced-resolution preview frames.
func (p *Image) Upscale(width, height int, smooth bool) *Image {
	if width == p.width && height == p.height {
		out := NewImage(width, height)
		copy(out.data, p.data)
		return out
	}
	out := NewImage(width, height)
	dst := &image.NRGBA{Pix: out.data, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	var interp xdraw.Interpolator = xdraw.NearestNeighbor
	if smooth {
		interp = xdraw.ApproxBiLinear
	}
	interp.Scale(dst, dst.Rect, p.ToImage(), p.Bounds(), xdraw.Src, nil)
	return out
}

// EncodePNG writes the image as PNG.
func (p *Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, p.ToImage())
}

// SavePNG saves the image to a PNG file.
func (p *Image) SavePNG(path string) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	if err := p.EncodePNG(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// At implements the image.Image interface.
func (p *Image) At(x, y int) imgcolor.Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return imgcolor.NRGBA{}
	}
	i := (y*p.width + x) * 4
	return imgcolor.NRGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Set implements the draw.Image interface.
func (p *Image) Set(x, y int, c imgcolor.Color) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	n := imgcolor.NRGBAModel.Convert(c).(imgcolor.NRGBA)
	p.set8(x, y, color.SRGB8{R: n.R, G: n.G, B: n.B, A: n.A})
}

// Bounds implements the image.Image interface.
func (p *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Image) ColorModel() imgcolor.Model {
	return imgcolor.NRGBAModel
}
