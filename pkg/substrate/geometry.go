package substrate

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Resize resamples img to h×w with bilinear interpolation, channel by
// channel. Values are resampled at 16-bit precision and must lie in [0, 1];
// stamp layers satisfy this.
func Resize(img *tensor.Image, h, w int) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if h < 1 || w < 1 {
		return nil, errors.InvalidShape("resize target must be positive, got %dx%d", h, w)
	}
	out := tensor.New(h, w, img.C)
	for c := range img.C {
		src := toGray16(img, c)
		dst := image.NewGray16(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		fromGray16(dst, out, c)
	}
	return out, nil
}

// Rotate turns img counter-clockwise by angle degrees about its centre.
// The output keeps the input extent; corners that fall outside the source
// are filled with 0.
func Rotate(img *tensor.Image, angle float64) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	theta := angle * math.Pi / 180
	sin, cos := math.Sincos(theta)
	cx, cy := float64(img.W)/2, float64(img.H)/2

	// Maps source to destination coordinates. The y axis points down, so a
	// visually counter-clockwise turn uses +sin in the first row.
	m := f64.Aff3{
		cos, sin, cx - cos*cx - sin*cy,
		-sin, cos, cy + sin*cx - cos*cy,
	}

	out := tensor.New(img.H, img.W, img.C)
	for c := range img.C {
		src := toGray16(img, c)
		dst := image.NewGray16(src.Bounds())
		draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
		fromGray16(dst, out, c)
	}
	return out, nil
}

func toGray16(img *tensor.Image, c int) *image.Gray16 {
	g := image.NewGray16(image.Rect(0, 0, img.W, img.H))
	for y := range img.H {
		for x := range img.W {
			v := min(max(img.At(y, x, c), 0), 1)
			i := g.PixOffset(x, y)
			q := uint16(v*0xffff + 0.5)
			g.Pix[i] = uint8(q >> 8)
			g.Pix[i+1] = uint8(q)
		}
	}
	return g
}

func fromGray16(g *image.Gray16, dst *tensor.Image, c int) {
	for y := range dst.H {
		for x := range dst.W {
			i := g.PixOffset(x, y)
			q := uint16(g.Pix[i])<<8 | uint16(g.Pix[i+1])
			dst.Set(y, x, c, float64(q)/0xffff)
		}
	}
}
