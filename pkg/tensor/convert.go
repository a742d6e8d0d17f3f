package tensor

import (
	"image"
	"image/color"

	"github.com/matzehuels/augmedical/pkg/errors"
)

// FromRGB converts any decoded image into a 3-channel tensor in [0, 1].
// Alpha is discarded after un-premultiplying at 16-bit precision, so fully
// transparent pixels read as black.
func FromRGB(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dy(), b.Dx(), 3)
	for y := range img.H {
		for x := range img.W {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			i := img.Index(y, x, 0)
			img.Pix[i] = float64(c.R) / 0xffff
			img.Pix[i+1] = float64(c.G) / 0xffff
			img.Pix[i+2] = float64(c.B) / 0xffff
		}
	}
	return img
}

// FromGray converts a decoded image into a single-channel tensor in [0, 1]
// using the standard luminance weights.
func FromGray(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dy(), b.Dx(), 1)
	for y := range img.H {
		for x := range img.W {
			g := color.Gray16Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			img.Pix[y*img.W+x] = float64(g.Y) / 0xffff
		}
	}
	return img
}

// FromAlpha extracts the alpha channel of src as a single-channel tensor.
// Opaque images produce a tensor of ones.
func FromAlpha(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dy(), b.Dx(), 1)
	for y := range img.H {
		for x := range img.W {
			_, _, _, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			img.Pix[y*img.W+x] = float64(a) / 0xffff
		}
	}
	return img
}

// ToImage converts img to a 16-bit image. One channel becomes *image.Gray16,
// three channels become an opaque *image.NRGBA64. Values are clamped to [0, 1].
func (img *Image) ToImage() (image.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, img.W, img.H)
	switch img.C {
	case 1:
		out := image.NewGray16(rect)
		for y := range img.H {
			for x := range img.W {
				out.SetGray16(x, y, color.Gray16{Y: quantize(img.At(y, x, 0))})
			}
		}
		return out, nil
	case 3:
		out := image.NewNRGBA64(rect)
		for y := range img.H {
			for x := range img.W {
				out.SetNRGBA64(x, y, color.NRGBA64{
					R: quantize(img.At(y, x, 0)),
					G: quantize(img.At(y, x, 1)),
					B: quantize(img.At(y, x, 2)),
					A: 0xffff,
				})
			}
		}
		return out, nil
	default:
		return nil, errors.InvalidShape("cannot encode %d-channel image, want 1 or 3", img.C)
	}
}

func quantize(v float64) uint16 {
	return uint16(min(max(v, 0), 1)*0xffff + 0.5)
}
