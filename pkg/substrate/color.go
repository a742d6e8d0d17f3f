package substrate

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/augmedical/pkg/tensor"
)

// RGBToHSV converts a 3-channel RGB image to HSV. All three output channels
// are in [0, 1]; hue is normalized from degrees by dividing by 360.
func RGBToHSV(img *tensor.Image) (*tensor.Image, error) {
	if err := img.RequireChannels(3); err != nil {
		return nil, err
	}
	out := tensor.New(img.H, img.W, 3)
	for i := 0; i < len(img.Pix); i += 3 {
		h, s, v := colorful.Color{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}.Hsv()
		out.Pix[i] = h / 360
		out.Pix[i+1] = s
		out.Pix[i+2] = v
	}
	return out, nil
}

// HSVToRGB is the inverse of [RGBToHSV]. Hue wraps, so 0 and 1 are the same color.
func HSVToRGB(img *tensor.Image) (*tensor.Image, error) {
	if err := img.RequireChannels(3); err != nil {
		return nil, err
	}
	out := tensor.New(img.H, img.W, 3)
	for i := 0; i < len(img.Pix); i += 3 {
		h := math.Mod(img.Pix[i]*360, 360)
		if h < 0 {
			h += 360
		}
		c := colorful.Hsv(h, img.Pix[i+1], img.Pix[i+2])
		out.Pix[i] = c.R
		out.Pix[i+1] = c.G
		out.Pix[i+2] = c.B
	}
	return out, nil
}
