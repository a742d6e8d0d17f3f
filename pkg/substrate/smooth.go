package substrate

import (
	"math"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// GaussianBlur smooths every channel of img independently with a Gaussian
// of the given sigma. sigma <= 0 returns a copy.
func GaussianBlur(img *tensor.Image, sigma float64) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if sigma <= 0 {
		return img.Clone(), nil
	}
	radius := int(gaussianTruncate*sigma + 0.5)
	weights := make([]float64, 2*radius+1)
	var sum float64
	for i := range weights {
		d := float64(i - radius)
		weights[i] = math.Exp(-0.5 * d * d / (sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return separable(img, weights, -radius), nil
}

// BoxBlur replaces every value with the mean of the size×size window around
// it, per channel. Even sizes extend one pixel further toward the origin.
func BoxBlur(img *tensor.Image, size int) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, errors.InvalidConfig("box blur size must be at least 1, got %d", size)
	}
	weights := make([]float64, size)
	for i := range weights {
		weights[i] = 1 / float64(size)
	}
	return separable(img, weights, -(size / 2)), nil
}

// separable convolves rows then columns with weights, where weights[0]
// applies at offset start. Out-of-range samples repeat the nearest edge.
func separable(img *tensor.Image, weights []float64, start int) *tensor.Image {
	tmp := tensor.New(img.H, img.W, img.C)
	for y := range img.H {
		for x := range img.W {
			for c := range img.C {
				var acc float64
				for k, w := range weights {
					xx := min(max(x+start+k, 0), img.W-1)
					acc += w * img.At(y, xx, c)
				}
				tmp.Set(y, x, c, acc)
			}
		}
	}
	out := tensor.New(img.H, img.W, img.C)
	for y := range img.H {
		for x := range img.W {
			for c := range img.C {
				var acc float64
				for k, w := range weights {
					yy := min(max(y+start+k, 0), img.H-1)
					acc += w * tmp.At(yy, x, c)
				}
				out.Set(y, x, c, acc)
			}
		}
	}
	return out
}
