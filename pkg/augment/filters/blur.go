// Package filters provides smoothing augmentations that blend a filtered
// copy back into the image, simulating defocus and scanner blur.
package filters

import (
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/substrate"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Filter selects the smoothing kernel used by [Blur].
type Filter string

const (
	FilterGaussian Filter = "gaussian"
	FilterBox      Filter = "box"
)

// Blur repeatedly mixes a smoothed copy into the image:
//
//	x ← filter(x)*Alpha + x*(1-Alpha)
//
// The activation trial happens once per call, before the loop, so the
// number of draws does not depend on Iterations.
type Blur struct {
	P          float64
	KernelSize int
	Alpha      float64
	Iterations int
	Filter     Filter
}

// NewGaussianBlur returns a Gaussian blur with the defaults: p 0, kernel
// size 1, alpha 0.5, one iteration.
func NewGaussianBlur() Blur {
	return Blur{KernelSize: 1, Alpha: 0.5, Iterations: 1, Filter: FilterGaussian}
}

// NewBoxBlur returns a box blur with the same defaults as [NewGaussianBlur].
func NewBoxBlur() Blur {
	b := NewGaussianBlur()
	b.Filter = FilterBox
	return b
}

// Name implements augment.Named.
func (b Blur) Name() string {
	if b.Filter == FilterBox {
		return "box_blur"
	}
	return "gaussian_blur"
}

// Validate checks every parameter.
func (b Blur) Validate() error {
	if err := errors.ValidateProbability(b.Name()+".p", b.P); err != nil {
		return err
	}
	if err := errors.ValidatePositive(b.Name()+".kernel_size", b.KernelSize); err != nil {
		return err
	}
	if err := errors.ValidatePositive(b.Name()+".iterations", b.Iterations); err != nil {
		return err
	}
	if err := errors.ValidateProbability(b.Name()+".alpha", b.Alpha); err != nil {
		return err
	}
	switch b.Filter {
	case FilterGaussian, FilterBox:
		return nil
	default:
		return errors.InvalidConfig("unknown blur filter %q", b.Filter)
	}
}

// Invoke implements augment.Transform. The gate lives in the blend loop,
// so an inactive call returns s untouched.
func (b Blur) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	img, active, err := b.blend(s.Image, rng)
	if err != nil || !active {
		return s, err
	}
	return s.WithImage(img), nil
}

// WithIntensity scales Alpha by m.
func (b Blur) WithIntensity(m float64) augment.Transform {
	b.Alpha *= min(max(m, 0), 1)
	return b
}

// Apply draws the activation trial and, when active, runs the blend loop.
// An inactive call returns a copy of img.
func (b Blur) Apply(img *tensor.Image, rng random.Source) (*tensor.Image, error) {
	out, active, err := b.blend(img, rng)
	if err != nil {
		return nil, err
	}
	if !active {
		return img.Clone(), nil
	}
	return out, nil
}

func (b Blur) blend(img *tensor.Image, rng random.Source) (*tensor.Image, bool, error) {
	if err := img.Validate(); err != nil {
		return nil, false, err
	}
	if err := b.Validate(); err != nil {
		return nil, false, err
	}
	if !random.Bernoulli(rng, b.P) {
		return img, false, nil
	}

	x := img
	for range b.Iterations {
		smoothed, err := b.smooth(x)
		if err != nil {
			return nil, false, err
		}
		for i := range smoothed.Pix {
			smoothed.Pix[i] = smoothed.Pix[i]*b.Alpha + x.Pix[i]*(1-b.Alpha)
		}
		x = smoothed
	}
	return x, true, nil
}

func (b Blur) smooth(img *tensor.Image) (*tensor.Image, error) {
	if b.Filter == FilterBox {
		return substrate.BoxBlur(img, b.KernelSize)
	}
	return substrate.GaussianBlur(img, float64(b.KernelSize)/4)
}
