package colors

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/substrate"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Deconvolution maps RGB into hematoxylin/PAS/residual stain space and
// standardizes each stain channel. It always applies.
type Deconvolution struct {
	Mean [3]float64
	Std  [3]float64
}

// NewDeconvolution returns an unnormalized deconvolution (mean 0, std 1).
func NewDeconvolution() Deconvolution {
	return Deconvolution{Std: [3]float64{1, 1, 1}}
}

// Name implements augment.Named.
func (d Deconvolution) Name() string { return "deconvolution" }

// Validate rejects zero or non-finite standard deviations.
func (d Deconvolution) Validate() error {
	for c, s := range d.Std {
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.InvalidConfig("deconvolution.std[%d] must be finite and non-zero, got %v", c, s)
		}
	}
	return nil
}

// Invoke applies the projection unconditionally; it draws nothing from rng.
func (d Deconvolution) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	img, err := d.Apply(s.Image, rng)
	if err != nil {
		return s, err
	}
	return s.WithImage(img), nil
}

// Apply separates stains and returns (x - mean) / std per channel.
func (d Deconvolution) Apply(img *tensor.Image, _ random.Source) (*tensor.Image, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	out, err := substrate.SeparateStains(img)
	if err != nil {
		return nil, err
	}
	for i := range out.Pix {
		c := i % 3
		out.Pix[i] = (out.Pix[i] - d.Mean[c]) / d.Std[c]
	}
	return out, nil
}

// Fit estimates per-channel normalization statistics over a stack of RGB
// images. The center is the average of per-image means (or medians when
// useMedian is set); the spread is the square root of the average per-image
// variance.
func Fit(stack []*tensor.Image, useMedian bool) (Deconvolution, error) {
	if len(stack) == 0 {
		return Deconvolution{}, errors.New(errors.ErrCodeInvalidInput, "cannot fit deconvolution on an empty stack")
	}
	var centerSum, varSum [3]float64
	for _, img := range stack {
		stained, err := substrate.SeparateStains(img)
		if err != nil {
			return Deconvolution{}, err
		}
		for c := range 3 {
			data := stats.Float64Data(stained.Channel(c))
			center, err := data.Mean()
			if useMedian {
				center, err = data.Median()
			}
			if err != nil {
				return Deconvolution{}, errors.Wrap(errors.ErrCodeInternal, err, "channel %d statistics", c)
			}
			variance, err := data.PopulationVariance()
			if err != nil {
				return Deconvolution{}, errors.Wrap(errors.ErrCodeInternal, err, "channel %d variance", c)
			}
			centerSum[c] += center
			varSum[c] += variance
		}
	}

	n := float64(len(stack))
	var d Deconvolution
	for c := range 3 {
		d.Mean[c] = centerSum[c] / n
		d.Std[c] = math.Sqrt(varSum[c] / n)
	}
	return d, nil
}
