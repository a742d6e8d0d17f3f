package colors

import (
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/substrate"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Desaturation reduces saturation and brightness of an RGB image.
type Desaturation struct {
	P              float64
	Desaturation   random.Range // fraction removed from S
	ValueReduction random.Range // fraction removed from V
}

// NewDesaturation returns a Desaturation with the default ranges:
// p 0.1, desaturation [0, 0.5), value reduction [0, 0.1).
func NewDesaturation() Desaturation {
	return Desaturation{
		P:              0.1,
		Desaturation:   random.Range{Min: 0, Max: 0.5},
		ValueReduction: random.Range{Min: 0, Max: 0.1},
	}
}

// Name implements augment.Named.
func (d Desaturation) Name() string { return "desaturation" }

// Validate checks the probability and both ranges.
func (d Desaturation) Validate() error {
	if err := errors.ValidateProbability("desaturation.p", d.P); err != nil {
		return err
	}
	if err := errors.ValidateUnitRange("desaturation.desaturation", d.Desaturation.Min, d.Desaturation.Max); err != nil {
		return err
	}
	return errors.ValidateUnitRange("desaturation.value_reduction", d.ValueReduction.Min, d.ValueReduction.Max)
}

// Invoke implements augment.Transform.
func (d Desaturation) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	return augment.Gate(d.P, d, s, rng)
}

// WithIntensity scales both upper bounds by m.
func (d Desaturation) WithIntensity(m float64) augment.Transform {
	d.Desaturation = d.Desaturation.Scale(m)
	d.ValueReduction = d.ValueReduction.Scale(m)
	return d
}

// Apply multiplies S by (1-u1) and V by (1-u2), clamps HSV to [0, 1] and
// converts back to RGB. u1 and u2 are drawn independently.
func (d Desaturation) Apply(img *tensor.Image, rng random.Source) (*tensor.Image, error) {
	hsv, err := substrate.RGBToHSV(img)
	if err != nil {
		return nil, err
	}
	sat := 1 - d.Desaturation.Sample(rng)
	val := 1 - d.ValueReduction.Sample(rng)

	for i := 0; i < len(hsv.Pix); i += 3 {
		hsv.Pix[i+1] *= sat
		hsv.Pix[i+2] *= val
	}
	hsv.Clip(0, 1)

	return substrate.HSVToRGB(hsv)
}
