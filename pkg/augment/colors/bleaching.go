package colors

import (
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Bleaching modes. Fluorescence images bleach toward dark, brightfield
// images toward white.
const (
	ModeFluorescence = "fluorescense"
	ModeBrightfield  = "brightfield"

	// modeFluorescenceAlt is the dictionary spelling, accepted as an alias.
	modeFluorescenceAlt = "fluorescence"
)

// ChannelBleaching reduces the dynamic range of a single channel while
// leaving every other channel untouched.
type ChannelBleaching struct {
	P            float64
	Bleach       random.Range // blend fraction toward the channel extreme
	Mode         string
	ForceChannel *int // nil selects a channel uniformly per call
}

// NewChannelBleaching returns the defaults: p 0.3, bleach [0.1, 0.9),
// fluorescence mode, random channel.
func NewChannelBleaching() ChannelBleaching {
	return ChannelBleaching{
		P:      0.3,
		Bleach: random.Range{Min: 0.1, Max: 0.9},
		Mode:   ModeFluorescence,
	}
}

// Name implements augment.Named.
func (b ChannelBleaching) Name() string { return "bleaching" }

// Validate checks the probability, the bleach range and the mode.
func (b ChannelBleaching) Validate() error {
	if err := errors.ValidateProbability("bleaching.p", b.P); err != nil {
		return err
	}
	if err := errors.ValidateUnitRange("bleaching.bleach", b.Bleach.Min, b.Bleach.Max); err != nil {
		return err
	}
	_, err := b.towardMax()
	return err
}

// towardMax reports whether the mode bleaches toward the channel maximum.
func (b ChannelBleaching) towardMax() (bool, error) {
	switch b.Mode {
	case ModeFluorescence, modeFluorescenceAlt:
		return false, nil
	case ModeBrightfield:
		return true, nil
	default:
		return false, errors.InvalidConfig("unknown bleaching mode %q (must be %q or %q)", b.Mode, ModeFluorescence, ModeBrightfield)
	}
}

// Invoke implements augment.Transform.
func (b ChannelBleaching) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	return augment.Gate(b.P, b, s, rng)
}

// WithIntensity scales the upper bleach bound by m.
func (b ChannelBleaching) WithIntensity(m float64) augment.Transform {
	b.Bleach = b.Bleach.Scale(m)
	return b
}

// Apply blends the selected channel toward its own per-call minimum
// (fluorescence) or maximum (brightfield) by a random fraction f:
// x ← x*(1-f) + extreme*f.
func (b ChannelBleaching) Apply(img *tensor.Image, rng random.Source) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	toMax, err := b.towardMax()
	if err != nil {
		return nil, err
	}
	c, err := pickChannel(img, b.ForceChannel, rng)
	if err != nil {
		return nil, err
	}
	f := b.Bleach.Sample(rng)

	lo, hi := img.ChannelBounds(c)
	target := lo
	if toMax {
		target = hi
	}

	out := img.Clone()
	for i := c; i < len(out.Pix); i += out.C {
		out.Pix[i] = out.Pix[i]*(1-f) + target*f
	}
	return out, nil
}
