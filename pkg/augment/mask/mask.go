// Package mask provides mask-aware transforms.
//
// Segmentation borders are less certain than mask interiors. [UncertainMask]
// softens them by box-blurring the mask, similar in spirit to
// superpixel-guided label softening but without the superpixels.
package mask

import (
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/augment/filters"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// UncertainMask blurs the leading Channels channels of a sample's mask.
// Channels == 0 blurs every channel. The image and label are untouched.
type UncertainMask struct {
	Channels   int
	FilterSize int
	Iterations int
	Alpha      float64
}

// NewUncertainMask returns the defaults: one channel, filter size 3,
// one iteration, alpha 1.
func NewUncertainMask() UncertainMask {
	return UncertainMask{Channels: 1, FilterSize: 3, Iterations: 1, Alpha: 1}
}

// Name implements augment.Named.
func (u UncertainMask) Name() string { return "uncertain_mask" }

// Validate checks the blur parameters.
func (u UncertainMask) Validate() error {
	if u.Channels < 0 {
		return errors.InvalidConfig("uncertain_mask.channels must be non-negative, got %d", u.Channels)
	}
	return u.blur().Validate()
}

func (u UncertainMask) blur() filters.Blur {
	return filters.Blur{
		P:          1,
		KernelSize: u.FilterSize,
		Alpha:      u.Alpha,
		Iterations: u.Iterations,
		Filter:     filters.FilterBox,
	}
}

// Invoke softens s.Mask. A sample without a mask is returned unchanged.
func (u UncertainMask) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	if s.Mask == nil {
		return s, nil
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	m, err := u.Soften(s.Mask, rng)
	if err != nil {
		return s, err
	}
	return s.WithMask(m), nil
}

// Soften returns a blurred copy of m.
func (u UncertainMask) Soften(m *tensor.Image, rng random.Source) (*tensor.Image, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	n := u.Channels
	if n == 0 {
		n = m.C
	}
	if n > m.C {
		return nil, errors.InvalidShape("uncertain_mask needs %d channels, mask has %d", n, m.C)
	}

	out := m.Clone()
	b := u.blur()
	for c := range n {
		soft, err := b.Apply(m.Plane(c), rng)
		if err != nil {
			return nil, err
		}
		out.SetChannel(c, soft.Pix)
	}
	return out, nil
}
