package colors

import (
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Direction thresholds for a single uniform draw d.
const (
	rowsOnlyBelow = 0.4 // d <= 0.4 shifts along rows only
	colsOnlyBelow = 0.8 // d <= 0.8 shifts along columns only; otherwise both
)

// StainShift rolls one channel by a few pixels with wrap-around. It is best
// applied to a stain that is not directly tied to the mask.
type StainShift struct {
	P            float64
	Shift        random.IntRange // magnitude per shifted axis, inclusive
	ForceChannel *int
}

// NewStainShift returns the defaults: p 0.3, shift [1, 3], random channel.
func NewStainShift() StainShift {
	return StainShift{
		P:     0.3,
		Shift: random.IntRange{Min: 1, Max: 3},
	}
}

// Name implements augment.Named.
func (st StainShift) Name() string { return "stainshift" }

// Validate checks the probability and the shift range.
func (st StainShift) Validate() error {
	if err := errors.ValidateProbability("stainshift.p", st.P); err != nil {
		return err
	}
	if st.Shift.Min < 0 {
		return errors.InvalidConfig("stainshift.min_shift must be non-negative, got %d", st.Shift.Min)
	}
	return st.Shift.Validate("stainshift.shift")
}

// Invoke implements augment.Transform.
func (st StainShift) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	return augment.Gate(st.P, st, s, rng)
}

// WithIntensity scales the upper shift bound by m.
func (st StainShift) WithIntensity(m float64) augment.Transform {
	st.Shift = st.Shift.Scale(m)
	return st
}

// Offsets draws the row and column shift for one call.
func (st StainShift) Offsets(rng random.Source) (dy, dx int) {
	switch d := rng.Float64(); {
	case d <= rowsOnlyBelow:
		dy = st.Shift.Sample(rng)
	case d <= colsOnlyBelow:
		dx = st.Shift.Sample(rng)
	default:
		dy = st.Shift.Sample(rng)
		dx = st.Shift.Sample(rng)
	}
	if random.Coin(rng) {
		dy = -dy
	}
	if random.Coin(rng) {
		dx = -dx
	}
	return dy, dx
}

// Apply rolls the selected channel by the drawn offsets.
func (st StainShift) Apply(img *tensor.Image, rng random.Source) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	c, err := pickChannel(img, st.ForceChannel, rng)
	if err != nil {
		return nil, err
	}
	dy, dx := st.Offsets(rng)
	return Roll(img, c, dy, dx), nil
}

// Roll returns a copy of img with channel c circularly shifted by dy rows
// and dx columns. Other channels are copied unchanged.
func Roll(img *tensor.Image, c, dy, dx int) *tensor.Image {
	out := img.Clone()
	for y := range img.H {
		ty := wrap(y+dy, img.H)
		for x := range img.W {
			out.Set(ty, wrap(x+dx, img.W), c, img.At(y, x, c))
		}
	}
	return out
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
