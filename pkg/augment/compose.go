package augment

import (
	"fmt"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Sequence applies its transforms in order. Each transform keeps its own gate.
type Sequence []Transform

// Compose builds a fixed-order pipeline.
func Compose(ts ...Transform) Sequence {
	return Sequence(ts)
}

// Name implements [Named].
func (seq Sequence) Name() string { return "sequence" }

// Invoke threads s through every transform. The first error stops the
// sequence and is returned with the failing position. A step that leaves
// the mask out of extent with the image fails as INVALID_SHAPE.
func (seq Sequence) Invoke(s Sample, rng random.Source) (Sample, error) {
	for i, t := range seq {
		out, err := t.Invoke(s, rng)
		if err == nil {
			err = out.Validate()
		}
		if err != nil {
			return s, fmt.Errorf("step %d (%s): %w", i, NameOf(t), err)
		}
		s = out
	}
	return s, nil
}

// Identity returns every sample unchanged.
var Identity Transform = Func(func(s Sample, _ random.Source) (Sample, error) {
	return s, nil
})

func errMaskExtent(img, mask *tensor.Image) error {
	return errors.InvalidShape("mask extent %dx%d does not match image %dx%d", mask.H, mask.W, img.H, img.W)
}
