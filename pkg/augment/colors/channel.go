package colors

import (
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// pickChannel returns the forced channel when set, otherwise a uniform
// channel index. Only the random branch consumes a draw.
func pickChannel(img *tensor.Image, force *int, rng random.Source) (int, error) {
	if force == nil {
		return random.Index(rng, img.C), nil
	}
	if *force < 0 || *force >= img.C {
		return 0, errors.InvalidShape("channel %d out of range for %d-channel image", *force, img.C)
	}
	return *force, nil
}

// Channel returns a pointer to c, for ForceChannel fields.
func Channel(c int) *int { return &c }
