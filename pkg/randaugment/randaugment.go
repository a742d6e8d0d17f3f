// Package randaugment implements RandAugment-style policy sampling.
//
// A [RandAugment] holds an ordered catalog of operations, a breadth N and an
// intensity M. Each call draws N operations uniformly with replacement and
// applies them in the order they were drawn, passing M to every one.
//
// Intensity only changes magnitudes. Every wrapped transform keeps its own
// activation gate, so a drawn operation may still leave the sample unchanged.
//
// # Usage
//
//	ra, err := randaugment.New([]randaugment.Op{
//	    randaugment.Scaled(colors.NewChannelBleaching()),
//	    randaugment.Scaled(colors.NewStainShift()),
//	    randaugment.Fixed(colors.NewDeconvolution()),
//	}, 2, 0.5)
//	out, err := ra.Invoke(sample, rng)
package randaugment

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
)

// Op is one catalog entry: it applies a transform at intensity m.
type Op struct {
	Name  string
	Apply func(s augment.Sample, m float64, rng random.Source) (augment.Sample, error)
}

// Scaled wraps a transform whose magnitudes follow the shared intensity.
func Scaled(t augment.Scalable) Op {
	return Op{
		Name: augment.NameOf(t),
		Apply: func(s augment.Sample, m float64, rng random.Source) (augment.Sample, error) {
			return t.WithIntensity(m).Invoke(s, rng)
		},
	}
}

// Fixed wraps a transform that ignores the intensity.
func Fixed(t augment.Transform) Op {
	return Op{
		Name: augment.NameOf(t),
		Apply: func(s augment.Sample, _ float64, rng random.Source) (augment.Sample, error) {
			return t.Invoke(s, rng)
		},
	}
}

// Auto picks [Scaled] when t implements augment.Scalable, otherwise [Fixed].
func Auto(t augment.Transform) Op {
	if sc, ok := t.(augment.Scalable); ok {
		return Scaled(sc)
	}
	return Fixed(t)
}

// RandAugment samples N operations per call and threads intensity M into
// each of them.
type RandAugment struct {
	ops    []Op
	n      int
	m      float64
	logger *log.Logger
}

// Option configures a RandAugment.
type Option func(*RandAugment)

// WithLogger sets the logger used to report sampled operations at debug
// level. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(ra *RandAugment) {
		if l != nil {
			ra.logger = l
		}
	}
}

// New validates the policy and returns a RandAugment. n and m must be
// non-negative; a positive n needs a non-empty catalog.
func New(ops []Op, n int, m float64, opts ...Option) (*RandAugment, error) {
	if n < 0 {
		return nil, errors.InvalidConfig("randaugment.n must be non-negative, got %d", n)
	}
	if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return nil, errors.InvalidConfig("randaugment.m must be a non-negative number, got %v", m)
	}
	if n > 0 && len(ops) == 0 {
		return nil, errors.InvalidConfig("randaugment needs at least one operation when n > 0")
	}
	for i, op := range ops {
		if op.Apply == nil {
			return nil, errors.InvalidConfig("randaugment operation %d has no Apply function", i)
		}
	}
	ra := &RandAugment{
		ops:    append([]Op(nil), ops...),
		n:      n,
		m:      m,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(ra)
	}
	return ra, nil
}

// Name implements augment.Named.
func (ra *RandAugment) Name() string { return "randaugment" }

// N returns the number of operations drawn per call.
func (ra *RandAugment) N() int { return ra.n }

// M returns the shared intensity.
func (ra *RandAugment) M() float64 { return ra.m }

// Len returns the catalog size.
func (ra *RandAugment) Len() int { return len(ra.ops) }

// Sample draws n catalog indices with replacement.
func (ra *RandAugment) Sample(rng random.Source) []int {
	idx := make([]int, ra.n)
	for i := range idx {
		idx[i] = random.Index(rng, len(ra.ops))
	}
	return idx
}

// Invoke implements augment.Transform. All indices are drawn before any
// operation runs.
func (ra *RandAugment) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	if ra.n == 0 {
		return s, nil
	}
	idx := ra.Sample(rng)
	if ra.logger.GetLevel() <= log.DebugLevel {
		names := make([]string, len(idx))
		for i, k := range idx {
			names[i] = ra.ops[k].Name
		}
		ra.logger.Debug("randaugment", "ops", names, "m", ra.m)
	}
	for i, k := range idx {
		out, err := ra.ops[k].Apply(s, ra.m, rng)
		if err != nil {
			return s, fmt.Errorf("randaugment op %d (%s): %w", i, ra.ops[k].Name, err)
		}
		s = out
	}
	return s, nil
}
