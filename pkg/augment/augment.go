// Package augment defines the transform contract shared by every
// augmentation in this module.
//
// A [Sample] pairs an image with an optional mask and label. A [Transform]
// takes a sample and a random [random.Source] and returns a new sample.
// Most transforms are image-only: they hold an activation probability and
// delegate to an [Applier] through [Gate], which performs one Bernoulli
// trial and replaces the image only when the trial succeeds. Masks and labels
// pass through unchanged unless a transform documents itself as mask-aware.
//
// # Value Semantics
//
// Samples are plain values and images are never written in place. Apply
// implementations clone their input before writing, so the image a caller
// passes in is still valid after the call and stages of a pipeline never
// alias each other's buffers.
//
// # Intensity
//
// Transforms that implement [Scalable] can be re-parameterized by a
// RandAugment-style intensity m in [0, 1]. WithIntensity returns a modified
// copy; the activation probability is never affected.
package augment

import (
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Sample is one training example flowing through the pipeline.
type Sample struct {
	Image *tensor.Image // required
	Mask  *tensor.Image // optional, same H×W as Image
	Label []float64     // optional
}

// WithImage returns a copy of s with its image replaced.
func (s Sample) WithImage(img *tensor.Image) Sample {
	s.Image = img
	return s
}

// WithMask returns a copy of s with its mask replaced.
func (s Sample) WithMask(m *tensor.Image) Sample {
	s.Mask = m
	return s
}

// Validate checks that the sample has a well-formed image and, when
// present, a mask of matching spatial extent.
func (s Sample) Validate() error {
	if err := s.Image.Validate(); err != nil {
		return err
	}
	if s.Mask != nil {
		if err := s.Mask.Validate(); err != nil {
			return err
		}
		if !s.Image.SameExtent(s.Mask) {
			return errMaskExtent(s.Image, s.Mask)
		}
	}
	return nil
}

// Transform is a unit of perturbation applied to a sample.
type Transform interface {
	Invoke(s Sample, rng random.Source) (Sample, error)
}

// Applier is the per-call image algorithm of an image-only transform. Apply
// must not assume it is only called when the transform is active, and must
// not modify img.
type Applier interface {
	Apply(img *tensor.Image, rng random.Source) (*tensor.Image, error)
}

// Scalable transforms accept a shared intensity m in [0, 1] that scales
// their magnitude parameters.
type Scalable interface {
	Transform
	WithIntensity(m float64) Transform
}

// Named transforms report a short identifier used in logs and config files.
type Named interface {
	Name() string
}

// NameOf returns t's name, or "transform" when t does not implement [Named].
func NameOf(t any) string {
	if n, ok := t.(Named); ok {
		return n.Name()
	}
	return "transform"
}

// Gate performs the standard activation trial: one uniform draw decides
// whether a.Apply replaces the sample's image. Inactive calls return s
// unchanged. The image is validated before the trial so shape errors never
// depend on the random outcome.
func Gate(p float64, a Applier, s Sample, rng random.Source) (Sample, error) {
	if err := s.Image.Validate(); err != nil {
		return s, err
	}
	if !random.Bernoulli(rng, p) {
		return s, nil
	}
	img, err := a.Apply(s.Image, rng)
	if err != nil {
		return s, err
	}
	return s.WithImage(img), nil
}

// Func adapts a plain function to [Transform].
type Func func(s Sample, rng random.Source) (Sample, error)

// Invoke calls f.
func (f Func) Invoke(s Sample, rng random.Source) (Sample, error) {
	return f(s, rng)
}
