// Package stamping composites artifact overlays ("stamps") onto images.
//
// A stamp is a single-channel alpha mask such as an ink blot, air bubble or
// dust particle. Each activation picks one stamp, scales and rotates it,
// places it at a random offset and adds or subtracts it from every channel
// of the image. The result is clipped back to the per-channel range the
// image had before compositing, so a stamp can never create intensities
// the image did not already contain.
//
// Stamps are loaded once through an [assets.Provider] and shared read-only
// across calls and goroutines.
package stamping

import (
	"github.com/matzehuels/augmedical/pkg/assets"
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/substrate"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// Offset is a placement origin on the padded canvas, in rows and columns.
type Offset struct {
	Row, Col int
}

// Stamping is the stamp compositor.
type Stamping struct {
	P         float64
	Stamps    []*tensor.Image // single-channel, never mutated
	Size      random.Range    // scale factor applied to the stamp extent
	Intensity float64
	Force     *Offset // nil draws a uniform origin per call
}

// Options holds the tunable parameters of [New]. Zero values select the
// defaults: p 0.1, size [0.5, 5), intensity 1.
type Options struct {
	P         *float64
	Size      *random.Range
	Intensity *float64
	Force     *Offset
}

// New builds a compositor over stamps. An empty catalog is an ASSET_LOAD
// error; stamps with more than one channel are INVALID_SHAPE.
func New(stamps []*tensor.Image, opts Options) (Stamping, error) {
	if len(stamps) == 0 {
		return Stamping{}, errors.AssetLoad(nil, "stamp catalog is empty")
	}
	for i, s := range stamps {
		if err := s.RequireChannels(1); err != nil {
			return Stamping{}, errors.Wrap(errors.ErrCodeInvalidShape, err, "stamp %d", i)
		}
	}
	st := Stamping{
		P:         0.1,
		Stamps:    stamps,
		Size:      random.Range{Min: 0.5, Max: 5},
		Intensity: 1,
		Force:     opts.Force,
	}
	if opts.P != nil {
		st.P = *opts.P
	}
	if opts.Size != nil {
		st.Size = *opts.Size
	}
	if opts.Intensity != nil {
		st.Intensity = *opts.Intensity
	}
	if err := st.Validate(); err != nil {
		return Stamping{}, err
	}
	return st, nil
}

// Load reads the named stamps from provider and builds a compositor.
// Any missing or unreadable stamp fails construction with ASSET_LOAD.
func Load(provider assets.Provider, names []string, opts Options) (Stamping, error) {
	stamps, err := assets.LoadCatalog(provider, names)
	if err != nil {
		return Stamping{}, err
	}
	return New(stamps, opts)
}

// Name implements augment.Named.
func (st Stamping) Name() string { return "stamping" }

// Validate checks the probability, the size range and the catalog.
func (st Stamping) Validate() error {
	if len(st.Stamps) == 0 {
		return errors.AssetLoad(nil, "stamp catalog is empty")
	}
	if err := errors.ValidateProbability("stamping.p", st.P); err != nil {
		return err
	}
	if err := st.Size.Validate("stamping.size"); err != nil {
		return err
	}
	if st.Size.Min <= 0 {
		return errors.InvalidConfig("stamping.size minimum must be positive, got %v", st.Size.Min)
	}
	return nil
}

// Invoke implements augment.Transform.
func (st Stamping) Invoke(s augment.Sample, rng random.Source) (augment.Sample, error) {
	return augment.Gate(st.P, st, s, rng)
}

// WithIntensity replaces the blend intensity with m.
func (st Stamping) WithIntensity(m float64) augment.Transform {
	st.Intensity = m
	return st
}

// Apply composites exactly one stamp onto a copy of img.
func (st Stamping) Apply(img *tensor.Image, rng random.Source) (*tensor.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := img.RequireChannels(3); err != nil {
		return nil, err
	}
	if len(st.Stamps) == 0 {
		return nil, errors.AssetLoad(nil, "stamp catalog is empty")
	}

	lo, hi := img.Bounds()

	stamp, err := st.prepare(rng)
	if err != nil {
		return nil, err
	}

	origin := Offset{}
	if st.Force != nil {
		origin = *st.Force
	} else {
		origin.Row = random.Index(rng, img.H)
		origin.Col = random.Index(rng, img.W)
	}
	layer := Layer(stamp, img.H, img.W, origin)

	sign := -1.0
	if rng.Float64() > 0.5 {
		sign = 1
	}

	out := img.Clone()
	for y := range img.H {
		for x := range img.W {
			v := sign * layer.At(y, x, 0) * st.Intensity
			for c := range img.C {
				out.Set(y, x, c, out.At(y, x, c)+v)
			}
		}
	}
	for c := range img.C {
		out.ClipChannel(c, lo[c], hi[c])
	}
	return out, nil
}

// prepare selects, scales and rotates one stamp.
func (st Stamping) prepare(rng random.Source) (*tensor.Image, error) {
	stamp := st.Stamps[random.Index(rng, len(st.Stamps))]

	scale := st.Size.Sample(rng)
	h := max(1, int(float64(stamp.H)*scale))
	w := max(1, int(float64(stamp.W)*scale))
	resized, err := substrate.Resize(stamp, h, w)
	if err != nil {
		return nil, err
	}

	angle := random.Float(rng, 0, 360)
	return substrate.Rotate(resized, angle)
}

// Layer places stamp on a zero canvas padded by one stamp extent on the
// trailing edge, writes it at origin (truncated to the canvas) and trims the
// canvas back to h×w starting at half the stamp extent.
func Layer(stamp *tensor.Image, h, w int, origin Offset) *tensor.Image {
	sh, sw := stamp.H, stamp.W
	ch, cw := h+sh, w+sw

	layer := tensor.New(h, w, 1)
	top, left := sh/2, sw/2
	for sy := range sh {
		cy := origin.Row + sy
		if cy < 0 || cy >= ch {
			continue
		}
		ly := cy - top
		if ly < 0 || ly >= h {
			continue
		}
		for sx := range sw {
			cx := origin.Col + sx
			if cx < 0 || cx >= cw {
				continue
			}
			lx := cx - left
			if lx < 0 || lx >= w {
				continue
			}
			layer.Set(ly, lx, 0, stamp.At(sy, sx, 0))
		}
	}
	return layer
}
