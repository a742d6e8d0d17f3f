// Package tensor provides the H×W×C float64 image array that every
// augmentation reads and writes.
//
// Pixels are stored row-major with channels interleaved, so the value for
// row y, column x and channel c lives at Pix[(y*W+x)*C+c]. Intensity values
// are usually in [0, 1] but nothing in this package assumes so; clipping is
// always explicit.
//
// Images are treated as values by the augmentation packages: transforms
// never write into an image they received, they [Image.Clone] it first.
package tensor

import (
	"github.com/montanaflynn/stats"

	"github.com/matzehuels/augmedical/pkg/errors"
)

// Image is a dense H×W×C array of float64 intensities.
type Image struct {
	H, W, C int
	Pix     []float64
}

// New allocates a zero-filled image. It panics on non-positive extents,
// like make does for negative lengths.
func New(h, w, c int) *Image {
	if h <= 0 || w <= 0 || c <= 0 {
		panic("tensor: non-positive image extent")
	}
	return &Image{H: h, W: w, C: c, Pix: make([]float64, h*w*c)}
}

// FromSlice wraps pix as an h×w×c image without copying.
func FromSlice(h, w, c int, pix []float64) (*Image, error) {
	if h <= 0 || w <= 0 || c <= 0 {
		return nil, errors.InvalidShape("image extent must be positive, got %dx%dx%d", h, w, c)
	}
	if len(pix) != h*w*c {
		return nil, errors.InvalidShape("pixel buffer has %d values, want %d for %dx%dx%d", len(pix), h*w*c, h, w, c)
	}
	return &Image{H: h, W: w, C: c, Pix: pix}, nil
}

// Filled returns an h×w×c image with every value set to v.
func Filled(h, w, c int, v float64) *Image {
	img := New(h, w, c)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Clone returns a deep copy of img.
func (img *Image) Clone() *Image {
	pix := make([]float64, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{H: img.H, W: img.W, C: img.C, Pix: pix}
}

// Index returns the offset of (y, x, c) in Pix.
func (img *Image) Index(y, x, c int) int {
	return (y*img.W+x)*img.C + c
}

// At returns the value at row y, column x, channel c.
func (img *Image) At(y, x, c int) float64 {
	return img.Pix[img.Index(y, x, c)]
}

// Set stores v at row y, column x, channel c.
func (img *Image) Set(y, x, c int, v float64) {
	img.Pix[img.Index(y, x, c)] = v
}

// SameShape reports whether img and other have identical extents.
func (img *Image) SameShape(other *Image) bool {
	return other != nil && img.H == other.H && img.W == other.W && img.C == other.C
}

// SameExtent reports whether img and other share H and W, ignoring channels.
func (img *Image) SameExtent(other *Image) bool {
	return other != nil && img.H == other.H && img.W == other.W
}

// Validate checks the internal consistency of img. A nil image fails.
func (img *Image) Validate() error {
	if img == nil {
		return errors.InvalidShape("image is nil")
	}
	if img.H <= 0 || img.W <= 0 || img.C <= 0 {
		return errors.InvalidShape("image extent must be positive, got %dx%dx%d", img.H, img.W, img.C)
	}
	if len(img.Pix) != img.H*img.W*img.C {
		return errors.InvalidShape("pixel buffer has %d values, want %d", len(img.Pix), img.H*img.W*img.C)
	}
	return nil
}

// RequireChannels validates img and checks it has exactly c channels.
func (img *Image) RequireChannels(c int) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if img.C != c {
		return errors.InvalidShape("expected %d channels, got %d", c, img.C)
	}
	return nil
}

// Channel returns a copy of channel c as a flat H*W slice.
func (img *Image) Channel(c int) []float64 {
	out := make([]float64, img.H*img.W)
	for i := range out {
		out[i] = img.Pix[i*img.C+c]
	}
	return out
}

// SetChannel overwrites channel c with plane, a flat H*W slice.
func (img *Image) SetChannel(c int, plane []float64) {
	for i, v := range plane {
		img.Pix[i*img.C+c] = v
	}
}

// Plane returns channel c as a new single-channel image.
func (img *Image) Plane(c int) *Image {
	return &Image{H: img.H, W: img.W, C: 1, Pix: img.Channel(c)}
}

// ChannelBounds returns the minimum and maximum of channel c across all pixels.
func (img *Image) ChannelBounds(c int) (lo, hi float64) {
	data := stats.Float64Data(img.Channel(c))
	// Both only fail on empty input, which a validated image cannot produce.
	lo, _ = stats.Min(data)
	hi, _ = stats.Max(data)
	return lo, hi
}

// Bounds returns per-channel minima and maxima.
func (img *Image) Bounds() (lo, hi []float64) {
	lo = make([]float64, img.C)
	hi = make([]float64, img.C)
	for c := range img.C {
		lo[c], hi[c] = img.ChannelBounds(c)
	}
	return lo, hi
}

// Clip clamps every value of img into [lo, hi] in place.
func (img *Image) Clip(lo, hi float64) {
	for i, v := range img.Pix {
		img.Pix[i] = min(max(v, lo), hi)
	}
}

// ClipChannel clamps channel c of img into [lo, hi] in place.
func (img *Image) ClipChannel(c int, lo, hi float64) {
	for i := c; i < len(img.Pix); i += img.C {
		img.Pix[i] = min(max(img.Pix[i], lo), hi)
	}
}
