// Package assets loads stamp catalogs and sample images from disk.
//
// Stamps are single-channel overlays. [DirProvider] reads them as
// "<dir>/<name><ext>" and keeps the last channel: the alpha channel for
// images with transparency, otherwise the last color channel. Any missing or
// undecodable stamp is an ASSET_LOAD error, reported once when the catalog
// is built rather than per call.
//
// Sample images are decoded with imaging, which covers PNG, JPEG, GIF,
// TIFF and BMP; WebP decoding is registered by this package.
package assets

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// DefaultExt is the stamp file extension used when none is configured.
const DefaultExt = ".png"

// Provider supplies named single-channel stamp images.
type Provider interface {
	Stamp(name string) (*tensor.Image, error)
}

// DirProvider reads stamps from a directory.
type DirProvider struct {
	Dir string
	Ext string // defaults to DefaultExt
}

// Stamp loads <Dir>/<name><Ext> and returns its last channel.
func (p DirProvider) Stamp(name string) (*tensor.Image, error) {
	ext := p.Ext
	if ext == "" {
		ext = DefaultExt
	}
	path := filepath.Join(p.Dir, name+ext)
	src, err := imaging.Open(path)
	if err != nil {
		return nil, errors.AssetLoad(err, "load stamp %q", path)
	}
	return LastChannel(src), nil
}

// MapProvider serves stamps from memory.
type MapProvider map[string]*tensor.Image

// Stamp returns the named stamp or an ASSET_LOAD error.
func (p MapProvider) Stamp(name string) (*tensor.Image, error) {
	img, ok := p[name]
	if !ok {
		return nil, errors.AssetLoad(nil, "stamp %q not found", name)
	}
	return img, nil
}

// Names returns the stamp names in sorted order.
func (p MapProvider) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadCatalog loads every named stamp from p. It fails on the first missing
// asset and on an empty name list.
func LoadCatalog(p Provider, names []string) ([]*tensor.Image, error) {
	if len(names) == 0 {
		return nil, errors.AssetLoad(nil, "no stamp files configured")
	}
	stamps := make([]*tensor.Image, 0, len(names))
	for _, name := range names {
		img, err := p.Stamp(name)
		if err != nil {
			if errors.Is(err, errors.ErrCodeAssetLoad) {
				return nil, err
			}
			return nil, errors.AssetLoad(err, "load stamp %q", name)
		}
		if err := img.RequireChannels(1); err != nil {
			return nil, errors.AssetLoad(err, "stamp %q", name)
		}
		stamps = append(stamps, img)
	}
	return stamps, nil
}

// LastChannel returns the last channel of src as decoded: alpha when the
// color model carries one, even if every pixel is opaque, otherwise the last
// color channel (blue, or the gray level).
func LastChannel(src image.Image) *tensor.Image {
	if hasAlpha(src) {
		return tensor.FromAlpha(src)
	}
	switch src.(type) {
	case *image.Gray, *image.Gray16:
		return tensor.FromGray(src)
	}
	return tensor.FromRGB(src).Plane(2)
}

// hasAlpha reports whether src was decoded with an alpha channel. The PNG
// decoder returns non-premultiplied types for RGBA and gray+alpha files and
// premultiplied *image.RGBA(64) only for files without alpha.
func hasAlpha(src image.Image) bool {
	m := src.ColorModel()
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	switch m {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	o, ok := src.(interface{ Opaque() bool })
	return !ok || !o.Opaque()
}

// ReadImage decodes the file at path into a 3-channel tensor in [0, 1].
func ReadImage(path string) (*tensor.Image, error) {
	src, err := open(path)
	if err != nil {
		return nil, err
	}
	return tensor.FromRGB(src), nil
}

// ReadMask decodes the file at path into a single-channel tensor in [0, 1].
func ReadMask(path string) (*tensor.Image, error) {
	src, err := open(path)
	if err != nil {
		return nil, err
	}
	return tensor.FromGray(src), nil
}

// Decode reads an image from r into a 3-channel tensor.
func Decode(r io.Reader) (*tensor.Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode image")
	}
	return tensor.FromRGB(src), nil
}

// DecodeMask reads an image from r into a single-channel tensor.
func DecodeMask(r io.Reader) (*tensor.Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode mask")
	}
	return tensor.FromGray(src), nil
}

// EncodePNG writes img as a 16-bit PNG. img must have one or three channels.
func EncodePNG(w io.Writer, img *tensor.Image) error {
	out, err := img.ToImage()
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, out, imaging.PNG); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(path string, img *tensor.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func open(path string) (image.Image, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", path)
	}
	return src, nil
}
