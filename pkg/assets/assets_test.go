package assets

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

func writeStamp(t *testing.T, dir, name string, alpha uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 255, A: alpha})
		}
	}
	if err := imaging.Save(img, filepath.Join(dir, name+".png")); err != nil {
		t.Fatal(err)
	}
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	writeStamp(t, dir, "ink", 128)
	writeStamp(t, dir, "solid", 255)
	p := DirProvider{Dir: dir}

	tests := []struct {
		name string
		want float64
	}{
		{"ink", 128.0 / 255},
		{"solid", 1}, // opaque: last color channel
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := p.Stamp(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if img.H != 2 || img.W != 3 || img.C != 1 {
				t.Fatalf("shape = %dx%dx%d, want 2x3x1", img.H, img.W, img.C)
			}
			for _, v := range img.Pix {
				if math.Abs(v-tt.want) > 1e-6 {
					t.Fatalf("value = %v, want %v", v, tt.want)
				}
			}
		})
	}
}

func TestLastChannel(t *testing.T) {
	rect := image.Rect(0, 0, 2, 2)
	fill := func(img interface{ Set(x, y int, c color.Color) }, c color.Color) {
		for y := range 2 {
			for x := range 2 {
				img.Set(x, y, c)
			}
		}
	}

	opaqueNRGBA := image.NewNRGBA(rect)
	fill(opaqueNRGBA, color.NRGBA{R: 9, G: 9, B: 51, A: 255})
	translucentNRGBA := image.NewNRGBA(rect)
	fill(translucentNRGBA, color.NRGBA{B: 255, A: 102})
	rgb := image.NewRGBA(rect)
	fill(rgb, color.RGBA{R: 9, G: 9, B: 51, A: 255})
	gray := image.NewGray(rect)
	fill(gray, color.Gray{Y: 204})
	pal := image.NewPaletted(rect, color.Palette{color.RGBA{B: 51, A: 255}})
	palAlpha := image.NewPaletted(rect, color.Palette{color.NRGBA{B: 255, A: 255}, color.NRGBA{}})

	tests := []struct {
		name string
		src  image.Image
		want float64
	}{
		{"opaque rgba file keeps alpha", opaqueNRGBA, 1},
		{"translucent alpha", translucentNRGBA, 0.4},
		{"rgb file uses blue", rgb, 0.2},
		{"gray level", gray, 0.8},
		{"opaque palette uses blue", pal, 0.2},
		{"palette with transparency", palAlpha, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastChannel(tt.src)
			if got.C != 1 || got.H != 2 || got.W != 2 {
				t.Fatalf("shape = %dx%dx%d", got.H, got.W, got.C)
			}
			for _, v := range got.Pix {
				if math.Abs(v-tt.want) > 1e-3 {
					t.Fatalf("value = %v, want %v", v, tt.want)
				}
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeStamp(t, dir, "a", 200)
	writeStamp(t, dir, "b", 100)

	stamps, err := LoadCatalog(DirProvider{Dir: dir}, []string{"a", "b", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stamps) != 3 {
		t.Errorf("loaded %d stamps, want 3", len(stamps))
	}

	if _, err := LoadCatalog(DirProvider{Dir: dir}, []string{"a", "missing"}); !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("missing stamp: %v, want ASSET_LOAD", err)
	}
	if _, err := LoadCatalog(DirProvider{Dir: dir}, nil); !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("empty list: %v, want ASSET_LOAD", err)
	}

	rgb := MapProvider{"rgb": tensor.New(2, 2, 3)}
	if _, err := LoadCatalog(rgb, []string{"rgb"}); !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("3-channel stamp: %v, want ASSET_LOAD", err)
	}
}

func TestMapProvider(t *testing.T) {
	p := MapProvider{"z": tensor.New(1, 1, 1), "a": tensor.New(1, 1, 1)}
	if names := p.Names(); len(names) != 2 || names[0] != "a" {
		t.Errorf("Names = %v", names)
	}
	if _, err := p.Stamp("nope"); !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("unknown stamp: %v", err)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	img := tensor.New(2, 2, 3)
	copy(img.Pix, []float64{0, 0.5, 1, 1, 0, 0.25, 0.75, 0.75, 0.75, 0.1, 0.2, 0.3})

	path := filepath.Join(t.TempDir(), "out", "sample.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatal(err)
	}
	got, err := ReadImage(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.SameShape(img) {
		t.Fatalf("shape changed: %dx%dx%d", got.H, got.W, got.C)
	}
	for i := range img.Pix {
		if math.Abs(got.Pix[i]-img.Pix[i]) > 1.0/0xffff {
			t.Errorf("value %d = %v, want %v", i, got.Pix[i], img.Pix[i])
		}
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.SameShape(img) {
		t.Error("Decode changed the shape")
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := ReadImage(filepath.Join(t.TempDir(), "none.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v, want FILE_NOT_FOUND", err)
	}
	if err := EncodePNG(&bytes.Buffer{}, tensor.New(1, 1, 2)); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("2-channel encode: %v, want INVALID_SHAPE", err)
	}
}
