package stamping

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/augmedical/pkg/assets"
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

func disc(n int) *tensor.Image {
	s := tensor.New(n, n, 1)
	r := float64(n) / 2
	for y := range n {
		for x := range n {
			dy, dx := float64(y)+0.5-r, float64(x)+0.5-r
			if dy*dy+dx*dx <= r*r {
				s.Set(y, x, 0, 1)
			}
		}
	}
	return s
}

func textured(h, w int) *tensor.Image {
	img := tensor.New(h, w, 3)
	for i := range img.Pix {
		img.Pix[i] = 0.2 + 0.6*float64((i*7)%11)/10
	}
	return img
}

func TestNew(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("empty catalog: %v, want ASSET_LOAD", err)
	}
	if _, err := New([]*tensor.Image{tensor.New(2, 2, 3)}, Options{}); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("3-channel stamp: %v, want INVALID_SHAPE", err)
	}

	st, err := New([]*tensor.Image{disc(4)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if st.P != 0.1 || st.Intensity != 1 || st.Size != (random.Range{Min: 0.5, Max: 5}) {
		t.Errorf("unexpected defaults: %+v", st)
	}

	bad := -1.0
	if _, err := New([]*tensor.Image{disc(4)}, Options{P: &bad}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative p: %v, want INVALID_CONFIG", err)
	}
}

func TestApplyStaysWithinBounds(t *testing.T) {
	st, err := New([]*tensor.Image{disc(5), disc(9)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	img := textured(24, 20)
	lo, hi := img.Bounds()
	rng := random.New(7)

	for i := range 60 {
		out, err := st.Apply(img, rng)
		if err != nil {
			t.Fatal(err)
		}
		if !out.SameShape(img) {
			t.Fatalf("call %d: shape %dx%dx%d, want %dx%dx%d", i, out.H, out.W, out.C, img.H, img.W, img.C)
		}
		for c := range out.C {
			for _, v := range out.Channel(c) {
				if v < lo[c] || v > hi[c] {
					t.Fatalf("call %d: channel %d value %v outside [%v, %v]", i, c, v, lo[c], hi[c])
				}
			}
		}
	}
}

func TestApplyChangesImage(t *testing.T) {
	st, err := New([]*tensor.Image{tensor.Filled(6, 6, 1, 1)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	st.Size = random.Range{Min: 1, Max: 1}
	st.Force = &Offset{Row: 8, Col: 8}
	img := textured(16, 16)

	out, err := st.Apply(img, random.New(3))
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("a centred stamp left the image unchanged")
	}
}

func TestForcedPlacementOutOfBounds(t *testing.T) {
	st, err := New([]*tensor.Image{disc(6)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	img := textured(8, 8)

	for _, force := range []Offset{{-50, -50}, {100, 3}, {3, 100}, {1000, 1000}} {
		st.Force = &force
		out, err := st.Apply(img, random.New(1))
		if err != nil {
			t.Fatalf("force %+v: %v", force, err)
		}
		if !out.SameShape(img) {
			t.Fatalf("force %+v changed the shape", force)
		}
	}
}

func TestApplyRequiresRGB(t *testing.T) {
	st, err := New([]*tensor.Image{disc(3)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Apply(tensor.New(4, 4, 1), random.New(1)); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("1-channel image: %v, want INVALID_SHAPE", err)
	}
}

func TestLayer(t *testing.T) {
	stamp := tensor.Filled(3, 2, 1, 1)

	tests := []struct {
		name   string
		origin Offset
		want   [][2]int // covered layer positions
	}{
		// The trim starts at (1, 1), so origin (1, 1) lands at (0, 0).
		{"aligned", Offset{1, 1}, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}}},
		{"origin", Offset{0, 0}, [][2]int{{0, 0}, {1, 0}}},
		{"outside", Offset{40, 40}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := Layer(stamp, 4, 4, tt.origin)
			if layer.H != 4 || layer.W != 4 || layer.C != 1 {
				t.Fatalf("layer shape %dx%dx%d", layer.H, layer.W, layer.C)
			}
			covered := map[[2]int]bool{}
			for _, p := range tt.want {
				covered[p] = true
			}
			for y := range 4 {
				for x := range 4 {
					want := 0.0
					if covered[[2]int{y, x}] {
						want = 1
					}
					if got := layer.At(y, x, 0); got != want {
						t.Errorf("layer(%d,%d) = %v, want %v", y, x, got, want)
					}
				}
			}
		})
	}
}

func TestInvokeGate(t *testing.T) {
	st, err := New([]*tensor.Image{disc(4)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	st.P = 0
	s := augment.Sample{Image: textured(8, 8), Mask: tensor.New(8, 8, 1)}
	out, err := st.Invoke(s, random.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if out.Image != s.Image || out.Mask != s.Mask {
		t.Error("p = 0 stamping changed the sample")
	}
}

func TestWithIntensity(t *testing.T) {
	st, err := New([]*tensor.Image{disc(4)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	scaled := st.WithIntensity(0.3).(Stamping)
	if scaled.Intensity != 0.3 || scaled.P != st.P {
		t.Errorf("WithIntensity = %+v", scaled)
	}
	if st.Intensity != 1 {
		t.Error("WithIntensity modified the receiver")
	}
}

func TestLoad(t *testing.T) {
	if _, err := Load(assets.DirProvider{Dir: filepath.Join(t.TempDir(), "none")}, []string{"ink"}, Options{}); !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("missing directory: %v, want ASSET_LOAD", err)
	}

	p := assets.MapProvider{"ink": disc(5)}
	st, err := Load(p, []string{"ink"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Stamps) != 1 {
		t.Errorf("catalog size %d, want 1", len(st.Stamps))
	}
}
