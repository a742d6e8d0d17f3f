package substrate

import (
	"math"
	"testing"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

const tol = 1e-3

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestHSVRoundTrip(t *testing.T) {
	img := tensor.New(1, 4, 3)
	copy(img.Pix, []float64{
		1, 0, 0,
		0.2, 0.6, 0.4,
		0.5, 0.5, 0.5,
		0.9, 0.1, 0.7,
	})

	hsv, err := RGBToHSV(img)
	if err != nil {
		t.Fatalf("RGBToHSV: %v", err)
	}
	for i, v := range hsv.Pix {
		if v < 0 || v > 1 {
			t.Errorf("hsv value %d = %v outside [0, 1]", i, v)
		}
	}
	// Gray has no saturation.
	if hsv.At(0, 2, 1) != 0 {
		t.Errorf("gray saturation = %v, want 0", hsv.At(0, 2, 1))
	}

	back, err := HSVToRGB(hsv)
	if err != nil {
		t.Fatalf("HSVToRGB: %v", err)
	}
	for i := range img.Pix {
		if !near(back.Pix[i], img.Pix[i], 1e-9) {
			t.Errorf("round trip value %d = %v, want %v", i, back.Pix[i], img.Pix[i])
		}
	}
}

func TestHSVToRGBWrapsHue(t *testing.T) {
	img := tensor.New(1, 2, 3)
	copy(img.Pix, []float64{0, 1, 1, 1, 1, 1})
	rgb, err := HSVToRGB(img)
	if err != nil {
		t.Fatal(err)
	}
	for c := range 3 {
		if !near(rgb.At(0, 0, c), rgb.At(0, 1, c), 1e-9) {
			t.Errorf("hue 0 and hue 1 differ on channel %d", c)
		}
	}
	if !near(rgb.At(0, 1, 0), 1, 1e-9) {
		t.Errorf("hue 1 should be pure red, got %v", rgb.Pix[3:])
	}
}

func TestColorRequiresThreeChannels(t *testing.T) {
	if _, err := RGBToHSV(tensor.New(2, 2, 1)); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("RGBToHSV on 1 channel: %v", err)
	}
	if _, err := HSVToRGB(tensor.New(2, 2, 4)); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("HSVToRGB on 4 channels: %v", err)
	}
}

func TestResize(t *testing.T) {
	img := tensor.Filled(4, 6, 1, 0.5)
	out, err := Resize(img, 8, 3)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if out.H != 8 || out.W != 3 || out.C != 1 {
		t.Fatalf("shape = %dx%dx%d, want 8x3x1", out.H, out.W, out.C)
	}
	for i, v := range out.Pix {
		if !near(v, 0.5, tol) {
			t.Errorf("constant image resized to %v at %d", v, i)
		}
	}

	if _, err := Resize(img, 0, 3); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("zero target: %v", err)
	}
}

func TestRotateZeroIsIdentity(t *testing.T) {
	img := tensor.New(5, 5, 1)
	for i := range img.Pix {
		img.Pix[i] = float64(i) / 25
	}
	out, err := Rotate(img, 0)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	for i := range img.Pix {
		if !near(out.Pix[i], img.Pix[i], tol) {
			t.Errorf("pixel %d = %v, want %v", i, out.Pix[i], img.Pix[i])
		}
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	img := tensor.New(4, 4, 1)
	img.Set(0, 0, 0, 1)

	out, err := Rotate(img, 90)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if out.H != 4 || out.W != 4 {
		t.Fatalf("rotate changed extent to %dx%d", out.H, out.W)
	}
	// Counter-clockwise: top-left moves to bottom-left.
	if !near(out.At(3, 0, 0), 1, 0.01) {
		t.Errorf("bottom-left = %v, want 1", out.At(3, 0, 0))
	}
	if !near(out.At(0, 0, 0), 0, 0.01) {
		t.Errorf("top-left = %v, want 0", out.At(0, 0, 0))
	}
}

func TestRotateFillsCornersWithZero(t *testing.T) {
	img := tensor.Filled(9, 9, 1, 1)
	out, err := Rotate(img, 45)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if out.At(0, 0, 0) != 0 {
		t.Errorf("corner after 45° = %v, want 0", out.At(0, 0, 0))
	}
	if !near(out.At(4, 4, 0), 1, tol) {
		t.Errorf("centre after 45° = %v, want 1", out.At(4, 4, 0))
	}
}

func TestGaussianBlur(t *testing.T) {
	flat := tensor.Filled(6, 6, 3, 0.25)
	out, err := GaussianBlur(flat, 1.5)
	if err != nil {
		t.Fatalf("GaussianBlur: %v", err)
	}
	for i, v := range out.Pix {
		if !near(v, 0.25, 1e-12) {
			t.Fatalf("constant image blurred to %v at %d", v, i)
		}
	}

	impulse := tensor.New(9, 9, 1)
	impulse.Set(4, 4, 0, 1)
	out, err = GaussianBlur(impulse, 1)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range out.Pix {
		sum += v
	}
	if !near(sum, 1, 1e-9) {
		t.Errorf("blur should conserve mass away from edges, sum = %v", sum)
	}
	if out.At(4, 4, 0) >= 1 || out.At(4, 4, 0) <= out.At(4, 5, 0) {
		t.Error("peak should spread but stay the maximum")
	}

	same, err := GaussianBlur(impulse, 0)
	if err != nil {
		t.Fatal(err)
	}
	if same.At(4, 4, 0) != 1 {
		t.Error("sigma 0 should return a copy")
	}
}

func TestBoxBlur(t *testing.T) {
	impulse := tensor.New(5, 5, 2)
	impulse.Set(2, 2, 1, 9)

	out, err := BoxBlur(impulse, 3)
	if err != nil {
		t.Fatalf("BoxBlur: %v", err)
	}
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			if !near(out.At(y, x, 1), 1, 1e-12) {
				t.Errorf("window value at (%d,%d) = %v, want 1", y, x, out.At(y, x, 1))
			}
		}
	}
	if out.At(0, 0, 1) != 0 {
		t.Errorf("outside window = %v, want 0", out.At(0, 0, 1))
	}
	for _, v := range out.Channel(0) {
		if v != 0 {
			t.Fatal("box blur leaked across channels")
		}
	}

	if _, err := BoxBlur(impulse, 0); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("size 0: %v", err)
	}
}

func TestSeparateStains(t *testing.T) {
	img := tensor.New(1, 2, 3)
	copy(img.Pix, []float64{1, 1, 1, 0.3, 0.2, 0.6})

	out, err := SeparateStains(img)
	if err != nil {
		t.Fatalf("SeparateStains: %v", err)
	}
	for c := range 3 {
		if out.At(0, 0, c) != 0 {
			t.Errorf("white pixel stain %d = %v, want 0", c, out.At(0, 0, c))
		}
		if out.At(0, 1, c) < 0 {
			t.Errorf("stain %d negative: %v", c, out.At(0, 1, c))
		}
	}
	if out.At(0, 1, 0)+out.At(0, 1, 1)+out.At(0, 1, 2) == 0 {
		t.Error("stained pixel should have non-zero concentration")
	}
}
