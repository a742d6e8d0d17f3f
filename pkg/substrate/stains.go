package substrate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/augmedical/pkg/tensor"
)

// logFloor is the smallest optical density input; darker values are raised to it.
const logFloor = 1e-6

// rgbFromHPX holds the hematoxylin, PAS and residual stain vectors as rows.
// The residual is the cross product of the first two.
var rgbFromHPX = func() *mat.Dense {
	h := []float64{0.644211, 0.716556, 0.266844}
	p := []float64{0.175411, 0.972178, 0.154589}
	r := []float64{
		h[1]*p[2] - h[2]*p[1],
		h[2]*p[0] - h[0]*p[2],
		h[0]*p[1] - h[1]*p[0],
	}
	return mat.NewDense(3, 3, append(append(h, p...), r...))
}()

// hpxFromRGB projects optical densities onto the stain basis.
var hpxFromRGB = func() *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(rgbFromHPX); err != nil {
		panic("substrate: singular stain basis: " + err.Error())
	}
	return &inv
}()

// SeparateStains converts an RGB image in [0, 1] to hematoxylin/PAS/residual
// stain concentrations. Concentrations are non-negative; white maps to zero.
func SeparateStains(img *tensor.Image) (*tensor.Image, error) {
	if err := img.RequireChannels(3); err != nil {
		return nil, err
	}
	n := img.H * img.W
	logAdjust := math.Log(logFloor)

	od := mat.NewDense(n, 3, nil)
	for i := range n {
		for c := range 3 {
			od.Set(i, c, math.Log(max(img.Pix[i*3+c], logFloor))/logAdjust)
		}
	}

	var stains mat.Dense
	stains.Mul(od, hpxFromRGB)

	out := tensor.New(img.H, img.W, 3)
	for i := range n {
		for c := range 3 {
			out.Pix[i*3+c] = max(stains.At(i, c), 0)
		}
	}
	return out, nil
}
