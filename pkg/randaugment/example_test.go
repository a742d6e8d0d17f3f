package randaugment_test

import (
	"fmt"

	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/augment/colors"
	"github.com/matzehuels/augmedical/pkg/randaugment"
	"github.com/matzehuels/augmedical/pkg/random"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

func Example() {
	bleach := colors.NewChannelBleaching()
	bleach.P = 1

	shift := colors.NewStainShift()
	shift.P = 1

	ra, err := randaugment.New([]randaugment.Op{
		randaugment.Scaled(bleach),
		randaugment.Scaled(shift),
	}, 2, 0.5)
	if err != nil {
		panic(err)
	}

	s := augment.Sample{Image: tensor.Filled(8, 8, 3, 0.5)}
	out, err := ra.Invoke(s, random.New(42))
	if err != nil {
		panic(err)
	}
	fmt.Println(out.Image.H, out.Image.W, out.Image.C)
	// Output: 8 8 3
}
