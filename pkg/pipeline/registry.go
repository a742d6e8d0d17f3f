package pipeline

import (
	"path/filepath"
	"sort"

	"github.com/matzehuels/augmedical/pkg/assets"
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/augment/colors"
	"github.com/matzehuels/augmedical/pkg/augment/filters"
	"github.com/matzehuels/augmedical/pkg/augment/mask"
	"github.com/matzehuels/augmedical/pkg/augment/stamping"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/random"
)

// KindInfo describes a transform kind for listings.
type KindInfo struct {
	Name        string
	Description string
	Scalable    bool // follows the randaugment intensity
	Fields      []string

	// Unbounded kinds produce values outside [0, 1], which only the NPY
	// output format preserves.
	Unbounded bool
}

type kind struct {
	KindInfo
	build func(t TransformConfig, env buildEnv) (augment.Transform, error)
}

// buildEnv carries what transform builders need beyond their own config.
type buildEnv struct {
	baseDir  string
	provider func(path string) assets.Provider
}

func (e buildEnv) stamps(path string) assets.Provider {
	if e.provider != nil {
		return e.provider(path)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.baseDir, path)
	}
	return assets.DirProvider{Dir: path}
}

var kinds = map[string]kind{
	"desaturation": {
		KindInfo{"desaturation", "jitter saturation and brightness in HSV space", true,
			[]string{"p", "min", "max", "min_value", "max_value"}, false},
		buildDesaturation,
	},
	"bleaching": {
		KindInfo{"bleaching", "pull one channel toward its own minimum or maximum", true,
			[]string{"p", "min", "max", "mode", "channel"}, false},
		buildBleaching,
	},
	"stainshift": {
		KindInfo{"stainshift", "circularly shift one channel by a few pixels", true,
			[]string{"p", "min_shift", "max_shift", "channel"}, false},
		buildStainShift,
	},
	"gaussian_blur": {
		KindInfo{"gaussian_blur", "blend in a Gaussian-smoothed copy, sigma = kernel_size/4", true,
			[]string{"p", "kernel_size", "alpha", "iterations"}, false},
		buildBlur(filters.NewGaussianBlur),
	},
	"box_blur": {
		KindInfo{"box_blur", "blend in a box-filtered copy", true,
			[]string{"p", "kernel_size", "alpha", "iterations"}, false},
		buildBlur(filters.NewBoxBlur),
	},
	"stamping": {
		KindInfo{"stamping", "composite a scaled, rotated artifact stamp", true,
			[]string{"p", "min", "max", "intensity", "path", "files"}, false},
		buildStamping,
	},
	"uncertain_mask": {
		KindInfo{"uncertain_mask", "box-blur the mask to soften segmentation borders", false,
			[]string{"channels", "kernel_size", "alpha", "iterations"}, false},
		buildUncertainMask,
	},
	"deconvolution": {
		KindInfo{"deconvolution", "project RGB onto H/PAS/residual stains and standardize", false,
			[]string{"mean", "std"}, true},
		buildDeconvolution,
	},
}

func lookupKind(name string) (kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// Kinds lists every transform kind, sorted by name.
func Kinds() []KindInfo {
	out := make([]KindInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.KindInfo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func buildDesaturation(t TransformConfig, _ buildEnv) (augment.Transform, error) {
	d := colors.NewDesaturation()
	set(&d.P, t.P)
	set(&d.Desaturation.Min, t.Min)
	set(&d.Desaturation.Max, t.Max)
	set(&d.ValueReduction.Min, t.MinValue)
	set(&d.ValueReduction.Max, t.MaxValue)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func buildBleaching(t TransformConfig, _ buildEnv) (augment.Transform, error) {
	b := colors.NewChannelBleaching()
	set(&b.P, t.P)
	set(&b.Bleach.Min, t.Min)
	set(&b.Bleach.Max, t.Max)
	if t.Mode != "" {
		b.Mode = t.Mode
	}
	b.ForceChannel = t.Channel
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func buildStainShift(t TransformConfig, _ buildEnv) (augment.Transform, error) {
	st := colors.NewStainShift()
	set(&st.P, t.P)
	set(&st.Shift.Min, t.MinShift)
	set(&st.Shift.Max, t.MaxShift)
	st.ForceChannel = t.Channel
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func buildBlur(base func() filters.Blur) func(TransformConfig, buildEnv) (augment.Transform, error) {
	return func(t TransformConfig, _ buildEnv) (augment.Transform, error) {
		b := base()
		set(&b.P, t.P)
		set(&b.KernelSize, t.KernelSize)
		set(&b.Alpha, t.Alpha)
		set(&b.Iterations, t.Iterations)
		if err := b.Validate(); err != nil {
			return nil, err
		}
		return b, nil
	}
}

func buildStamping(t TransformConfig, env buildEnv) (augment.Transform, error) {
	opts := stamping.Options{P: t.P, Intensity: t.Intensity}
	if t.Min != nil || t.Max != nil {
		size := random.Range{Min: 0.5, Max: 5}
		set(&size.Min, t.Min)
		set(&size.Max, t.Max)
		opts.Size = &size
	}
	if t.Path == "" {
		return nil, errors.InvalidConfig("stamping.path is required")
	}
	st, err := stamping.Load(env.stamps(t.Path), t.Files, opts)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func buildUncertainMask(t TransformConfig, _ buildEnv) (augment.Transform, error) {
	u := mask.NewUncertainMask()
	set(&u.Channels, t.Channels)
	set(&u.FilterSize, t.KernelSize)
	set(&u.Alpha, t.Alpha)
	set(&u.Iterations, t.Iterations)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func buildDeconvolution(t TransformConfig, _ buildEnv) (augment.Transform, error) {
	d := colors.NewDeconvolution()
	if t.Mean != nil {
		if len(t.Mean) != 3 {
			return nil, errors.InvalidConfig("deconvolution.mean needs 3 values, got %d", len(t.Mean))
		}
		copy(d.Mean[:], t.Mean)
	}
	if t.Std != nil {
		if len(t.Std) != 3 {
			return nil, errors.InvalidConfig("deconvolution.std needs 3 values, got %d", len(t.Std))
		}
		copy(d.Std[:], t.Std)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// fields lists the config keys set on t.
func (t TransformConfig) fields() []string {
	var out []string
	add := func(name string, ok bool) {
		if ok {
			out = append(out, name)
		}
	}
	add("p", t.P != nil)
	add("min", t.Min != nil)
	add("max", t.Max != nil)
	add("min_value", t.MinValue != nil)
	add("max_value", t.MaxValue != nil)
	add("mode", t.Mode != "")
	add("channel", t.Channel != nil)
	add("min_shift", t.MinShift != nil)
	add("max_shift", t.MaxShift != nil)
	add("kernel_size", t.KernelSize != nil)
	add("alpha", t.Alpha != nil)
	add("iterations", t.Iterations != nil)
	add("channels", t.Channels != nil)
	add("path", t.Path != "")
	add("files", t.Files != nil)
	add("intensity", t.Intensity != nil)
	add("mean", t.Mean != nil)
	add("std", t.Std != nil)
	return out
}
