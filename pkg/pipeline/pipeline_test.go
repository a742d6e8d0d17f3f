package pipeline

import (
	"reflect"
	"testing"

	"github.com/matzehuels/augmedical/pkg/assets"
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/augment/colors"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/randaugment"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[[transform]]
kind = "bleaching"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed == nil || *cfg.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %v", DefaultSeed, cfg.Seed)
	}
	if cfg.Format != FormatPNG {
		t.Errorf("Format should be %q, got %q", FormatPNG, cfg.Format)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers should be %d, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.Policy != PolicySequence {
		t.Errorf("Policy should be %q, got %q", PolicySequence, cfg.Policy)
	}
	if *cfg.RandAugment.N != DefaultN || *cfg.RandAugment.M != DefaultM {
		t.Errorf("randaugment defaults = %d, %v", *cfg.RandAugment.N, *cfg.RandAugment.M)
	}
}

func TestParseConfigZeroSeed(t *testing.T) {
	cfg, err := ParseConfig([]byte("seed = 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed == nil || *cfg.Seed != 0 {
		t.Fatalf("Seed = %v, want explicit 0", cfg.Seed)
	}
	if cfg.Hash() == mustConfig(t, "").Hash() {
		t.Error("seed 0 should hash differently from the default seed")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown kind", "[[transform]]\nkind = \"sharpen\""},
		{"unknown key", "colour = 3"},
		{"unknown policy", "policy = \"autoaugment\""},
		{"negative workers", "workers = -1"},
		{"unknown format", "format = \"tiff\""},
		{"syntax", "seed = ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.toml)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("ParseConfig = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestBuildSequence(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[[transform]]
kind = "desaturation"
p = 0.5
min = 0.1
max = 0.4

[[transform]]
kind = "bleaching"
mode = "brightfield"
channel = 2

[[transform]]
kind = "box_blur"
kernel_size = 3
`))
	if err != nil {
		t.Fatal(err)
	}
	built, err := Build(cfg, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	seq, ok := built.(augment.Sequence)
	if !ok || len(seq) != 3 {
		t.Fatalf("Build = %T with %v, want a 3-step sequence", built, built)
	}

	d := seq[0].(colors.Desaturation)
	if d.P != 0.5 || d.Desaturation.Min != 0.1 || d.Desaturation.Max != 0.4 {
		t.Errorf("desaturation = %+v", d)
	}
	if d.ValueReduction != colors.NewDesaturation().ValueReduction {
		t.Error("unset fields should keep their defaults")
	}
	b := seq[1].(colors.ChannelBleaching)
	if b.Mode != colors.ModeBrightfield || b.ForceChannel == nil || *b.ForceChannel != 2 {
		t.Errorf("bleaching = %+v", b)
	}
}

func TestBuildRandAugment(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
policy = "randaugment"
format = "npy"

[randaugment]
n = 3
m = 0.25

[[transform]]
kind = "stainshift"

[[transform]]
kind = "deconvolution"
`))
	if err != nil {
		t.Fatal(err)
	}
	built, err := Build(cfg, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ra, ok := built.(*randaugment.RandAugment)
	if !ok {
		t.Fatalf("Build = %T, want *randaugment.RandAugment", built)
	}
	if ra.N() != 3 || ra.M() != 0.25 || ra.Len() != 2 {
		t.Errorf("randaugment = n %d, m %v, %d ops", ra.N(), ra.M(), ra.Len())
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := LoadConfig("../../examples/pipeline.toml")
	if err != nil {
		t.Fatal(err)
	}
	built, err := Build(cfg, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ra, ok := built.(*randaugment.RandAugment)
	if !ok {
		t.Fatalf("Build = %T, want *randaugment.RandAugment", built)
	}
	if ra.Len() != len(cfg.Transforms) {
		t.Errorf("catalog has %d ops, config lists %d", ra.Len(), len(cfg.Transforms))
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		code errors.Code
	}{
		{"field for another kind", "[[transform]]\nkind = \"bleaching\"\nkernel_size = 3", errors.ErrCodeInvalidConfig},
		{"bad mode", "[[transform]]\nkind = \"bleaching\"\nmode = \"darkfield\"", errors.ErrCodeInvalidConfig},
		{"bad probability", "[[transform]]\nkind = \"gaussian_blur\"\np = 2.0", errors.ErrCodeInvalidConfig},
		{"short mean", "format = \"npy\"\n[[transform]]\nkind = \"deconvolution\"\nmean = [0.1]", errors.ErrCodeInvalidConfig},
		{"deconvolution to png", "[[transform]]\nkind = \"deconvolution\"", errors.ErrCodeInvalidConfig},
		{"stamping without path", "[[transform]]\nkind = \"stamping\"\nfiles = [\"ink\"]", errors.ErrCodeInvalidConfig},
		{"missing stamp", "[[transform]]\nkind = \"stamping\"\npath = \"nowhere\"\nfiles = [\"ink\"]", errors.ErrCodeAssetLoad},
		{"randaugment without ops", "policy = \"randaugment\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.toml))
			if err != nil {
				t.Fatal(err)
			}
			cfg.BaseDir = t.TempDir()
			if _, err := Build(cfg, BuildOptions{}); !errors.Is(err, tt.code) {
				t.Errorf("Build = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildStampingWithProvider(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[[transform]]
kind = "stamping"
path = "stamps"
files = ["ink", "bubble"]
min = 1.0
max = 2.0
`))
	if err != nil {
		t.Fatal(err)
	}
	var requested string
	provider := func(path string) assets.Provider {
		requested = path
		return assets.MapProvider{
			"ink":    tensor.Filled(3, 3, 1, 1),
			"bubble": tensor.Filled(2, 2, 1, 0.5),
		}
	}
	built, err := Build(cfg, BuildOptions{Provider: provider})
	if err != nil {
		t.Fatal(err)
	}
	if requested != "stamps" {
		t.Errorf("provider asked for %q", requested)
	}
	seq := built.(augment.Sequence)
	if augment.NameOf(seq[0]) != "stamping" {
		t.Errorf("built %s", augment.NameOf(seq[0]))
	}
}

func TestConfigHash(t *testing.T) {
	parse := func(src string) *Config {
		t.Helper()
		cfg, err := ParseConfig([]byte(src))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}
	base := parse("seed = 1\nworkers = 1\n[[transform]]\nkind = \"stainshift\"")
	sameButWorkers := parse("seed = 1\nworkers = 8\n[[transform]]\nkind = \"stainshift\"")
	different := parse("seed = 1\n[[transform]]\nkind = \"stainshift\"\nmax_shift = 5")

	if base.Hash() != sameButWorkers.Hash() {
		t.Error("worker count should not affect the config hash")
	}
	if base.Hash() == different.Hash() {
		t.Error("transform parameters should affect the config hash")
	}
}

func TestKinds(t *testing.T) {
	var names []string
	for _, k := range Kinds() {
		names = append(names, k.Name)
	}
	want := []string{"bleaching", "box_blur", "deconvolution", "desaturation", "gaussian_blur", "stainshift", "stamping", "uncertain_mask"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Kinds = %v, want %v", names, want)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Inputs: []string{"a.png"}, OutDir: "out"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Seed == nil || *opts.Seed != DefaultSeed {
		t.Errorf("Seed should default to %d, got %v", DefaultSeed, opts.Seed)
	}
	if opts.Copies != 1 || opts.Workers != DefaultWorkers || opts.MaskSuffix != DefaultMaskSuffix {
		t.Errorf("unexpected defaults: copies %d workers %d suffix %q", opts.Copies, opts.Workers, opts.MaskSuffix)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	if err := (&Options{OutDir: "out"}).ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing inputs: %v", err)
	}
	if err := (&Options{Inputs: []string{"a.png"}}).ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing output dir: %v", err)
	}
}
