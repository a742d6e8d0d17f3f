package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/augmedical/pkg/cache"
	"github.com/matzehuels/augmedical/pkg/errors"
)

// Policy names.
const (
	PolicySequence    = "sequence"
	PolicyRandAugment = "randaugment"
)

// Output formats. PNG clamps the image to [0, 1] and quantizes it to
// 8 bits; NPY keeps the float64 tensor as is.
const (
	FormatPNG = "png"
	FormatNPY = "npy"
)

// Config is the TOML description of an augmentation pipeline.
//
//	seed = 42
//	workers = 4
//	policy = "randaugment"
//	format = "png"
//
//	[randaugment]
//	n = 2
//	m = 0.5
//
//	[[transform]]
//	kind = "bleaching"
//	mode = "brightfield"
type Config struct {
	Seed        *uint64           `toml:"seed"`
	Workers     int               `toml:"workers"`
	Policy      string            `toml:"policy"`
	Format      string            `toml:"format"`
	RandAugment RandAugmentConfig `toml:"randaugment"`
	Transforms  []TransformConfig `toml:"transform"`

	// BaseDir resolves relative stamp paths. LoadConfig sets it to the
	// directory containing the config file.
	BaseDir string `toml:"-"`

	validated bool
}

// RandAugmentConfig holds the breadth and intensity of the randaugment
// policy.
type RandAugmentConfig struct {
	N *int     `toml:"n"`
	M *float64 `toml:"m"`
}

// TransformConfig configures one catalog entry. Unset fields keep the
// defaults of the kind; fields a kind does not use are rejected.
type TransformConfig struct {
	Kind string `toml:"kind"`

	P   *float64 `toml:"p"`
	Min *float64 `toml:"min"`
	Max *float64 `toml:"max"`

	// desaturation
	MinValue *float64 `toml:"min_value"`
	MaxValue *float64 `toml:"max_value"`

	// bleaching, stainshift
	Mode     string `toml:"mode"`
	Channel  *int   `toml:"channel"`
	MinShift *int   `toml:"min_shift"`
	MaxShift *int   `toml:"max_shift"`

	// gaussian_blur, box_blur, uncertain_mask
	KernelSize *int     `toml:"kernel_size"`
	Alpha      *float64 `toml:"alpha"`
	Iterations *int     `toml:"iterations"`
	Channels   *int     `toml:"channels"`

	// stamping
	Path      string   `toml:"path"`
	Files     []string `toml:"files"`
	Intensity *float64 `toml:"intensity"`

	// deconvolution
	Mean []float64 `toml:"mean"`
	Std  []float64 `toml:"std"`
}

// LoadConfig reads and validates the TOML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes and validates a TOML config. Unknown keys are
// INVALID_CONFIG so typos never silently fall back to defaults.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.InvalidConfig("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateAndSetDefaults checks the policy and applies defaults. An
// explicit seed of 0 is kept; only an absent seed becomes DefaultSeed.
// This method is idempotent.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	if c.Seed == nil {
		seed := DefaultSeed
		c.Seed = &seed
	}
	if c.Workers < 0 {
		return errors.InvalidConfig("workers must be non-negative, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Policy == "" {
		c.Policy = PolicySequence
	}
	switch c.Policy {
	case PolicySequence, PolicyRandAugment:
	default:
		return errors.InvalidConfig("unknown policy %q (must be %q or %q)", c.Policy, PolicySequence, PolicyRandAugment)
	}
	if c.Format == "" {
		c.Format = FormatPNG
	}
	switch c.Format {
	case FormatPNG, FormatNPY:
	default:
		return errors.InvalidConfig("unknown format %q (must be %q or %q)", c.Format, FormatPNG, FormatNPY)
	}
	if c.RandAugment.N == nil {
		n := DefaultN
		c.RandAugment.N = &n
	}
	if c.RandAugment.M == nil {
		m := DefaultM
		c.RandAugment.M = &m
	}
	for i, t := range c.Transforms {
		if _, ok := lookupKind(t.Kind); !ok {
			return errors.InvalidConfig("transform %d: unknown kind %q", i, t.Kind)
		}
	}
	c.validated = true
	return nil
}

// Hash identifies everything in c that affects augmented output, including
// the directory stamp paths resolve against. The worker count is excluded:
// results do not depend on scheduling.
func (c *Config) Hash() string {
	keyed := *c
	keyed.Workers = 0
	var buf bytes.Buffer
	// Encoding a decoded config cannot fail.
	_ = toml.NewEncoder(&buf).Encode(keyed)
	buf.WriteString(c.BaseDir)
	return cache.Hash(buf.Bytes())
}
