// Package pipeline runs augmentation over batches of images on disk.
//
// A pipeline is described by a TOML [Config]: a seed, a worker count, a
// policy and a catalog of transforms. [Build] turns the config into one
// [augment.Transform]; the [Runner] applies it to every input file with a
// bounded pool of workers and writes the results as 16-bit PNGs.
//
// # Reproducibility
//
// Every sample gets its own generator derived from the seed and the
// sample's position in the batch, never from the worker that happens to
// process it. The same inputs, config and seed therefore produce identical
// outputs for any worker count.
//
// # Caching
//
// Encoded outputs are cached under a key built from the input bytes, the
// config hash, the seed and the sample index. Reruns over unchanged inputs
// read from the cache; Options.Refresh forces recomputation.
//
// # Usage
//
//	cfg, err := pipeline.LoadConfig("pipeline.toml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config: cfg,
//	    Inputs: []string{"slide1.png", "slide2.png"},
//	    OutDir: "out",
//	})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultWorkers is the default number of concurrent samples.
	DefaultWorkers = 4

	// DefaultN is the default randaugment breadth.
	DefaultN = 2

	// DefaultM is the default randaugment intensity.
	DefaultM = 0.5

	// DefaultMaskSuffix marks mask files next to their images:
	// slide.png pairs with slide_mask.png.
	DefaultMaskSuffix = "_mask"

	// OutputSuffix is appended to the input stem for augmented outputs.
	OutputSuffix = "_aug"
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one batch run.
type Options struct {
	Config *Config
	Inputs []string
	OutDir string

	// Transform overrides the transform built from Config.
	Transform augment.Transform

	// Copies is the number of augmented copies written per input.
	Copies int

	// Masks pairs every input with <stem><MaskSuffix><ext> when that file
	// exists.
	Masks      bool
	MaskSuffix string

	// Seed overrides the config seed when set, including an explicit 0.
	// Workers overrides the config when non-zero.
	Seed    *uint64
	Workers int

	Refresh bool
	Logger  *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == nil {
		o.Config = &Config{}
	}
	if err := o.Config.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if len(o.Inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one input is required")
	}
	if o.OutDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output directory is required")
	}
	if o.Copies < 0 {
		return errors.InvalidConfig("copies must be non-negative, got %d", o.Copies)
	}
	if o.Copies == 0 {
		o.Copies = 1
	}
	if o.Workers < 0 {
		return errors.InvalidConfig("workers must be non-negative, got %d", o.Workers)
	}
	if o.Seed == nil {
		o.Seed = o.Config.Seed
	}
	if o.Workers == 0 {
		o.Workers = o.Config.Workers
	}
	if o.MaskSuffix == "" {
		o.MaskSuffix = DefaultMaskSuffix
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a run.
type Result struct {
	// RunID identifies the run in logs and hooks.
	RunID string

	// Outputs has one entry per sample, in input order.
	Outputs []Output

	// Stats contains timing and cache information.
	Stats Stats
}

// Output describes one written sample.
type Output struct {
	Input  string
	Index  int
	Image  string
	Mask   string // empty when the input had no mask
	Cached bool
}

// Stats contains run statistics.
type Stats struct {
	Samples   int
	CacheHits int
	Duration  time.Duration
}
