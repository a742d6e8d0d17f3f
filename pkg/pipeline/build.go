package pipeline

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/augmedical/pkg/assets"
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/randaugment"
)

// BuildOptions configures [Build].
type BuildOptions struct {
	// Provider resolves a stamping path to an asset provider. Nil reads
	// PNG stamps from the path, relative to Config.BaseDir.
	Provider func(path string) assets.Provider

	// Logger receives randaugment debug output. Nil discards it.
	Logger *log.Logger
}

// Build turns a config into a single transform: a fixed [augment.Sequence]
// or a [randaugment.RandAugment] over the configured catalog. Stamp assets
// are loaded here, so a missing asset fails before any sample is read.
// Kinds whose output leaves [0, 1] require the NPY output format.
func Build(cfg *Config, opts BuildOptions) (augment.Transform, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Format == FormatPNG {
		for i, t := range cfg.Transforms {
			if k, _ := lookupKind(t.Kind); k.Unbounded {
				return nil, errors.InvalidConfig("transform %d (%s): output leaves [0, 1] and would be clipped by PNG; set format = %q", i, t.Kind, FormatNPY)
			}
		}
	}
	env := buildEnv{baseDir: cfg.BaseDir, provider: opts.Provider}

	catalog := make([]augment.Transform, 0, len(cfg.Transforms))
	for i, t := range cfg.Transforms {
		built, err := buildTransform(t, env)
		if err != nil {
			return nil, fmt.Errorf("transform %d (%s): %w", i, t.Kind, err)
		}
		catalog = append(catalog, built)
	}

	if cfg.Policy == PolicySequence {
		return augment.Compose(catalog...), nil
	}
	ops := make([]randaugment.Op, len(catalog))
	for i, t := range catalog {
		ops[i] = randaugment.Auto(t)
	}
	ra, err := randaugment.New(ops, *cfg.RandAugment.N, *cfg.RandAugment.M, randaugment.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	return ra, nil
}

// buildTransform builds one catalog entry, rejecting keys its kind does
// not use.
func buildTransform(t TransformConfig, env buildEnv) (augment.Transform, error) {
	k, ok := lookupKind(t.Kind)
	if !ok {
		return nil, errors.InvalidConfig("unknown transform kind %q", t.Kind)
	}
	for _, f := range t.fields() {
		if !slices.Contains(k.Fields, f) {
			return nil, errors.InvalidConfig("%s does not accept %q", t.Kind, f)
		}
	}
	return k.build(t, env)
}
