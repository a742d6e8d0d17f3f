package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/augmedical/pkg/assets"
	"github.com/matzehuels/augmedical/pkg/augment"
	"github.com/matzehuels/augmedical/pkg/cache"
	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/observability"
	"github.com/matzehuels/augmedical/pkg/random"
)

// Runner executes batch runs with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// artifact is the cached form of one augmented sample.
type artifact struct {
	Image []byte `json:"image"`
	Mask  []byte `json:"mask,omitempty"`
}

// job is one sample of a run.
type job struct {
	input string
	mask  string
	index int // position in the batch; seeds the sample's generator
	out   string
}

// Execute augments every input and writes the results to opts.OutDir.
// The first failing sample cancels the remaining work.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	// A caller-supplied transform is not described by the config hash, so
	// its outputs are never cached.
	transform, store := opts.Transform, r.Cache
	if transform == nil {
		built, err := Build(opts.Config, BuildOptions{Logger: logger})
		if err != nil {
			return nil, err
		}
		transform = built
	} else {
		store = cache.NewNullCache()
	}

	jobs, err := plan(opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", opts.OutDir)
	}

	runID := uuid.NewString()
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, runID, len(jobs))
	logger.Debug("starting run", "run", runID, "samples", len(jobs), "workers", opts.Workers, "seed", *opts.Seed)

	result := &Result{RunID: runID, Outputs: make([]Output, len(jobs))}
	cfgHash := opts.Config.Hash()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := r.process(gctx, store, transform, cfgHash, j, &opts)
			if err != nil {
				return fmt.Errorf("%s: %w", j.input, err)
			}
			result.Outputs[i] = out
			return nil
		})
	}
	err = g.Wait()

	result.Stats.Duration = time.Since(start)
	for _, out := range result.Outputs {
		if out.Image == "" {
			continue
		}
		result.Stats.Samples++
		if out.Cached {
			result.Stats.CacheHits++
		}
	}
	hooks.OnRunComplete(ctx, runID, result.Stats.Samples, result.Stats.Duration, err)
	if err != nil {
		return nil, err
	}

	logger.Info("augmented samples",
		"samples", result.Stats.Samples,
		"cached", result.Stats.CacheHits,
		"duration", result.Stats.Duration)
	return result, nil
}

// plan expands inputs into jobs. With masks enabled, mask files given as
// inputs are skipped and paired with their images instead.
func plan(opts Options) ([]job, error) {
	var jobs []job
	seen := make(map[string]string)
	for _, input := range opts.Inputs {
		ext := filepath.Ext(input)
		stem := strings.TrimSuffix(filepath.Base(input), ext)
		if opts.Masks && strings.HasSuffix(stem, opts.MaskSuffix) {
			continue
		}
		if prev, dup := seen[stem]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s and %s would write the same output", prev, input)
		}
		seen[stem] = input

		var maskPath string
		if opts.Masks {
			candidate := filepath.Join(filepath.Dir(input), stem+opts.MaskSuffix+ext)
			if _, err := os.Stat(candidate); err == nil {
				maskPath = candidate
			}
		}
		for k := range opts.Copies {
			name := stem + OutputSuffix
			if opts.Copies > 1 {
				name += strconv.Itoa(k)
			}
			jobs = append(jobs, job{
				input: input,
				mask:  maskPath,
				index: len(jobs),
				out:   filepath.Join(opts.OutDir, name),
			})
		}
	}
	if len(jobs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no images to augment")
	}
	return jobs, nil
}

func (r *Runner) process(ctx context.Context, store cache.Cache, t augment.Transform, cfgHash string, j job, opts *Options) (Output, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnSampleStart(ctx, j.input)

	out, err := r.sample(ctx, store, t, cfgHash, j, opts)

	hooks.OnSampleComplete(ctx, j.input, out.Cached, time.Since(start), err)
	if err == nil {
		opts.Logger.Debug("sample done", "input", j.input, "index", j.index, "cached", out.Cached)
	}
	return out, err
}

func (r *Runner) sample(ctx context.Context, store cache.Cache, t augment.Transform, cfgHash string, j job, opts *Options) (Output, error) {
	out := Output{Input: j.input, Index: j.index}

	data, err := readInput(j.input)
	if err != nil {
		return out, err
	}
	inputHash := cache.Hash(data)
	var maskData []byte
	if j.mask != "" {
		if maskData, err = readInput(j.mask); err != nil {
			return out, err
		}
		inputHash += ":" + cache.Hash(maskData)
	}
	key := r.Keyer.SampleKey(inputHash, cfgHash, *opts.Seed, j.index)

	art, hit := r.lookup(ctx, store, key, opts.Refresh)
	if !hit {
		art, err = augmentSample(t, data, maskData, opts.Config.Format, random.ForWorker(*opts.Seed, j.index))
		if err != nil {
			return out, err
		}
		if raw, err := json.Marshal(art); err == nil {
			if store.Set(ctx, key, raw, 0) == nil {
				observability.Cache().OnCacheSet(ctx, "sample", len(raw))
			}
		}
	}

	out.Cached = hit
	out.Image = j.out + "." + opts.Config.Format
	if err := os.WriteFile(out.Image, art.Image, 0644); err != nil {
		return out, errors.Wrap(errors.ErrCodeInternal, err, "write %s", out.Image)
	}
	if art.Mask != nil {
		out.Mask = j.out + opts.MaskSuffix + ".png"
		if err := os.WriteFile(out.Mask, art.Mask, 0644); err != nil {
			return out, errors.Wrap(errors.ErrCodeInternal, err, "write %s", out.Mask)
		}
	}
	return out, nil
}

// lookup reads a cached artifact. Undecodable entries count as misses.
func (r *Runner) lookup(ctx context.Context, store cache.Cache, key string, refresh bool) (artifact, bool) {
	if refresh {
		return artifact{}, false
	}
	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		var art artifact
		if json.Unmarshal(data, &art) == nil && art.Image != nil {
			observability.Cache().OnCacheHit(ctx, "sample")
			return art, true
		}
	}
	observability.Cache().OnCacheMiss(ctx, "sample")
	return artifact{}, false
}

// augmentSample decodes, transforms and re-encodes one sample. The image is
// written in format; masks always stay PNG.
func augmentSample(t augment.Transform, data, maskData []byte, format string, rng random.Source) (artifact, error) {
	img, err := assets.Decode(bytes.NewReader(data))
	if err != nil {
		return artifact{}, err
	}
	s := augment.Sample{Image: img}
	if maskData != nil {
		if s.Mask, err = assets.DecodeMask(bytes.NewReader(maskData)); err != nil {
			return artifact{}, err
		}
	}
	if err := s.Validate(); err != nil {
		return artifact{}, err
	}

	s, err = t.Invoke(s, rng)
	if err != nil {
		return artifact{}, err
	}

	var art artifact
	var buf bytes.Buffer
	encode := assets.EncodePNG
	if format == FormatNPY {
		encode = assets.EncodeNPY
	}
	if err := encode(&buf, s.Image); err != nil {
		return artifact{}, err
	}
	art.Image = bytes.Clone(buf.Bytes())
	if s.Mask != nil {
		buf.Reset()
		if err := assets.EncodePNG(&buf, s.Mask); err != nil {
			return artifact{}, err
		}
		art.Mask = bytes.Clone(buf.Bytes())
	}
	return art, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
