// Package pkg provides the core libraries for augmedical, a reproducible
// image augmentation toolkit for microscopy and other medical images.
//
// # Overview
//
// Augmentations operate on float64 tensors in [0, 1] and keep segmentation
// masks aligned with their images. The pkg directory is organized into
// three areas:
//
//  1. Data and randomness: [tensor], [random], [substrate]
//  2. Transforms: [augment] and its subpackages, [randaugment]
//  3. Batch processing: [pipeline], [assets], [cache], [observability]
//
// # Architecture
//
// The typical data flow through a batch run:
//
//	pipeline.toml
//	     ↓
//	[pipeline] Config (TOML) → catalog of transforms → policy
//	     ↓
//	[assets] decode image (+ mask) into a tensor.Image
//	     ↓
//	[augment] Sample → Transform.Invoke(sample, rng)
//	     ↓
//	[assets] encode 16-bit PNG outputs, [cache] store the artifact
//
// Every sample draws from its own generator, derived from the run seed and
// the sample's position in the batch, so results do not depend on the
// number of workers.
//
// # Quick Start
//
// Apply a randaugment policy to one in-memory sample:
//
//	bleach := colors.NewChannelBleaching()
//	shift := colors.NewStainShift()
//
//	ra, err := randaugment.New([]randaugment.Op{
//	    randaugment.Scaled(bleach),
//	    randaugment.Scaled(shift),
//	}, 2, 0.5)
//	if err != nil {
//	    return err
//	}
//	out, err := ra.Invoke(augment.Sample{Image: img, Mask: mask}, random.New(42))
//
// Or run a configured batch:
//
//	cfg, err := pipeline.LoadConfig("examples/pipeline.toml")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config: cfg,
//	    Inputs: []string{"slides/a.png", "slides/b.png"},
//	    OutDir: "augmented",
//	})
//
// # Main Packages
//
// [tensor] - Dense H×W×C float64 images with interleaved channels, plus
// conversion to and from image.Image.
//
// [random] - The Source interface, seeded PCG generators, per-sample
// derivation and the Range types transforms sample their parameters from.
//
// [substrate] - Numeric kernels the transforms share: HSV conversion,
// separable smoothing, resize and rotation, stain separation.
//
// [augment] - Sample, Transform and the probability gate. Subpackages hold
// the transforms: [augment/colors] (desaturation, bleaching, stain shift,
// deconvolution), [augment/filters] (Gaussian and box blur),
// [augment/stamping] (artifact stamps) and [augment/mask] (uncertain mask
// borders).
//
// [randaugment] - Draws N operations per sample from a catalog and applies
// them at intensity M.
//
// [pipeline] - TOML configuration, the transform registry and the parallel
// Runner.
//
// [assets] - Stamp providers and image file I/O.
//
// [cache] - Content-addressed artifact cache (file-backed or null).
//
// [observability] - Hooks for run, sample and cache events.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information injected at build time.
//
// [tensor]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/tensor
// [random]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/random
// [substrate]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/substrate
// [augment]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/augment
// [augment/colors]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/augment/colors
// [augment/filters]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/augment/filters
// [augment/stamping]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/augment/stamping
// [augment/mask]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/augment/mask
// [randaugment]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/randaugment
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/pipeline
// [assets]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/assets
// [cache]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/augmedical/pkg/buildinfo
package pkg
