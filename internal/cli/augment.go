package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/augmedical/pkg/observability"
	"github.com/matzehuels/augmedical/pkg/pipeline"
)

// augmentOpts holds the command-line flags for the augment command.
type augmentOpts struct {
	config  string  // pipeline TOML
	out     string  // output directory
	seed    *uint64 // overrides the config seed when --seed is given
	workers int     // overrides the config worker count when non-zero
	copies  int     // augmented copies per input
	masks   bool    // pair inputs with <stem>_mask files
	refresh bool    // recompute and overwrite cached samples
	noCache bool
}

// augmentCommand creates the augment command.
func (c *CLI) augmentCommand() *cobra.Command {
	opts := augmentOpts{copies: 1}
	var seed uint64

	cmd := &cobra.Command{
		Use:   "augment [images or directories...]",
		Short: "Augment images with a configured pipeline",
		Long: `Augment images with a configured pipeline.

The pipeline is described by a TOML file (see examples/pipeline.toml) listing
the transforms and the policy that combines them. Directory arguments are
expanded to the image files they contain.

With --masks, every image is paired with <stem>_mask<ext> when that file
exists; the mask is augmented alongside the image and written next to it.

Every sample is reproducible from the seed and its position in the batch,
whatever the worker count. Results are cached locally for faster reruns.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				opts.seed = &seed
			}
			return c.runAugment(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "pipeline config file (TOML)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "augmented", "output directory")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: config seed)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "parallel workers (default: config workers)")
	cmd.Flags().IntVarP(&opts.copies, "copies", "n", opts.copies, "augmented copies per input")
	cmd.Flags().BoolVar(&opts.masks, "masks", false, "augment <stem>_mask files alongside their images")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached samples")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// runAugment loads the config, runs the batch, and reports the outputs.
func (c *CLI) runAugment(ctx context.Context, args []string, opts augmentOpts) error {
	cfg, err := pipeline.LoadConfig(opts.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Augmenting")
	prev := observability.Pipeline()
	observability.SetPipelineHooks(spinnerHooks{spinner: spinner})
	defer observability.SetPipelineHooks(prev)

	prog := newProgress(c.Logger)
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Config:  cfg,
		Inputs:  inputs,
		OutDir:  opts.out,
		Copies:  opts.copies,
		Masks:   opts.masks,
		Seed:    opts.seed,
		Workers: opts.workers,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Augmentation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Augmented %d samples", result.Stats.Samples))

	printSuccess("Augmentation complete")
	masks := 0
	for _, o := range result.Outputs {
		printFile(o.Image)
		if o.Mask != "" {
			printFile(o.Mask)
			masks++
		}
	}
	if opts.masks && masks == 0 {
		printWarning("No mask files found (expected <stem>%s next to each image)", pipeline.DefaultMaskSuffix)
	}
	fmt.Println(runStats(result.Stats.Samples, result.Stats.CacheHits))
	printNewline()
	printDetail("Run: %s", result.RunID)
	return nil
}
