package main

import (
	"context"
	"fmt"
	"time"

	"github.com/oukeidos/npcxlate/internal/batchrun"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/pipeline"
	"github.com/oukeidos/npcxlate/internal/script"
	"github.com/oukeidos/npcxlate/internal/settings"
	"github.com/spf13/cobra"
)

type batchOptions struct {
	runOptions
	run         bool
	force       bool
	noRecursive bool
	jobs        int
	yes         bool
}

func newBatchCmd() *cobra.Command {
	opts := batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Find script files under a directory and translate the missing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addRunFlags(cmd, &opts.runOptions)
	cmd.Flags().BoolVar(&opts.run, "run", false, "Translate the files (default: list only)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Include files whose translation already exists and re-translate them")
	cmd.Flags().BoolVar(&opts.noRecursive, "no-recursive", false, "Do not descend into subdirectories")
	cmd.Flags().IntVar(&opts.jobs, "jobs", settings.Defaults().Jobs, fmt.Sprintf("Files translated concurrently (%d-%d)", batchrun.MinJobs, batchrun.MaxJobs))
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask before re-translating with --force")
	return cmd
}

func runBatch(cmd *cobra.Command, root string, opts *batchOptions) error {
	if err := initLogging(opts.debug, opts.logFilePath); err != nil {
		return err
	}
	if err := applySettings(cmd, &opts.runOptions); err != nil {
		return err
	}
	if !cmd.Flags().Changed("jobs") {
		if s, _, err := settings.Load(opts.configPath); err == nil {
			opts.jobs = s.Jobs
		}
	}
	target, suffix, err := resolveTarget(&opts.runOptions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	all, err := batchrun.Discover(root, suffix, !opts.noRecursive)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d .txt files under %s (recursive=%t)\n", len(all), root, !opts.noRecursive)
	for _, p := range all {
		fmt.Fprintln(out, " -", p)
	}

	pending, err := batchrun.Pending(all, suffix, opts.force)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFiles missing .%s.txt:\n", suffix)
	if len(pending) == 0 {
		fmt.Fprintln(out, " - (none)")
	}
	for _, p := range pending {
		fmt.Fprintln(out, " -", p)
	}
	if !opts.run || len(pending) == 0 {
		if !opts.run {
			fmt.Fprintln(out, "\nDry run; use --run to translate.")
		}
		return nil
	}

	if opts.force {
		ok, err := newConfirmer().Confirm(fmt.Sprintf("Re-translate %d files, replacing existing translations?", len(pending)), opts.yes)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Aborted by user")
			return nil
		}
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	s, err := openSession(ctx, &opts.runOptions, target)
	if err != nil {
		return err
	}

	sum := batchrun.Run(ctx, pending, opts.jobs, func(ctx context.Context, path string) error {
		cfg := s.fileConfig(path, script.OutputPath(path, suffix))
		cfg.Force = opts.force
		result, err := s.processor.Run(ctx, cfg)
		if err != nil {
			return err
		}
		if result.Status == pipeline.RunStatusSkipped {
			logger.Info("Already translated", "path", path)
		}
		return nil
	})

	printUsageStats(out, s, time.Since(start))
	for _, f := range sum.Failed {
		fmt.Fprintf(out, "Failed: %s: %v\n", f.Path, f.Err)
	}
	fmt.Fprintf(out, "\nCompleted: %d succeeded, %d failed.\n", len(sum.Succeeded), len(sum.Failed))
	if sum.Canceled {
		logger.Warn("Batch canceled; re-run to resume")
		return nil
	}
	if len(sum.Failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(sum.Failed), len(pending))
	}
	return nil
}
