package main

import (
	"fmt"
	"os"
	"time"

	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/pipeline"
	"github.com/oukeidos/npcxlate/internal/script"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	runOptions
	output    string
	startLine int
	lineCount int
	force     bool
	yes       bool
}

func newTranslateCmd() *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <input.txt>",
		Short: "Translate the dialogue of one NPC script file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("input file is required")
			}
			return runTranslate(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	return cmd
}

func addTranslateFlags(cmd *cobra.Command, opts *translateOptions) {
	addRunFlags(cmd, &opts.runOptions)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (default: <input>.<suffix>.txt)")
	cmd.Flags().IntVar(&opts.startLine, "start", 1, "First line to translate (1-based)")
	cmd.Flags().IntVar(&opts.lineCount, "count", 0, "Number of lines to translate (0 = to end of file)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Re-translate the range even if the output already covers it")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask before re-translating with --force")
}

func runTranslate(cmd *cobra.Command, args []string, opts *translateOptions) error {
	if len(args) > 1 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: expected 1 argument but got %d. Did you forget quotes around the file path?\n", len(args))
		fmt.Fprintf(cmd.ErrOrStderr(), "  Using input: %s\n", args[0])
	}
	if err := initLogging(opts.debug, opts.logFilePath); err != nil {
		return err
	}
	if err := applySettings(cmd, &opts.runOptions); err != nil {
		return err
	}
	target, suffix, err := resolveTarget(&opts.runOptions)
	if err != nil {
		return err
	}

	input := args[0]
	output := opts.output
	if output == "" {
		output = script.OutputPath(input, suffix)
	}
	if opts.force {
		if _, err := os.Stat(output); err == nil {
			ok, err := newConfirmer().Confirm(fmt.Sprintf("Re-translate lines of existing %s?", output), opts.yes)
			if err != nil {
				return err
			}
			if !ok {
				logger.Info("Aborted by user", "path", output)
				return nil
			}
		}
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	s, err := openSession(ctx, &opts.runOptions, target)
	if err != nil {
		return err
	}

	cfg := s.fileConfig(input, output)
	cfg.StartLine = opts.startLine
	cfg.LineCount = opts.lineCount
	cfg.Force = opts.force
	cfg.OnProgress = func(p pipeline.Progress) {
		if p.Done%100 == 0 || p.Done == p.Total {
			logger.Info("Progress", "line", p.Line, "done", p.Done, "total", p.Total)
		}
	}

	result, err := s.processor.Run(ctx, cfg)
	printUsageStats(cmd.OutOrStdout(), s, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Translation canceled", "output", output, "written", result.LinesWritten)
			return nil
		}
		return err
	}
	if st := s.translator.Stats(); st.Failures > 0 {
		logger.Warn("Some fragments kept their source text after service errors", "failures", st.Failures)
	}
	return translationStatusError(result)
}

func translationStatusError(result pipeline.RunResult) error {
	switch result.Status {
	case pipeline.RunStatusCompleted, pipeline.RunStatusSkipped, pipeline.RunStatusCanceled:
		return nil
	default:
		return fmt.Errorf("translation finished with unknown status: %q", result.Status)
	}
}
