package main

import (
	"fmt"
	"os"

	"github.com/oukeidos/npcxlate/internal/locale"
	"github.com/oukeidos/npcxlate/internal/npcconf"
	"github.com/spf13/cobra"
)

type confOptions struct {
	root    string
	target  string
	suffix  string
	rewrite bool
	yes     bool
	debug   bool
}

func newConfCmd() *cobra.Command {
	opts := confOptions{}
	cmd := &cobra.Command{
		Use:   "conf <scripts.conf>",
		Short: "Check npc: references against translated files and optionally switch them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConf(cmd, args[0], &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.root, "root", "", "Directory that npc/ references resolve against (default: current directory)")
	cmd.Flags().StringVar(&opts.target, "target", locale.Default, "Target locale whose translated files are checked")
	cmd.Flags().StringVar(&opts.suffix, "suffix", "", "Translated file suffix (default: lowercase target)")
	cmd.Flags().BoolVar(&opts.rewrite, "rewrite", false, "Point references at translated files that exist (keeps a .bak copy)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask before rewriting")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	return cmd
}

func runConf(cmd *cobra.Command, confPath string, opts *confOptions) error {
	if err := initLogging(opts.debug, ""); err != nil {
		return err
	}
	_, suffix, err := resolveTarget(&runOptions{target: opts.target, suffix: opts.suffix})
	if err != nil {
		return err
	}
	root := opts.root
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return err
		}
	}

	report, err := npcconf.Scan(confPath, root, suffix)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range report.Missing() {
		fmt.Fprintf(out, "MISSING %s:%d: npc: %s (%s)\n", confPath, e.Line, e.Ref, e.Translated)
	}
	fmt.Fprintln(out, report.Summary())

	if !opts.rewrite || report.Checked() == 0 {
		return nil
	}
	ok, err := newConfirmer().Confirm(fmt.Sprintf("Rewrite %d references in %s?", report.Checked(), confPath), opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}
	n, backup, err := npcconf.Rewrite(report, suffix)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Rewrote %d references (backup: %s)\n", n, backup)
	return nil
}
