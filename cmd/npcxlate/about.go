package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "npcxlate: translates the dialogue in rAthena NPC scripts line by line,")
			fmt.Fprintln(out, "leaving script syntax, color codes and markup untouched.")
			fmt.Fprintln(out, "https://github.com/oukeidos/npcxlate")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
