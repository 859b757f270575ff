package main

import (
	"fmt"
	"strings"

	"github.com/oukeidos/npcxlate/internal/backend"
	"github.com/oukeidos/npcxlate/internal/locale"
	"github.com/oukeidos/npcxlate/internal/metadata"
	"github.com/oukeidos/npcxlate/internal/textutil"
	"github.com/spf13/cobra"
)

const nameColumn = 24

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supported target locales and backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Supported Locales:")
			for _, l := range locale.Supported() {
				fmt.Fprintf(out, "  %s%s [%s]\n", l.Name, pad(l.Name, nameColumn), l.Code)
			}
			fmt.Fprintln(out, "\nBackends:")
			for _, name := range backend.Names() {
				models := metadata.ModelIDs(name)
				if len(models) == 0 {
					fmt.Fprintf(out, "  %s\n", name)
					continue
				}
				fmt.Fprintf(out, "  %s%s %s (default %s)\n", name, pad(name, nameColumn), strings.Join(models, ", "), metadata.DefaultModel(name))
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

// pad returns the spaces that bring s to width display cells.
func pad(s string, width int) string {
	return strings.Repeat(" ", max(1, width-textutil.Width(s)))
}
