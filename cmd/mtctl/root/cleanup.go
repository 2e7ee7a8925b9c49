package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapletrack/internal/ui"
)

func newCleanupCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Drop rows older than the retention window (at most once per interval)",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := g.client().Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !report.Ran {
				fmt.Fprintln(out, ui.Muted.Render("Cleanup already ran recently."))
				return nil
			}
			fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("%s Removed %d expired rows", ui.IconBroom, report.Deleted)))
			return nil
		},
	}
}
