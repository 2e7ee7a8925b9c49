package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapletrack/internal/boss"
	"mapletrack/internal/ui"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Past boss clears within the retention window",
	}
	cmd.PersistentFlags().IntVar(&months, "months", 0, "Months to look back (defaults to the retention window)")

	cmd.AddCommand(&cobra.Command{
		Use:   "weekly",
		Short: "Weekly clears per period",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := g.client().WeeklyHistory(cmd.Context(), months)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Weekly history"))
			for _, e := range entries {
				cleared := 0
				for _, chars := range e.State.Worlds {
					for _, bosses := range chars {
						for _, entry := range bosses {
							if entry.Cleared() {
								cleared++
							}
						}
					}
				}
				fmt.Fprintln(out, ui.LabelValue(e.PeriodKey, fmt.Sprintf("%d clears", cleared)))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "monthly",
		Short: "Monthly clears per period",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := g.client().MonthlyHistory(cmd.Context(), months)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Monthly history"))
			for _, e := range entries {
				fmt.Fprintln(out, ui.H2.Render(e.PeriodKey))
				for _, id := range boss.MonthlyIDs() {
					fmt.Fprintln(out, "  "+ui.Check(e.State[id].Cleared(), bossLabel(id)))
				}
			}
			return nil
		},
	})
	return cmd
}
