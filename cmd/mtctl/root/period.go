package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapletrack/internal/ui"
)

func newPeriodCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "period",
		Short: "Show the current weekly and monthly period keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			periods, err := g.client().CurrentPeriods(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Periods"))
			fmt.Fprintln(out, ui.LabelValue("Weekly", periods.WeeklyPeriodKey))
			fmt.Fprintln(out, ui.LabelValue("Monthly", periods.MonthlyPeriodKey))
			fmt.Fprintln(out, ui.LabelValue("Month", periods.MonthKey))
			fmt.Fprintln(out, ui.LabelValue("Today", periods.SelectedDate))
			return nil
		},
	}
}
