package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mapletrack/internal/period"
	"mapletrack/internal/ui"
)

func newCalendarCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month with its planned events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := g.client()

			var monthKey string
			if len(args) == 1 {
				monthKey = args[0]
				if _, _, ok := period.ParseMonthKey(monthKey); !ok {
					return errors.New("month must be YYYY-MM")
				}
			} else {
				periods, err := c.CurrentPeriods(ctx)
				if err != nil {
					return err
				}
				monthKey = periods.MonthKey
			}

			cal, err := c.Calendar(ctx, monthKey)
			if err != nil {
				return err
			}
			events, err := c.LoadCalendarEvents(ctx, monthKey+"-01")
			if err != nil {
				return err
			}
			marked := make(map[string]bool, len(events))
			for _, e := range events {
				marked[e.DateKey] = true
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCalendar, cal.MonthKey))
			fmt.Fprintln(out, ui.CalendarGrid(cal.Weeks, marked))
			for _, e := range events {
				line := fmt.Sprintf("%s %s", ui.Key.Render(e.DateKey), e.Title)
				if len(e.Friends) > 0 {
					line += ui.Muted.Render(" with " + strings.Join(e.Friends, ", "))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
