package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mapletrack/internal/board"
	"mapletrack/internal/ui"
)

func newEventCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "This month's calendar events",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List events by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := g.openBoard(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printEvents(cmd, b)
			return nil
		},
	}

	var friends []string
	var memo string
	add := &cobra.Command{
		Use:   "add <YYYY-MM-DD> <title>",
		Short: "Plan an event in the current month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return b.AddEvent(ctx, args[0], args[1], friends, memo).Wait()
		},
	}
	add.Flags().StringSliceVarP(&friends, "friend", "f", nil, "Friend joining (repeatable)")
	add.Flags().StringVar(&memo, "memo", "", "Free-text note")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return b.DeleteEvent(ctx, args[0]).Wait()
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

func printEvents(cmd *cobra.Command, b *board.Board) {
	out := cmd.OutOrStdout()
	_, monthlyKey := b.Keys()
	events := b.Events.Get()
	fmt.Fprintln(out, ui.Heading(ui.IconCalendar, "Events "+monthlyKey[:7]))
	if len(events) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("No events."))
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("%s %s %s", ui.Key.Render(e.DateKey), e.Title, ui.Muted.Render(e.ID))
		if len(e.Friends) > 0 {
			line += " " + ui.Muted.Render("with "+strings.Join(e.Friends, ", "))
		}
		if e.Memo != nil {
			line += " " + ui.Muted.Render("("+*e.Memo+")")
		}
		fmt.Fprintln(out, line)
	}
}
