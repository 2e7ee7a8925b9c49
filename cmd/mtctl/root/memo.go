package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapletrack/internal/board"
	"mapletrack/internal/ui"
)

func newMemoCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memo",
		Short: "This week's memos",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List memos, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := g.openBoard(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printMemos(cmd, b)
			return nil
		},
	}

	var due string
	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return b.AddMemo(ctx, args[0], due).Wait()
		},
	}
	add.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")

	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a memo's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := b.ToggleMemo(ctx, args[0]).Wait(); err != nil {
				return err
			}
			printMemos(cmd, b)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return b.DeleteMemo(ctx, args[0]).Wait()
		},
	}

	cmd.AddCommand(list, add, done, rm)
	return cmd
}

func printMemos(cmd *cobra.Command, b *board.Board) {
	out := cmd.OutOrStdout()
	weeklyKey, _ := b.Keys()
	memos := b.Memos.Get()
	fmt.Fprintln(out, ui.Heading(ui.IconMemo, "Memos "+weeklyKey))
	if len(memos) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("No memos."))
		return
	}
	for _, m := range memos {
		line := ui.Check(m.Completed, m.Text) + " " + ui.Muted.Render(m.ID)
		if m.DueDate != nil {
			line += " " + ui.Warn.Render("due "+*m.DueDate)
		}
		fmt.Fprintln(out, line)
	}
}
