package root

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mapletrack/internal/board"
	"mapletrack/internal/boss"
	"mapletrack/internal/checklist"
	"mapletrack/internal/ui"
)

func newBossCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boss",
		Short: "Weekly and monthly boss clears",
	}
	cmd.AddCommand(newWeeklyBossCmd(g), newMonthlyBossCmd(g))
	return cmd
}

func newWeeklyBossCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "List this week's clears",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := g.openBoard(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printWeekly(cmd, b)
			return nil
		},
	}

	var clearChar bool
	toggle := &cobra.Command{
		Use:   "toggle <world> <character> [boss-id]",
		Short: "Flip a boss for a character (or --clear the character)",
		Args: func(cmd *cobra.Command, args []string) error {
			if clearChar && len(args) == 2 {
				return nil
			}
			if len(args) != 3 {
				return errors.New("world, character and boss id are required")
			}
			if !boss.IsWeekly(args[2]) {
				return fmt.Errorf("unknown weekly boss %q", args[2])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if clearChar {
				err = b.ClearCharacter(ctx, args[0], args[1]).Wait()
			} else {
				err = b.ToggleWeeklyBoss(ctx, args[0], args[1], args[2]).Wait()
			}
			if err != nil {
				return err
			}
			printWeekly(cmd, b)
			return nil
		},
	}
	toggle.Flags().BoolVar(&clearChar, "clear", false, "Remove every clear for the character")

	cmd.AddCommand(toggle)
	return cmd
}

func newMonthlyBossCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "List this month's clears",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := g.openBoard(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printMonthly(cmd, b)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <boss-id>",
		Short: "Flip a monthly boss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := g.openBoard(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := b.ToggleMonthlyBoss(ctx, args[0]).Wait(); err != nil {
				return err
			}
			printMonthly(cmd, b)
			return nil
		},
	})
	return cmd
}

func printWeekly(cmd *cobra.Command, b *board.Board) {
	out := cmd.OutOrStdout()
	weeklyKey, _ := b.Keys()
	state := b.Weekly.Get()
	fmt.Fprintln(out, ui.Heading(ui.IconBoss, "Weekly bosses "+weeklyKey))
	if state.IsEmpty() {
		fmt.Fprintln(out, ui.Muted.Render("No clears yet."))
		return
	}
	for _, world := range sortedKeys(state.Worlds) {
		for _, char := range sortedKeys(state.Worlds[world]) {
			fmt.Fprintln(out, ui.H2.Render(displayName(world, checklist.UnassignedWorld)+" / "+displayName(char, checklist.UnassignedCharacter)))
			bosses := state.Worlds[world][char]
			for _, id := range sortedKeys(bosses) {
				fmt.Fprintln(out, "  "+ui.Check(bosses[id].Cleared(), bossLabel(id)))
			}
		}
	}
}

func printMonthly(cmd *cobra.Command, b *board.Board) {
	out := cmd.OutOrStdout()
	_, monthlyKey := b.Keys()
	state := b.Monthly.Get()
	fmt.Fprintln(out, ui.Heading(ui.IconBoss, "Monthly bosses "+monthlyKey))
	for _, id := range boss.MonthlyIDs() {
		fmt.Fprintln(out, "  "+ui.Check(state[id].Cleared(), bossLabel(id)))
	}
}

func bossLabel(id string) string {
	if b, ok := boss.Lookup(id); ok {
		return fmt.Sprintf("%s (%s)", b.Name, b.Difficulty)
	}
	return id
}

func displayName(id, sentinel string) string {
	if id == sentinel {
		return "unassigned"
	}
	return id
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
