package root

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mapletrack/internal/board"
	"mapletrack/internal/client"
	"mapletrack/internal/config"
	"mapletrack/internal/period"
	"mapletrack/internal/ui"
)

const Version = "0.1.0"

type globals struct {
	cfg    config.Config
	apiURL string
	token  string
}

func NewRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "mtctl",
		Short:         "mapletrack boss checklist client",
		Long:          "mtctl tracks weekly and monthly boss clears, memos and calendar plans against a mapletrack server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			g.cfg = cfg
			if g.apiURL == "" {
				g.apiURL = cfg.APIURL
			}
			if g.token == "" {
				g.token = cfg.Token
			}
			return nil
		},
	}
	cmd.Version = Version
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "Server URL (default MAPLETRACK_API_URL)")
	cmd.PersistentFlags().StringVar(&g.token, "token", "", "Bearer token (default MAPLETRACK_TOKEN)")

	cmd.AddCommand(
		newTokenCmd(g),
		newPeriodCmd(g),
		newCalendarCmd(g),
		newBossCmd(g),
		newMemoCmd(g),
		newEventCmd(g),
		newHistoryCmd(g),
		newCleanupCmd(g),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func (g *globals) client() *client.Client {
	return client.New(g.apiURL, g.token)
}

// openBoard loads the server's current periods into a board that reports to out.
func (g *globals) openBoard(ctx context.Context, out io.Writer) (*board.Board, error) {
	c := g.client()
	periods, err := c.CurrentPeriods(ctx)
	if err != nil {
		return nil, err
	}
	b := board.New(c, board.Options{
		Notifier: ui.Notifier{Out: out},
		Clock:    period.SystemClock{},
	})
	if err := b.Load(ctx, periods.WeeklyPeriodKey, periods.MonthlyPeriodKey); err != nil {
		return nil, err
	}
	return b, nil
}
