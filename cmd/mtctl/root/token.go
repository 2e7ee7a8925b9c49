package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mapletrack/internal/auth"
	"mapletrack/internal/util"
)

func newTokenCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens",
	}

	var name string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Sign a token with the server secret (MAPLETRACK_JWT_SECRET)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("user id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = g.cfg.AccessTTL
			}
			claims := auth.NewClaims(args[0], name, util.NewID("tok"), time.Now(), ttl)
			token, err := auth.IssueToken([]byte(g.cfg.JWTSecret), claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&name, "name", "", "Display name (defaults to the user id)")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to MAPLETRACK_ACCESS_TTL_SECONDS)")

	cmd.AddCommand(issue)
	return cmd
}
