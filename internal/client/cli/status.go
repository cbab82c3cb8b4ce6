package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/garageboard/internal/client/auth"
)

func (c *Cli) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the operator session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.println("=== Session Status ===")

			session, err := c.authService.Current(ctx)
			switch {
			case errors.Is(err, auth.ErrNotLoggedIn):
				c.println("Status: Not logged in")
				c.println("Run 'garageboard login --token <token>' to start a session.")
				return nil
			case errors.Is(err, auth.ErrSessionExpired):
				c.println("Status: Session expired")
				c.printf("Operator: %s\n", session.Operator)
				c.println("⚠️  Token has expired. Please login again.")
				return nil
			case err != nil:
				return fmt.Errorf("failed to load session: %w", err)
			}

			c.println("Status: Logged in")
			c.printf("Operator: %s\n", session.Operator)
			c.printf("Server:   %s\n", session.ServerURL)
			if session.ExpiresAt.IsZero() {
				c.println("Token expires: never")
			} else {
				c.printf("Token expires: %s\n", session.ExpiresAt.Format(time.RFC3339))
				c.printf("Time remaining: %s\n", time.Until(session.ExpiresAt).Round(time.Second))
			}

			last, err := c.store.GetLastBoardRefresh(ctx)
			if err != nil {
				c.logger.Warn("Failed to read board refresh time", "error", err)
				return nil
			}
			if last == 0 {
				c.println("Last board refresh: never")
			} else {
				c.printf("Last board refresh: %s\n", time.Unix(last, 0).Format(time.RFC3339))
			}
			return nil
		},
	}
}
