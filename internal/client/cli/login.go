package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/garageboard/internal/client/api"
)

func (c *Cli) newLoginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an operator token for this workstation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if token == "" {
				// Токен не передан флагом, читаем его без эха
				t, err := c.io.ReadPassword("Operator token: ")
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = t
			}

			session, err := c.authService.Login(ctx, c.cfg.ServerURL, token)
			if err != nil {
				return err
			}

			// Проверяем токен на сервере
			client := api.NewClient(session.ServerURL)
			client.SetToken(session.Token)
			if _, err := client.GetStats(ctx); err != nil {
				if api.IsUnauthorized(err) {
					if lerr := c.authService.Logout(ctx); lerr != nil {
						c.logger.Error("Failed to remove rejected session", "error", lerr)
					}
					return fmt.Errorf("server %s rejected the token", session.ServerURL)
				}
				c.logger.Warn("Could not verify token with the server", "error", err)
			}

			c.println("✓ Login successful!")
			c.printf("Operator: %s\n", session.Operator)
			c.printf("Server:   %s\n", session.ServerURL)
			if session.ExpiresAt.IsZero() {
				c.println("Token expires: never")
			} else {
				c.printf("Token expires: %s\n", session.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "operator token (prompted when empty)")
	return cmd
}
