package cli

import (
	"github.com/spf13/cobra"
)

func (c *Cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored operator session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authService.Logout(cmd.Context()); err != nil {
				return err
			}

			c.println("✓ Logout successful!")
			c.println("Your local session has been deleted.")
			return nil
		},
	}
}
