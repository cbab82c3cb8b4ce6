package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func (c *Cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "garageboard",
		Short:         "Scheduling board client for the service desk",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Store the operator token issued by the server admin
  garageboard login --token "$GARAGEBOARD_TOKEN"

  # Show the board and move a card
  garageboard board
  garageboard move 8f14e45f in_progress 0

  # Edit a customer record
  garageboard customer edit 3c59dc04 --set phone="+1 555 0100"

  # Follow changes made by other operators
  garageboard watch
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config file (yaml)")
	flags.StringVar(&c.serverURL, "server", "", "server URL (overrides server_url)")
	flags.StringVar(&c.dbPath, "db", "", "path to local database (overrides db_path)")
	flags.StringVar(&c.onConflict, "on-conflict", "", "conflict policy: ask, discard, overwrite or cancel")

	cmd.AddCommand(
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newStatusCmd(),
		c.newBoardCmd(),
		c.newMoveCmd(),
		c.newCustomerCmd(),
		c.newVehicleCmd(),
		c.newWatchCmd(),
	)
	return cmd
}
