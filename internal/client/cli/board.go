package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/garageboard/internal/client/mutation"
	"github.com/iudanet/garageboard/internal/models"
)

func (c *Cli) newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the scheduling board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := c.client(ctx)
			if err != nil {
				return err
			}

			store, err := c.loadBoard(ctx, client)
			if err != nil {
				return err
			}
			c.printf("%s", RenderBoard(store.Snapshot()))
			return nil
		},
	}
}

func (c *Cli) newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status> <position>",
		Short: "Move a card to another column or position",
		Long: "Move a card. The status is one of " + statusList() + "; case and dashes are ignored.\n" +
			"Stale versions are retried automatically before the conflict is shown.",
		Args: requireArgs(3, "garageboard move <id> <status> <position>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			status, err := ParseStatus(args[1])
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[2])
			if err != nil || position < 0 {
				return fmt.Errorf("position must be a non-negative number, got %q", args[2])
			}

			client, _, err := c.client(ctx)
			if err != nil {
				return err
			}
			store, err := c.loadBoard(ctx, client)
			if err != nil {
				return err
			}
			svc, err := c.moveService(client, store)
			if err != nil {
				return err
			}

			res, err := svc.ProtectedMove(ctx, args[0], status, position)
			if err != nil {
				if mutation.IsHandled(err) {
					c.println("Move cancelled, the card was left as the server has it.")
					return nil
				}
				// Сервис уже показал уведомление об ошибке
				return &ReportedError{Err: explain(err)}
			}

			c.printf("Card %s is now in %s at position %d (version %d)\n",
				res.ID, ColumnTitle(res.Status), res.Position, res.Version)
			return nil
		},
	}
}

// ParseStatus accepts board column names case-insensitively, with dashes
// or spaces in place of underscores.
func ParseStatus(s string) (models.AppointmentStatus, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	status := models.AppointmentStatus(norm)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q, expected one of %s", s, statusList())
	}
	return status, nil
}

func statusList() string {
	names := make([]string, len(models.BoardColumns))
	for i, s := range models.BoardColumns {
		names[i] = strings.ToLower(string(s))
	}
	return strings.Join(names, ", ")
}
