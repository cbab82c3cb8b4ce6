package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/garageboard/internal/client/board"
	"github.com/iudanet/garageboard/internal/client/live"
	"github.com/iudanet/garageboard/internal/client/notify"
	"github.com/iudanet/garageboard/pkg/api"
)

var eventTitles = map[string]string{
	api.EventAppointmentMoved: "Card moved",
	api.EventCustomerUpdated:  "Customer updated",
	api.EventVehicleUpdated:   "Vehicle updated",
}

func (c *Cli) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow board changes made by other operators",
		Long:  "Show the board and redraw it whenever the server reports a change. Stops on Ctrl+C.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, session, err := c.client(ctx)
			if err != nil {
				return err
			}

			store, err := c.loadBoard(ctx, client)
			if err != nil {
				return err
			}
			loader := board.NewLoader(client, store, c.logger)
			c.printf("%s", RenderBoard(store.Snapshot()))

			connects := 0
			watcher := live.NewWatcher(client.BaseURL(), session.Token, c.logger,
				live.WithOnConnect(func(ctx context.Context) {
					connects++
					if connects == 1 {
						c.notifier.Notify(ctx, notify.Notification{Type: notify.TypeInfo, Title: "Watching the board"})
						return
					}
					// После переподключения могли пропустить события
					c.notifier.Notify(ctx, notify.Notification{Type: notify.TypeInfo, Title: "Reconnected"})
					c.redraw(ctx, loader, store)
				}),
			)

			err = watcher.Watch(ctx, func(ctx context.Context, ev api.BoardEvent) {
				title, ok := eventTitles[ev.Type]
				if !ok {
					title = ev.Type
				}
				c.notifier.Notify(ctx, notify.Notification{
					Type:    notify.TypeInfo,
					Title:   title,
					Message: fmt.Sprintf("%s (version %d)", ev.EntityID, ev.Version),
				})
				if ev.Type == api.EventAppointmentMoved {
					c.redraw(ctx, loader, store)
				}
			})
			if errors.Is(err, live.ErrUnauthorized) {
				return fmt.Errorf("%w (run 'garageboard login' again)", err)
			}
			return err
		},
	}
}

func (c *Cli) redraw(ctx context.Context, loader *board.Loader, store *board.Store) {
	if err := loader.Refresh(ctx); err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("Board refresh failed", "error", err)
		}
		return
	}
	if err := c.store.SaveLastBoardRefresh(ctx, store.Snapshot().LastUpdated.Unix()); err != nil {
		c.logger.Warn("Failed to save board refresh time", "error", err)
	}
	c.printf("\n%s", RenderBoard(store.Snapshot()))
}
