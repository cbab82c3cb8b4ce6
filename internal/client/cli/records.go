package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/garageboard/internal/client/cache"
	"github.com/iudanet/garageboard/internal/client/conflict"
	"github.com/iudanet/garageboard/internal/client/lookup"
	"github.com/iudanet/garageboard/internal/client/mutation"
	"github.com/iudanet/garageboard/internal/client/records"
	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/validation"
)

// recordKind binds a record type to its editor and display title.
type recordKind[T any] struct {
	resource records.Resource[T]
	heading  func(T) string
	singular string
}

var (
	customerKind = recordKind[models.Customer]{
		resource: records.CustomerRecords,
		heading:  func(c models.Customer) string { return "Customer " + c.Name },
		singular: "customer",
	}
	vehicleKind = recordKind[models.Vehicle]{
		resource: records.VehicleRecords,
		heading:  func(v models.Vehicle) string { return "Vehicle " + v.Label() },
		singular: "vehicle",
	}
)

func (c *Cli) newCustomerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Show, edit and find customer records",
	}
	cmd.AddCommand(
		newShowCmd(c, customerKind),
		newEditCmd(c, customerKind),
		c.newFindCmd(),
	)
	return cmd
}

func (c *Cli) newVehicleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicle",
		Short: "Show and edit vehicle records",
	}
	cmd.AddCommand(
		newShowCmd(c, vehicleKind),
		newEditCmd(c, vehicleKind),
	)
	return cmd
}

func newShowCmd[T any](c *Cli, kind recordKind[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a " + kind.singular + " record",
		Args:  requireArgs(1, "show <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editor, err := editorFor(ctx, c, kind, false)
			if err != nil {
				return err
			}

			v, err := editor.Load(ctx, args[0])
			if err != nil {
				return explain(err)
			}
			return printRecord(ctx, c, kind, args[0], v)
		},
	}
}

func newEditCmd[T any](c *Cli, kind recordKind[T]) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <id> --set field=value...",
		Short: "Change fields of a " + kind.singular + " record",
		Long: "Change fields of a record. The write carries the entity tag of the last\n" +
			"seen version; if someone else changed the record since, the conflict is\n" +
			"resolved according to on_conflict.",
		Args: requireArgs(1, "edit <id> --set field=value..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var zero T
			patch, err := ParsePatch(sets, zero)
			if err != nil {
				return err
			}

			editor, err := editorFor(ctx, c, kind, true)
			if err != nil {
				return err
			}

			v, err := editor.Edit(ctx, args[0], patch)
			if err != nil {
				if mutation.IsHandled(err) {
					c.println("Edit cancelled, the record was left unchanged.")
					return nil
				}
				return explain(err)
			}

			fields, err := models.ToFields(v)
			if err != nil {
				return err
			}
			if conflict.Changed(conflict.Diff(patch, fields, nil)) {
				// Конфликт решен в пользу сервера
				c.println("Your changes were discarded, showing the server version.")
			} else {
				c.println("✓ Saved")
			}
			return printRecord(ctx, c, kind, args[0], v)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")
	return cmd
}

func (c *Cli) newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <phone>",
		Short: "Find customers by phone number",
		Args:  requireArgs(1, "find <phone>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(validation.PhoneDigits(args[0])) < lookup.MinPhoneDigits {
				return fmt.Errorf("enter at least %d digits of the phone number", lookup.MinPhoneDigits)
			}
			client, _, err := c.client(ctx)
			if err != nil {
				return err
			}

			found, err := lookup.NewCustomers(client, c.cfg.LookupDebounce, c.logger).ByPhone(ctx, args[0])
			if err != nil {
				return explain(err)
			}
			if len(found) == 0 {
				c.println("No customers found.")
				return nil
			}
			for _, cust := range found {
				c.printf("%s  %s  %s\n", labelStyle.Render(cust.ID), cust.Name, mutedStyle.Render(cust.Phone))
			}
			return nil
		},
	}
}

func editorFor[T any](ctx context.Context, c *Cli, kind recordKind[T], negotiate bool) (*records.Editor[T], error) {
	client, _, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	opts := []records.Option{records.WithMetrics(c.metrics)}
	if negotiate {
		neg, err := c.negotiator()
		if err != nil {
			return nil, err
		}
		opts = append(opts, records.WithNegotiator(neg))
	}
	return records.NewEditor(client, c.cache, kind.resource, c.logger, opts...), nil
}

func printRecord[T any](ctx context.Context, c *Cli, kind recordKind[T], id string, v T) error {
	fields, err := models.ToFields(v)
	if err != nil {
		return err
	}
	etag := c.cache.Token(ctx, cache.Key(kind.resource.Name, id))
	c.printf("%s", RenderRecord(kind.heading(v), fields, kind.resource.Labels, etag))
	return nil
}
