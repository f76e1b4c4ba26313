package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/state"
)

var orderActions = map[string]models.OrderStatus{
	"accept": models.OrderAccepted,
	"ready":  models.OrderReadyForPickup,
	"cancel": models.OrderCancelled,
}

func (c *cli) orders(ctx context.Context, args []string) error {
	orders := state.MustFromContext(ctx).Orders
	sub, rest := subcommand(args)

	switch sub {
	case "", "list":
		fs := flag.NewFlagSet("orders list", flag.ContinueOnError)
		pages := fs.Int("pages", 1, "number of pages to load")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		if err := orders.Refresh(ctx); err != nil {
			return err
		}
		for i := 1; i < *pages && orders.State().HasMore; i++ {
			if err := orders.LoadMore(ctx); err != nil {
				return err
			}
		}
	case "accept", "ready", "cancel":
		if len(rest) != 1 {
			return errUsage
		}
		if err := orders.Refresh(ctx); err != nil {
			return err
		}
		if err := orders.UpdateStatus(ctx, rest[0], orderActions[sub]); err != nil {
			return err
		}
	case "complete":
		if len(rest) != 2 {
			return errUsage
		}
		if err := orders.Refresh(ctx); err != nil {
			return err
		}
		if err := orders.CompleteOrder(ctx, rest[0], rest[1]); err != nil {
			return err
		}
	default:
		return errUsage
	}

	w := c.table()
	fmt.Fprintln(w, "ORDER\tCUSTOMER\tSTATUS\tTOTAL\tITEMS\tCREATED")
	for _, o := range orders.State().Orders {
		items := make([]string, 0, len(o.OrderItems))
		for _, it := range o.OrderItems {
			items = append(items, fmt.Sprintf("%dx %s", it.Quantity, it.MenuItemName))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", o.OrderID, o.CustomerName, o.Status,
			o.TotalAmount.StringFixed(0), strings.Join(items, ", "), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
