package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/state"
)

func (c *cli) menu(ctx context.Context, args []string) error {
	menu := state.MustFromContext(ctx).Menu
	if err := menu.FetchAll(ctx); err != nil {
		return err
	}

	sub, rest := subcommand(args)
	switch sub {
	case "", "list":
	case "add":
		in, err := c.menuInput(ctx, rest)
		if err != nil {
			return err
		}
		if _, err := menu.Add(ctx, in); err != nil {
			return err
		}
	case "update":
		if len(rest) < 1 {
			return errUsage
		}
		patch, err := c.menuPatch(ctx, rest[1:])
		if err != nil {
			return err
		}
		if err := menu.Update(ctx, rest[0], patch); err != nil {
			return err
		}
	case "delete":
		if len(rest) != 1 {
			return errUsage
		}
		if err := menu.Delete(ctx, rest[0]); err != nil {
			return err
		}
	case "toggle":
		if len(rest) != 1 {
			return errUsage
		}
		if err := menu.ToggleAvailability(ctx, rest[0]); err != nil {
			return err
		}
	case "reviews":
		if len(rest) != 1 {
			return errUsage
		}
		return c.reviews(ctx, rest[0])
	default:
		return errUsage
	}

	st := menu.State()
	w := c.table()
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tQTY\tPRICE\tDISCOUNTED")
	for _, it := range st.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", it.ID, it.Name, it.Status, it.QuantityAvailable,
			it.OriginalPrice.StringFixed(0), it.DiscountedPrice.StringFixed(0))
	}
	fmt.Fprintf(w, "\naverage rating\t%.1f\n", st.AverageRating)
	return w.Flush()
}

func (c *cli) reviews(ctx context.Context, id string) error {
	reviews, err := state.MustFromContext(ctx).Menu.Reviews(ctx, id)
	if err != nil {
		return err
	}
	w := c.table()
	fmt.Fprintln(w, "RATING\tCUSTOMER\tCOMMENT")
	for _, r := range reviews {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.Rating, r.CustomerName, r.Comment)
	}
	return w.Flush()
}

// menuFlags are shared by menu add and menu update.
type menuFlags struct {
	fs                               *flag.FlagSet
	name, description, image         *string
	price, discount, start, end, qty *string
	status                           *string
}

func newMenuFlags(name string) *menuFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &menuFlags{
		fs:          fs,
		name:        fs.String("name", "", "item name"),
		description: fs.String("description", "", "item description"),
		image:       fs.String("image", "", "path of an image to upload"),
		price:       fs.String("price", "", "original price"),
		discount:    fs.String("discount", "", "discounted price"),
		qty:         fs.String("qty", "", "quantity available"),
		start:       fs.String("start", "", "display start time, ISO-8601"),
		end:         fs.String("end", "", "display end time, ISO-8601"),
		status:      fs.String("status", "", "AVAILABLE, UNAVAILABLE or SOLD_OUT"),
	}
}

func (c *cli) menuInput(ctx context.Context, args []string) (models.MenuItemInput, error) {
	f := newMenuFlags("menu add")
	if err := f.fs.Parse(args); err != nil {
		return models.MenuItemInput{}, errUsage
	}
	patch, err := c.patchFrom(ctx, f, func(string) bool { return true })
	if err != nil {
		return models.MenuItemInput{}, err
	}

	var item models.MenuItem
	patch.Apply(&item)
	return models.MenuItemInput{
		Name:              item.Name,
		Description:       item.Description,
		ImageURL:          item.ImageURL,
		OriginalPrice:     item.OriginalPrice,
		DiscountedPrice:   item.DiscountedPrice,
		QuantityAvailable: item.QuantityAvailable,
		DisplayStartTime:  item.DisplayStartTime,
		DisplayEndTime:    item.DisplayEndTime,
	}, nil
}

func (c *cli) menuPatch(ctx context.Context, args []string) (models.MenuItemPatch, error) {
	f := newMenuFlags("menu update")
	if err := f.fs.Parse(args); err != nil {
		return models.MenuItemPatch{}, errUsage
	}
	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return c.patchFrom(ctx, f, func(name string) bool { return set[name] })
}

// patchFrom turns the flags accepted by include into a patch.
func (c *cli) patchFrom(ctx context.Context, f *menuFlags, include func(string) bool) (models.MenuItemPatch, error) {
	var p models.MenuItemPatch
	if include("name") && *f.name != "" {
		p.Name = f.name
	}
	if include("description") && *f.description != "" {
		p.Description = f.description
	}
	for _, m := range []struct {
		flag string
		raw  *string
		dst  **decimal.Decimal
	}{
		{"price", f.price, &p.OriginalPrice},
		{"discount", f.discount, &p.DiscountedPrice},
	} {
		if !include(m.flag) || *m.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(*m.raw)
		if err != nil {
			return p, &models.ValidationError{Field: m.flag, Message: "is not a number"}
		}
		*m.dst = &d
	}
	if include("qty") && *f.qty != "" {
		var n int
		if _, err := fmt.Sscanf(*f.qty, "%d", &n); err != nil {
			return p, &models.ValidationError{Field: "qty", Message: "is not a whole number"}
		}
		p.QuantityAvailable = &n
	}
	for _, m := range []struct {
		flag string
		raw  *string
		dst  **models.Timestamp
	}{
		{"start", f.start, &p.DisplayStartTime},
		{"end", f.end, &p.DisplayEndTime},
	} {
		if !include(m.flag) || *m.raw == "" {
			continue
		}
		ts, err := models.ParseTimestamp(*m.raw)
		if err != nil {
			return p, &models.ValidationError{Field: m.flag, Message: err.Error()}
		}
		*m.dst = &ts
	}
	if include("status") && *f.status != "" {
		st := models.MenuStatus(*f.status)
		if !st.IsValid() {
			return p, &models.ValidationError{Field: "status", Message: "unknown status " + *f.status}
		}
		p.Status = &st
	}
	if include("image") && *f.image != "" {
		url, err := c.upload(ctx, *f.image)
		if err != nil {
			return p, err
		}
		p.ImageURL = &url
	}
	return p, nil
}
