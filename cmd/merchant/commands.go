package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/geocode"
	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/state"
)

var (
	errUsage       = errors.New("usage")
	errNotLoggedIn = errors.New("not logged in, run: merchant login <username> <password>")
)

type cli struct {
	app     *state.App
	geocode *geocode.Client
	out     io.Writer
	log     *logrus.Logger

	alerted bool
}

// Alert prints container alerts. Errors reported this way are not printed
// again on exit.
func (c *cli) Alert(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	if title != "Success" {
		c.alerted = true
	}
}

func (c *cli) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "register":
		return c.register(ctx, args)
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		if err := state.MustFromContext(ctx).Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "logged in as", args[0])
		return nil
	case "logout":
		return state.MustFromContext(ctx).Logout(ctx)
	case "geocode":
		return c.lookup(ctx, args)
	}

	if !state.MustFromContext(ctx).Session.State().IsAuthenticated {
		return errNotLoggedIn
	}
	switch name {
	case "whoami":
		return c.whoami(ctx)
	case "store":
		return c.store(ctx, args)
	case "menu":
		return c.menu(ctx, args)
	case "orders":
		return c.orders(ctx, args)
	case "withdrawals":
		return c.withdrawals(ctx, args)
	case "upload":
		if len(args) != 1 {
			return errUsage
		}
		url, err := c.upload(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, url)
		return nil
	}
	return errUsage
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var reg models.SellerRegistration
	fs.StringVar(&reg.Username, "username", "", "login name")
	fs.StringVar(&reg.Password, "password", "", "password, at least 6 characters")
	fs.StringVar(&reg.FullName, "name", "", "owner's full name")
	fs.StringVar(&reg.Email, "email", "", "contact email")
	fs.StringVar(&reg.PhoneNumber, "phone", "", "contact phone number")
	fs.StringVar(&reg.StoreName, "store", "", "store name")
	fs.StringVar(&reg.StoreDescription, "description", "", "store description")
	fs.StringVar(&reg.Address, "address", "", "street address, looked up from -lat/-lon when empty")
	fs.Float64Var(&reg.Latitude, "lat", 0, "store latitude")
	fs.Float64Var(&reg.Longitude, "lon", 0, "store longitude")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if reg.Address == "" {
		if p := c.geocode.Reverse(ctx, reg.Latitude, reg.Longitude); p != nil {
			reg.Address = p.DisplayName
		}
	}

	app := state.MustFromContext(ctx)
	seller, err := app.Client.RegisterSeller(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "store %q registered (%s)\n", seller.StoreName, seller.ID)
	return app.Login(ctx, reg.Username, reg.Password)
}

func (c *cli) whoami(ctx context.Context) error {
	app := state.MustFromContext(ctx)
	me, err := app.Client.GetMe(ctx)
	if err != nil {
		return err
	}
	var seller *models.Seller
	if id := app.Session.State().ProfileID; id != "" {
		seller, err = app.Client.GetSeller(ctx, id)
	} else {
		seller, err = app.Client.GetMySeller(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s) <%s>\n", me.FullName, me.Username, me.Email)
	fmt.Fprintf(c.out, "store: %s, %s\n", seller.StoreName, seller.Address)
	return nil
}

func (c *cli) store(ctx context.Context, args []string) error {
	app := state.MustFromContext(ctx)
	sub, rest := subcommand(args)
	seller, err := app.Client.GetMySeller(ctx)
	if err != nil {
		return err
	}

	switch sub {
	case "", "show":
	case "update":
		fs := flag.NewFlagSet("store update", flag.ContinueOnError)
		fs.StringVar(&seller.StoreName, "store", seller.StoreName, "store name")
		fs.StringVar(&seller.StoreDescription, "description", seller.StoreDescription, "store description")
		fs.StringVar(&seller.Address, "address", seller.Address, "street address")
		fs.Float64Var(&seller.Latitude, "lat", seller.Latitude, "store latitude")
		fs.Float64Var(&seller.Longitude, "lon", seller.Longitude, "store longitude")
		image := fs.String("image", "", "path of a new store image")
		locate := fs.Bool("locate", false, "replace the address with the one found at -lat/-lon")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		if *locate {
			if p := c.geocode.Reverse(ctx, seller.Latitude, seller.Longitude); p != nil {
				seller.Address = p.DisplayName
			} else {
				c.log.Warn("no address found for the given coordinates, keeping the current one")
			}
		}
		if *image != "" {
			if seller.ImageURL, err = c.upload(ctx, *image); err != nil {
				return err
			}
		}
		if seller, err = app.Client.UpdateMySeller(ctx, *seller); err != nil {
			return err
		}
		if err := app.Session.UpdateProfileID(ctx, seller.ID); err != nil {
			return err
		}
	default:
		return errUsage
	}

	w := c.table()
	fmt.Fprintf(w, "id\t%s\n", seller.ID)
	fmt.Fprintf(w, "name\t%s\n", seller.StoreName)
	fmt.Fprintf(w, "description\t%s\n", seller.StoreDescription)
	fmt.Fprintf(w, "address\t%s\n", seller.Address)
	fmt.Fprintf(w, "location\t%.6f, %.6f\n", seller.Latitude, seller.Longitude)
	return w.Flush()
}

func (c *cli) lookup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return errUsage
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return errUsage
	}
	p := c.geocode.Reverse(ctx, lat, lon)
	if p == nil {
		return errors.New("no address found")
	}
	fmt.Fprintln(c.out, p.DisplayName)
	return nil
}

func (c *cli) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return state.MustFromContext(ctx).Client.UploadImage(ctx, filepath.Base(path), f)
}

func (c *cli) withdrawals(ctx context.Context, args []string) error {
	wd := state.MustFromContext(ctx).Withdrawals
	sub, rest := subcommand(args)
	switch sub {
	case "", "list":
		fs := flag.NewFlagSet("withdrawals list", flag.ContinueOnError)
		pages := fs.Int("pages", 1, "number of pages to load")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		if err := wd.Refresh(ctx); err != nil {
			return err
		}
		for i := 1; i < *pages && wd.State().HasMore; i++ {
			if err := wd.LoadMore(ctx); err != nil {
				return err
			}
		}
	case "request":
		fs := flag.NewFlagSet("withdrawals request", flag.ContinueOnError)
		amount := fs.String("amount", "", "amount to withdraw")
		var req models.WithdrawalRequest
		fs.StringVar(&req.BankName, "bank", "", "bank name")
		fs.StringVar(&req.AccountNumber, "account", "", "account number")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		var err error
		if req.Amount, err = decimal.NewFromString(*amount); err != nil {
			return &models.ValidationError{Field: "amount", Message: "is not a number"}
		}
		if _, err := wd.Request(ctx, req); err != nil {
			return err
		}
	default:
		return errUsage
	}

	w := c.table()
	fmt.Fprintln(w, "ID\tAMOUNT\tBANK\tACCOUNT\tSTATUS\tREQUESTED")
	for _, it := range wd.State().Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Amount.StringFixed(2), it.BankName, it.AccountNumber, it.Status, it.RequestDate.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
