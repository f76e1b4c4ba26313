// Command merchant is the terminal front end of the storefront: it signs the
// merchant in and drives the menu, order and withdrawal state.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/config"
	"github.com/ray-remotestate/storefront/database"
	"github.com/ray-remotestate/storefront/events"
	"github.com/ray-remotestate/storefront/geocode"
	"github.com/ray-remotestate/storefront/state"
)

const usage = `usage: merchant <command> [arguments]

commands:
  register     create a seller account and store
  login        sign in: login <username> <password>
  logout       end the session
  whoami       show the signed-in account and store
  store        show | update the store profile
  menu         list | add | update | delete | toggle | reviews
  orders       list | accept | ready | cancel | complete
  withdrawals  list | request
  upload       upload <image file>
  geocode      geocode <lat> <lon>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	log, err := cfg.Logger()
	if err != nil {
		logrus.Fatalf("invalid log level, error: %v", err)
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open keystore, error: %v", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	ui := &cli{
		geocode: geocode.New(cfg.GeocodeURL, cfg.GeocodeUserAgent, log),
		out:     os.Stdout,
		log:     log,
	}
	deps := state.Deps{
		Client: client.New(client.Options{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.RequestTimeout,
			Tokens:  store,
			Logger:  log,
		}),
		Store:   store,
		Alerter: ui,
		Logger:  log,
	}
	if cfg.AMQPURL != "" {
		pub, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.WithError(err).Warn("order events disabled")
		} else {
			defer pub.Close()
			deps.Events = pub
		}
	}

	app := state.NewApp(ctx, deps)
	if err := app.Session.Wait(ctx); err != nil {
		log.Fatalf("failed to restore session, error: %v", err)
	}
	ui.app = app

	if err := ui.run(state.WithApp(ctx, app), os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if !ui.alerted {
			fmt.Fprintln(os.Stderr, "error:", client.Message(err))
		}
		os.Exit(1)
	}
}
