// Package state holds the client-side state of the merchant app: the session,
// the menu, the order list and the withdrawal history.
package state

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/database"
)

type ContextKey string

const appContextKey ContextKey = "app"

// App bundles the containers a front end works with.
type App struct {
	Client      *client.Client
	Session     *Session
	Menu        *Menu
	Orders      *Orders
	Withdrawals *Withdrawals

	log *logrus.Entry
}

type Deps struct {
	Client  *client.Client
	Store   database.KeyStore
	Alerter Alerter
	// Events is optional.
	Events OrderEventSink
	Logger *logrus.Logger
}

// NewApp builds the containers and routes the client's 401 handling into
// App.Logout.
func NewApp(ctx context.Context, deps Deps) *App {
	log := orStandard(deps.Logger)
	alert := orDefault(deps.Alerter, log)

	app := &App{
		Client:      deps.Client,
		Session:     NewSession(ctx, deps.Store, log),
		Menu:        NewMenu(deps.Client, alert, log),
		Orders:      NewOrders(deps.Client, alert, log),
		Withdrawals: NewWithdrawals(deps.Client, alert, log),
		log:         log.WithField("store", "app"),
	}
	if deps.Events != nil {
		app.Orders.PublishTo(deps.Events, func() string { return app.Session.State().ProfileID })
	}
	deps.Client.SetLogoutHandler(func() {
		app.log.Warn("session rejected by server, logging out")
		app.Logout(context.Background())
	})
	return app
}

func (a *App) Login(ctx context.Context, username, password string) error {
	return a.Session.Login(ctx, a.Client, username, password)
}

// Logout ends the session and forgets everything loaded for it.
func (a *App) Logout(ctx context.Context) error {
	err := a.Session.Logout(ctx)
	a.Menu.Reset()
	a.Orders.ResetPagination()
	a.Withdrawals.Reset()
	return err
}

func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey, app)
}

func FromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appContextKey).(*App)
	if !ok || app == nil {
		return nil, ErrNoApp
	}
	return app, nil
}

// MustFromContext is for code that can only run inside an app scope.
func MustFromContext(ctx context.Context) *App {
	app, err := FromContext(ctx)
	if err != nil {
		panic("state.MustFromContext: context carries no *App; wrap it with state.WithApp")
	}
	return app
}
