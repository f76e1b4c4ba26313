package state

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/database"
)

func TestUnauthorizedResponseLogsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"expired"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	store := database.NewMemoryStore()
	store.Set(ctx, database.KeySessionToken, "t1")
	store.Set(ctx, database.KeyProfileID, "p1")

	c := client.New(client.Options{BaseURL: srv.URL, Tokens: store})
	alerts := &recordingAlerter{}
	app := NewApp(ctx, Deps{Client: c, Store: store, Alerter: alerts})
	waitReady(t, app.Session)
	if !app.Session.State().IsAuthenticated {
		t.Fatal("expected bootstrapped session")
	}

	err := app.Menu.FetchAll(ctx)
	if !client.IsUnauthorized(err) {
		t.Fatalf("expected the caller to still see the 401, got %v", err)
	}
	if app.Session.State().IsAuthenticated {
		t.Error("expected 401 to log the session out")
	}
	if _, ok, _ := store.Get(ctx, database.KeySessionToken); ok {
		t.Error("expected token removed from the store")
	}
}

func TestAppContext(t *testing.T) {
	if _, err := FromContext(context.Background()); err != ErrNoApp {
		t.Errorf("expected ErrNoApp, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected MustFromContext to panic outside an app scope")
		}
	}()
	MustFromContext(context.Background())
}

func TestAppContextRoundTrip(t *testing.T) {
	app := &App{}
	ctx := WithApp(context.Background(), app)
	if got := MustFromContext(ctx); got != app {
		t.Error("expected the same app back")
	}
}
