package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/database"
	"github.com/ray-remotestate/storefront/handlers"
	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/state"
)

var testSecret = []byte("sandbox-test-secret")

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newSandbox(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	b := handlers.NewBackend(testSecret, quietLogger())
	sellerID, err := b.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(SetupRoutes(b, testSecret, quietLogger()).Router)
	t.Cleanup(srv.Close)
	return srv, sellerID
}

type alerts struct{ titles []string }

func (a *alerts) Alert(title, message string) { a.titles = append(a.titles, title) }

func newApp(t *testing.T, srv *httptest.Server) (*state.App, database.KeyStore) {
	t.Helper()
	store := database.NewMemoryStore()
	c := client.New(client.Options{BaseURL: srv.URL + "/api", Tokens: store, Logger: quietLogger()})
	app := state.NewApp(context.Background(), state.Deps{Client: c, Store: store, Alerter: &alerts{}, Logger: quietLogger()})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := app.Session.Wait(ctx); err != nil {
		t.Fatalf("session bootstrap: %v", err)
	}
	return app, store
}

func TestHealth(t *testing.T) {
	srv, _ := newSandbox(t)
	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newSandbox(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Token abc"},
		{"forged", "Bearer eyJhbGciOiJIUzI1NiJ9.e30.c2lnbmF0dXJl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/menu-items/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			res, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			res.Body.Close()
			if res.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", res.StatusCode)
			}
		})
	}
}

func TestMerchantFlow(t *testing.T) {
	srv, sellerID := newSandbox(t)
	app, store := newApp(t, srv)
	ctx := context.Background()

	if err := app.Login(ctx, handlers.DemoUsername, "wrong-password"); err == nil {
		t.Fatal("expected bad credentials to fail")
	}
	if err := app.Login(ctx, handlers.DemoUsername, handlers.DemoPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	sess := app.Session.State()
	if !sess.IsAuthenticated || sess.ProfileID != sellerID {
		t.Fatalf("unexpected session %+v", sess)
	}
	if token, _, _ := store.Get(ctx, database.KeySessionToken); token != sess.Token {
		t.Error("expected token persisted")
	}

	t.Run("menu", func(t *testing.T) {
		if err := app.Menu.FetchAll(ctx); err != nil {
			t.Fatalf("fetch menu: %v", err)
		}
		st := app.Menu.State()
		if len(st.Items) != 3 || st.AverageRating != 4.5 {
			t.Fatalf("unexpected menu %d items, rating %v", len(st.Items), st.AverageRating)
		}

		created, err := app.Menu.Add(ctx, models.MenuItemInput{
			Name:              "Donut Box",
			OriginalPrice:     decimal.NewFromInt(50000),
			DiscountedPrice:   decimal.NewFromInt(20000),
			QuantityAvailable: 4,
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if strings.HasPrefix(created.ID, "local-") {
			t.Errorf("expected server id, got %s", created.ID)
		}
		if first := app.Menu.State().Items[0]; first.ID != created.ID {
			t.Errorf("expected new item first, got %s", first.ID)
		}

		if err := app.Menu.ToggleAvailability(ctx, created.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if item, _ := app.Menu.Item(created.ID); item.Status != models.MenuUnavailable {
			t.Errorf("expected UNAVAILABLE, got %s", item.Status)
		}

		if err := app.Menu.Delete(ctx, created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := app.Menu.FetchAll(ctx); err != nil {
			t.Fatal(err)
		}
		if _, ok := app.Menu.Item(created.ID); ok {
			t.Error("expected deleted item gone after refetch")
		}
	})

	t.Run("orders", func(t *testing.T) {
		if err := app.Orders.FetchPage(ctx, 1, true); err != nil {
			t.Fatalf("fetch orders: %v", err)
		}
		if st := app.Orders.State(); len(st.Orders) != 10 || !st.HasMore {
			t.Fatalf("expected a full first page, got %d (hasMore %v)", len(st.Orders), st.HasMore)
		}
		if err := app.Orders.LoadMore(ctx); err != nil {
			t.Fatalf("load more: %v", err)
		}
		if st := app.Orders.State(); len(st.Orders) != 12 || st.HasMore {
			t.Fatalf("expected all 12 orders, got %d (hasMore %v)", len(st.Orders), st.HasMore)
		}

		if err := app.Orders.UpdateStatus(ctx, "ord-002", models.OrderReadyForPickup); err != nil {
			t.Fatalf("mark ready: %v", err)
		}
		if o, _ := app.Orders.Order("ord-002"); o.Status != models.OrderReadyForPickup {
			t.Errorf("expected READY_FOR_PICKUP, got %s", o.Status)
		}

		if err := app.Orders.CompleteOrder(ctx, "ord-004", "000000"); err == nil {
			t.Error("expected a wrong verification code to fail")
		} else if client.Message(err) != "Invalid verification code" {
			t.Errorf("unexpected message %q", client.Message(err))
		}
		if o, _ := app.Orders.Order("ord-004"); o.Status != models.OrderReadyForPickup {
			t.Errorf("expected status restored from server, got %s", o.Status)
		}
		if err := app.Orders.CompleteOrder(ctx, "ord-004", handlers.DemoVerificationCode); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if o, _ := app.Orders.Order("ord-004"); o.Status != models.OrderCompleted {
			t.Errorf("expected COMPLETED, got %s", o.Status)
		}

		if err := app.Orders.UpdateStatus(ctx, "ord-005", models.OrderCancelled); err == nil {
			t.Error("expected cancelling a completed order to fail")
		}
		if o, _ := app.Orders.Order("ord-005"); o.Status != models.OrderCompleted {
			t.Errorf("expected COMPLETED after failed cancel, got %s", o.Status)
		}
	})

	t.Run("withdrawals", func(t *testing.T) {
		if err := app.Withdrawals.FetchPage(ctx, 1, true); err != nil {
			t.Fatalf("fetch withdrawals: %v", err)
		}
		if n := len(app.Withdrawals.State().Items); n != 1 {
			t.Fatalf("expected the seeded withdrawal, got %d", n)
		}
		_, err := app.Withdrawals.Request(ctx, models.WithdrawalRequest{
			Amount:        decimal.NewFromInt(50000),
			BankName:      "Mandiri",
			AccountNumber: "9876543210",
		})
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		items := app.Withdrawals.State().Items
		if len(items) != 2 || items[0].Status != models.WithdrawalPending {
			t.Fatalf("expected the new pending request first, got %+v", items)
		}

		_, err = app.Withdrawals.Request(ctx, models.WithdrawalRequest{
			Amount:        decimal.NewFromInt(100000000),
			BankName:      "Mandiri",
			AccountNumber: "9876543210",
		})
		if client.Message(err) != "Insufficient balance" {
			t.Errorf("expected insufficient balance, got %v", err)
		}
	})

	t.Run("account", func(t *testing.T) {
		seller, err := app.Client.GetMySeller(ctx)
		if err != nil {
			t.Fatal(err)
		}
		seller.StoreDescription = "Fresh every evening"
		updated, err := app.Client.UpdateSeller(ctx, sellerID, *seller)
		if err != nil {
			t.Fatal(err)
		}
		if updated.StoreDescription != "Fresh every evening" {
			t.Errorf("unexpected seller %+v", updated)
		}

		err = app.Client.ChangePassword(ctx, models.PasswordChange{
			OldPassword:        "not-it",
			NewPassword:        "another123",
			ConfirmNewPassword: "another123",
		})
		if client.Message(err) != "Old password is incorrect" {
			t.Errorf("expected old password rejection, got %v", err)
		}
	})

	t.Run("upload", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\nfake image")
		url, err := app.Client.UploadImage(ctx, "bag.png", bytes.NewReader(png))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		res, err := http.Get(url)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		got, _ := io.ReadAll(res.Body)
		if !bytes.Equal(got, png) || res.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected upload content %q (%s)", got, res.Header.Get("Content-Type"))
		}

		if _, err := app.Client.UploadImageBase64(ctx, png); err != nil {
			t.Errorf("base64 upload: %v", err)
		}
	})

	if err := app.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if app.Session.State().IsAuthenticated || len(app.Orders.State().Orders) != 0 {
		t.Error("expected logout to clear the session and loaded orders")
	}
}

func TestRejectedTokenLogsOut(t *testing.T) {
	srv, _ := newSandbox(t)
	app, store := newApp(t, srv)
	ctx := context.Background()

	if err := app.Session.SetSession(ctx, "not-a-jwt", "p1"); err != nil {
		t.Fatal(err)
	}
	err := app.Menu.FetchAll(ctx)
	if !client.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if app.Session.State().IsAuthenticated {
		t.Error("expected the session to end")
	}
	if _, ok, _ := store.Get(ctx, database.KeySessionToken); ok {
		t.Error("expected token removed")
	}
}

func TestPagingOutOfRange(t *testing.T) {
	srv, _ := newSandbox(t)
	app, _ := newApp(t, srv)
	ctx := context.Background()
	if err := app.Login(ctx, handlers.DemoUsername, handlers.DemoPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	huge := 922337203685477581
	orders, err := app.Client.ListMyOrders(ctx, huge, 10)
	if err != nil || len(orders) != 0 {
		t.Errorf("expected an empty orders page, got %d orders (%v)", len(orders), err)
	}
	withdrawals, err := app.Client.ListMyWithdrawals(ctx, huge, 10)
	if err != nil || len(withdrawals) != 0 {
		t.Errorf("expected an empty withdrawals page, got %d (%v)", len(withdrawals), err)
	}
	if orders, err := app.Client.ListMyOrders(ctx, 1, 10); err != nil || len(orders) != 2 {
		t.Errorf("expected the last 2 orders on the second page, got %d (%v)", len(orders), err)
	}
}
