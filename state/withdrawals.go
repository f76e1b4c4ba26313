package state

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/models"
)

type WithdrawalAPI interface {
	ListMyWithdrawals(ctx context.Context, page, limit int) ([]models.Withdrawal, error)
	RequestWithdrawal(ctx context.Context, req models.WithdrawalRequest) (*models.Withdrawal, error)
}

type WithdrawalsState struct {
	Items       []models.Withdrawal
	Page        int
	HasMore     bool
	Loading     bool
	Refreshing  bool
	LoadingMore bool
}

// Withdrawals is the merchant's withdrawal history. The server is
// authoritative; pages are appended as they load and a refresh starts over.
type Withdrawals struct {
	api   WithdrawalAPI
	alert Alerter
	log   *logrus.Entry
	subs  observers[WithdrawalsState]

	mu          sync.Mutex
	items       []models.Withdrawal
	page        int
	hasMore     bool
	loading     bool
	refreshing  bool
	loadingMore bool
	seq         uint64
	cancel      context.CancelFunc
}

func NewWithdrawals(api WithdrawalAPI, alert Alerter, log *logrus.Logger) *Withdrawals {
	log = orStandard(log)
	return &Withdrawals{
		api:     api,
		alert:   orDefault(alert, log),
		log:     log.WithField("store", "withdrawals"),
		items:   []models.Withdrawal{},
		page:    1,
		hasMore: true,
	}
}

func (w *Withdrawals) State() WithdrawalsState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Withdrawals) Subscribe(fn func(WithdrawalsState)) (unsubscribe func()) {
	return w.subs.subscribe(fn)
}

// FetchPage loads page (one-based). The first page replaces the list, later
// pages are appended.
func (w *Withdrawals) FetchPage(ctx context.Context, page int, refresh bool) error {
	if page < 1 {
		page = 1
	}
	var seq uint64
	w.mutate(func() {
		if w.cancel != nil {
			w.cancel()
		}
		ctx, w.cancel = context.WithCancel(ctx)
		w.seq++
		seq = w.seq
		w.loading, w.refreshing, w.loadingMore = false, false, false
		switch {
		case page == 1 && refresh:
			w.refreshing = true
		case page == 1:
			w.loading = true
		default:
			w.loadingMore = true
		}
	})

	list, err := w.api.ListMyWithdrawals(ctx, page, PageSize)

	stale := false
	w.mutate(func() {
		if seq != w.seq {
			stale = true
			return
		}
		w.cancel()
		w.cancel = nil
		w.loading, w.refreshing, w.loadingMore = false, false, false
		if err != nil {
			w.hasMore = false
			return
		}
		if page == 1 {
			w.items = slices.Clone(list)
			if w.items == nil {
				w.items = []models.Withdrawal{}
			}
		} else {
			w.items = append(w.items, list...)
		}
		w.page = page + 1
		w.hasMore = len(list) == PageSize
	})
	if stale {
		return superseded(err)
	}
	if err != nil {
		w.log.WithError(err).WithField("page", page).Error("failed to fetch withdrawals")
		w.alert.Alert(titleError, "Failed to load withdrawal history.")
		return fmt.Errorf("fetch withdrawals page %d: %w", page, err)
	}
	return nil
}

func (w *Withdrawals) LoadMore(ctx context.Context) error {
	w.mu.Lock()
	if !w.hasMore || w.loading || w.refreshing || w.loadingMore {
		w.mu.Unlock()
		return nil
	}
	page := w.page
	w.mu.Unlock()
	return w.FetchPage(ctx, page, false)
}

func (w *Withdrawals) Refresh(ctx context.Context) error {
	return w.FetchPage(ctx, 1, true)
}

// Request submits a withdrawal and reloads the history.
func (w *Withdrawals) Request(ctx context.Context, req models.WithdrawalRequest) (*models.Withdrawal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	created, err := w.api.RequestWithdrawal(ctx, req)
	if err != nil {
		w.log.WithError(err).Error("failed to request withdrawal")
		w.alert.Alert(titleError, client.Message(err))
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}
	w.alert.Alert(titleSuccess, "Withdrawal request submitted.")
	if err := w.Refresh(ctx); err != nil {
		w.log.WithError(err).Warn("failed to reload withdrawals after request")
	}
	return created, nil
}

func (w *Withdrawals) Reset() {
	w.mutate(func() {
		if w.cancel != nil {
			w.cancel()
			w.cancel = nil
		}
		w.seq++
		w.items = []models.Withdrawal{}
		w.page = 1
		w.hasMore = true
		w.loading, w.refreshing, w.loadingMore = false, false, false
	})
}

func (w *Withdrawals) mutate(fn func()) {
	w.mu.Lock()
	fn()
	snap := w.snapshot()
	w.mu.Unlock()
	w.subs.publish(snap)
}

func (w *Withdrawals) snapshot() WithdrawalsState {
	return WithdrawalsState{
		Items:       slices.Clone(w.items),
		Page:        w.page,
		HasMore:     w.hasMore,
		Loading:     w.loading,
		Refreshing:  w.refreshing,
		LoadingMore: w.loadingMore,
	}
}
