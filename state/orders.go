package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/models"
)

// PageSize is the number of orders requested per page.
const PageSize = 10

type OrderAPI interface {
	ListMyOrders(ctx context.Context, page, size int) ([]models.Order, error)
	MarkOrderReady(ctx context.Context, orderID string) error
	AcceptOrder(ctx context.Context, orderID string) error
	CancelOrder(ctx context.Context, orderID string) error
	CompleteOrder(ctx context.Context, orderID, verificationCode string) error
}

// OrderEventSink receives every status transition the merchant makes.
type OrderEventSink interface {
	PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error
}

type OrdersState struct {
	Orders      []models.Order
	Page        int
	HasMore     bool
	Loading     bool
	Refreshing  bool
	LoadingMore bool
}

// pendingPatch is an optimistic status change waiting for the server.
type pendingPatch struct {
	prev   models.Order
	status models.OrderStatus
}

// Orders keeps the merchant's orders, loaded page by page into a keyed
// collection so overlapping pages never duplicate an order.
type Orders struct {
	api      OrderAPI
	alert    Alerter
	log      *logrus.Entry
	subs     observers[OrdersState]
	events   OrderEventSink
	sellerID func() string

	mu          sync.Mutex
	orders      *orderSet
	pending     map[string]pendingPatch
	page        int
	hasMore     bool
	loading     bool
	refreshing  bool
	loadingMore bool
	seq         uint64
	cancel      context.CancelFunc
}

func NewOrders(api OrderAPI, alert Alerter, log *logrus.Logger) *Orders {
	log = orStandard(log)
	return &Orders{
		api:     api,
		alert:   orDefault(alert, log),
		log:     log.WithField("store", "orders"),
		orders:  newOrderSet(),
		pending: make(map[string]pendingPatch),
		page:    1,
		hasMore: true,
	}
}

// PublishTo sends status transitions to sink. sellerID, when set, stamps each
// event with the current seller profile.
func (o *Orders) PublishTo(sink OrderEventSink, sellerID func() string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = sink
	o.sellerID = sellerID
}

func (o *Orders) State() OrdersState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

func (o *Orders) Subscribe(fn func(OrdersState)) (unsubscribe func()) {
	return o.subs.subscribe(fn)
}

func (o *Orders) Order(id string) (models.Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orders.get(id)
}

// IsPending reports whether the order carries an unconfirmed status change.
func (o *Orders) IsPending(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.pending[id]
	return ok
}

// FetchPage loads pageNumber (one-based) and merges it into the collection.
// refresh marks a user initiated reload of the first page.
func (o *Orders) FetchPage(ctx context.Context, pageNumber int, refresh bool) error {
	_, err := o.fetchPage(ctx, pageNumber, refresh)
	return err
}

// LoadMore fetches the next page unless the last page was short or a fetch is
// already running.
func (o *Orders) LoadMore(ctx context.Context) error {
	o.mu.Lock()
	if !o.hasMore || o.loading || o.refreshing || o.loadingMore {
		o.mu.Unlock()
		return nil
	}
	page := o.page
	o.mu.Unlock()
	return o.FetchPage(ctx, page, false)
}

func (o *Orders) Refresh(ctx context.Context) error {
	return o.FetchPage(ctx, 1, true)
}

func (o *Orders) fetchPage(ctx context.Context, pageNumber int, refresh bool) ([]models.Order, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	var seq uint64
	o.mutate(func() {
		if o.cancel != nil {
			o.cancel()
		}
		ctx, o.cancel = context.WithCancel(ctx)
		o.seq++
		seq = o.seq
		o.loading, o.refreshing, o.loadingMore = false, false, false
		switch {
		case pageNumber == 1 && refresh:
			o.refreshing = true
		case pageNumber == 1:
			o.loading = true
		default:
			o.loadingMore = true
		}
	})

	list, err := o.api.ListMyOrders(ctx, pageNumber-1, PageSize)

	stale := false
	o.mutate(func() {
		if seq != o.seq {
			stale = true
			return
		}
		o.cancel()
		o.cancel = nil
		o.loading, o.refreshing, o.loadingMore = false, false, false
		o.page = pageNumber + 1
		if err != nil {
			o.hasMore = false
			return
		}
		o.orders.merge(list)
		o.hasMore = len(list) == PageSize
	})
	if stale {
		return nil, superseded(err)
	}
	if err != nil {
		o.log.WithError(err).WithField("page", pageNumber).Error("failed to fetch orders")
		o.alert.Alert(titleError, "Failed to load orders.")
		return nil, fmt.Errorf("fetch orders page %d: %w", pageNumber, err)
	}
	return list, nil
}

// UpdateStatus moves the order to status through the matching endpoint.
// Statuses without an endpoint only change locally until the next refresh.
func (o *Orders) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	var call func(context.Context) error
	switch status {
	case models.OrderReadyForPickup:
		call = func(ctx context.Context) error { return o.api.MarkOrderReady(ctx, orderID) }
	case models.OrderCancelled:
		call = func(ctx context.Context) error { return o.api.CancelOrder(ctx, orderID) }
	case models.OrderAccepted:
		call = func(ctx context.Context) error { return o.api.AcceptOrder(ctx, orderID) }
	default:
		o.log.WithFields(logrus.Fields{"order_id": orderID, "status": status}).Warn("no endpoint for status")
	}
	return o.transition(ctx, orderID, status, call)
}

// CompleteOrder hands the order to the customer after checking their code.
func (o *Orders) CompleteOrder(ctx context.Context, orderID, verificationCode string) error {
	if verificationCode == "" {
		return &models.ValidationError{Field: "verificationCode", Message: "is required"}
	}
	return o.transition(ctx, orderID, models.OrderCompleted, func(ctx context.Context) error {
		return o.api.CompleteOrder(ctx, orderID, verificationCode)
	})
}

// transition patches the order optimistically, calls the server, refreshes
// the first page exactly once and reconciles the patch against the result.
func (o *Orders) transition(ctx context.Context, orderID string, status models.OrderStatus, call func(context.Context) error) error {
	var prev models.Order
	var found bool
	o.mutate(func() {
		prev, found = o.orders.get(orderID)
		if !found {
			return
		}
		patched := prev
		patched.Status = status
		o.orders.put(patched)
		o.pending[orderID] = pendingPatch{prev: prev, status: status}
	})

	var callErr error
	if call != nil {
		callErr = call(ctx)
	}

	fetched, fetchErr := o.fetchPage(ctx, 1, true)
	if errors.Is(fetchErr, ErrSuperseded) {
		// the newer fetch brings the server's record if it has it
		fetched, fetchErr = nil, nil
	}
	o.reconcile(orderID, callErr == nil, fetched, fetchErr)

	entry := o.log.WithFields(logrus.Fields{"order_id": orderID, "status": status})
	if callErr != nil {
		entry.WithError(callErr).Error("failed to update order status")
		o.alert.Alert(titleError, client.Message(callErr))
		return fmt.Errorf("update order %s to %s: %w", orderID, status, callErr)
	}
	if call == nil {
		entry.Info("order status changed locally only")
		o.alert.Alert(titleSuccess, "Order status changed on this device only.")
		return nil
	}
	entry.Info("order status updated")
	o.publish(ctx, orderID, prev.Status, status)
	o.alert.Alert(titleSuccess, "Order status updated.")
	return nil
}

func (o *Orders) reconcile(orderID string, callOK bool, fetched []models.Order, fetchErr error) {
	o.mutate(func() {
		p, ok := o.pending[orderID]
		if !ok {
			return
		}
		delete(o.pending, orderID)
		if fetchErr == nil {
			for _, f := range fetched {
				if f.OrderID == orderID {
					return
				}
			}
			if callOK {
				return
			}
		}
		if cur, ok := o.orders.get(orderID); ok && cur.Status == p.status {
			o.orders.put(p.prev)
		}
	})
}

func (o *Orders) publish(ctx context.Context, orderID string, from, to models.OrderStatus) {
	o.mu.Lock()
	sink, sellerID := o.events, o.sellerID
	o.mu.Unlock()
	if sink == nil {
		return
	}
	ev := models.OrderEvent{OrderID: orderID, From: from, To: to, OccurredAt: time.Now().UTC()}
	if sellerID != nil {
		ev.SellerID = sellerID()
	}
	if err := sink.PublishOrderEvent(ctx, ev); err != nil {
		o.log.WithError(err).WithField("order_id", orderID).Warn("failed to publish order event")
	}
}

// ResetPagination empties the collection and abandons any fetch in flight.
func (o *Orders) ResetPagination() {
	o.mutate(func() {
		if o.cancel != nil {
			o.cancel()
			o.cancel = nil
		}
		o.seq++
		o.orders.clear()
		o.pending = make(map[string]pendingPatch)
		o.page = 1
		o.hasMore = true
		o.loading, o.refreshing, o.loadingMore = false, false, false
	})
}

func (o *Orders) mutate(fn func()) {
	o.mu.Lock()
	fn()
	snap := o.snapshot()
	o.mu.Unlock()
	o.subs.publish(snap)
}

func (o *Orders) snapshot() OrdersState {
	return OrdersState{
		Orders:      o.orders.values(),
		Page:        o.page,
		HasMore:     o.hasMore,
		Loading:     o.loading,
		Refreshing:  o.refreshing,
		LoadingMore: o.loadingMore,
	}
}
