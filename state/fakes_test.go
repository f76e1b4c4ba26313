package state

import (
	"context"
	"errors"
	"sync"

	"github.com/ray-remotestate/storefront/models"
)

var errBackend = errors.New("backend unavailable")

type alertRecord struct{ title, message string }

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alertRecord
}

func (r *recordingAlerter) Alert(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alertRecord{title, message})
}

func (r *recordingAlerter) all() []alertRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]alertRecord(nil), r.alerts...)
}

func (r *recordingAlerter) last() alertRecord {
	all := r.all()
	if len(all) == 0 {
		return alertRecord{}
	}
	return all[len(all)-1]
}

type fakeMenuAPI struct {
	mu        sync.Mutex
	list      *models.MenuList
	listErr   error
	listCalls int
	// blockFirst holds the first list call until its context is cancelled.
	blockFirst chan struct{}
	created    *models.MenuItem
	createErr  error
	createIn   chan struct{}
	createOut  chan struct{}
	updateErr  error
	// updateIn and updateOut hold an update call in flight.
	updateIn  chan struct{}
	updateOut chan struct{}
	patches   []models.MenuItemPatch
	reply     *models.MenuItemPatch
	deleteErr error
	deleted   []string
}

func (f *fakeMenuAPI) ListMyMenuItems(ctx context.Context) (*models.MenuList, error) {
	f.mu.Lock()
	f.listCalls++
	first := f.listCalls == 1
	list, err := f.list, f.listErr
	f.mu.Unlock()
	if first && f.blockFirst != nil {
		f.blockFirst <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (f *fakeMenuAPI) CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	if f.createIn != nil {
		f.createIn <- struct{}{}
		<-f.createOut
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeMenuAPI) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItemPatch, error) {
	if f.updateIn != nil {
		f.updateIn <- struct{}{}
		<-f.updateOut
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &models.MenuItemPatch{}, nil
}

func (f *fakeMenuAPI) DeleteMenuItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMenuAPI) ListMenuItemReviews(ctx context.Context, id string) ([]models.Review, error) {
	return []models.Review{{ID: "r-1", MenuItemID: id, Rating: 5}}, nil
}

type fakeOrderAPI struct {
	mu        sync.Mutex
	pages     map[int][]models.Order
	listErr   error
	listCalls []int
	actionErr error
	actions   []string
	codes     []string
	entered   chan struct{}
	gate      chan struct{}
	// blockFirst holds the first list call until its context is cancelled,
	// then answers with the page as it was when the call started.
	blockFirst chan struct{}
}

func (f *fakeOrderAPI) ListMyOrders(ctx context.Context, page, size int) ([]models.Order, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, page)
	first := len(f.listCalls) == 1
	list, err := append([]models.Order(nil), f.pages[page]...), f.listErr
	f.mu.Unlock()
	if first && f.blockFirst != nil {
		f.blockFirst <- struct{}{}
		<-ctx.Done()
		return list, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (f *fakeOrderAPI) action(name, id string) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, name+":"+id)
	return f.actionErr
}

func (f *fakeOrderAPI) MarkOrderReady(ctx context.Context, id string) error {
	return f.action("ready", id)
}

func (f *fakeOrderAPI) AcceptOrder(ctx context.Context, id string) error {
	return f.action("accept", id)
}

func (f *fakeOrderAPI) CancelOrder(ctx context.Context, id string) error {
	return f.action("cancel", id)
}

func (f *fakeOrderAPI) CompleteOrder(ctx context.Context, id, code string) error {
	f.mu.Lock()
	f.codes = append(f.codes, code)
	f.mu.Unlock()
	return f.action("complete", id)
}

func (f *fakeOrderAPI) setPage(page int, orders ...models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages == nil {
		f.pages = make(map[int][]models.Order)
	}
	f.pages[page] = orders
}

func (f *fakeOrderAPI) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeOrderAPI) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (f *fakeEvents) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func order(id string, status models.OrderStatus) models.Order {
	return models.Order{OrderID: id, CustomerName: "customer " + id, Status: status}
}
