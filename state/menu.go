package state

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/client"
	"github.com/ray-remotestate/storefront/models"
)

const localIDPrefix = "local-"

type MenuAPI interface {
	ListMyMenuItems(ctx context.Context) (*models.MenuList, error)
	CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItemPatch, error)
	DeleteMenuItem(ctx context.Context, id string) error
	ListMenuItemReviews(ctx context.Context, menuItemID string) ([]models.Review, error)
}

type MenuState struct {
	Items         []models.MenuItem
	AverageRating float64
	Loading       bool
}

// Menu owns the merchant's menu items. Items keep fetch order; new items are
// prepended.
type Menu struct {
	api   MenuAPI
	alert Alerter
	log   *logrus.Entry
	subs  observers[MenuState]

	mu      sync.Mutex
	items   []models.MenuItem
	rating  float64
	loading bool
	seq     uint64
	cancel  context.CancelFunc
}

func NewMenu(api MenuAPI, alert Alerter, log *logrus.Logger) *Menu {
	log = orStandard(log)
	return &Menu{
		api:   api,
		alert: orDefault(alert, log),
		log:   log.WithField("store", "menu"),
		items: []models.MenuItem{},
	}
}

func (m *Menu) State() MenuState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Menu) Subscribe(fn func(MenuState)) (unsubscribe func()) {
	return m.subs.subscribe(fn)
}

// Item returns the entry with the given id.
func (m *Menu) Item(id string) (models.MenuItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		return m.items[i], true
	}
	return models.MenuItem{}, false
}

// FetchAll replaces the collection with the server's. A failed fetch keeps the
// stale items. Starting a fetch cancels the one in flight.
func (m *Menu) FetchAll(ctx context.Context) error {
	var seq uint64
	m.mutate(func() {
		if m.cancel != nil {
			m.cancel()
		}
		ctx, m.cancel = context.WithCancel(ctx)
		m.seq++
		seq = m.seq
		m.loading = true
	})

	list, err := m.api.ListMyMenuItems(ctx)

	stale := false
	m.mutate(func() {
		if seq != m.seq {
			stale = true
			return
		}
		m.cancel()
		m.cancel = nil
		m.loading = false
		if err == nil {
			m.items = slices.Clone(list.Data)
			if m.items == nil {
				m.items = []models.MenuItem{}
			}
			m.rating = list.AverageRating
		}
	})
	if stale {
		return superseded(err)
	}
	if err != nil {
		m.log.WithError(err).Error("failed to fetch menu items")
		m.alert.Alert(titleError, "Failed to fetch menu items.")
		return fmt.Errorf("fetch menu items: %w", err)
	}
	return nil
}

// Add shows the item immediately under a local id and swaps in the server's
// copy once created. The local entry is dropped when creation fails.
func (m *Menu) Add(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	localID := localIDPrefix + uuid.NewString()
	m.mutate(func() {
		m.items = slices.Insert(m.items, 0, in.Item(localID))
	})

	created, err := m.api.CreateMenuItem(ctx, in)
	if err != nil {
		m.mutate(func() { m.remove(localID) })
		m.log.WithError(err).Error("failed to create menu item")
		m.alert.Alert(titleError, "Failed to add menu item: "+client.Message(err))
		return nil, fmt.Errorf("create menu item: %w", err)
	}

	m.mutate(func() {
		if i := m.index(localID); i >= 0 {
			m.items[i] = *created
			return
		}
		// a fetch replaced the collection meanwhile
		if m.index(created.ID) < 0 {
			m.items = slices.Insert(m.items, 0, *created)
		}
	})
	return created, nil
}

// Update sends patch and merges it, then the fields the server returns, onto
// the entry as it is when the response arrives.
func (m *Menu) Update(ctx context.Context, id string, patch models.MenuItemPatch) error {
	if _, ok := m.Item(id); !ok {
		return ErrNotFound
	}
	returned, err := m.api.UpdateMenuItem(ctx, id, patch)
	if err != nil {
		m.log.WithError(err).WithField("menu_item_id", id).Error("failed to update menu item")
		m.alert.Alert(titleError, "Failed to update menu item: "+client.Message(err))
		return fmt.Errorf("update menu item %s: %w", id, err)
	}
	m.mutate(func() {
		i := m.index(id)
		if i < 0 {
			return
		}
		patch.Apply(&m.items[i])
		if returned != nil {
			returned.Apply(&m.items[i])
		}
	})
	return nil
}

func (m *Menu) Delete(ctx context.Context, id string) error {
	if err := m.api.DeleteMenuItem(ctx, id); err != nil {
		m.log.WithError(err).WithField("menu_item_id", id).Error("failed to delete menu item")
		m.alert.Alert(titleError, "Failed to delete menu item.")
		return fmt.Errorf("delete menu item %s: %w", id, err)
	}
	m.mutate(func() { m.remove(id) })
	return nil
}

// ToggleAvailability flips the item between AVAILABLE and UNAVAILABLE, shows
// the change at once and restores the previous status if the server refuses.
func (m *Menu) ToggleAvailability(ctx context.Context, id string) error {
	var prev, next models.MenuStatus
	found := false
	m.mutate(func() {
		i := m.index(id)
		if i < 0 {
			return
		}
		found = true
		prev = m.items[i].Status
		next = models.MenuAvailable
		if prev == models.MenuAvailable {
			next = models.MenuUnavailable
		}
		m.items[i].Status = next
	})
	if !found {
		return ErrNotFound
	}

	if err := m.Update(ctx, id, models.MenuItemPatch{Status: &next}); err != nil {
		m.mutate(func() {
			if i := m.index(id); i >= 0 && m.items[i].Status == next {
				m.items[i].Status = prev
			}
		})
		return err
	}
	return nil
}

func (m *Menu) Reviews(ctx context.Context, id string) ([]models.Review, error) {
	reviews, err := m.api.ListMenuItemReviews(ctx, id)
	if err != nil {
		m.log.WithError(err).WithField("menu_item_id", id).Error("failed to fetch reviews")
		return nil, fmt.Errorf("fetch reviews for %s: %w", id, err)
	}
	return reviews, nil
}

// Reset drops everything, e.g. after logout.
func (m *Menu) Reset() {
	m.mutate(func() {
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.seq++
		m.items = []models.MenuItem{}
		m.rating = 0
		m.loading = false
	})
}

func (m *Menu) mutate(fn func()) {
	m.mu.Lock()
	fn()
	snap := m.snapshot()
	m.mu.Unlock()
	m.subs.publish(snap)
}

func (m *Menu) snapshot() MenuState {
	return MenuState{
		Items:         slices.Clone(m.items),
		AverageRating: m.rating,
		Loading:       m.loading,
	}
}

func (m *Menu) index(id string) int {
	return slices.IndexFunc(m.items, func(it models.MenuItem) bool { return it.ID == id })
}

func (m *Menu) remove(id string) {
	if i := m.index(id); i >= 0 {
		m.items = slices.Delete(m.items, i, i+1)
	}
}
