// Package handlers implements the sandbox storefront API in memory.
package handlers

import (
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/middlewares"
	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/utils"
)

const RoleSeller = "SELLER"

type account struct {
	user         models.User
	passwordHash string
	sellerID     string
}

type order struct {
	models.Order
	sellerID         string
	verificationCode string
}

type withdrawal struct {
	models.Withdrawal
	sellerID string
}

// Backend holds all sandbox data. Every handler takes the one lock.
type Backend struct {
	secret []byte
	log    *logrus.Logger

	mu          sync.Mutex
	accounts    map[string]*account // by username
	sellers     map[string]*models.Seller
	menu        map[string]*models.MenuItem
	menuOwner   map[string]string
	orders      map[string]*order
	reviews     []models.Review
	withdrawals []*withdrawal
	uploads     map[string]upload
}

func NewBackend(secret []byte, log *logrus.Logger) *Backend {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{
		secret:    secret,
		log:       log,
		accounts:  make(map[string]*account),
		sellers:   make(map[string]*models.Seller),
		menu:      make(map[string]*models.MenuItem),
		menuOwner: make(map[string]string),
		orders:    make(map[string]*order),
		uploads:   make(map[string]upload),
	}
}

func newID() string {
	return uuid.NewString()
}

// caller resolves the authenticated account. It must be called with b.mu held.
func (b *Backend) caller(w http.ResponseWriter, r *http.Request) (*account, bool) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	for _, acc := range b.accounts {
		if acc.user.ID == claims.UserID {
			return acc, true
		}
	}
	utils.RespondError(w, http.StatusUnauthorized, "account no longer exists")
	return nil, false
}

func (b *Backend) sellerOrders(sellerID string) []*order {
	var out []*order
	for _, o := range b.orders {
		if o.sellerID == sellerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].OrderID < out[j].OrderID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	return out
}

// page returns the index-th page of size items. Out of range pages are empty.
func page[T any](items []T, index, size int) []T {
	if size <= 0 || index < 0 || index > len(items)/size {
		return []T{}
	}
	start := index * size
	end := min(start+size, len(items))
	return items[start:end]
}
