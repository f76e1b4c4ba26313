package handlers

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/utils"
)

func (b *Backend) MyMenuItems(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}

	items := []models.MenuItem{}
	for id, item := range b.menu {
		if b.menuOwner[id] == acc.sellerID && !item.IsDeleted {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	utils.RespondJSON(w, http.StatusOK, models.MenuList{
		Data:          items,
		AverageRating: b.averageRating(acc.sellerID),
	})
}

func (b *Backend) averageRating(sellerID string) float64 {
	var sum, n int
	for _, rv := range b.reviews {
		if b.menuOwner[rv.MenuItemID] == sellerID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func (b *Backend) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var in models.MenuItemInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := in.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	item := in.Item(newID())
	b.menu[item.ID] = &item
	b.menuOwner[item.ID] = acc.sellerID

	utils.RespondData(w, http.StatusCreated, item)
}

// ownedItem looks up a live menu item of the caller. It must be called with
// b.mu held.
func (b *Backend) ownedItem(w http.ResponseWriter, r *http.Request) (*models.MenuItem, bool) {
	acc, ok := b.caller(w, r)
	if !ok {
		return nil, false
	}
	id := mux.Vars(r)["id"]
	item, found := b.menu[id]
	if !found || item.IsDeleted {
		utils.RespondError(w, http.StatusNotFound, "Menu item not found")
		return nil, false
	}
	if b.menuOwner[id] != acc.sellerID {
		utils.RespondError(w, http.StatusForbidden, "Menu item belongs to another store")
		return nil, false
	}
	return item, true
}

func (b *Backend) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var patch models.MenuItemPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		utils.RespondError(w, http.StatusBadRequest, "unknown menu item status")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.ownedItem(w, r)
	if !ok {
		return
	}
	updated := *item
	patch.Apply(&updated)
	if updated.DiscountedPrice.GreaterThan(updated.OriginalPrice) {
		utils.RespondError(w, http.StatusBadRequest, "discounted price must not exceed the original price")
		return
	}
	if updated.QuantityAvailable == 0 && updated.Status == models.MenuAvailable {
		updated.Status = models.MenuSoldOut
	}
	*item = updated

	utils.RespondData(w, http.StatusOK, updated)
}

func (b *Backend) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.ownedItem(w, r)
	if !ok {
		return
	}
	item.IsDeleted = true
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) MenuItemReviews(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, found := b.menu[id]; !found {
		utils.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	reviews := []models.Review{}
	for _, rv := range b.reviews {
		if rv.MenuItemID == id {
			reviews = append(reviews, rv)
		}
	}
	utils.RespondData(w, http.StatusOK, reviews)
}
