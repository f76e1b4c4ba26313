package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/utils"
)

func (b *Backend) GetSeller(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		id = acc.sellerID
	}
	seller, found := b.sellers[id]
	if !found {
		utils.RespondError(w, http.StatusNotFound, "Seller not found")
		return
	}
	utils.RespondData(w, http.StatusOK, seller)
}

// UpdateSeller edits the store profile. Only the owner may edit it.
func (b *Backend) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	var in models.Seller
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(in.StoreName) == "" {
		utils.RespondError(w, http.StatusBadRequest, "storeName is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		id = acc.sellerID
	}
	seller, found := b.sellers[id]
	if !found {
		utils.RespondError(w, http.StatusNotFound, "Seller not found")
		return
	}
	if id != acc.sellerID {
		utils.RespondError(w, http.StatusForbidden, "Cannot edit another store")
		return
	}

	seller.StoreName = in.StoreName
	seller.StoreDescription = in.StoreDescription
	seller.Address = in.Address
	seller.Latitude = in.Latitude
	seller.Longitude = in.Longitude
	if in.ImageURL != "" {
		seller.ImageURL = in.ImageURL
	}
	utils.RespondData(w, http.StatusOK, seller)
}

func (b *Backend) GetMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	utils.RespondData(w, http.StatusOK, acc.user)
}

func (b *Backend) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in models.User
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.caller(w, r)
	if !ok {
		return
	}
	if in.FullName != "" {
		acc.user.FullName = in.FullName
	}
	if in.Email != "" {
		acc.user.Email = in.Email
	}
	if in.PhoneNumber != "" {
		acc.user.PhoneNumber = in.PhoneNumber
	}
	utils.RespondData(w, http.StatusOK, acc.user)
}

func (b *Backend) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in models.PasswordChange
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
	if !utils.CheckPassword(acc.passwordHash, in.OldPassword) {
		utils.RespondError(w, http.StatusBadRequest, "Old password is incorrect")
		return
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		b.log.WithError(err).Error("failed to hash password")
		utils.RespondError(w, http.StatusInternalServerError, "failed to change password")
		return
	}
	acc.passwordHash = hash
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}
