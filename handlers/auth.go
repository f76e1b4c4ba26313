package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ray-remotestate/storefront/models"
	"github.com/ray-remotestate/storefront/utils"
)

func (b *Backend) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[strings.ToLower(req.Username)]
	b.mu.Unlock()
	if !ok || !utils.CheckPassword(acc.passwordHash, req.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := utils.GenerateAccessToken(b.secret, acc.user.ID, acc.user.Role)
	if err != nil {
		b.log.WithError(err).Error("failed to generate token")
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.RespondJSON(w, http.StatusOK, models.LoginResponse{
		Token:    token,
		Username: acc.user.Username,
		Role:     acc.user.Role,
	})
}

func (b *Backend) RegisterSeller(w http.ResponseWriter, r *http.Request) {
	var req models.SellerRegistration
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	seller, err := b.register(req)
	var conflict conflictError
	switch {
	case errors.As(err, &conflict):
		utils.RespondError(w, http.StatusConflict, conflict.Error())
		return
	case err != nil:
		b.log.WithError(err).Error("failed to register seller")
		utils.RespondError(w, http.StatusInternalServerError, "failed to register seller")
		return
	}
	utils.RespondData(w, http.StatusCreated, seller)
}

type conflictError string

func (e conflictError) Error() string { return string(e) }

// register creates the user account and its store together.
func (b *Backend) register(req models.SellerRegistration) (models.Seller, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return models.Seller{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(req.Username)
	if _, exists := b.accounts[key]; exists {
		return models.Seller{}, conflictError("username already taken")
	}
	for _, acc := range b.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) {
			return models.Seller{}, conflictError("email already registered")
		}
	}

	user := models.User{
		ID:          newID(),
		Username:    req.Username,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        RoleSeller,
	}
	seller := &models.Seller{
		ID:               newID(),
		UserID:           user.ID,
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
	}
	b.accounts[key] = &account{user: user, passwordHash: hash, sellerID: seller.ID}
	b.sellers[seller.ID] = seller

	b.log.WithField("seller_id", seller.ID).Info("seller registered")
	return *seller, nil
}
