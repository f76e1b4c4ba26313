package models

import (
	"net/mail"
	"strings"
)

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role,omitempty"`
}

// Seller is the merchant's store profile.
type Seller struct {
	ID               string  `json:"id"`
	UserID           string  `json:"userId,omitempty"`
	StoreName        string  `json:"storeName"`
	StoreDescription string  `json:"storeDescription"`
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	ImageURL         string  `json:"imageUrl,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token. Some deployments also return the
// seller profile id directly.
type LoginResponse struct {
	Token           string `json:"token"`
	SellerProfileID string `json:"sellerProfileId,omitempty"`
	Username        string `json:"username,omitempty"`
	Role            string `json:"role,omitempty"`
}

type SellerRegistration struct {
	Username         string  `json:"username"`
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	PhoneNumber      string  `json:"phoneNumber"`
	StoreName        string  `json:"storeName"`
	StoreDescription string  `json:"storeDescription"`
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

const minPasswordLength = 6

func (r SellerRegistration) Validate() error {
	required := []struct{ field, value string }{
		{"username", r.Username},
		{"fullName", r.FullName},
		{"email", r.Email},
		{"password", r.Password},
		{"phoneNumber", r.PhoneNumber},
		{"storeName", r.StoreName},
		{"address", r.Address},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.field, "is required")
		}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return invalid("email", "is not a valid address")
	}
	if len(r.Password) < minPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return invalid("location", "coordinates out of range")
	}
	return nil
}

type PasswordChange struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (p PasswordChange) Validate() error {
	if p.OldPassword == "" {
		return invalid("oldPassword", "is required")
	}
	if len(p.NewPassword) < minPasswordLength {
		return invalid("newPassword", "must be at least 6 characters")
	}
	if p.NewPassword != p.ConfirmNewPassword {
		return invalid("confirmNewPassword", "does not match the new password")
	}
	if p.NewPassword == p.OldPassword {
		return invalid("newPassword", "must differ from the old password")
	}
	return nil
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return invalid("username", "is required")
	}
	if c.Password == "" {
		return invalid("password", "is required")
	}
	return nil
}
