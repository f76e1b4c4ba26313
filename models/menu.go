package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type MenuStatus string

const (
	MenuAvailable    MenuStatus = "AVAILABLE"
	MenuUnavailable  MenuStatus = "UNAVAILABLE"
	MenuSoldOut      MenuStatus = "SOLD_OUT"
	MenuNotAvailable MenuStatus = "NOT_AVAILABLE"
)

func (s MenuStatus) IsValid() bool {
	return s == MenuAvailable || s == MenuUnavailable || s == MenuSoldOut || s == MenuNotAvailable
}

// MenuItem is a sellable unit ("surprise bag") listed by the merchant.
type MenuItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"imageUrl"`
	OriginalPrice     decimal.Decimal `json:"originalPrice"`
	DiscountedPrice   decimal.Decimal `json:"discountedPrice"`
	QuantityAvailable int             `json:"quantityAvailable"`
	DisplayStartTime  Timestamp       `json:"displayStartTime"`
	DisplayEndTime    Timestamp       `json:"displayEndTime"`
	Status            MenuStatus      `json:"status"`
	IsDeleted         bool            `json:"isDeleted"`
}

// MenuList is the payload of GET /menu-items/me.
type MenuList struct {
	Data          []MenuItem `json:"data"`
	AverageRating float64    `json:"averageRating"`
}

// MenuItemInput is the body of POST /menu-items.
type MenuItemInput struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	OriginalPrice     decimal.Decimal `json:"originalPrice"`
	DiscountedPrice   decimal.Decimal `json:"discountedPrice"`
	QuantityAvailable int             `json:"quantityAvailable"`
	DisplayStartTime  Timestamp       `json:"displayStartTime"`
	DisplayEndTime    Timestamp       `json:"displayEndTime"`
}

func (in MenuItemInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "is required")
	}
	if !in.OriginalPrice.IsPositive() {
		return invalid("originalPrice", "must be greater than zero")
	}
	if in.DiscountedPrice.IsNegative() || in.DiscountedPrice.GreaterThan(in.OriginalPrice) {
		return invalid("discountedPrice", "must be between zero and the original price")
	}
	if in.QuantityAvailable < 0 {
		return invalid("quantityAvailable", "must not be negative")
	}
	if !in.DisplayStartTime.IsZero() && !in.DisplayEndTime.IsZero() && in.DisplayEndTime.Before(in.DisplayStartTime.Time) {
		return invalid("displayEndTime", "must be after the display start time")
	}
	return nil
}

// Item builds the local representation of a not yet persisted item.
func (in MenuItemInput) Item(id string) MenuItem {
	return MenuItem{
		ID:                id,
		Name:              in.Name,
		Description:       in.Description,
		ImageURL:          in.ImageURL,
		OriginalPrice:     in.OriginalPrice,
		DiscountedPrice:   in.DiscountedPrice,
		QuantityAvailable: in.QuantityAvailable,
		DisplayStartTime:  in.DisplayStartTime,
		DisplayEndTime:    in.DisplayEndTime,
		Status:            MenuAvailable,
	}
}

// MenuItemPatch is the body of PUT /menu-items/{id}. Nil fields are left out.
type MenuItemPatch struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	ImageURL          *string          `json:"imageUrl,omitempty"`
	OriginalPrice     *decimal.Decimal `json:"originalPrice,omitempty"`
	DiscountedPrice   *decimal.Decimal `json:"discountedPrice,omitempty"`
	QuantityAvailable *int             `json:"quantityAvailable,omitempty"`
	DisplayStartTime  *Timestamp       `json:"displayStartTime,omitempty"`
	DisplayEndTime    *Timestamp       `json:"displayEndTime,omitempty"`
	Status            *MenuStatus      `json:"status,omitempty"`
}

// Apply copies the set fields onto item.
func (p MenuItemPatch) Apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.OriginalPrice != nil {
		item.OriginalPrice = *p.OriginalPrice
	}
	if p.DiscountedPrice != nil {
		item.DiscountedPrice = *p.DiscountedPrice
	}
	if p.QuantityAvailable != nil {
		item.QuantityAvailable = *p.QuantityAvailable
	}
	if p.DisplayStartTime != nil {
		item.DisplayStartTime = *p.DisplayStartTime
	}
	if p.DisplayEndTime != nil {
		item.DisplayEndTime = *p.DisplayEndTime
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
}

type Review struct {
	ID           string    `json:"id"`
	MenuItemID   string    `json:"menuItemId"`
	CustomerName string    `json:"customerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    Timestamp `json:"createdAt"`
}
