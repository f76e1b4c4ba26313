package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderPaid           OrderStatus = "PAID"
	OrderAccepted       OrderStatus = "ACCEPTED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

type Order struct {
	OrderID      string          `json:"orderId"`
	CustomerName string          `json:"customerName"`
	Status       OrderStatus     `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	OrderItems   []OrderItem     `json:"orderItems"`
	Payment      Payment         `json:"payment"`
	Notes        string          `json:"notes"`
	CreatedAt    Timestamp       `json:"createdAt"`
}

type OrderItem struct {
	MenuItemName string          `json:"menuItemName"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
}

type Payment struct {
	Status string `json:"status"`
}

// OrderEvent records a status transition made by the merchant.
type OrderEvent struct {
	OrderID    string      `json:"orderId"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	SellerID   string      `json:"sellerId,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}
