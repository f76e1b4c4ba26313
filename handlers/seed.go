package handlers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/storefront/models"
)

const (
	DemoUsername         = "demo-bakery"
	DemoPassword         = "surplus123"
	DemoVerificationCode = "246810"
)

var demoStatuses = []models.OrderStatus{
	models.OrderPaid,
	models.OrderAccepted,
	models.OrderPreparing,
	models.OrderReadyForPickup,
	models.OrderCompleted,
	models.OrderAccepted,
	models.OrderPending,
	models.OrderCompleted,
	models.OrderCancelled,
	models.OrderReadyForPickup,
	models.OrderCompleted,
	models.OrderPaid,
}

// Seed registers the demo store with a menu, a dozen orders spread over two
// pages, reviews and one past withdrawal. It returns the seller profile id.
func (b *Backend) Seed() (string, error) {
	seller, err := b.register(models.SellerRegistration{
		Username:         DemoUsername,
		FullName:         "Demo Baker",
		Email:            "demo@bakery.test",
		Password:         DemoPassword,
		PhoneNumber:      "+628123456789",
		StoreName:        "Demo Bakery",
		StoreDescription: "Day-old bread and pastries at a discount",
		Address:          "Jl. Kemang Raya 10, Jakarta",
		Latitude:         -6.2607,
		Longitude:        106.8137,
	})
	if err != nil {
		return "", fmt.Errorf("seed seller: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Second)
	bags := []models.MenuItemInput{
		{Name: "Bread Surprise Bag", Description: "Assorted loaves", OriginalPrice: decimal.NewFromInt(60000), DiscountedPrice: decimal.NewFromInt(25000), QuantityAvailable: 5},
		{Name: "Pastry Surprise Bag", Description: "Croissants and danishes", OriginalPrice: decimal.NewFromInt(80000), DiscountedPrice: decimal.NewFromInt(30000), QuantityAvailable: 3},
		{Name: "Cake Slice Box", Description: "End of day cake slices", OriginalPrice: decimal.NewFromInt(90000), DiscountedPrice: decimal.NewFromInt(40000), QuantityAvailable: 2},
	}
	var firstItem string
	for _, in := range bags {
		in.DisplayStartTime = models.Timestamp{Time: now}
		in.DisplayEndTime = models.Timestamp{Time: now.Add(6 * time.Hour)}
		item := in.Item(newID())
		if firstItem == "" {
			firstItem = item.ID
		}
		b.menu[item.ID] = &item
		b.menuOwner[item.ID] = seller.ID
	}

	for i, st := range demoStatuses {
		id := fmt.Sprintf("ord-%03d", i+1)
		qty := i%3 + 1
		price := bags[i%len(bags)].DiscountedPrice
		payment := "PAID"
		if st == models.OrderPending {
			payment = "PENDING"
		}
		b.orders[id] = &order{
			Order: models.Order{
				OrderID:      id,
				CustomerName: fmt.Sprintf("Customer %d", i+1),
				Status:       st,
				TotalAmount:  price.Mul(decimal.NewFromInt(int64(qty))),
				OrderItems: []models.OrderItem{
					{MenuItemName: bags[i%len(bags)].Name, Quantity: qty, PricePerItem: price},
				},
				Payment:   models.Payment{Status: payment},
				CreatedAt: models.Timestamp{Time: now.Add(-time.Duration(i) * time.Minute)},
			},
			sellerID:         seller.ID,
			verificationCode: DemoVerificationCode,
		}
	}

	b.reviews = append(b.reviews,
		models.Review{ID: newID(), MenuItemID: firstItem, CustomerName: "Customer 5", Rating: 5, Comment: "Still warm!", CreatedAt: models.Timestamp{Time: now}},
		models.Review{ID: newID(), MenuItemID: firstItem, CustomerName: "Customer 8", Rating: 4, Comment: "Great value", CreatedAt: models.Timestamp{Time: now}},
	)

	b.withdrawals = append(b.withdrawals, &withdrawal{
		Withdrawal: models.Withdrawal{
			ID:            newID(),
			Amount:        decimal.NewFromInt(20000),
			BankName:      "BCA",
			AccountNumber: "1234567890",
			Status:        models.WithdrawalApproved,
			RequestDate:   models.Timestamp{Time: now.Add(-24 * time.Hour)},
		},
		sellerID: seller.ID,
	})

	return seller.ID, nil
}
