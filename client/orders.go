package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ray-remotestate/storefront/models"
)

// ListMyOrders fetches one page of the merchant's orders. page is zero-based.
func (c *Client) ListMyOrders(ctx context.Context, page, size int) ([]models.Order, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	resp, err := c.Do(ctx, http.MethodGet, "/orders/seller/me", nil, WithQuery(q))
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := resp.DecodeData(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) MarkOrderReady(ctx context.Context, orderID string) error {
	return c.orderAction(ctx, orderID, "ready", nil)
}

func (c *Client) AcceptOrder(ctx context.Context, orderID string) error {
	return c.orderAction(ctx, orderID, "accept", nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.orderAction(ctx, orderID, "cancel", nil)
}

// CompleteOrder hands the order over. A wrong verification code comes back as
// an *APIError.
func (c *Client) CompleteOrder(ctx context.Context, orderID, verificationCode string) error {
	body := map[string]string{"verificationCode": verificationCode}
	return c.orderAction(ctx, orderID, "complete", body)
}

func (c *Client) orderAction(ctx context.Context, orderID, action string, body any) error {
	_, err := c.Do(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID)+"/"+action, body)
	return err
}
