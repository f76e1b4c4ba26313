package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ray-remotestate/storefront/models"
)

// ListMyWithdrawals fetches one page of withdrawal requests. page is one-based.
func (c *Client) ListMyWithdrawals(ctx context.Context, page, limit int) ([]models.Withdrawal, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	resp, err := c.Do(ctx, http.MethodGet, "/withdrawals/mine", nil, WithQuery(q))
	if err != nil {
		return nil, err
	}
	var out []models.Withdrawal
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RequestWithdrawal(ctx context.Context, req models.WithdrawalRequest) (*models.Withdrawal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, http.MethodPost, "/withdrawals", req)
	if err != nil {
		return nil, err
	}
	var w models.Withdrawal
	if err := resp.DecodeData(&w); err != nil {
		return nil, err
	}
	return &w, nil
}
