package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ray-remotestate/storefront/models"
)

func (c *Client) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	return c.seller(ctx, http.MethodGet, "/sellers/"+url.PathEscape(id), nil)
}

func (c *Client) GetMySeller(ctx context.Context) (*models.Seller, error) {
	return c.seller(ctx, http.MethodGet, "/sellers/me", nil)
}

func (c *Client) UpdateSeller(ctx context.Context, id string, s models.Seller) (*models.Seller, error) {
	return c.seller(ctx, http.MethodPut, "/sellers/"+url.PathEscape(id), s)
}

func (c *Client) UpdateMySeller(ctx context.Context, s models.Seller) (*models.Seller, error) {
	return c.seller(ctx, http.MethodPut, "/sellers/me", s)
}

func (c *Client) seller(ctx context.Context, method, path string, body any) (*models.Seller, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var s models.Seller
	if err := resp.DecodeData(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetMe(ctx context.Context) (*models.User, error) {
	return c.user(ctx, http.MethodGet, nil)
}

func (c *Client) UpdateMe(ctx context.Context, u models.User) (*models.User, error) {
	return c.user(ctx, http.MethodPut, u)
}

func (c *Client) user(ctx context.Context, method string, body any) (*models.User, error) {
	resp, err := c.Do(ctx, method, "/users/me", body)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := resp.DecodeData(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, p models.PasswordChange) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := c.Do(ctx, http.MethodPut, "/users/me/password", p)
	return err
}
