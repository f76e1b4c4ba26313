package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/ray-remotestate/storefront/models"
)

func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/auth/login", models.Credentials{Username: username, Password: password}, WithoutAuth())
	if err != nil {
		return nil, err
	}
	var out models.LoginResponse
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login response carries no token")
	}
	return &out, nil
}

// RegisterSeller creates the merchant account and its store in one call.
func (c *Client) RegisterSeller(ctx context.Context, reg models.SellerRegistration) (*models.Seller, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, http.MethodPost, "/auth/register-seller", reg, WithoutAuth())
	if err != nil {
		return nil, err
	}
	var seller models.Seller
	if err := resp.DecodeData(&seller); err != nil {
		return nil, err
	}
	return &seller, nil
}
