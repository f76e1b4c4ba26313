package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ray-remotestate/storefront/models"
)

func (c *Client) ListMyMenuItems(ctx context.Context) (*models.MenuList, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/menu-items/me", nil)
	if err != nil {
		return nil, err
	}
	var list models.MenuList
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	if list.Data == nil {
		list.Data = []models.MenuItem{}
	}
	return &list, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/menu-items", in)
	if err != nil {
		return nil, err
	}
	var item models.MenuItem
	if err := resp.DecodeData(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateMenuItem sends patch and returns the fields the server echoed back.
// Fields the server left out are nil.
func (c *Client) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItemPatch, error) {
	resp, err := c.Do(ctx, http.MethodPut, "/menu-items/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	var returned models.MenuItemPatch
	if err := resp.DecodeData(&returned); err != nil {
		return nil, err
	}
	return &returned, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := c.Do(ctx, http.MethodDelete, "/menu-items/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) ListMenuItemReviews(ctx context.Context, menuItemID string) ([]models.Review, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/menu-item-reviews/menu/"+url.PathEscape(menuItemID), nil)
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := resp.DecodeData(&reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
