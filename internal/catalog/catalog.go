// Package catalog fetches tenant-scoped categories and products. The
// tenant header is attached by the API client; callers must only query
// after tenant resolution has succeeded.
package catalog

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sellora/client-go/internal/api"
	"github.com/sellora/client-go/internal/model"
)

type Client struct {
	api *api.Client
}

func NewClient(client *api.Client) *Client {
	return &Client{api: client}
}

// CategoryPage is one page of the category listing.
type CategoryPage struct {
	api.Page
	Categories []model.Category `json:"categories"`
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	api.Page
	Products []model.Product `json:"products"`
}

// ListOptions filter and paginate the product listing.
type ListOptions struct {
	CategoryID string
	Search     string
	Page       int
}

func (c *Client) ListCategories(ctx context.Context, page int) (*CategoryPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var out CategoryPage
	if err := c.api.Get(ctx, "/categories", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context, opts ListOptions) (*ProductPage, error) {
	query := url.Values{}
	if opts.CategoryID != "" {
		query.Set("category", opts.CategoryID)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	var out ProductPage
	if err := c.api.Get(ctx, "/products", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var out model.Product
	if err := c.api.Get(ctx, "/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
