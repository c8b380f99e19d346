// Package order creates and lists orders against the backend. Checkout
// itself (payment, inventory) happens server-side; this client submits the
// cart lines and clears the cart only after the backend commits.
package order

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/sellora/client-go/internal/api"
	"github.com/sellora/client-go/internal/cart"
	"github.com/sellora/client-go/internal/model"
	"github.com/sellora/client-go/pkg/logger"
)

type Client struct {
	api *api.Client
}

func NewClient(client *api.Client) *Client {
	return &Client{api: client}
}

// OrderPage is one page of the order listing.
type OrderPage struct {
	api.Page
	Orders []model.Order `json:"orders"`
}

type createRequest struct {
	Items      []model.OrderItem `json:"items"`
	ShippingTo model.Address     `json:"shipping_address"`
}

// Checkout submits the cart as a new order. Each attempt carries a fresh
// idempotency key so a retried submit cannot double-order. The cart is
// cleared only after the backend accepts.
func (c *Client) Checkout(ctx context.Context, cartStore *cart.Store, shipping model.Address) (*model.Order, error) {
	lines := cartStore.Lines()
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}

	key := uuid.NewString()
	logger.Info("Submitting order", map[string]interface{}{
		"items":           len(items),
		"idempotency_key": key,
	})

	var created model.Order
	err := c.api.PostWithHeaders(ctx, "/orders",
		map[string]string{"Idempotency-Key": key},
		createRequest{Items: items, ShippingTo: shipping}, &created)
	if err != nil {
		return nil, err
	}

	cartStore.Clear(ctx)

	logger.Info("Order created", map[string]interface{}{
		"order_id": created.ID,
		"total":    created.TotalAmount,
	})
	return &created, nil
}

func (c *Client) List(ctx context.Context, page int) (*OrderPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var out OrderPage
	if err := c.api.Get(ctx, "/orders", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.Order, error) {
	var out model.Order
	if err := c.api.Get(ctx, "/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves an order through its lifecycle. Admin only.
func (c *Client) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, &api.Error{Status: 400, Message: "unknown order status: " + string(status)}
	}
	var out model.Order
	body := map[string]string{"status": string(status)}
	if err := c.api.Put(ctx, "/orders/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
