package remote

import (
	"context"
	"fmt"

	"github.com/R3E-Network/lab_order/internal/domain"
)

// =============================================================================
// Reads
// =============================================================================

// GetProducts fetches the product catalog.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.readRows(ctx, ActionGetProducts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMembers fetches the member list.
func (c *Client) GetMembers(ctx context.Context) ([]domain.Member, error) {
	var out []domain.Member
	if err := c.readRows(ctx, ActionGetMembers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrders fetches the order history.
func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.readRows(ctx, ActionGetOrders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) readRows(ctx context.Context, action Action, out any) error {
	resp, err := c.Read(ctx, action)
	if err != nil {
		return err
	}
	if err := decodeRows(resp.Data, out); err != nil {
		return &TransportError{Action: action, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// =============================================================================
// Writes
// =============================================================================

// SaveProduct creates (empty ID) or updates a product.
func (c *Client) SaveProduct(ctx context.Context, p domain.Product) error {
	_, err := c.Write(ctx, ActionSaveProduct, map[string]any{
		"id":             nullableID(p.ID),
		"image_url":      p.ImageURL,
		"short_name":     p.ShortName,
		"name":           p.Name,
		"manufacturer":   p.Manufacturer,
		"catalog_number": p.CatalogNumber,
		"capacity":       p.Capacity,
		"usage_place":    p.UsagePlace,
		"category":       p.Category,
	})
	return err
}

// SaveMember creates (empty ID) or updates a member.
func (c *Client) SaveMember(ctx context.Context, m domain.Member) error {
	_, err := c.Write(ctx, ActionSaveMember, map[string]any{
		"id":    nullableID(m.ID),
		"name":  m.Name,
		"email": m.Email,
	})
	return err
}

// DeleteProduct deletes a product by id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.Write(ctx, ActionDeleteProduct, map[string]any{"id": id})
	return err
}

// DeleteMember deletes a member by id.
func (c *Client) DeleteMember(ctx context.Context, id string) error {
	_, err := c.Write(ctx, ActionDeleteMember, map[string]any{"id": id})
	return err
}

// CreateOrder submits a new order. The returned order is the one echoed by
// the remote store, or the submitted one when the response has no data.
func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	resp, err := c.Write(ctx, ActionCreateOrder, map[string]any{
		"order_number": o.OrderNumber,
		"order_date":   o.OrderDate,
		"member_name":  o.MemberName,
		"member_email": o.MemberEmail,
		"items":        o.Items,
		"notes":        o.Notes,
		"status":       string(o.Status),
	})
	if err != nil {
		return domain.Order{}, err
	}
	if !resp.HasData() {
		return o, nil
	}

	created := o
	if err := decodeObject(resp.Data, &created); err != nil {
		c.log.WithField("action", ActionCreateOrder).WithError(err).Warn("unexpected createOrder data; using submitted order")
		return o, nil
	}
	return created, nil
}

// nullableID maps an empty id to JSON null, which the store reads as "create".
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
