// Package catalog holds the in-memory mirror of products, members and orders
// fetched from the remote store.
package catalog

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/internal/notify"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

// Source is the read side of the remote store.
type Source interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetMembers(ctx context.Context) ([]domain.Member, error)
	GetOrders(ctx context.Context) ([]domain.Order, error)
}

// Cache mirrors the remote lists. A failed fetch empties the affected list;
// it never keeps stale rows.
type Cache struct {
	mu       sync.RWMutex
	products []domain.Product
	members  []domain.Member
	orders   []domain.Order

	source   Source
	notifier notify.Notifier
	log      *logger.Logger
}

// New creates an empty cache reading from source.
func New(source Source, notifier notify.Notifier, log *logger.Logger) *Cache {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Cache{
		products: []domain.Product{},
		members:  []domain.Member{},
		orders:   []domain.Order{},
		source:   source,
		notifier: notifier,
		log:      log,
	}
}

// =============================================================================
// Fetch
// =============================================================================

// FetchProducts replaces the product list. It returns the fetch error after
// reporting it; the list is left empty in that case.
func (c *Cache) FetchProducts(ctx context.Context) error {
	products, err := c.source.GetProducts(ctx)
	if err != nil {
		c.fail("products", err)
		products = nil
	}
	c.mu.Lock()
	c.products = nonNil(products)
	c.mu.Unlock()
	return err
}

// FetchMembers replaces the member list.
func (c *Cache) FetchMembers(ctx context.Context) error {
	members, err := c.source.GetMembers(ctx)
	if err != nil {
		c.fail("members", err)
		members = nil
	}
	c.mu.Lock()
	c.members = nonNil(members)
	c.mu.Unlock()
	return err
}

// FetchOrders replaces the order list.
func (c *Cache) FetchOrders(ctx context.Context) error {
	orders, err := c.source.GetOrders(ctx)
	if err != nil {
		c.fail("orders", err)
		orders = nil
	}
	c.mu.Lock()
	c.orders = nonNil(orders)
	c.mu.Unlock()
	return err
}

// Refresh fetches all three lists concurrently. Each list fails open on its
// own; the first error, if any, is returned.
func (c *Cache) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.FetchProducts(ctx) })
	g.Go(func() error { return c.FetchMembers(ctx) })
	g.Go(func() error { return c.FetchOrders(ctx) })
	return g.Wait()
}

func (c *Cache) fail(list string, err error) {
	c.log.WithField("list", list).WithError(err).Error("fetch failed")
	c.notifier.Error("Failed to load " + list)
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

// =============================================================================
// Queries
// =============================================================================

// Products returns a copy of the product list.
func (c *Cache) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Product{}, c.products...)
}

// Members returns a copy of the member list.
func (c *Cache) Members() []domain.Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Member{}, c.members...)
}

// Orders returns a copy of the order list.
func (c *Cache) Orders() []domain.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Order{}, c.orders...)
}

// FindProduct looks a product up by id.
func (c *Cache) FindProduct(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// FindMember looks a member up by id.
func (c *Cache) FindMember(id string) (domain.Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.members {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Member{}, false
}

// FindOrder looks an order up by id or order number.
func (c *Cache) FindOrder(ref string) (domain.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, o := range c.orders {
		if o.ID == ref || o.OrderNumber == ref {
			return o, true
		}
	}
	return domain.Order{}, false
}

// DistinctCategories returns the non-empty categories in order of first
// appearance.
func (c *Cache) DistinctCategories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range c.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Search filters products by a case-insensitive term matched against name,
// short name, manufacturer and catalog number, and by exact category when
// category is non-empty.
func (c *Cache) Search(term, category string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range c.products {
		if category != "" && p.Category != category {
			continue
		}
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p domain.Product, term string) bool {
	for _, field := range []string{p.Name, p.ShortName, p.Manufacturer, p.CatalogNumber} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
