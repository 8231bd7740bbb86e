package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/R3E-Network/lab_order/internal/admin"
	"github.com/R3E-Network/lab_order/internal/app/metrics"
	"github.com/R3E-Network/lab_order/internal/cart"
	"github.com/R3E-Network/lab_order/internal/catalog"
	"github.com/R3E-Network/lab_order/internal/config"
	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/internal/export"
	"github.com/R3E-Network/lab_order/internal/notify"
	"github.com/R3E-Network/lab_order/internal/order"
	"github.com/R3E-Network/lab_order/internal/remote"
	"github.com/R3E-Network/lab_order/internal/view"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

// Options carries the front-end collaborators of an Application. Nil fields
// get defaults: notifications go to the log, deletions are never confirmed.
type Options struct {
	Notifier   notify.Notifier
	Confirmer  admin.Confirmer
	Logger     *logger.Logger
	HTTPClient *http.Client
	// Slot overrides the configured cart backend.
	Slot cart.Slot
}

// Application owns the cart, the catalog cache, the order composer and the
// administration service. All state changes go through its methods.
type Application struct {
	cfg      *config.Config
	log      *logger.Logger
	notifier notify.Notifier

	remote   *remote.Client
	slot     cart.Slot
	cart     *cart.Store
	catalog  *catalog.Cache
	composer *order.Composer
	admin    *admin.Service
}

// New builds an application from cfg. Call Start before use and Close when
// done.
func New(cfg *config.Config, opts Options) (*Application, error) {
	log := opts.Logger
	if log == nil {
		log = logger.New("app", logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		})
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLog(log.Named("notify"))
	}

	retry := remote.DefaultRetryConfig()
	retry.MaxRetries = cfg.API.ReadRetries
	client, err := remote.New(remote.Config{
		BaseURL:    cfg.API.URL,
		Timeout:    cfg.API.Timeout,
		HTTPClient: opts.HTTPClient,
		RateLimit:  cfg.API.RateLimit,
		Burst:      cfg.API.Burst,
		Retry:      retry,
		Logger:     log.Named("remote"),
	})
	if err != nil {
		return nil, fmt.Errorf("configure remote store: %w", err)
	}

	slot := opts.Slot
	if slot == nil {
		slot, err = openSlot(cfg.Cart)
		if err != nil {
			return nil, err
		}
	}

	cartStore := cart.New(slot, log.Named("cart"))
	cache := catalog.New(client, notifier, log.Named("catalog"))
	composer := order.NewComposer(order.Config{
		Cart:     cartStore,
		Catalog:  cache,
		Creator:  client,
		Notifier: notifier,
		Logger:   log.Named("order"),
	})
	adminSvc := admin.New(client, cache, opts.Confirmer, notifier, log.Named("admin"))

	return &Application{
		cfg:      cfg,
		log:      log,
		notifier: notifier,
		remote:   client,
		slot:     slot,
		cart:     cartStore,
		catalog:  cache,
		composer: composer,
		admin:    adminSvc,
	}, nil
}

func openSlot(cfg config.CartConfig) (cart.Slot, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return cart.NewMemorySlot(), nil
	case config.BackendFile:
		slot, err := cart.NewFileSlot(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open cart directory: %w", err)
		}
		return slot, nil
	default:
		slot, err := cart.OpenBoltSlot(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open cart database: %w", err)
		}
		return slot, nil
	}
}

// Start restores the cart and loads products, members and orders. A failed
// list load is reported and leaves that list empty; its error is returned for
// callers that want to act on it.
func (a *Application) Start(ctx context.Context) error {
	a.cart.Load()
	return a.catalog.Refresh(ctx)
}

// Refresh reloads all remote lists.
func (a *Application) Refresh(ctx context.Context) error {
	return a.catalog.Refresh(ctx)
}

// Close releases the cart slot and writes the metrics file when configured.
func (a *Application) Close() error {
	if a.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, metrics.Registry); err != nil {
			a.log.WithError(err).Warn("failed to write metrics file")
		}
	}
	return a.slot.Close()
}

// Cart exposes the cart store.
func (a *Application) Cart() *cart.Store { return a.cart }

// Catalog exposes the catalog cache.
func (a *Application) Catalog() *catalog.Cache { return a.catalog }

// =============================================================================
// Catalog
// =============================================================================

// ProductList renders the catalog filtered by term and category.
func (a *Application) ProductList(term, category string) view.ProductList {
	products := a.catalog.Search(term, category)
	return view.Products(products, a.cart.Lines(), term != "" || category != "")
}

// Categories returns the distinct product categories.
func (a *Application) Categories() []string {
	return a.catalog.DistinctCategories()
}

// MemberOptions renders the member selector.
func (a *Application) MemberOptions() []view.MemberOption {
	return view.MemberOptions(a.catalog.Members())
}

// =============================================================================
// Cart
// =============================================================================

// AddToCart adds one unit of a catalog product and returns the new cart total.
func (a *Application) AddToCart(productID string) (int, error) {
	if _, ok := a.catalog.FindProduct(productID); !ok {
		err := fmt.Errorf("%w: %s", order.ErrProductNotFound, productID)
		a.notifier.Error(err.Error())
		return a.cart.TotalCount(), err
	}
	total, err := a.cart.Add(productID)
	if err != nil {
		a.notifier.Error("Failed to save cart")
		return total, err
	}
	a.notifier.Success("Added to cart")
	return total, nil
}

// RemoveFromCart drops a cart line.
func (a *Application) RemoveFromCart(productID string) error {
	return a.cart.Remove(productID)
}

// SetQuantity applies raw quantity input to a cart line.
func (a *Application) SetQuantity(productID, raw string) error {
	return a.cart.SetQuantityText(productID, raw)
}

// ToggleChecked flips the checked flag of a cart line.
func (a *Application) ToggleChecked(productID string) error {
	return a.cart.ToggleChecked(productID)
}

// CartView renders the cart.
func (a *Application) CartView() view.CartView {
	return view.Cart(a.cart.Lines(), a.catalog.Products(), a.cart.CheckedSummary())
}

// =============================================================================
// Orders
// =============================================================================

// SubmitOrder submits the checked cart lines for memberID.
func (a *Application) SubmitOrder(ctx context.Context, memberID, notes string) (domain.Order, error) {
	return a.composer.Submit(ctx, memberID, notes)
}

// Orders renders the order history.
func (a *Application) Orders() []view.OrderCard {
	return view.Orders(a.catalog.Orders())
}

// OrderPreview renders the order with the given id or order number.
func (a *Application) OrderPreview(ref string) (view.Preview, bool) {
	o, ok := a.catalog.FindOrder(ref)
	if !ok {
		return view.Preview{}, false
	}
	return view.OrderPreview(o), true
}

// DeleteOrder always fails; orders are removed in the spreadsheet.
func (a *Application) DeleteOrder(orderID string) error {
	return a.composer.Delete(orderID)
}

// ExportOrders writes the order history to w.
func (a *Application) ExportOrders(w io.Writer, format export.Format) error {
	return export.Write(w, format, a.catalog.Orders())
}

// =============================================================================
// Administration
// =============================================================================

// SaveProduct creates or updates a product.
func (a *Application) SaveProduct(ctx context.Context, p domain.Product) error {
	return a.admin.SaveProduct(ctx, p)
}

// DeleteProduct deletes a product after confirmation.
func (a *Application) DeleteProduct(ctx context.Context, id string) error {
	return a.admin.DeleteProduct(ctx, id)
}

// SaveMember creates or updates a member.
func (a *Application) SaveMember(ctx context.Context, m domain.Member) error {
	return a.admin.SaveMember(ctx, m)
}

// DeleteMember deletes a member after confirmation.
func (a *Application) DeleteMember(ctx context.Context, id string) error {
	return a.admin.DeleteMember(ctx, id)
}
