// Package order turns the checked cart lines into a submitted order.
package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/R3E-Network/lab_order/internal/app/metrics"
	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/internal/notify"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

var (
	// ErrNoCheckedLines is returned when no cart line is checked.
	ErrNoCheckedLines = errors.New("select at least one product to order")
	// ErrNoMember is returned when no member is selected.
	ErrNoMember = errors.New("select the member placing the order")
	// ErrMemberNotFound is returned when the selected member is not in the member list.
	ErrMemberNotFound = errors.New("selected member not found")
	// ErrProductNotFound is returned when a checked line refers to a product
	// missing from the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderDeletionDisabled is returned by Delete.
	ErrOrderDeletionDisabled = errors.New("orders cannot be deleted here; delete the row directly in the order spreadsheet")
)

// Submission results recorded in metrics.
const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// Cart is the cart view needed to compose and settle an order.
type Cart interface {
	CheckedLines() []domain.CartLine
	RemoveLines(productIDs []string) error
}

// Catalog resolves products and members and reloads the order history.
type Catalog interface {
	FindProduct(id string) (domain.Product, bool)
	FindMember(id string) (domain.Member, bool)
	FetchOrders(ctx context.Context) error
}

// Creator sends an order to the remote store.
type Creator interface {
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
}

// Composer validates, composes and submits orders.
type Composer struct {
	cart     Cart
	catalog  Catalog
	creator  Creator
	notifier notify.Notifier
	log      *logger.Logger

	now  func() time.Time
	rand func(n int) int
}

// Config holds composer dependencies.
type Config struct {
	Cart     Cart
	Catalog  Catalog
	Creator  Creator
	Notifier notify.Notifier
	Logger   *logger.Logger
	// Now and Rand default to time.Now and math/rand/v2.IntN.
	Now  func() time.Time
	Rand func(n int) int
}

// NewComposer creates a composer.
func NewComposer(cfg Config) *Composer {
	c := &Composer{
		cart:     cfg.Cart,
		catalog:  cfg.Catalog,
		creator:  cfg.Creator,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
		now:      cfg.Now,
		rand:     cfg.Rand,
	}
	if c.notifier == nil {
		c.notifier = notify.Discard{}
	}
	if c.log == nil {
		c.log = logger.NewDefault("order")
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.rand == nil {
		c.rand = rand.IntN
	}
	return c
}

// GenerateOrderNumber formats ORD-YYYYMMDD-NNNN from the local date of now and
// a random number in [0, 10000). Numbers are not unique by construction.
func GenerateOrderNumber(now time.Time, randIntN func(n int) int) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Local().Format("20060102"), randIntN(10000))
}

// Draft is a composed, not yet submitted order.
type Draft struct {
	Order domain.Order
	Lines []domain.OrderLine
}

// ProductIDs returns the ids of the products in the draft.
func (d Draft) ProductIDs() []string {
	ids := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

// Compose validates the checked cart against the catalog and builds the
// order payload without sending it.
func (c *Composer) Compose(memberID, notes string) (Draft, error) {
	checked := c.cart.CheckedLines()
	if len(checked) == 0 {
		return Draft{}, ErrNoCheckedLines
	}
	if memberID == "" {
		return Draft{}, ErrNoMember
	}
	member, ok := c.catalog.FindMember(memberID)
	if !ok {
		return Draft{}, fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}

	lines := make([]domain.OrderLine, 0, len(checked))
	for _, line := range checked {
		product, ok := c.catalog.FindProduct(line.ProductID)
		if !ok {
			return Draft{}, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		lines = append(lines, domain.NewOrderLine(product, line.Quantity))
	}

	items, err := domain.EncodeOrderLines(lines)
	if err != nil {
		return Draft{}, fmt.Errorf("encode items: %w", err)
	}

	now := c.now()
	return Draft{
		Order: domain.Order{
			OrderNumber: GenerateOrderNumber(now, c.rand),
			OrderDate:   now.Local().Format("2006-01-02"),
			MemberName:  member.Name,
			MemberEmail: member.Email,
			Items:       items,
			Notes:       notes,
			Status:      domain.OrderStatusDraft,
		},
		Lines: lines,
	}, nil
}

// Submit composes and sends the order. On success exactly the submitted lines
// leave the cart and the order history is reloaded. On any failure the cart
// is left as it was.
func (c *Composer) Submit(ctx context.Context, memberID, notes string) (domain.Order, error) {
	draft, err := c.Compose(memberID, notes)
	if err != nil {
		metrics.RecordOrderSubmission(resultRejected)
		c.notifier.Error(err.Error())
		return domain.Order{}, err
	}

	log := c.log.WithField("order_number", draft.Order.OrderNumber).WithField("lines", len(draft.Lines))
	created, err := c.creator.CreateOrder(ctx, draft.Order)
	if err != nil {
		metrics.RecordOrderSubmission(resultFailed)
		log.WithError(err).Error("order submission failed")
		c.notifier.Error("Failed to submit order")
		return domain.Order{}, fmt.Errorf("submit order %s: %w", draft.Order.OrderNumber, err)
	}
	metrics.RecordOrderSubmission(resultOK)
	log.Info("order submitted")

	if err := c.cart.RemoveLines(draft.ProductIDs()); err != nil {
		log.WithError(err).Warn("failed to persist cart after order")
	}
	c.notifier.Success("Order submitted: " + created.OrderNumber)

	// fetch failures are already reported by the catalog
	_ = c.catalog.FetchOrders(ctx)
	return created, nil
}

// Delete always fails: orders are removed by editing the spreadsheet.
func (c *Composer) Delete(orderID string) error {
	c.log.WithField("order_id", orderID).Debug("order deletion refused")
	c.notifier.Error(ErrOrderDeletionDisabled.Error())
	return ErrOrderDeletionDisabled
}
