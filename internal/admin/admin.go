// Package admin edits the product and member lists held by the remote store.
// Every successful write is followed by a full reload of the affected list.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/internal/notify"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

var (
	// ErrCancelled is returned when the user declines a delete confirmation.
	ErrCancelled = errors.New("cancelled")
	// ErrInvalidProduct is returned for a product that fails local validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidMember is returned for a member that fails local validation.
	ErrInvalidMember = errors.New("invalid member")
)

// Writer is the write side of the remote store.
type Writer interface {
	SaveProduct(ctx context.Context, p domain.Product) error
	SaveMember(ctx context.Context, m domain.Member) error
	DeleteProduct(ctx context.Context, id string) error
	DeleteMember(ctx context.Context, id string) error
}

// Reloader refreshes cached lists after a write.
type Reloader interface {
	FetchProducts(ctx context.Context) error
	FetchMembers(ctx context.Context) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(question string) bool { return f(question) }

// Service performs product and member administration.
type Service struct {
	writer    Writer
	reloader  Reloader
	confirmer Confirmer
	notifier  notify.Notifier
	log       *logger.Logger
}

// New creates an administration service.
func New(writer Writer, reloader Reloader, confirmer Confirmer, notifier notify.Notifier, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if log == nil {
		log = logger.NewDefault("admin")
	}
	return &Service{
		writer:    writer,
		reloader:  reloader,
		confirmer: confirmer,
		notifier:  notifier,
		log:       log,
	}
}

// =============================================================================
// Products
// =============================================================================

// SaveProduct creates the product when its id is empty, otherwise updates it.
func (s *Service) SaveProduct(ctx context.Context, p domain.Product) error {
	p = trimProduct(p)
	if p.Name == "" {
		s.notifier.Error("Product name is required")
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}

	log := s.log.WithField("product_id", p.ID)
	if err := s.writer.SaveProduct(ctx, p); err != nil {
		log.WithError(err).Error("save product failed")
		s.notifier.Error("Failed to save product")
		return fmt.Errorf("save product: %w", err)
	}
	log.Info("product saved")
	s.notifier.Success("Product saved")
	_ = s.reloader.FetchProducts(ctx)
	return nil
}

// DeleteProduct removes a product after confirmation.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if !s.confirm("Delete product " + id + "?") {
		return ErrCancelled
	}

	log := s.log.WithField("product_id", id)
	if err := s.writer.DeleteProduct(ctx, id); err != nil {
		log.WithError(err).Error("delete product failed")
		s.notifier.Error("Failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}
	log.Info("product deleted")
	s.notifier.Success("Product deleted")
	_ = s.reloader.FetchProducts(ctx)
	return nil
}

// =============================================================================
// Members
// =============================================================================

// SaveMember creates the member when its id is empty, otherwise updates it.
func (s *Service) SaveMember(ctx context.Context, m domain.Member) error {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	if m.Name == "" {
		s.notifier.Error("Member name is required")
		return fmt.Errorf("%w: name is required", ErrInvalidMember)
	}

	log := s.log.WithField("member_id", m.ID)
	if err := s.writer.SaveMember(ctx, m); err != nil {
		log.WithError(err).Error("save member failed")
		s.notifier.Error("Failed to save member")
		return fmt.Errorf("save member: %w", err)
	}
	log.Info("member saved")
	s.notifier.Success("Member saved")
	_ = s.reloader.FetchMembers(ctx)
	return nil
}

// DeleteMember removes a member after confirmation.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if !s.confirm("Delete member " + id + "?") {
		return ErrCancelled
	}

	log := s.log.WithField("member_id", id)
	if err := s.writer.DeleteMember(ctx, id); err != nil {
		log.WithError(err).Error("delete member failed")
		s.notifier.Error("Failed to delete member")
		return fmt.Errorf("delete member: %w", err)
	}
	log.Info("member deleted")
	s.notifier.Success("Member deleted")
	_ = s.reloader.FetchMembers(ctx)
	return nil
}

func (s *Service) confirm(question string) bool {
	if s.confirmer == nil {
		return false
	}
	return s.confirmer.Confirm(question)
}

func trimProduct(p domain.Product) domain.Product {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.ShortName = strings.TrimSpace(p.ShortName)
	p.Manufacturer = strings.TrimSpace(p.Manufacturer)
	p.CatalogNumber = strings.TrimSpace(p.CatalogNumber)
	p.Capacity = strings.TrimSpace(p.Capacity)
	p.UsagePlace = strings.TrimSpace(p.UsagePlace)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	return p
}
