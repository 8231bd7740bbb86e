// Package cart implements the local cart: the set of products a user intends
// to order, persisted to a local slot on every change.
package cart

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/R3E-Network/lab_order/internal/app/metrics"
	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

// Store holds cart lines in insertion order, at most one per product.
// It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	slot  Slot
	key   string
	lines []domain.CartLine
	log   *logger.Logger
}

// New creates a store persisting to slot under domain.CartKey. Call Load to
// restore the persisted cart.
func New(slot Slot, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("cart")
	}
	return &Store{
		slot:  slot,
		key:   domain.CartKey,
		lines: []domain.CartLine{},
		log:   log,
	}
}

// Load replaces the in-memory cart with the persisted one. Missing, unreadable
// or malformed data yields an empty cart; no error is reported.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = []domain.CartLine{}

	data, ok, err := s.slot.Get(s.key)
	if err != nil {
		s.log.WithError(err).Warn("cart slot unreadable; starting with an empty cart")
		return
	}
	if !ok || len(data) == 0 {
		return
	}

	var stored []domain.CartLine
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.WithError(err).Warn("malformed cart data; starting with an empty cart")
		return
	}
	s.lines = normalize(stored)
	s.log.WithField("lines", len(s.lines)).Debug("cart loaded")
}

// normalize drops invalid lines and merges duplicates so that each product
// appears at most once.
func normalize(stored []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(stored))
	index := make(map[string]int, len(stored))
	for _, l := range stored {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Save writes the full cart to the slot.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.slot.Put(s.key, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) indexLocked(productID string) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the line for productID, or inserts a checked line with
// quantity 1. It returns the new total count.
func (s *Store) Add(productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{ProductID: productID, Quantity: 1, Checked: true})
	}
	metrics.RecordCartMutation("add")
	return s.totalLocked(), s.saveLocked()
}

// Remove deletes the line for productID if present.
func (s *Store) Remove(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(productID)
}

func (s *Store) removeLocked(productID string) error {
	if i := s.indexLocked(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	metrics.RecordCartMutation("remove")
	return s.saveLocked()
}

// SetQuantity overwrites the quantity of an existing line. A quantity below 1
// removes the line. Unknown products are ignored.
func (s *Store) SetQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(productID)
	if i < 0 {
		return nil
	}
	if quantity < 1 {
		return s.removeLocked(productID)
	}
	s.lines[i].Quantity = quantity
	metrics.RecordCartMutation("set_quantity")
	return s.saveLocked()
}

// SetQuantityText is SetQuantity for raw user input. Input that is not an
// integer removes the line.
func (s *Store) SetQuantityText(productID, raw string) error {
	quantity, err := parseQuantity(raw)
	if err != nil {
		quantity = 0
	}
	return s.SetQuantity(productID, quantity)
}

// parseQuantity reads an optionally signed decimal integer. Anything else,
// including Go literal forms such as "0x10" or "1_000", is rejected. Leading
// zeros are dropped so "010" is ten, not an octal literal.
func parseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("invalid quantity %q", raw)
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return cast.ToIntE(sign + s)
}

// ToggleChecked flips the checked flag of the line for productID.
func (s *Store) ToggleChecked(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(productID)
	if i < 0 {
		return nil
	}
	s.lines[i].Checked = !s.lines[i].Checked
	metrics.RecordCartMutation("toggle")
	return s.saveLocked()
}

// RemoveLines deletes every line whose product is in productIDs, in one write.
func (s *Store) RemoveLines(productIDs []string) error {
	drop := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	for _, l := range s.lines {
		if !drop[l.ProductID] {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	metrics.RecordCartMutation("remove_lines")
	return s.saveLocked()
}

// TotalCount sums the quantities of all lines, checked or not.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Store) totalLocked() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// CheckedSummary counts the checked lines and sums their quantities.
func (s *Store) CheckedSummary() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum domain.CartSummary
	for _, l := range s.lines {
		if l.Checked {
			sum.Lines++
			sum.Quantity += l.Quantity
		}
	}
	return sum
}

// Lines returns a copy of all lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine{}, s.lines...)
}

// CheckedLines returns a copy of the checked lines.
func (s *Store) CheckedLines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.CartLine{}
	for _, l := range s.lines {
		if l.Checked {
			out = append(out, l)
		}
	}
	return out
}

// Line returns the line for productID.
func (s *Store) Line(productID string) (domain.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		return s.lines[i], true
	}
	return domain.CartLine{}, false
}
