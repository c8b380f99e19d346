// Package cart maintains the in-session cart line collection and its
// derived totals, persisted to durable storage on every mutation.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sellora/client-go/internal/model"
	"github.com/sellora/client-go/internal/storage"
	"github.com/sellora/client-go/pkg/logger"
)

// Store owns the cart lines for the lifetime of the session. All mutations
// serialize through a single mutex; none of them return errors to callers,
// an invalid target is always a silent no-op.
type Store struct {
	mu    sync.Mutex
	lines []model.CartLine
	kv    storage.KV
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Load restores the persisted line collection. Called once at startup;
// a missing or corrupt entry starts the session with an empty cart.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, storage.KeyCartItems)
	if err != nil {
		logger.Error("Failed to read persisted cart", err, nil)
		return
	}
	if !ok || raw == "" {
		return
	}

	var lines []model.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		logger.Warn("Discarding corrupt persisted cart", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.lines = lines

	logger.Debug("Cart restored from storage", map[string]interface{}{
		"lines": len(lines),
	})
}

// Add inserts a new line at quantity 1, or bumps an existing line by 1 up
// to the product's stock ceiling. Hitting the ceiling is a silent soft cap;
// the returned flag lets the caller surface feedback without changing that.
// A product with zero stock still gets its initial line.
func (s *Store) Add(ctx context.Context, product *model.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID != product.ID {
			continue
		}
		if s.lines[i].Quantity+1 > s.lines[i].StockCeiling() {
			logger.Debug("Add capped at stock ceiling", map[string]interface{}{
				"product_id": product.ID,
				"quantity":   s.lines[i].Quantity,
			})
			return false
		}
		s.lines[i].Quantity++
		s.persist(ctx)
		return true
	}

	s.lines = append(s.lines, model.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
		Stock:     product.Stock,
		ImageURL:  product.ImageURL,
	})
	s.persist(ctx)
	return true
}

// Decrease lowers a line's quantity by 1, removing it at quantity 1.
// Unknown products are a no-op.
func (s *Store) Decrease(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID != productID {
			continue
		}
		if s.lines[i].Quantity > 1 {
			s.lines[i].Quantity--
		} else {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		s.persist(ctx)
		return
	}
}

// Remove deletes a line unconditionally. Unknown products are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart, invoked after a checkout commits.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist(ctx)
}

// Lines returns a copy of the current line collection.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Totals recomputes amount and count from the lines. Always a full
// recomputation so displayed totals can never drift from the line state.
func (s *Store) Totals() model.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totals model.CartTotals
	for i := range s.lines {
		totals.Amount += s.lines[i].Price * float64(s.lines[i].Quantity)
		totals.Count += s.lines[i].Quantity
	}
	return totals
}

// persist writes the full line collection. Storage failures are logged and
// swallowed so a flaky disk never breaks the in-memory cart.
func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.lines)
	if err != nil {
		logger.Error("Failed to marshal cart lines", err, nil)
		return
	}
	if err := s.kv.Set(ctx, storage.KeyCartItems, string(raw)); err != nil {
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"lines": len(s.lines),
		})
	}
}
