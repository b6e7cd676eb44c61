package service

import (
	"context"
	"sync"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/app/repository"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

// CartStore owns one shopper's ordered list of line items. All access goes
// through its methods; every mutation ends with a synchronous snapshot save
// made while the lock is still held, so the stored snapshot always reflects
// the mutation that produced it. A failed save is logged by the repository
// and never reaches the caller.
type CartStore struct {
	mu    sync.Mutex
	items []model.CartLineItem
	repo  repository.CartSnapshotRepository
}

// NewCartStore restores the cart from repo, or starts empty.
func NewCartStore(ctx context.Context, repo repository.CartSnapshotRepository) *CartStore {
	return &CartStore{
		items: repo.Load(ctx),
		repo:  repo,
	}
}

// RestoreCartStore is NewCartStore for long-lived carts: when the snapshot
// cannot be read it fails instead of starting empty, so the first save does
// not overwrite a cart that is still stored.
func RestoreCartStore(ctx context.Context, repo repository.CartSnapshotRepository) (*CartStore, error) {
	items, err := repo.Restore(ctx)
	if err != nil {
		return nil, err
	}
	return &CartStore{items: items, repo: repo}, nil
}

func (s *CartStore) indexOf(id model.LineIdentity) int {
	for i := range s.items {
		if s.items[i].Identity() == id {
			return i
		}
	}
	return -1
}

// AddItem merges item into the cart. An entry with the same identity gets
// its quantity increased and keeps its original name and price; otherwise
// the item is appended with the order class defaulted to retail. Items with
// a quantity below 1 are ignored.
func (s *CartStore) AddItem(ctx context.Context, item model.CartLineItem) {
	if item.Quantity < 1 {
		logger.Warn("Ignoring cart item with non-positive quantity", map[string]interface{}{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.Identity()); i >= 0 {
		s.items[i].Quantity += item.Quantity
	} else {
		item.OrderClass = item.OrderClass.OrDefault()
		s.items = append(s.items, item)
	}
	s.repo.Save(ctx, s.items)
}

// RemoveItem deletes the entry with the given identity. Unknown identities
// are a no-op.
func (s *CartStore) RemoveItem(ctx context.Context, id model.LineIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	s.repo.Save(ctx, s.items)
}

func (s *CartStore) removeLocked(id model.LineIdentity) {
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// UpdateQuantity sets the entry's quantity. Zero or negative removes the
// entry.
func (s *CartStore) UpdateQuantity(ctx context.Context, id model.LineIdentity, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(id)
	} else if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.repo.Save(ctx, s.items)
}

// ClearCart empties the cart.
func (s *CartStore) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []model.CartLineItem{}
	s.repo.Save(ctx, s.items)
}

// Items returns a copy of the cart in insertion order.
func (s *CartStore) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of all quantities.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalAmount is the sum of price × quantity, unrounded.
func (s *CartStore) TotalAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalAmount(s.items)
}

// Summary returns items and totals computed from one consistent view.
func (s *CartStore) Summary() model.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.CartLineItem, len(s.items))
	copy(items, s.items)
	return model.CartSummary{
		Items:       items,
		TotalItems:  totalItems(items),
		TotalAmount: totalAmount(items),
	}
}

func totalItems(items []model.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalAmount(items []model.CartLineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
