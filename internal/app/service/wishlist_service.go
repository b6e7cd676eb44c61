package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/app/repository"
	"github.com/banglehouse/bangles-backend/internal/storage"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

var ErrInvalidWishlistItem = errors.New("invalid wishlist item")

type WishlistService interface {
	Items(ctx context.Context, sessionID string) ([]model.WishlistItem, error)
	Add(ctx context.Context, sessionID string, item model.WishlistItem) ([]model.WishlistItem, error)
	Remove(ctx context.Context, sessionID, productID string) ([]model.WishlistItem, error)
	Toggle(ctx context.Context, sessionID string, item model.WishlistItem) (bool, []model.WishlistItem, error)
	Contains(ctx context.Context, sessionID, productID string) (bool, error)
	Clear(ctx context.Context, sessionID string) error
	EvictIdle(maxIdle time.Duration) int
}

// wishlist mirrors CartStore: one product per entry, saved after every change.
type wishlist struct {
	mu       sync.Mutex
	items    []model.WishlistItem
	repo     repository.WishlistSnapshotRepository
	lastUsed time.Time
}

func (w *wishlist) indexOf(productID string) int {
	for i := range w.items {
		if w.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (w *wishlist) snapshot() []model.WishlistItem {
	out := make([]model.WishlistItem, len(w.items))
	copy(out, w.items)
	return out
}

type wishlistService struct {
	kv  storage.KeyValueStore
	now func() time.Time

	mu        sync.Mutex
	wishlists map[string]*wishlist
}

func NewWishlistService(kv storage.KeyValueStore) WishlistService {
	return &wishlistService{
		kv:        kv,
		now:       time.Now,
		wishlists: make(map[string]*wishlist),
	}
}

// WishlistKey is the snapshot key of a session's wishlist.
func WishlistKey(sessionID string) string {
	return repository.WishlistSnapshotKey + ":" + sessionID
}

func (s *wishlistService) get(ctx context.Context, sessionID string) (*wishlist, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wishlists[sessionID]
	if !ok {
		repo := repository.NewWishlistSnapshotRepository(s.kv, WishlistKey(sessionID))
		items, err := repo.Restore(ctx)
		if err != nil {
			logger.Error("Failed to restore wishlist session", err, map[string]interface{}{
				"session_id": sessionID,
			})
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		w = &wishlist{items: items, repo: repo}
		s.wishlists[sessionID] = w
	}
	w.lastUsed = s.now()
	return w, nil
}

func (s *wishlistService) Items(ctx context.Context, sessionID string) ([]model.WishlistItem, error) {
	w, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot(), nil
}

// Add saves item unless its product is already present.
func (s *wishlistService) Add(ctx context.Context, sessionID string, item model.WishlistItem) ([]model.WishlistItem, error) {
	if item.ProductID == "" || item.UnitPrice < 0 {
		return nil, ErrInvalidWishlistItem
	}
	w, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.indexOf(item.ProductID) < 0 {
		if item.AddedAt.IsZero() {
			item.AddedAt = s.now().UTC().Truncate(time.Millisecond)
		}
		w.items = append(w.items, item)
		w.repo.Save(ctx, w.items)

		logger.Info("Item added to wishlist", map[string]interface{}{
			"session_id": sessionID,
			"product_id": item.ProductID,
		})
	}
	return w.snapshot(), nil
}

func (s *wishlistService) Remove(ctx context.Context, sessionID, productID string) ([]model.WishlistItem, error) {
	w, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOf(productID); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
		w.repo.Save(ctx, w.items)

		logger.Info("Item removed from wishlist", map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
		})
	}
	return w.snapshot(), nil
}

// Toggle adds item when absent and removes it when present. It reports
// whether the product is in the wishlist afterwards.
func (s *wishlistService) Toggle(ctx context.Context, sessionID string, item model.WishlistItem) (bool, []model.WishlistItem, error) {
	if item.ProductID == "" {
		return false, nil, ErrInvalidWishlistItem
	}
	present, err := s.Contains(ctx, sessionID, item.ProductID)
	if err != nil {
		return false, nil, err
	}

	var items []model.WishlistItem
	if present {
		items, err = s.Remove(ctx, sessionID, item.ProductID)
	} else {
		items, err = s.Add(ctx, sessionID, item)
	}
	return !present && err == nil, items, err
}

func (s *wishlistService) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	w, err := s.get(ctx, sessionID)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(productID) >= 0, nil
}

func (s *wishlistService) Clear(ctx context.Context, sessionID string) error {
	w, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = []model.WishlistItem{}
	w.repo.Save(ctx, w.items)

	logger.Info("Wishlist cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return nil
}

func (s *wishlistService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, w := range s.wishlists {
		if w.lastUsed.Before(cutoff) {
			delete(s.wishlists, id)
			evicted++
		}
	}
	return evicted
}
