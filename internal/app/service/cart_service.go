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

var (
	ErrInvalidSession   = errors.New("invalid cart session")
	ErrInvalidCartItem  = errors.New("invalid cart item")
	ErrInvalidColorHex  = errors.New("color hex must be a 6-digit hex value")
	ErrInvalidOrderType = errors.New("order type must be retail or wholesale")

	// ErrStorageUnavailable is returned when a session's snapshot cannot be
	// read. The session is not cached, so the next request retries.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// CartNotifier is told about every cart change, e.g. to sync other tabs.
type CartNotifier interface {
	NotifyCart(sessionID string, summary model.CartSummary)
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (model.CartSummary, error)
	AddItem(ctx context.Context, sessionID string, item model.CartLineItem) (model.CartSummary, error)
	RemoveItem(ctx context.Context, sessionID string, id model.LineIdentity) (model.CartSummary, error)
	UpdateQuantity(ctx context.Context, sessionID string, id model.LineIdentity, quantity int) (model.CartSummary, error)
	ClearCart(ctx context.Context, sessionID string) (model.CartSummary, error)
	EvictIdle(maxIdle time.Duration) int
}

type cartSession struct {
	store    *CartStore
	lastUsed time.Time
}

type cartService struct {
	kv       storage.KeyValueStore
	notifier CartNotifier
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*cartSession
}

func NewCartService(kv storage.KeyValueStore, notifier CartNotifier) CartService {
	return &cartService{
		kv:       kv,
		notifier: notifier,
		now:      time.Now,
		sessions: make(map[string]*cartSession),
	}
}

// CartKey is the snapshot key of a session's cart.
func CartKey(sessionID string) string {
	return repository.CartSnapshotKey + ":" + sessionID
}

// store returns the session's cart, restoring it from its snapshot on first use.
func (s *cartService) store(ctx context.Context, sessionID string) (*CartStore, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		repo := repository.NewCartSnapshotRepository(s.kv, CartKey(sessionID))
		store, err := RestoreCartStore(ctx, repo)
		if err != nil {
			logger.Error("Failed to restore cart session", err, map[string]interface{}{
				"session_id": sessionID,
			})
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		sess = &cartSession{store: store}
		s.sessions[sessionID] = sess

		logger.Debug("Cart session restored", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	sess.lastUsed = s.now()
	return sess.store, nil
}

func (s *cartService) publish(sessionID string, summary model.CartSummary) {
	if s.notifier != nil {
		s.notifier.NotifyCart(sessionID, summary)
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (model.CartSummary, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return model.CartSummary{}, err
	}
	return store.Summary(), nil
}

// ValidateCartItem checks what the cart itself cannot: identity fields,
// price, color swatch and order class. It normalizes ColorHex in place.
func ValidateCartItem(item *model.CartLineItem) error {
	if item.ProductID == "" || item.Size == "" || item.ColorName == "" {
		return ErrInvalidCartItem
	}
	if item.Quantity < 1 || item.UnitPrice < 0 {
		return ErrInvalidCartItem
	}
	hex, ok := model.NormalizeColorHex(item.ColorHex)
	if !ok {
		return ErrInvalidColorHex
	}
	item.ColorHex = hex
	if !item.OrderClass.Valid() {
		return ErrInvalidOrderType
	}
	return nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, item model.CartLineItem) (model.CartSummary, error) {
	if err := ValidateCartItem(&item); err != nil {
		logger.Warn("Rejected cart item", map[string]interface{}{
			"session_id": sessionID,
			"product_id": item.ProductID,
			"error":      err.Error(),
		})
		return model.CartSummary{}, err
	}

	store, err := s.store(ctx, sessionID)
	if err != nil {
		return model.CartSummary{}, err
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": item.ProductID,
		"size":       item.Size,
		"color":      item.ColorName,
		"quantity":   item.Quantity,
	})

	store.AddItem(ctx, item)
	summary := store.Summary()
	s.publish(sessionID, summary)
	return summary, nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, id model.LineIdentity) (model.CartSummary, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return model.CartSummary{}, err
	}

	logger.Info("Removing item from cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": id.ProductID,
		"size":       id.Size,
		"color":      id.Color,
	})

	store.RemoveItem(ctx, id)
	summary := store.Summary()
	s.publish(sessionID, summary)
	return summary, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, id model.LineIdentity, quantity int) (model.CartSummary, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return model.CartSummary{}, err
	}

	logger.Info("Updating cart item quantity", map[string]interface{}{
		"session_id": sessionID,
		"product_id": id.ProductID,
		"size":       id.Size,
		"color":      id.Color,
		"quantity":   quantity,
	})

	store.UpdateQuantity(ctx, id, quantity)
	summary := store.Summary()
	s.publish(sessionID, summary)
	return summary, nil
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) (model.CartSummary, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return model.CartSummary{}, err
	}

	logger.Info("Clearing cart", map[string]interface{}{
		"session_id": sessionID,
	})

	store.ClearCart(ctx)
	summary := store.Summary()
	s.publish(sessionID, summary)
	return summary, nil
}

// EvictIdle drops carts untouched for maxIdle from memory. Their snapshots
// stay in the key-value store and are reloaded on the next request.
func (s *cartService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		logger.Info("Evicted idle cart sessions", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(s.sessions),
		})
	}
	return evicted
}
