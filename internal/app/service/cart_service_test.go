package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notification struct {
	sessionID string
	summary   model.CartSummary
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyCart(sessionID string, summary model.CartSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{sessionID: sessionID, summary: summary})
}

func (n *recordingNotifier) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

func setupCartServiceTest(t *testing.T) (*cartService, *storage.MemoryStore, *recordingNotifier) {
	kv := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	svc := NewCartService(kv, notifier).(*cartService)
	return svc, kv, notifier
}

func TestCartService_GetCart(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t)
	ctx := context.Background()

	summary, err := svc.GetCart(ctx, "session-1")
	require.NoError(t, err)
	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, summary.TotalItems)

	_, err = svc.GetCart(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestCartService_AddItem(t *testing.T) {
	svc, kv, notifier := setupCartServiceTest(t)
	ctx := context.Background()

	item := goldKada(2)
	item.ColorHex = "FFD700"
	summary, err := svc.AddItem(ctx, "session-1", item)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "#ffd700", summary.Items[0].ColorHex)
	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, 2598.0, summary.TotalAmount)

	last := notifier.last()
	assert.Equal(t, "session-1", last.sessionID)
	assert.Equal(t, summary, last.summary)

	_, err = kv.Get(ctx, CartKey("session-1"))
	assert.NoError(t, err)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	svc, kv, notifier := setupCartServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*model.CartLineItem)
		wantErr error
	}{
		{"Missing product", func(i *model.CartLineItem) { i.ProductID = "" }, ErrInvalidCartItem},
		{"Missing size", func(i *model.CartLineItem) { i.Size = "" }, ErrInvalidCartItem},
		{"Missing color", func(i *model.CartLineItem) { i.ColorName = "" }, ErrInvalidCartItem},
		{"Zero quantity", func(i *model.CartLineItem) { i.Quantity = 0 }, ErrInvalidCartItem},
		{"Negative price", func(i *model.CartLineItem) { i.UnitPrice = -1 }, ErrInvalidCartItem},
		{"Bad hex", func(i *model.CartLineItem) { i.ColorHex = "gold" }, ErrInvalidColorHex},
		{"Bad order type", func(i *model.CartLineItem) { i.OrderClass = "bulk" }, ErrInvalidOrderType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := goldKada(1)
			tt.mutate(&item)

			_, err := svc.AddItem(ctx, "session-1", item)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 0, kv.Len())
	assert.Empty(t, notifier.sent)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	svc, _, notifier := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "session-1", goldKada(2))
	require.NoError(t, err)

	summary, err := svc.UpdateQuantity(ctx, "session-1", goldKada(1).Identity(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalItems)

	summary, err = svc.RemoveItem(ctx, "session-1", goldKada(1).Identity())
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Len(t, notifier.sent, 3)
}

func TestCartService_ClearCart(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "session-1", goldKada(2))
	require.NoError(t, err)

	summary, err := svc.ClearCart(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0.0, summary.TotalAmount)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "session-1", goldKada(2))
	require.NoError(t, err)

	other, err := svc.GetCart(ctx, "session-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestCartService_EvictIdle(t *testing.T) {
	svc, _, _ := setupCartServiceTest(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.AddItem(ctx, "idle", goldKada(2))
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = svc.GetCart(ctx, "active")
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, svc.EvictIdle(30*time.Minute))
	assert.Len(t, svc.sessions, 1)
	assert.Contains(t, svc.sessions, "active")

	// Evicted carts come back from their snapshot.
	summary, err := svc.GetCart(ctx, "idle")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalItems)
}

func TestCartService_NilNotifier(t *testing.T) {
	svc := NewCartService(storage.NewMemoryStore(), nil)

	_, err := svc.AddItem(context.Background(), "session-1", goldKada(1))
	assert.NoError(t, err)
}

func TestCartService_ReadFailureKeepsStoredCart(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{MemoryStore: storage.NewMemoryStore()}

	first := NewCartService(kv, nil)
	_, err := first.AddItem(ctx, "session-1", goldKada(3))
	require.NoError(t, err)
	stored, err := kv.MemoryStore.Get(ctx, CartKey("session-1"))
	require.NoError(t, err)

	// A fresh process hits one failed read
	second := NewCartService(kv, nil)
	kv.failGets = 1

	other := goldKada(1)
	other.Size = "2.4"
	_, err = second.AddItem(ctx, "session-1", other)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	after, err := kv.MemoryStore.Get(ctx, CartKey("session-1"))
	require.NoError(t, err)
	assert.Equal(t, stored, after)

	// The next request loads the stored cart
	summary, err := second.AddItem(ctx, "session-1", other)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 4, summary.TotalItems)
}
