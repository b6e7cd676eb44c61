package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore simulates disabled or full browser-style storage.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("storage disabled")
}

func (failingStore) Set(ctx context.Context, key, value string) error {
	return errors.New("quota exceeded")
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return errors.New("storage disabled")
}

func sampleCart() []model.CartLineItem {
	return []model.CartLineItem{
		{
			ProductID:   "b-1",
			DisplayName: "Gold Plated Kada",
			UnitPrice:   1299,
			ImageURL:    "https://cdn.example.com/bangles/kada.png",
			Size:        "2.6",
			ColorName:   "Gold",
			ColorHex:    "#ffd700",
			Quantity:    2,
			OrderClass:  model.OrderClassRetail,
		},
		{
			ProductID:   "b-2",
			DisplayName: "Classic Glass Bangle Set",
			UnitPrice:   350,
			Size:        "2.4",
			ColorName:   "Emerald",
			ColorHex:    "#50c878",
			Quantity:    12,
			OrderClass:  model.OrderClassWholesale,
		},
	}
}

func TestCartSnapshotRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCartSnapshotRepository(storage.NewMemoryStore(), "")

	repo.Save(ctx, sampleCart())
	assert.Equal(t, sampleCart(), repo.Load(ctx))
}

func TestCartSnapshotRepository_EmptyWhenMissing(t *testing.T) {
	repo := NewCartSnapshotRepository(storage.NewMemoryStore(), "cart:nobody")

	items := repo.Load(context.Background())
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCartSnapshotRepository_MalformedSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, CartSnapshotKey, "{not json"))

	repo := NewCartSnapshotRepository(store, "")
	assert.NotPanics(t, func() {
		assert.Empty(t, repo.Load(ctx))
	})
}

func TestCartSnapshotRepository_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewCartSnapshotRepository(store, "")

	repo.Save(ctx, sampleCart()[:1])

	raw, err := store.Get(ctx, CartSnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"banglesId": "b-1",
		"name": "Gold Plated Kada",
		"price": 1299,
		"imageUrl": "https://cdn.example.com/bangles/kada.png",
		"size": "2.6",
		"color": "Gold",
		"colorHex": "#ffd700",
		"quantity": 2,
		"orderType": "retail"
	}]`, raw)
}

func TestCartSnapshotRepository_LegacyFields(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, CartSnapshotKey, `[
		{"productId":"b-9","name":"Silver Oxidised Bangle","price":799,"size":"2.4","color":"Silver","colorHex":"#c0c0c0","quantity":1}
	]`))

	items := NewCartSnapshotRepository(store, "").Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "b-9", items[0].ProductID)
	assert.Equal(t, model.OrderClassRetail, items[0].OrderClass)
	assert.Empty(t, items[0].ImageURL)
}

func TestCartSnapshotRepository_SkipsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, CartSnapshotKey, `[
		{"banglesId":"","name":"no id","quantity":1},
		{"banglesId":"b-1","name":"zero","quantity":0},
		{"banglesId":"b-2","name":"bad class","quantity":1,"orderType":"bulk"},
		{"banglesId":"b-3","name":"ok","quantity":4}
	]`))

	items := NewCartSnapshotRepository(store, "").Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "b-3", items[0].ProductID)
}

func TestCartSnapshotRepository_StorageFailureIsSwallowed(t *testing.T) {
	repo := NewCartSnapshotRepository(failingStore{}, "")
	ctx := context.Background()

	assert.NotPanics(t, func() {
		repo.Save(ctx, sampleCart())
	})
	assert.Empty(t, repo.Load(ctx))
}

func TestWishlistSnapshotRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewWishlistSnapshotRepository(storage.NewMemoryStore(), "wishlist:s1")

	items := []model.WishlistItem{
		{
			ProductID:   "b-1",
			DisplayName: "Gold Plated Kada",
			UnitPrice:   1299,
			ImageURL:    "https://cdn.example.com/bangles/kada.png",
			AddedAt:     time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		{ProductID: "b-2", DisplayName: "Glass Set", UnitPrice: 499},
	}

	repo.Save(ctx, items)
	assert.Equal(t, items, repo.Load(ctx))
}

func TestWishlistSnapshotRepository_Malformed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, WishlistSnapshotKey, `"oops"`))

	assert.Empty(t, NewWishlistSnapshotRepository(store, "").Load(ctx))
}

func TestCartSnapshotRepository_RestoreReportsReadFailure(t *testing.T) {
	ctx := context.Background()

	_, err := NewCartSnapshotRepository(failingStore{}, "").Restore(ctx)
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)

	items, err := NewCartSnapshotRepository(storage.NewMemoryStore(), "").Restore(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCartSnapshotRepository_MergesDuplicateIdentities(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, CartSnapshotKey, `[
		{"banglesId":"b-1","name":"Gold Plated Kada","price":1299,"size":"2.6","color":"Gold","colorHex":"#ffd700","quantity":2},
		{"banglesId":"b-1","name":"Gold Plated Kada","price":1099,"size":"2.4","color":"Gold","colorHex":"#ffd700","quantity":1},
		{"productId":"b-1","name":"Renamed Kada","price":999,"size":"2.6","color":"Gold","colorHex":"#ffd700","quantity":3}
	]`))

	items := NewCartSnapshotRepository(store, "").Load(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "2.6", items[0].Size)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Gold Plated Kada", items[0].DisplayName)
	assert.Equal(t, 1299.0, items[0].UnitPrice)
	assert.Equal(t, "2.4", items[1].Size)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestWishlistSnapshotRepository_DropsDuplicateProducts(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, WishlistSnapshotKey, `[
		{"banglesId":"b-1","name":"Gold Plated Kada","price":1299},
		{"banglesId":"b-2","name":"Glass Set","price":499},
		{"banglesId":"b-1","name":"Gold Plated Kada","price":999}
	]`))

	repo := NewWishlistSnapshotRepository(store, "")
	items := repo.Load(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, 1299.0, items[0].UnitPrice)

	_, err := NewWishlistSnapshotRepository(failingStore{}, "").Restore(ctx)
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}
