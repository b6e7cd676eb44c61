package repository

import (
	"context"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/storage"
)

// WishlistSnapshotKey is the fixed key a wishlist snapshot is stored under.
const WishlistSnapshotKey = "wishlist"

// WishlistSnapshotRepository has the same best-effort contract as
// CartSnapshotRepository.
type WishlistSnapshotRepository interface {
	Load(ctx context.Context) []model.WishlistItem
	Restore(ctx context.Context) ([]model.WishlistItem, error)
	Save(ctx context.Context, items []model.WishlistItem)
}

type wishlistSnapshotRepository struct {
	store storage.KeyValueStore
	key   string
}

func NewWishlistSnapshotRepository(store storage.KeyValueStore, key string) WishlistSnapshotRepository {
	if key == "" {
		key = WishlistSnapshotKey
	}
	return &wishlistSnapshotRepository{store: store, key: key}
}

type wishlistSnapshotRecord struct {
	BanglesID string  `json:"banglesId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	AddedAt   int64   `json:"addedAt"` // unix millis
}

func (r *wishlistSnapshotRepository) Load(ctx context.Context) []model.WishlistItem {
	items, err := r.Restore(ctx)
	if err != nil {
		return []model.WishlistItem{}
	}
	return items
}

// Restore reads the snapshot, keeping the first entry of each product.
func (r *wishlistSnapshotRepository) Restore(ctx context.Context) ([]model.WishlistItem, error) {
	var records []wishlistSnapshotRecord
	found, err := readSnapshot(ctx, r.store, r.key, &records)
	if err != nil {
		return nil, err
	}
	if !found {
		return []model.WishlistItem{}, nil
	}

	items := make([]model.WishlistItem, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.BanglesID == "" || seen[rec.BanglesID] {
			continue
		}
		seen[rec.BanglesID] = true
		items = append(items, model.WishlistItem{
			ProductID:   rec.BanglesID,
			DisplayName: rec.Name,
			UnitPrice:   rec.Price,
			ImageURL:    rec.ImageURL,
			AddedAt:     unixMilli(rec.AddedAt),
		})
	}
	return items, nil
}

func (r *wishlistSnapshotRepository) Save(ctx context.Context, items []model.WishlistItem) {
	records := make([]wishlistSnapshotRecord, 0, len(items))
	for _, item := range items {
		records = append(records, wishlistSnapshotRecord{
			BanglesID: item.ProductID,
			Name:      item.DisplayName,
			Price:     item.UnitPrice,
			ImageURL:  item.ImageURL,
			AddedAt:   toUnixMilli(item.AddedAt),
		})
	}
	writeSnapshot(ctx, r.store, r.key, records)
}

func unixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
