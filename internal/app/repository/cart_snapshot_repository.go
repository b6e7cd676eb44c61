package repository

import (
	"context"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/storage"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

// CartSnapshotKey is the fixed key a cart snapshot is stored under.
const CartSnapshotKey = "cart"

// CartSnapshotRepository persists a whole cart as one serialized value.
// Load and Save never fail: a missing or corrupt snapshot loads as an empty
// cart, and a failed write leaves the caller's in-memory cart as the only
// copy. Restore is Load for callers that keep the result: it returns
// ErrSnapshotUnavailable when the store cannot be read.
type CartSnapshotRepository interface {
	Load(ctx context.Context) []model.CartLineItem
	Restore(ctx context.Context) ([]model.CartLineItem, error)
	Save(ctx context.Context, items []model.CartLineItem)
}

type cartSnapshotRepository struct {
	store storage.KeyValueStore
	key   string
}

// NewCartSnapshotRepository binds a snapshot to key; an empty key means
// CartSnapshotKey.
func NewCartSnapshotRepository(store storage.KeyValueStore, key string) CartSnapshotRepository {
	if key == "" {
		key = CartSnapshotKey
	}
	return &cartSnapshotRepository{store: store, key: key}
}

// cartSnapshotRecord is the persisted shape of one line item. Older snapshots
// used productId instead of banglesId; both are accepted on read.
type cartSnapshotRecord struct {
	BanglesID string           `json:"banglesId,omitempty"`
	ProductID string           `json:"productId,omitempty"`
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
	ColorHex  string           `json:"colorHex"`
	Quantity  int              `json:"quantity"`
	OrderType model.OrderClass `json:"orderType,omitempty"`
}

func toCartSnapshotRecord(item model.CartLineItem) cartSnapshotRecord {
	return cartSnapshotRecord{
		BanglesID: item.ProductID,
		Name:      item.DisplayName,
		Price:     item.UnitPrice,
		ImageURL:  item.ImageURL,
		Size:      item.Size,
		Color:     item.ColorName,
		ColorHex:  item.ColorHex,
		Quantity:  item.Quantity,
		OrderType: item.OrderClass.OrDefault(),
	}
}

func (r cartSnapshotRecord) toLineItem() model.CartLineItem {
	productID := r.BanglesID
	if productID == "" {
		productID = r.ProductID
	}
	return model.CartLineItem{
		ProductID:   productID,
		DisplayName: r.Name,
		UnitPrice:   r.Price,
		ImageURL:    r.ImageURL,
		Size:        r.Size,
		ColorName:   r.Color,
		ColorHex:    r.ColorHex,
		Quantity:    r.Quantity,
		OrderClass:  r.OrderType.OrDefault(),
	}
}

func (r *cartSnapshotRepository) Load(ctx context.Context) []model.CartLineItem {
	items, err := r.Restore(ctx)
	if err != nil {
		return []model.CartLineItem{}
	}
	return items
}

// Restore reads the snapshot. Entries sharing an identity are merged into the
// first one, the same way AddItem merges them.
func (r *cartSnapshotRepository) Restore(ctx context.Context) ([]model.CartLineItem, error) {
	var records []cartSnapshotRecord
	found, err := readSnapshot(ctx, r.store, r.key, &records)
	if err != nil {
		return nil, err
	}
	if !found {
		return []model.CartLineItem{}, nil
	}

	items := make([]model.CartLineItem, 0, len(records))
	seen := make(map[model.LineIdentity]int, len(records))
	for _, rec := range records {
		item := rec.toLineItem()
		if item.ProductID == "" || item.Quantity < 1 || !item.OrderClass.Valid() {
			logger.Warn("Skipping invalid cart snapshot entry", map[string]interface{}{
				"key":        r.key,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			})
			continue
		}
		if i, dup := seen[item.Identity()]; dup {
			logger.Warn("Merging duplicate cart snapshot entry", map[string]interface{}{
				"key":        r.key,
				"product_id": item.ProductID,
				"size":       item.Size,
				"color":      item.ColorName,
			})
			items[i].Quantity += item.Quantity
			continue
		}
		seen[item.Identity()] = len(items)
		items = append(items, item)
	}

	logger.Debug("Cart snapshot loaded", map[string]interface{}{
		"key":   r.key,
		"count": len(items),
	})
	return items, nil
}

func (r *cartSnapshotRepository) Save(ctx context.Context, items []model.CartLineItem) {
	records := make([]cartSnapshotRecord, 0, len(items))
	for _, item := range items {
		records = append(records, toCartSnapshotRecord(item))
	}
	writeSnapshot(ctx, r.store, r.key, records)
}
