package model

import "time"

// WishlistItem is a product saved for later. A product appears at most once.
type WishlistItem struct {
	ProductID   string    `json:"product_id"`
	DisplayName string    `json:"name"`
	UnitPrice   float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}
