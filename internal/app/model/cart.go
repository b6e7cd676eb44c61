package model

import (
	"regexp"
	"strings"
)

type OrderClass string

const (
	OrderClassRetail    OrderClass = "retail"
	OrderClassWholesale OrderClass = "wholesale"
)

// Valid reports whether c is a known order class. The empty value is valid
// and means retail.
func (c OrderClass) Valid() bool {
	switch c {
	case "", OrderClassRetail, OrderClassWholesale:
		return true
	}
	return false
}

// OrDefault returns retail when c is unset.
func (c OrderClass) OrDefault() OrderClass {
	if c == "" {
		return OrderClassRetail
	}
	return c
}

// CartLineItem is one product/size/color selection in a cart. Name and price
// are copied from the catalog when the item is added and never re-fetched.
type CartLineItem struct {
	ProductID   string     `json:"product_id"`
	DisplayName string     `json:"name"`
	UnitPrice   float64    `json:"price"`
	ImageURL    string     `json:"image_url,omitempty"`
	Size        string     `json:"size"`
	ColorName   string     `json:"color"`
	ColorHex    string     `json:"color_hex"`
	Quantity    int        `json:"quantity"`
	OrderClass  OrderClass `json:"order_type"`
}

// LineIdentity is the (product, size, color) triple that decides whether two
// additions refer to the same cart entry.
type LineIdentity struct {
	ProductID string
	Size      string
	Color     string
}

func (i CartLineItem) Identity() LineIdentity {
	return LineIdentity{
		ProductID: i.ProductID,
		Size:      i.Size,
		Color:     i.ColorName,
	}
}

// Subtotal is UnitPrice × Quantity without rounding.
func (i CartLineItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

var colorHexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// NormalizeColorHex returns hex as "#rrggbb" in lower case, or false when it is
// not a 6-digit hex color.
func NormalizeColorHex(hex string) (string, bool) {
	hex = strings.TrimSpace(hex)
	if !colorHexPattern.MatchString(hex) {
		return "", false
	}
	return "#" + strings.ToLower(strings.TrimPrefix(hex, "#")), true
}

// CartSummary is what checkout and the storefront read from a cart.
type CartSummary struct {
	Items       []CartLineItem `json:"items"`
	TotalItems  int            `json:"total_items"`
	TotalAmount float64        `json:"total_amount"`
}
