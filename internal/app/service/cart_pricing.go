package service

import (
	"errors"
	"strings"

	"github.com/banglehouse/bangles-backend/internal/app/model"
)

var (
	ErrSizeUnavailable  = errors.New("size is not offered for this bangle")
	ErrColorUnavailable = errors.New("color is not offered for this bangle")
)

// CartSelection is what a shopper picks on a product page.
type CartSelection struct {
	Size      string
	ColorName string
	ColorHex  string
	Quantity  int
	OrderType model.OrderClass
}

// NewCartLineItem builds a line item from a catalog bangle. Name, image and
// the price for the order type come from the catalog. When the bangle lists
// sizes or colors the selection must be one of them, and the catalog's hex
// replaces the one sent by the client.
func NewCartLineItem(bangle *model.Bangle, sel CartSelection) (model.CartLineItem, error) {
	if !bangle.IsActive {
		return model.CartLineItem{}, ErrBangleNotFound
	}
	if !sel.OrderType.Valid() {
		return model.CartLineItem{}, ErrInvalidOrderType
	}
	if len(bangle.Sizes) > 0 && !bangle.Sizes.Has(sel.Size) {
		return model.CartLineItem{}, ErrSizeUnavailable
	}

	colorHex := sel.ColorHex
	if len(bangle.Colors) > 0 {
		found := false
		for _, c := range bangle.Colors {
			if strings.EqualFold(c.Name, sel.ColorName) {
				sel.ColorName = c.Name
				colorHex = c.Hex
				found = true
				break
			}
		}
		if !found {
			return model.CartLineItem{}, ErrColorUnavailable
		}
	}

	item := model.CartLineItem{
		ProductID:   bangle.ID,
		DisplayName: bangle.Name,
		UnitPrice:   bangle.PriceFor(sel.OrderType.OrDefault()),
		ImageURL:    bangle.ImageURL,
		Size:        sel.Size,
		ColorName:   sel.ColorName,
		ColorHex:    colorHex,
		Quantity:    sel.Quantity,
		OrderClass:  sel.OrderType.OrDefault(),
	}
	return item, ValidateCartItem(&item)
}

// NewWishlistItem copies the catalog fields a wishlist shows.
func NewWishlistItem(bangle *model.Bangle) (model.WishlistItem, error) {
	if !bangle.IsActive {
		return model.WishlistItem{}, ErrBangleNotFound
	}
	return model.WishlistItem{
		ProductID:   bangle.ID,
		DisplayName: bangle.Name,
		UnitPrice:   bangle.Price,
		ImageURL:    bangle.ImageURL,
	}, nil
}
