package controller

import (
	"errors"
	"net/http"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/app/service"
	apperrors "github.com/banglehouse/bangles-backend/internal/errors"
	"github.com/banglehouse/bangles-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlistService service.WishlistService
	bangleService   service.BangleService
}

func NewWishlistController(wishlistService service.WishlistService, bangleService service.BangleService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
		bangleService:   bangleService,
	}
}

type WishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func respondWishlistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSession):
		apperrors.BadRequest(c, apperrors.SessionMissing, "Cart session is missing")
	case errors.Is(err, service.ErrStorageUnavailable):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalStorageError, "Saved session could not be loaded, please retry")
	case errors.Is(err, service.ErrBangleNotFound):
		apperrors.NotFound(c, apperrors.BangleNotFound, "Bangle not found")
	case errors.Is(err, service.ErrInvalidWishlistItem):
		apperrors.BadRequest(c, apperrors.WishlistInvalidItem, err.Error())
	default:
		apperrors.InternalError(c, "Failed to update wishlist")
	}
}

// GetWishlist returns the session's wishlist
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	items, err := ctrl.wishlistService.Items(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// AddToWishlist saves a catalog bangle; adding it twice is a no-op
// POST /api/v1/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	var req WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid wishlist request", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	item, err := ctrl.catalogItem(req.ProductID)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	items, err := ctrl.wishlistService.Add(c.Request.Context(), sessionID, item)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// ToggleWishlist adds the bangle when absent and removes it when present
// POST /api/v1/wishlist/toggle
func (ctrl *WishlistController) ToggleWishlist(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	ctx := c.Request.Context()
	present, err := ctrl.wishlistService.Contains(ctx, sessionID, req.ProductID)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	// Removing needs no catalog lookup, so discontinued bangles can still go
	item := model.WishlistItem{ProductID: req.ProductID}
	if !present {
		if item, err = ctrl.catalogItem(req.ProductID); err != nil {
			respondWishlistError(c, err)
			return
		}
	}

	inWishlist, items, err := ctrl.wishlistService.Toggle(ctx, sessionID, item)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"in_wishlist": inWishlist,
		"items":       items,
		"count":       len(items),
	})
}

// RemoveFromWishlist removes one bangle, or clears the wishlist when no
// product_id is given
// DELETE /api/v1/wishlist?product_id=
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.GetSessionID(c)

	productID := c.Query("product_id")
	if productID == "" {
		if err := ctrl.wishlistService.Clear(ctx, sessionID); err != nil {
			respondWishlistError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": []interface{}{},
			"count": 0,
		})
		return
	}

	items, err := ctrl.wishlistService.Remove(ctx, sessionID, productID)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (ctrl *WishlistController) catalogItem(productID string) (model.WishlistItem, error) {
	bangle, err := ctrl.bangleService.GetBangle(productID)
	if err != nil {
		return model.WishlistItem{}, err
	}
	return service.NewWishlistItem(bangle)
}
