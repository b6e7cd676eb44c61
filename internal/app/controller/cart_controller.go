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

type CartController struct {
	cartService   service.CartService
	bangleService service.BangleService
}

func NewCartController(cartService service.CartService, bangleService service.BangleService) *CartController {
	return &CartController{
		cartService:   cartService,
		bangleService: bangleService,
	}
}

type AddToCartRequest struct {
	ProductID string           `json:"product_id" binding:"required"`
	Size      string           `json:"size" binding:"required"`
	Color     string           `json:"color" binding:"required"`
	ColorHex  string           `json:"color_hex"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	OrderType model.OrderClass `json:"order_type"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"` // 0 or less removes the item
}

// respondCartError maps service errors to error responses.
func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSession):
		apperrors.BadRequest(c, apperrors.SessionMissing, "Cart session is missing")
	case errors.Is(err, service.ErrStorageUnavailable):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalStorageError, "Saved session could not be loaded, please retry")
	case errors.Is(err, service.ErrBangleNotFound):
		apperrors.NotFound(c, apperrors.BangleNotFound, "Bangle not found")
	case errors.Is(err, service.ErrInvalidColorHex),
		errors.Is(err, service.ErrColorUnavailable):
		apperrors.BadRequest(c, apperrors.CartInvalidColor, err.Error())
	case errors.Is(err, service.ErrInvalidOrderType):
		apperrors.BadRequest(c, apperrors.CartInvalidOrderType, err.Error())
	case errors.Is(err, service.ErrInvalidCartItem),
		errors.Is(err, service.ErrSizeUnavailable):
		apperrors.BadRequest(c, apperrors.CartInvalidItem, err.Error())
	default:
		apperrors.InternalError(c, "Failed to update cart")
	}
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	summary, err := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"session_id": sessionID,
		})
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddToCart adds a catalog bangle to the cart, merging with an existing
// entry of the same size and color
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	bangle, err := ctrl.bangleService.GetBangle(req.ProductID)
	if err != nil {
		respondCartError(c, err)
		return
	}

	item, err := service.NewCartLineItem(bangle, service.CartSelection{
		Size:      req.Size,
		ColorName: req.Color,
		ColorHex:  req.ColorHex,
		Quantity:  req.Quantity,
		OrderType: req.OrderType,
	})
	if err != nil {
		log.Warn("Rejected cart selection", map[string]interface{}{
			"session_id": sessionID,
			"product_id": req.ProductID,
			"error":      err.Error(),
		})
		respondCartError(c, err)
		return
	}

	summary, err := ctrl.cartService.AddItem(c.Request.Context(), sessionID, item)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateCartItem sets the quantity of one entry
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	id := model.LineIdentity{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	summary, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), sessionID, id, *req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RemoveFromCart removes one entry
// DELETE /api/v1/cart/items?product_id=&size=&color=
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	id := model.LineIdentity{
		ProductID: c.Query("product_id"),
		Size:      c.Query("size"),
		Color:     c.Query("color"),
	}
	if id.ProductID == "" || id.Size == "" || id.Color == "" {
		apperrors.RespondWithValidationError(c, map[string]string{
			"product_id": "required",
			"size":       "required",
			"color":      "required",
		})
		return
	}

	summary, err := ctrl.cartService.RemoveItem(c.Request.Context(), sessionID, id)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	summary, err := ctrl.cartService.ClearCart(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
