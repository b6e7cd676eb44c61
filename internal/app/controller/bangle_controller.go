package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/app/repository"
	"github.com/banglehouse/bangles-backend/internal/app/service"
	apperrors "github.com/banglehouse/bangles-backend/internal/errors"
	"github.com/banglehouse/bangles-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type BangleController struct {
	bangleService service.BangleService
}

func NewBangleController(bangleService service.BangleService) *BangleController {
	return &BangleController{
		bangleService: bangleService,
	}
}

type ColorRequest struct {
	Name string `json:"name" binding:"required"`
	Hex  string `json:"hex" binding:"required"`
}

type BangleRequest struct {
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description"`
	Price          float64        `json:"price" binding:"gte=0"`
	WholesalePrice float64        `json:"wholesale_price" binding:"gte=0"`
	ImageURL       string         `json:"image_url"`
	Sizes          []string       `json:"sizes"`
	Colors         []ColorRequest `json:"colors" binding:"dive"`
	StockQuantity  int            `json:"stock_quantity" binding:"gte=0"`
	IsActive       *bool          `json:"is_active"`
}

func (r BangleRequest) toInput() service.BangleInput {
	var colors []model.BangleColor
	if r.Colors != nil {
		colors = make([]model.BangleColor, 0, len(r.Colors))
		for _, c := range r.Colors {
			colors = append(colors, model.BangleColor{Name: c.Name, Hex: c.Hex})
		}
	}
	return service.BangleInput{
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		WholesalePrice: r.WholesalePrice,
		ImageURL:       r.ImageURL,
		Sizes:          r.Sizes,
		Colors:         colors,
		StockQuantity:  r.StockQuantity,
		IsActive:       r.IsActive,
	}
}

func respondBangleError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrBangleNotFound):
		apperrors.NotFound(c, apperrors.BangleNotFound, "Bangle not found")
	case errors.Is(err, service.ErrInvalidBangle), errors.Is(err, service.ErrInvalidColorHex):
		apperrors.BadRequest(c, apperrors.BangleInvalid, err.Error())
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// parseBangleFilter reads search, sort, order, limit and offset query params.
func parseBangleFilter(c *gin.Context) (repository.BangleFilter, error) {
	filter := repository.BangleFilter{
		Search: c.Query("search"),
		Limit:  defaultPageSize,
	}

	switch sortBy := repository.BangleSort(c.DefaultQuery("sort", string(repository.BangleSortCreatedAt))); sortBy {
	case repository.BangleSortPrice, repository.BangleSortName, repository.BangleSortCreatedAt:
		filter.SortBy = sortBy
	default:
		return filter, fmt.Errorf("invalid sort %q", sortBy)
	}

	switch order := c.DefaultQuery("order", "desc"); order {
	case "asc":
		filter.SortAscending = true
	case "desc":
	default:
		return filter, fmt.Errorf("invalid order %q", order)
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("invalid offset %q", v)
		}
		filter.Offset = offset
	}
	return filter, nil
}

// ListBangles returns active bangles
// GET /api/v1/products
func (ctrl *BangleController) ListBangles(c *gin.Context) {
	ctrl.list(c, false)
}

// ListAllBangles includes inactive bangles
// GET /api/v1/admin/products
func (ctrl *BangleController) ListAllBangles(c *gin.Context) {
	ctrl.list(c, true)
}

func (ctrl *BangleController) list(c *gin.Context, includeInactive bool) {
	log := middleware.GetLoggerFromContext(c)

	filter, err := parseBangleFilter(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}
	filter.IncludeInactive = includeInactive

	bangles, err := ctrl.bangleService.ListBangles(filter)
	if err != nil {
		log.Error("Failed to fetch bangles", err, nil)
		respondBangleError(c, err, "list bangles")
		return
	}

	log.Info("Bangles fetched successfully", map[string]interface{}{
		"count":  len(bangles),
		"search": filter.Search,
	})

	c.JSON(http.StatusOK, gin.H{
		"products": bangles,
		"count":    len(bangles),
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetBangle returns a bangle by ID
// GET /api/v1/products/:id
func (ctrl *BangleController) GetBangle(c *gin.Context) {
	bangle, err := ctrl.bangleService.GetBangle(c.Param("id"))
	if err == nil && !bangle.IsActive {
		err = service.ErrBangleNotFound
	}
	if err != nil {
		respondBangleError(c, err, "get bangle")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": bangle,
	})
}

// CreateBangle adds a bangle to the catalog
// POST /api/v1/admin/products
func (ctrl *BangleController) CreateBangle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BangleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create bangle request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	bangle, err := ctrl.bangleService.CreateBangle(req.toInput())
	if err != nil {
		respondBangleError(c, err, "create bangle")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": bangle,
	})
}

// UpdateBangle replaces a bangle's fields; colors are replaced only when sent
// PUT /api/v1/admin/products/:id
func (ctrl *BangleController) UpdateBangle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BangleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update bangle request", map[string]interface{}{
			"bangle_id": c.Param("id"),
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	bangle, err := ctrl.bangleService.UpdateBangle(c.Param("id"), req.toInput())
	if err != nil {
		respondBangleError(c, err, "update bangle")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": bangle,
	})
}

// ExportCatalog downloads the whole catalog as xlsx
// GET /api/v1/admin/products/export
func (ctrl *BangleController) ExportCatalog(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bangles, err := ctrl.bangleService.ListBangles(repository.BangleFilter{
		IncludeInactive: true,
		SortBy:          repository.BangleSortName,
		SortAscending:   true,
	})
	if err != nil {
		respondBangleError(c, err, "export bangles")
		return
	}

	var buf bytes.Buffer
	if err := service.ExportCatalog(bangles, &buf); err != nil {
		log.Error("Failed to build catalog export", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.CatalogExportError, "Failed to export catalog")
		return
	}

	filename := fmt.Sprintf("bangles-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())

	log.Info("Catalog exported", map[string]interface{}{
		"count": len(bangles),
	})
}
