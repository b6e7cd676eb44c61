package controller

import (
	"errors"
	"net/http"

	"github.com/banglehouse/bangles-backend/internal/app/service"
	apperrors "github.com/banglehouse/bangles-backend/internal/errors"
	"github.com/banglehouse/bangles-backend/pkg/translate"
	"github.com/gin-gonic/gin"
)

const maxTranslateLength = 5000

type TranslationController struct {
	translationService service.TranslationService
}

func NewTranslationController(translationService service.TranslationService) *TranslationController {
	return &TranslationController{
		translationService: translationService,
	}
}

type TranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source" binding:"required"`
	Target string `json:"target" binding:"required"`
}

// Translate translates storefront copy; upstream failures return the
// original text
// POST /api/v1/translate
func (ctrl *TranslationController) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.TranslateInvalidRequest, err.Error())
		return
	}
	if len(req.Text) > maxTranslateLength {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Text is too long to translate")
		return
	}

	res, err := ctrl.translationService.Translate(c.Request.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		if errors.Is(err, translate.ErrInvalidRequest) {
			apperrors.BadRequest(c, apperrors.TranslateInvalidRequest, err.Error())
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, res)
}
