package service

import (
	"errors"
	"strings"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/internal/app/repository"
	"github.com/banglehouse/bangles-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBangleNotFound = errors.New("bangle not found")
	ErrInvalidBangle  = errors.New("invalid bangle")
)

// BangleInput carries the admin-editable fields of a bangle.
type BangleInput struct {
	Name           string
	Description    string
	Price          float64
	WholesalePrice float64
	ImageURL       string
	Sizes          []string
	Colors         []model.BangleColor
	StockQuantity  int
	IsActive       *bool
}

type BangleService interface {
	ListBangles(filter repository.BangleFilter) ([]model.Bangle, error)
	GetBangle(id string) (*model.Bangle, error)
	CreateBangle(input BangleInput) (*model.Bangle, error)
	UpdateBangle(id string, input BangleInput) (*model.Bangle, error)
}

type bangleService struct {
	bangleRepo repository.BangleRepository
}

func NewBangleService(bangleRepo repository.BangleRepository) BangleService {
	return &bangleService{bangleRepo: bangleRepo}
}

func (s *bangleService) ListBangles(filter repository.BangleFilter) ([]model.Bangle, error) {
	bangles, err := s.bangleRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list bangles", err, nil)
		return nil, err
	}
	return bangles, nil
}

func (s *bangleService) GetBangle(id string) (*model.Bangle, error) {
	bangle, err := s.bangleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Bangle not found", map[string]interface{}{
				"bangle_id": id,
			})
			return nil, ErrBangleNotFound
		}
		logger.Error("Failed to fetch bangle", err, map[string]interface{}{
			"bangle_id": id,
		})
		return nil, err
	}
	return bangle, nil
}

// normalizeBangleInput trims names and validates prices and color swatches.
func normalizeBangleInput(input *BangleInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Price < 0 || input.WholesalePrice < 0 || input.StockQuantity < 0 {
		return ErrInvalidBangle
	}

	sizes := make([]string, 0, len(input.Sizes))
	for _, size := range input.Sizes {
		if size = strings.TrimSpace(size); size != "" {
			sizes = append(sizes, size)
		}
	}
	input.Sizes = sizes

	for i := range input.Colors {
		hex, ok := model.NormalizeColorHex(input.Colors[i].Hex)
		if !ok || strings.TrimSpace(input.Colors[i].Name) == "" {
			return ErrInvalidColorHex
		}
		input.Colors[i].Name = strings.TrimSpace(input.Colors[i].Name)
		input.Colors[i].Hex = hex
	}
	return nil
}

func (s *bangleService) CreateBangle(input BangleInput) (*model.Bangle, error) {
	if err := normalizeBangleInput(&input); err != nil {
		logger.Warn("Rejected bangle", map[string]interface{}{
			"name":  input.Name,
			"error": err.Error(),
		})
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	bangle := &model.Bangle{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		WholesalePrice: input.WholesalePrice,
		ImageURL:       input.ImageURL,
		Sizes:          model.SizeList(input.Sizes),
		Colors:         input.Colors,
		StockQuantity:  input.StockQuantity,
		IsActive:       active,
	}

	if err := s.bangleRepo.Create(bangle); err != nil {
		logger.Error("Failed to create bangle", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Bangle created", map[string]interface{}{
		"bangle_id": bangle.ID,
		"name":      bangle.Name,
	})
	return bangle, nil
}

func (s *bangleService) UpdateBangle(id string, input BangleInput) (*model.Bangle, error) {
	if err := normalizeBangleInput(&input); err != nil {
		return nil, err
	}

	bangle, err := s.GetBangle(id)
	if err != nil {
		return nil, err
	}

	bangle.Name = input.Name
	bangle.Description = input.Description
	bangle.Price = input.Price
	bangle.WholesalePrice = input.WholesalePrice
	bangle.ImageURL = input.ImageURL
	bangle.Sizes = model.SizeList(input.Sizes)
	bangle.StockQuantity = input.StockQuantity
	if input.IsActive != nil {
		bangle.IsActive = *input.IsActive
	}

	if err := s.bangleRepo.Update(bangle); err != nil {
		logger.Error("Failed to update bangle", err, map[string]interface{}{
			"bangle_id": id,
		})
		return nil, err
	}

	if input.Colors != nil {
		if err := s.bangleRepo.ReplaceColors(id, input.Colors); err != nil {
			return nil, err
		}
	}

	logger.Info("Bangle updated", map[string]interface{}{
		"bangle_id": id,
	})
	return s.GetBangle(id)
}
