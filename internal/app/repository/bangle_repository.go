package repository

import (
	"fmt"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/pkg/logger"
	"gorm.io/gorm"
)

type BangleSort string

const (
	BangleSortPrice     BangleSort = "price"
	BangleSortCreatedAt BangleSort = "created_at"
	BangleSortName      BangleSort = "name"
)

type BangleFilter struct {
	Search          string
	IncludeInactive bool
	SortBy          BangleSort
	SortAscending   bool
	Limit           int
	Offset          int
}

type BangleRepository interface {
	Create(bangle *model.Bangle) error
	BulkCreate(bangles []model.Bangle, batchSize int) error
	FindWithFilter(filter BangleFilter) ([]model.Bangle, error)
	FindByID(id string) (*model.Bangle, error)
	Update(bangle *model.Bangle) error
	ReplaceColors(bangleID string, colors []model.BangleColor) error
}

type bangleRepository struct {
	db *gorm.DB
}

func NewBangleRepository(db *gorm.DB) BangleRepository {
	return &bangleRepository{db: db}
}

func (r *bangleRepository) Create(bangle *model.Bangle) error {
	logger.Debug("Creating bangle in database", map[string]interface{}{
		"name":   bangle.Name,
		"price":  bangle.Price,
		"colors": len(bangle.Colors),
	})

	if err := r.db.Create(bangle).Error; err != nil {
		logger.Error("Failed to create bangle in database", err, map[string]interface{}{
			"name": bangle.Name,
		})
		return err
	}

	logger.Debug("Bangle created in database", map[string]interface{}{
		"bangle_id": bangle.ID,
		"name":      bangle.Name,
	})
	return nil
}

func (r *bangleRepository) BulkCreate(bangles []model.Bangle, batchSize int) error {
	logger.Debug("Bulk creating bangles in database", map[string]interface{}{
		"count":      len(bangles),
		"batch_size": batchSize,
	})

	if len(bangles) == 0 {
		return nil
	}

	if err := r.db.CreateInBatches(bangles, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create bangles in database", err, map[string]interface{}{
			"count": len(bangles),
		})
		return err
	}

	logger.Debug("Bangles bulk created in database", map[string]interface{}{
		"count": len(bangles),
	})
	return nil
}

func (r *bangleRepository) FindWithFilter(filter BangleFilter) ([]model.Bangle, error) {
	logger.Debug("Finding bangles with filter", map[string]interface{}{
		"search":           filter.Search,
		"include_inactive": filter.IncludeInactive,
		"sort_by":          filter.SortBy,
		"ascending":        filter.SortAscending,
		"limit":            filter.Limit,
		"offset":           filter.Offset,
	})

	query := r.db.Model(&model.Bangle{}).Preload("Colors")

	if !filter.IncludeInactive {
		query = query.Where("bangles.is_active = ?", true)
	}

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("bangles.name LIKE ? OR bangles.description LIKE ?", like, like)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case BangleSortPrice:
		query = query.Order("bangles.price " + direction)
	case BangleSortName:
		query = query.Order("bangles.name " + direction)
	default:
		query = query.Order("bangles.created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var bangles []model.Bangle
	if err := query.Find(&bangles).Error; err != nil {
		logger.Error("Failed to find bangles with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	logger.Debug("Bangles found with filter", map[string]interface{}{
		"count": len(bangles),
	})
	return bangles, nil
}

func (r *bangleRepository) FindByID(id string) (*model.Bangle, error) {
	logger.Debug("Finding bangle by ID in database", map[string]interface{}{
		"bangle_id": id,
	})

	var bangle model.Bangle
	if err := r.db.Preload("Colors").Where("id = ?", id).First(&bangle).Error; err != nil {
		logger.Error("Failed to find bangle by ID in database", err, map[string]interface{}{
			"bangle_id": id,
		})
		return nil, err
	}

	return &bangle, nil
}

func (r *bangleRepository) Update(bangle *model.Bangle) error {
	logger.Debug("Updating bangle in database", map[string]interface{}{
		"bangle_id": bangle.ID,
	})

	if err := r.db.Omit("Colors").Save(bangle).Error; err != nil {
		logger.Error("Failed to update bangle in database", err, map[string]interface{}{
			"bangle_id": bangle.ID,
		})
		return err
	}

	logger.Debug("Bangle updated in database", map[string]interface{}{
		"bangle_id": bangle.ID,
	})
	return nil
}

func (r *bangleRepository) ReplaceColors(bangleID string, colors []model.BangleColor) error {
	logger.Debug("Replacing bangle colors in database", map[string]interface{}{
		"bangle_id": bangleID,
		"count":     len(colors),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bangle_id = ?", bangleID).Delete(&model.BangleColor{}).Error; err != nil {
			return err
		}
		for i := range colors {
			colors[i].ID = 0
			colors[i].BangleID = bangleID
		}
		if len(colors) == 0 {
			return nil
		}
		return tx.Create(&colors).Error
	})
	if err != nil {
		logger.Error("Failed to replace bangle colors in database", err, map[string]interface{}{
			"bangle_id": bangleID,
		})
		return err
	}
	return nil
}
