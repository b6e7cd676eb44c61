package db

import (
	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by this service.
func Models() []interface{} {
	return []interface{}{
		&model.Bangle{},
		&model.BangleColor{},
		&model.KVEntry{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds a few sample bangles when the catalog is empty
func Seed() error {
	return seedBangles(DB)
}

func seedBangles(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Bangle{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Bangles already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding bangle catalog...")

	bangles := []model.Bangle{
		{
			Name:           "Classic Glass Bangle Set",
			Description:    "Set of 12 hand-painted glass bangles",
			Price:          499,
			WholesalePrice: 350,
			Sizes:          model.SizeList{"2.2", "2.4", "2.6", "2.8"},
			StockQuantity:  120,
			IsActive:       true,
			Colors: []model.BangleColor{
				{Name: "Ruby Red", Hex: "#9b111e"},
				{Name: "Emerald", Hex: "#50c878"},
			},
		},
		{
			Name:           "Gold Plated Kada",
			Description:    "Single gold plated kada with filigree work",
			Price:          1299,
			WholesalePrice: 999,
			Sizes:          model.SizeList{"2.4", "2.6", "2.8"},
			StockQuantity:  40,
			IsActive:       true,
			Colors: []model.BangleColor{
				{Name: "Gold", Hex: "#ffd700"},
				{Name: "Rose Gold", Hex: "#b76e79"},
			},
		},
		{
			Name:          "Silver Oxidised Bangle",
			Description:   "Oxidised silver finish with tribal motif",
			Price:         799,
			Sizes:         model.SizeList{"2.4", "2.6"},
			StockQuantity: 60,
			IsActive:      true,
			Colors: []model.BangleColor{
				{Name: "Silver", Hex: "#c0c0c0"},
			},
		},
	}

	for i := range bangles {
		if err := db.Create(&bangles[i]).Error; err != nil {
			logger.Error("Failed to create bangle", err, map[string]interface{}{
				"name": bangles[i].Name,
			})
			return err
		}
	}

	logger.Info("Bangle catalog seeded successfully", map[string]interface{}{
		"total_records": len(bangles),
	})
	return nil
}
