package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SizeList is stored as a postgres text[]; other dialects get the same
// array literal in a text column.
type SizeList []string

func (s SizeList) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

func (s *SizeList) Scan(src interface{}) error {
	return (*pq.StringArray)(s).Scan(src)
}

func (SizeList) GormDataType() string {
	return "text"
}

func (SizeList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Has reports whether size is one of the listed sizes.
func (s SizeList) Has(size string) bool {
	for _, v := range s {
		if v == size {
			return true
		}
	}
	return false
}

// Bangle is a catalog product.
type Bangle struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Price          float64        `gorm:"not null" json:"price"`            // retail price
	WholesalePrice float64        `gorm:"default:0" json:"wholesale_price"` // 0 means not sold wholesale
	ImageURL       string         `json:"image_url"`
	Sizes          SizeList       `json:"sizes"` // e.g. 2.4, 2.6, 2.8
	StockQuantity  int            `gorm:"default:0" json:"stock_quantity"`
	IsActive       bool           `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Colors []BangleColor `gorm:"foreignKey:BangleID;constraint:OnDelete:CASCADE" json:"colors"`
}

func (Bangle) TableName() string {
	return "bangles"
}

func (b *Bangle) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// PriceFor returns the unit price for the given order class. Wholesale falls
// back to retail when the bangle has no wholesale price.
func (b *Bangle) PriceFor(class OrderClass) float64 {
	if class == OrderClassWholesale && b.WholesalePrice > 0 {
		return b.WholesalePrice
	}
	return b.Price
}

type BangleColor struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	BangleID string `gorm:"type:varchar(36);not null;index" json:"bangle_id"`
	Name     string `gorm:"not null" json:"name"`
	Hex      string `gorm:"type:varchar(7);not null" json:"hex"`
}

func (BangleColor) TableName() string {
	return "bangle_colors"
}
