package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jordanhale/storefront-backend/pkg/enums"
)

// Product is the canonical catalog listing. Stock is mutated only through the
// catalog repository's conditional stock operations.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Description   *string             `gorm:"column:description"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int                 `gorm:"column:stock_quantity;not null;default:0"`
	Status        enums.ProductStatus `gorm:"column:status;type:text;not null;default:'active'"`
	ImageURL      *string             `gorm:"column:image_url"`
	Tags          pq.StringArray      `gorm:"column:tags;type:text[]"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.ProductStatusActive
	}
	return nil
}
