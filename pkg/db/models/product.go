package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Product represents a catalog piece offered by a store. Barcode is
// optional and unique per store when present; WeightGrams is the metal
// weight, CaratWeight the total stone weight.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID             `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_products_store_sku"`
	SKU         string                `gorm:"column:sku;not null;uniqueIndex:ux_products_store_sku"`
	Barcode     *string               `gorm:"column:barcode"`
	Name        string                `gorm:"column:name;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Metal       *enums.Metal          `gorm:"column:metal;type:metal"`
	Purity      *string               `gorm:"column:purity"`
	WeightGrams *decimal.Decimal      `gorm:"column:weight_grams;type:numeric(10,3)"`
	Gemstones   pq.StringArray        `gorm:"column:gemstones;type:text[];not null;default:ARRAY[]::text[]"`
	CaratWeight *float64              `gorm:"column:carat_weight;type:numeric(7,3)"`
	ImageURL    *string               `gorm:"column:image_url"`
	PriceCents  int64                 `gorm:"column:price_cents;not null"`
	StockQty    int                   `gorm:"column:stock_qty;not null;default:0"`
	OneOfAKind  bool                  `gorm:"column:one_of_a_kind;not null;default:false"`
	Status      enums.ProductStatus   `gorm:"column:status;type:product_status;not null;default:'active'"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
