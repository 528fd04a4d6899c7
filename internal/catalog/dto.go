package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// ProductDTO is the catalog payload returned to register terminals and
// the back office.
type ProductDTO struct {
	ID          uuid.UUID             `json:"id"`
	SKU         string                `json:"sku"`
	Barcode     *string               `json:"barcode,omitempty"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Category    enums.ProductCategory `json:"category"`
	Metal       *enums.Metal          `json:"metal,omitempty"`
	Purity      *string               `json:"purity,omitempty"`
	WeightGrams *decimal.Decimal      `json:"weightGrams,omitempty"`
	Gemstones   []string              `json:"gemstones"`
	CaratWeight *float64              `json:"caratWeight,omitempty"`
	ImageURL    *string               `json:"imageUrl,omitempty"`
	PriceCents  int64                 `json:"priceCents"`
	StockQty    int                   `json:"stockQty"`
	OneOfAKind  bool                  `json:"oneOfAKind"`
	Status      enums.ProductStatus   `json:"status"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// ProductList is a cursor page of catalog products.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:         product.ID,
		SKU:        product.SKU,
		Name:       product.Name,
		Category:   product.Category,
		Gemstones:  append([]string{}, product.Gemstones...),
		PriceCents: product.PriceCents,
		StockQty:   product.StockQty,
		OneOfAKind: product.OneOfAKind,
		Status:     product.Status,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
	if product.Barcode != nil {
		barcode := *product.Barcode
		dto.Barcode = &barcode
	}
	if product.Description != nil {
		description := *product.Description
		dto.Description = &description
	}
	if product.Metal != nil {
		metal := *product.Metal
		dto.Metal = &metal
	}
	if product.Purity != nil {
		purity := *product.Purity
		dto.Purity = &purity
	}
	if product.WeightGrams != nil {
		weight := *product.WeightGrams
		dto.WeightGrams = &weight
	}
	if product.CaratWeight != nil {
		carat := *product.CaratWeight
		dto.CaratWeight = &carat
	}
	if product.ImageURL != nil {
		imageURL := *product.ImageURL
		dto.ImageURL = &imageURL
	}
	return dto
}
