package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/db"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management and the lookups the register
// terminals rely on.
type Service interface {
	Get(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error)
	GetBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*ProductDTO, error)
	GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*ProductDTO, error)
	Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error)
	Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, actor audit.Actor, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	ProductForSale(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
// New products always start active.
type CreateProductInput struct {
	SKU         string
	Barcode     *string
	Name        string
	Description *string
	Category    enums.ProductCategory
	Metal       *enums.Metal
	Purity      *string
	WeightGrams *decimal.Decimal
	Gemstones   []string
	CaratWeight *float64
	ImageURL    *string
	PriceCents  int64
	StockQty    int
	OneOfAKind  bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	SKU         *string
	Barcode     *string
	Name        *string
	Description *string
	Category    *enums.ProductCategory
	Metal       *enums.Metal
	Purity      *string
	WeightGrams *decimal.Decimal
	Gemstones   *[]string
	CaratWeight *float64
	ImageURL    *string
	PriceCents  *int64
	StockQty    *int
	OneOfAKind  *bool
	Status      *enums.ProductStatus
}

type service struct {
	tx        txRunner
	repo      Repository
	auditRepo audit.Repository
}

// NewService constructs a catalog service instance.
func NewService(tx txRunner, repo Repository, auditRepo audit.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		auditRepo: auditRepo,
	}, nil
}

func (s *service) Get(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadStoreProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

func (s *service) GetBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*ProductDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}

	product, err := s.repo.FindBySKU(ctx, storeID, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product by sku")
	}
	return NewProductDTO(product), nil
}

func (s *service) GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*ProductDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode required")
	}

	product, err := s.repo.FindByBarcode(ctx, storeID, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product by barcode")
	}
	return NewProductDTO(product), nil
}

func (s *service) Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if err := validateListFilters(filters); err != nil {
		return nil, err
	}

	list, err := s.repo.List(ctx, storeID, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

// Create inserts the product and its audit row in one transaction.
func (s *service) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:     storeID,
		SKU:         input.SKU,
		Barcode:     normalizeBarcode(input.Barcode),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Metal:       input.Metal,
		Purity:      input.Purity,
		WeightGrams: input.WeightGrams,
		Gemstones:   append(pq.StringArray{}, input.Gemstones...),
		CaratWeight: input.CaratWeight,
		ImageURL:    input.ImageURL,
		PriceCents:  input.PriceCents,
		StockQty:    input.StockQty,
		OneOfAKind:  input.OneOfAKind,
		Status:      enums.ProductStatusActive,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, product); err != nil {
			return mapProductWriteError(err)
		}

		event, err := audit.NewEvent(storeID, actor, enums.AuditProductCreated, "product", product.ID.String(), map[string]any{
			"sku": product.SKU,
		})
		if err != nil {
			return err
		}
		if _, err := s.auditRepo.WithTx(tx).Insert(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit event")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return NewProductDTO(product), nil
}

// Update mutates an existing product and records the audit row in the
// same transaction.
func (s *service) Update(ctx context.Context, actor audit.Actor, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to store")
	}

	wasActive := product.Status == enums.ProductStatusActive
	applyUpdateToProduct(product, input)
	if product.OneOfAKind && product.StockQty > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one of a kind pieces hold at most one unit")
	}

	action := enums.AuditProductUpdated
	if wasActive && product.Status == enums.ProductStatusDiscontinued {
		action = enums.AuditProductDiscontinued
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, product); err != nil {
			return mapProductWriteError(err)
		}

		event, err := audit.NewEvent(storeID, actor, action, "product", product.ID.String(), map[string]any{
			"sku": product.SKU,
		})
		if err != nil {
			return err
		}
		if _, err := s.auditRepo.WithTx(tx).Insert(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit event")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return NewProductDTO(product), nil
}

// ProductForSale loads a product for the register. Status checks are
// the caller's concern so the register can phrase its own errors.
func (s *service) ProductForSale(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	return s.loadStoreProduct(ctx, storeID, productID)
}

func (s *service) loadStoreProduct(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func mapProductWriteError(err error) error {
	if db.IsUniqueViolation(err, "ux_products_store_sku") {
		return pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
	}
	if db.IsUniqueViolation(err, "ux_products_store_barcode") {
		return pkgerrors.New(pkgerrors.CodeConflict, "barcode already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: write product")
}

func validateCreateInput(input CreateProductInput) error {
	if input.SKU == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if input.Metal != nil && !input.Metal.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid metal")
	}
	if input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if input.StockQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_qty must be non-negative")
	}
	if input.OneOfAKind && input.StockQty > 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "one of a kind pieces hold at most one unit")
	}
	if input.WeightGrams != nil && input.WeightGrams.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight_grams must be non-negative")
	}
	if input.CaratWeight != nil && *input.CaratWeight < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "carat_weight must be non-negative")
	}
	return nil
}

func validateUpdateInput(input UpdateProductInput) error {
	if input.SKU != nil && strings.TrimSpace(*input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if input.Metal != nil && !input.Metal.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid metal")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if input.StockQty != nil && *input.StockQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_qty must be non-negative")
	}
	if input.WeightGrams != nil && input.WeightGrams.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight_grams must be non-negative")
	}
	if input.CaratWeight != nil && *input.CaratWeight < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "carat_weight must be non-negative")
	}
	return nil
}

func validateListFilters(filters ListFilters) error {
	if filters.Category != nil && !filters.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if filters.Metal != nil && !filters.Metal.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid metal")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}
	if filters.PriceMinCents != nil && filters.PriceMaxCents != nil && *filters.PriceMinCents > *filters.PriceMaxCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "price range is inverted")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Barcode != nil {
		product.Barcode = normalizeBarcode(input.Barcode)
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Metal != nil {
		product.Metal = input.Metal
	}
	if input.Purity != nil {
		product.Purity = input.Purity
	}
	if input.WeightGrams != nil {
		product.WeightGrams = input.WeightGrams
	}
	if input.Gemstones != nil {
		product.Gemstones = append(pq.StringArray{}, (*input.Gemstones)...)
	}
	if input.CaratWeight != nil {
		product.CaratWeight = input.CaratWeight
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.StockQty != nil {
		product.StockQty = *input.StockQty
	}
	if input.OneOfAKind != nil {
		product.OneOfAKind = *input.OneOfAKind
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
}

func normalizeBarcode(barcode *string) *string {
	if barcode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*barcode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
