package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "store_id = ? AND sku = ?", storeID, sku).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "store_id = ? AND barcode = ?", storeID, barcode).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ?", storeID)

	if search := strings.TrimSpace(filters.Query); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(barcode) LIKE ?)", like, like, like)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Metal != nil {
		query = query.Where("metal = ?", *filters.Metal)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PriceMinCents != nil {
		query = query.Where("price_cents >= ?", *filters.PriceMinCents)
	}
	if filters.PriceMaxCents != nil {
		query = query.Where("price_cents <= ?", *filters.PriceMaxCents)
	}
	if filters.OneOfAKind != nil {
		query = query.Where("one_of_a_kind = ?", *filters.OneOfAKind)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	products := make([]ProductDTO, len(rows))
	for i := range rows {
		products[i] = *NewProductDTO(&rows[i])
	}
	return &ProductList{Products: products, NextCursor: nextCursor}, nil
}

// DecrementStock atomically takes qty units off the shelf. The guard
// keeps concurrent sales from driving stock negative; one-of-a-kind
// pieces flip to discontinued when their last unit sells.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		Update("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, productID); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}

	product, err := r.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OneOfAKind && product.StockQty <= 0 && product.Status == enums.ProductStatusActive {
		err := r.db.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", productID).
			Update("status", enums.ProductStatusDiscontinued).Error
		if err != nil {
			return nil, err
		}
		product.Status = enums.ProductStatusDiscontinued
	}
	return product, nil
}

// RestoreStock puts qty units back after a void. A restored
// one-of-a-kind piece becomes sellable again.
func (r *repository) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_qty", gorm.Expr("stock_qty + ?", qty))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	product, err := r.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OneOfAKind && product.StockQty > 0 && product.Status == enums.ProductStatusDiscontinued {
		err := r.db.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", productID).
			Update("status", enums.ProductStatusActive).Error
		if err != nil {
			return nil, err
		}
		product.Status = enums.ProductStatusActive
	}
	return product, nil
}
