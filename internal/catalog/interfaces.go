package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

// Repository defines persistence operations for the product catalog.
// Stock mutations are guarded so concurrent sales cannot oversell; the
// sales transaction binds the repository with WithTx before calling
// them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*models.Product, error)
	FindByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*ProductList, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error)
}
