package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

// ListFilters narrow the sale history query.
type ListFilters struct {
	RegisterID string            `json:"registerId"`
	Status     *enums.SaleStatus `json:"status"`
	From       *time.Time        `json:"from"`
	To         *time.Time        `json:"to"`
}

// Repository defines persistence operations for completed sales. The
// write methods run inside the checkout transaction via WithTx; sale
// numbers are allocated optimistically and the unique index on
// (store_id, sale_number) settles concurrent allocations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextSaleNumber(ctx context.Context, storeID uuid.UUID) (int64, error)
	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	CreateSaleItems(ctx context.Context, items []models.SaleItem) error
	CreateSalePayments(ctx context.Context, payments []models.SalePayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*SaleList, error)
	MarkVoided(ctx context.Context, saleID uuid.UUID, reason string, voidedBy uuid.UUID, voidedAt time.Time) (bool, error)
}
