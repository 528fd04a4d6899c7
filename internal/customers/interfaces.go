package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

// Repository defines persistence operations for store customers. The
// balance mutations are guarded so store credit can never go negative;
// the sales transaction binds the repository with WithTx before
// debiting.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, query string) (*CustomerList, error)
	DebitBalance(ctx context.Context, customerID uuid.UUID, amountCents int64) (*models.Customer, error)
	CreditBalance(ctx context.Context, customerID uuid.UUID, amountCents int64) (*models.Customer, error)
}
