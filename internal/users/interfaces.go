package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

// ListFilters narrow the staff account listing.
type ListFilters struct {
	Role   *enums.UserRole `json:"role,omitempty"`
	Active *bool           `json:"active,omitempty"`
}

// Repository defines persistence operations for staff accounts. Staff
// are not store-scoped rows; StoreIDs on the model says which registers
// an account may operate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserList, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}
