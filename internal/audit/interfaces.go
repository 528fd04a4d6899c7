package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

// Actor identifies who performed an audited action. The zero value
// means a background job acted without a signed-in user.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// ListFilters narrow the audit trail query.
type ListFilters struct {
	Action     *enums.AuditAction
	EntityType string
	EntityID   string
	ActorID    *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Repository defines persistence operations for the append-only audit
// trail. Insert is called inside the owning transaction via WithTx when
// the audited write has one.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EventList, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
