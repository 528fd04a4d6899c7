package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/karatworks/aurumpos-backend/pkg/db/types"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// User represents a staff account. StoreIDs lists the stores the
// account may operate a register in.
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string            `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	FirstName    string            `gorm:"column:first_name;not null"`
	LastName     string            `gorm:"column:last_name;not null"`
	Role         enums.UserRole    `gorm:"column:role;type:user_role;not null;default:'cashier'"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	StoreIDs     dbtypes.UUIDArray `gorm:"type:uuid[];column:store_ids;not null;default:ARRAY[]::uuid[]"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
