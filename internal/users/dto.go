package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// UserDTO is the transport shape of a staff account. The password hash
// never leaves the package.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"isActive"`
	StoreIDs    []uuid.UUID    `json:"storeIds"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// UserList is one page of staff accounts.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// FromModel maps a persisted user into its API shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	var lastLogin *time.Time
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		lastLogin = &at
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		StoreIDs:    append([]uuid.UUID(nil), []uuid.UUID(u.StoreIDs)...),
		LastLoginAt: lastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
