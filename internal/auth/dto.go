package auth

import (
	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint.
// StoreID selects which of the staff member's assigned stores the
// session binds to; when omitted the first assignment wins. ClientIP
// is filled in by the controller, not the request body.
type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	StoreID  *uuid.UUID `json:"storeId,omitempty"`
	ClientIP string     `json:"-"`
}

// LoginResponse contains the token pair plus the authenticated user.
// StoreID echoes the store claim bound into the access token; it is
// nil for admins that are not pinned to a store.
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	StoreID      *uuid.UUID     `json:"storeId,omitempty"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the refresh token being exchanged.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is the rotated access/refresh pair returned by Refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
