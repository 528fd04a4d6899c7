package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/users"
	pkgAuth "github.com/karatworks/aurumpos-backend/pkg/auth"
	"github.com/karatworks/aurumpos-backend/pkg/auth/session"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/security"
)

// invalidCredentialsMessage is deliberately uniform across the missing
// user, wrong password, and inactive account paths.
const invalidCredentialsMessage = "invalid credentials"

// Service handles register sign-in and session lifecycle.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, bearerToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, bearerToken string) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type loginLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type service struct {
	users    userRepository
	session  sessionManager
	limiter  loginLimiter
	jwtCfg   config.JWTConfig
	limitCfg config.AuthRateLimitConfig
	pwCfg    config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
// Limiter is optional; without it login attempts are not throttled.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Limiter        loginLimiter
	JWTConfig      config.JWTConfig
	RateLimitCfg   config.AuthRateLimitConfig
	PasswordCfg    config.PasswordConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:    params.UserRepo,
		session:  params.SessionManager,
		limiter:  params.Limiter,
		jwtCfg:   params.JWTConfig,
		limitCfg: params.RateLimitCfg,
		pwCfg:    params.PasswordCfg,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.throttle(ctx, req); err != nil {
		return nil, err
	}

	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	storeID, err := resolveStoreBinding(user, req.StoreID)
	if err != nil {
		return nil, err
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		StoreID: storeID,
		Role:    user.Role,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		StoreID:      storeID,
		User:         users.FromModel(user),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The expired access
// token is still required; its jti locates the Redis session and its
// claims carry over into the reminted token.
func (s *service) Refresh(ctx context.Context, bearerToken, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseBearer(bearerToken)
	if err != nil {
		return nil, err
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  claims.UserID,
		StoreID: claims.StoreID,
		Role:    claims.Role,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout revokes the Redis session behind the token's jti. Expired
// tokens are accepted so a register can always sign out cleanly.
func (s *service) Logout(ctx context.Context, bearerToken string) error {
	claims, err := s.parseBearer(bearerToken)
	if err != nil {
		return err
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) throttle(ctx context.Context, req LoginRequest) error {
	if s.limiter == nil {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && s.limitCfg.LoginEmailLimit > 0 {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:email:"+email, int64(s.limitCfg.LoginEmailLimit), s.limitCfg.LoginWindow)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}

	ip := strings.TrimSpace(req.ClientIP)
	if ip != "" && s.limitCfg.LoginIPLimit > 0 {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:ip:"+ip, int64(s.limitCfg.LoginIPLimit), s.limitCfg.LoginWindow)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	// Parameter upgrades roll out as staff sign in. A failed rehash
	// must never block the login itself.
	if security.NeedsRehash(user.PasswordHash, s.pwCfg) {
		if rehashed, err := security.HashPassword(password, s.pwCfg); err == nil {
			_ = s.users.UpdatePasswordHash(ctx, user.ID, rehashed)
		}
	}
	return user, nil
}

// resolveStoreBinding picks the store claim for a fresh session.
// Cashiers and managers work a register, so they need at least one
// store assignment and may only bind a store they are assigned to.
// Admins may float without one and may bind any store they name.
func resolveStoreBinding(user *models.User, requested *uuid.UUID) (*uuid.UUID, error) {
	if requested != nil {
		if user.Role != enums.UserRoleAdmin && !user.StoreIDs.Contains(*requested) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not assigned to this store")
		}
		id := *requested
		return &id, nil
	}
	if len(user.StoreIDs) > 0 {
		id := user.StoreIDs[0]
		return &id, nil
	}
	if user.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil, nil
}

func (s *service) parseBearer(bearerToken string) (*pkgAuth.AccessTokenClaims, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, bearerToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if strings.TrimSpace(claims.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	return claims, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}
