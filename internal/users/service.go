package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	dbpkg "github.com/karatworks/aurumpos-backend/pkg/db"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	dbtypes "github.com/karatworks/aurumpos-backend/pkg/db/types"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
	"github.com/karatworks/aurumpos-backend/pkg/security"
)

const minPasswordLength = 8

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes staff account management. Capability checks happen at
// the API layer; the storeID parameter scopes the audit rows.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserList, error)
	Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateUserInput) (*UserDTO, error)
	Update(ctx context.Context, actor audit.Actor, storeID, userID uuid.UUID, input UpdateUserInput) (*UserDTO, error)
}

// CreateUserInput holds the validated payload for a new staff account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      enums.UserRole
	StoreIDs  []uuid.UUID
}

// UpdateUserInput carries optional mutations. Email is intentionally
// not updatable; it is the login identity. A nil field leaves the
// current value untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Role      *enums.UserRole
	IsActive  *bool
	StoreIDs  *[]uuid.UUID
	Password  *string
}

type service struct {
	tx        txRunner
	repo      Repository
	auditRepo audit.Repository
	pwCfg     config.PasswordConfig
}

// NewService constructs a users service instance.
func NewService(tx txRunner, repo Repository, auditRepo audit.Repository, pwCfg config.PasswordConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		auditRepo: auditRepo,
		pwCfg:     pwCfg,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserList, error) {
	if filters.Role != nil && !filters.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user role")
	}

	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return list, nil
}

// Create inserts the account and its audit row in one transaction.
func (s *service) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateUserInput) (*UserDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	if input.FirstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user role")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     strings.TrimSpace(input.LastName),
		Role:         input.Role,
		IsActive:     true,
		StoreIDs:     dbtypes.UUIDArray(dedupeStoreIDs(input.StoreIDs)),
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, user); err != nil {
			return mapUserWriteError(err)
		}

		event, err := audit.NewEvent(storeID, actor, enums.AuditUserCreated, "user", user.ID.String(), map[string]any{
			"email": email,
			"role":  string(input.Role),
		})
		if err != nil {
			return err
		}
		if _, err := s.auditRepo.WithTx(tx).Insert(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit event")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return FromModel(user), nil
}

// Update mutates an account and records the audit row in the same
// transaction. Deactivation is an Update with IsActive=false.
func (s *service) Update(ctx context.Context, actor audit.Actor, storeID, userID uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.FirstName != nil && strings.TrimSpace(*input.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name required")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user role")
	}
	if input.Password != nil && len(*input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if input.IsActive != nil && !*input.IsActive && actor.ID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed, err := s.applyUpdateToUser(user, input)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, user); err != nil {
			return mapUserWriteError(err)
		}

		meta := map[string]any{}
		if len(changed) > 0 {
			meta["fields"] = changed
		}
		event, err := audit.NewEvent(storeID, actor, enums.AuditUserUpdated, "user", user.ID.String(), meta)
		if err != nil {
			return err
		}
		if _, err := s.auditRepo.WithTx(tx).Insert(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit event")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	return FromModel(user), nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) applyUpdateToUser(user *models.User, input UpdateUserInput) ([]string, error) {
	var changed []string
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
		changed = append(changed, "firstName")
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
		changed = append(changed, "lastName")
	}
	if input.Role != nil {
		user.Role = *input.Role
		changed = append(changed, "role")
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
		changed = append(changed, "isActive")
	}
	if input.StoreIDs != nil {
		user.StoreIDs = dbtypes.UUIDArray(dedupeStoreIDs(*input.StoreIDs))
		changed = append(changed, "storeIds")
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.pwCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}
	return changed, nil
}

func mapUserWriteError(err error) error {
	if dbpkg.IsUniqueViolation(err, "idx_users_email") {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: write user")
}

func dedupeStoreIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
