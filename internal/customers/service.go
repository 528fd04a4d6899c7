package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes customer management. A sale with no customer is a
// walk-in; nothing here is required to ring one up.
type Service interface {
	Get(ctx context.Context, storeID, customerID uuid.UUID) (*CustomerDTO, error)
	Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, query string) (*CustomerList, error)
	Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, actor audit.Actor, storeID, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	CustomerExists(ctx context.Context, storeID, customerID uuid.UUID) (bool, error)
}

// CreateCustomerInput holds the validated payload to create a customer.
// Store credit always starts at zero.
type CreateCustomerInput struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Notes     *string
}

// UpdateCustomerInput holds optional mutation values for a customer.
// Balance is not updatable here; credit moves only inside sale
// transactions.
type UpdateCustomerInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Notes     *string
}

type service struct {
	tx        txRunner
	repo      Repository
	auditRepo audit.Repository
}

// NewService constructs a customers service instance.
func NewService(tx txRunner, repo Repository, auditRepo audit.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		auditRepo: auditRepo,
	}, nil
}

func (s *service) Get(ctx context.Context, storeID, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.loadStoreCustomer(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Search(ctx context.Context, storeID uuid.UUID, params pagination.Params, query string) (*CustomerList, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	list, err := s.repo.Search(ctx, storeID, params, query)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search customers")
	}
	return list, nil
}

// Create inserts the customer and its audit row in one transaction.
func (s *service) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateCustomerInput) (*CustomerDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name required")
	}

	customer := &models.Customer{
		StoreID:   storeID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     normalizeEmail(input.Email),
		Phone:     normalizeOptional(input.Phone),
		Notes:     normalizeOptional(input.Notes),
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
		}

		event, err := audit.NewEvent(storeID, actor, enums.AuditCustomerCreated, "customer", customer.ID.String(), map[string]any{
			"name": displayName(customer),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}

	return NewCustomerDTO(customer), nil
}

// Update mutates an existing customer and records the audit row in the
// same transaction.
func (s *service) Update(ctx context.Context, actor audit.Actor, storeID, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.FirstName != nil && strings.TrimSpace(*input.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name required")
	}

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer does not belong to store")
	}

	applyUpdateToCustomer(customer, input)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
		}

		event, err := audit.NewEvent(storeID, actor, enums.AuditCustomerUpdated, "customer", customer.ID.String(), map[string]any{
			"name": displayName(customer),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}

	return NewCustomerDTO(customer), nil
}

// CustomerExists reports whether the customer belongs to the store. The
// register uses it before attaching a customer to the active sale.
func (s *service) CustomerExists(ctx context.Context, storeID, customerID uuid.UUID) (bool, error) {
	if storeID == uuid.Nil || customerID == uuid.Nil {
		return false, nil
	}

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer.StoreID == storeID, nil
}

func (s *service) loadStoreCustomer(ctx context.Context, storeID, customerID uuid.UUID) (*models.Customer, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

func applyUpdateToCustomer(customer *models.Customer, input UpdateCustomerInput) {
	if input.FirstName != nil {
		customer.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		customer.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		customer.Email = normalizeEmail(input.Email)
	}
	if input.Phone != nil {
		customer.Phone = normalizeOptional(input.Phone)
	}
	if input.Notes != nil {
		customer.Notes = normalizeOptional(input.Notes)
	}
}

func displayName(customer *models.Customer) string {
	return strings.TrimSpace(customer.FirstName + " " + customer.LastName)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
