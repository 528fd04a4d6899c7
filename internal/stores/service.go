package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the store profile and the register settings derived
// from it. TaxRatePct and Settings feed the pricing and checkout paths.
type Service interface {
	Get(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	TaxRatePct(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)
	Settings(ctx context.Context, storeID uuid.UUID) (*RegisterSettings, error)
}

// UpdateStoreInput holds optional mutation values for the store profile
// and its register settings. Blank optional strings clear the field.
type UpdateStoreInput struct {
	Name              *string
	Phone             *string
	Email             *string
	AddressLine       *string
	City              *string
	Region            *string
	PostalCode        *string
	Currency          *enums.Currency
	TaxRatePct        *decimal.Decimal
	MaxPaymentSplits  *int
	HeldOrderTTLHours *int
	ReceiptFooter     *string
}

type service struct {
	tx        txRunner
	repo      Repository
	auditRepo audit.Repository
}

// NewService constructs a stores service instance.
func NewService(tx txRunner, repo Repository, auditRepo audit.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
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

func (s *service) Get(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return NewStoreDTO(store), nil
}

// Update patches the store and records the audit row in the same
// transaction. Settings changes take effect on the next sale; totals on
// open register sessions are recomputed when the cart next changes.
func (s *service) Update(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	changed := applyUpdateToStore(store, input)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: write store")
		}

		meta := map[string]any{}
		if len(changed) > 0 {
			meta["fields"] = changed
		}
		event, err := audit.NewEvent(storeID, actor, enums.AuditStoreSettingsUpdated, "store", store.ID.String(), meta)
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}

	return NewStoreDTO(store), nil
}

func (s *service) TaxRatePct(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return store.TaxRatePct, nil
}

func (s *service) Settings(ctx context.Context, storeID uuid.UUID) (*RegisterSettings, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return newRegisterSettings(store), nil
}

func (s *service) loadStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func validateUpdateInput(input UpdateStoreInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Currency != nil && !input.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.TaxRatePct != nil {
		if input.TaxRatePct.IsNegative() || input.TaxRatePct.GreaterThan(decimal.NewFromInt(100)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "tax_rate_pct must be between 0 and 100")
		}
	}
	if input.MaxPaymentSplits != nil && *input.MaxPaymentSplits < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_payment_splits must be at least 1")
	}
	if input.HeldOrderTTLHours != nil && *input.HeldOrderTTLHours < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "held_order_ttl_hours must be at least 1")
	}
	return nil
}

func applyUpdateToStore(store *models.Store, input UpdateStoreInput) []string {
	var changed []string
	if input.Name != nil {
		store.Name = strings.TrimSpace(*input.Name)
		changed = append(changed, "name")
	}
	if input.Phone != nil {
		store.Phone = normalizeOptional(input.Phone)
		changed = append(changed, "phone")
	}
	if input.Email != nil {
		store.Email = normalizeEmail(input.Email)
		changed = append(changed, "email")
	}
	if input.AddressLine != nil {
		store.AddressLine = normalizeOptional(input.AddressLine)
		changed = append(changed, "addressLine")
	}
	if input.City != nil {
		store.City = normalizeOptional(input.City)
		changed = append(changed, "city")
	}
	if input.Region != nil {
		store.Region = normalizeOptional(input.Region)
		changed = append(changed, "region")
	}
	if input.PostalCode != nil {
		store.PostalCode = normalizeOptional(input.PostalCode)
		changed = append(changed, "postalCode")
	}
	if input.Currency != nil {
		store.Currency = *input.Currency
		changed = append(changed, "currency")
	}
	if input.TaxRatePct != nil {
		store.TaxRatePct = *input.TaxRatePct
		changed = append(changed, "taxRatePct")
	}
	if input.MaxPaymentSplits != nil {
		store.MaxPaymentSplits = *input.MaxPaymentSplits
		changed = append(changed, "maxPaymentSplits")
	}
	if input.HeldOrderTTLHours != nil {
		store.HeldOrderTTLHours = *input.HeldOrderTTLHours
		changed = append(changed, "heldOrderTtlHours")
	}
	if input.ReceiptFooter != nil {
		store.ReceiptFooter = normalizeOptional(input.ReceiptFooter)
		changed = append(changed, "receiptFooter")
	}
	return changed
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

func normalizeEmail(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*value))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
