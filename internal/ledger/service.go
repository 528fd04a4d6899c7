package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records manual drawer movements and lists the journal. Sale
// cash and change rows are written by the checkout transaction through
// Repository, not through here.
type Service interface {
	Record(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input RecordEntryInput) (*EntryDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EntryList, error)
}

// RecordEntryInput is a manual drawer movement: paid in, paid out, or a
// float open/close count.
type RecordEntryInput struct {
	RegisterID  string                `json:"registerId"`
	Type        enums.LedgerEntryType `json:"type"`
	AmountCents int64                 `json:"amountCents"`
	Reason      *string               `json:"reason,omitempty"`
}

type service struct {
	tx        txRunner
	repo      Repository
	auditRepo audit.Repository
}

// NewService wires a ledger service with the provided repositories.
func NewService(tx txRunner, repo Repository, auditRepo audit.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
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

// Record writes a manual movement and its audit row in one transaction.
func (s *service) Record(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input RecordEntryInput) (*EntryDTO, error) {
	if !manualEntryType(input.Type) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry type is recorded by sales")
	}

	entry, err := NewEntry(NewEntryInput{
		StoreID:     storeID,
		RegisterID:  input.RegisterID,
		ActorUserID: actor.ID,
		Type:        input.Type,
		AmountCents: input.AmountCents,
		Reason:      input.Reason,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger entry")
		}

		event, err := audit.NewEvent(storeID, actor, enums.AuditDrawerEntryRecorded, "ledger_entry", entry.ID.String(), map[string]any{
			"registerId":  entry.RegisterID,
			"type":        entry.Type,
			"amountCents": entry.AmountCents,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record drawer entry")
	}

	dto := NewEntryDTO(*entry)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*EntryList, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry type")
	}
	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time window is inverted")
	}

	list, err := s.repo.List(ctx, storeID, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drawer entries")
	}
	return list, nil
}

func manualEntryType(entryType enums.LedgerEntryType) bool {
	switch entryType {
	case enums.LedgerPaidIn, enums.LedgerPaidOut, enums.LedgerFloatOpen, enums.LedgerFloatClose:
		return true
	}
	return false
}
