package ledger

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
)

// NewEntryInput captures the immutable data a drawer movement requires.
type NewEntryInput struct {
	StoreID     uuid.UUID
	RegisterID  string
	ActorUserID uuid.UUID
	Type        enums.LedgerEntryType
	AmountCents int64
	SaleID      *uuid.UUID
	Reason      *string
	Metadata    map[string]any
}

// NewEntry validates and builds a drawer movement row. Amount signs are
// tied to the type: cash coming in is positive, cash leaving the drawer
// is negative.
func NewEntry(input NewEntryInput) (*models.LedgerEntry, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	registerID := strings.TrimSpace(input.RegisterID)
	if registerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "register id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry type")
	}
	if !amountSignValid(input.Type, input.AmountCents) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount sign does not match entry type")
	}

	entry := &models.LedgerEntry{
		StoreID:     input.StoreID,
		RegisterID:  registerID,
		ActorUserID: input.ActorUserID,
		Type:        input.Type,
		AmountCents: input.AmountCents,
		SaleID:      input.SaleID,
		Reason:      input.Reason,
	}
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode ledger metadata")
		}
		entry.Metadata = raw
	}
	return entry, nil
}

func amountSignValid(entryType enums.LedgerEntryType, amountCents int64) bool {
	switch entryType {
	case enums.LedgerSaleCash, enums.LedgerPaidIn:
		return amountCents > 0
	case enums.LedgerChangeGiven, enums.LedgerPaidOut:
		return amountCents < 0
	case enums.LedgerFloatOpen:
		return amountCents >= 0
	case enums.LedgerFloatClose:
		return amountCents <= 0
	}
	return false
}
