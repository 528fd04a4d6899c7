package ledger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// EntryDTO is one drawer movement as returned by the API.
type EntryDTO struct {
	ID          uuid.UUID             `json:"id"`
	RegisterID  string                `json:"registerId"`
	ActorUserID uuid.UUID             `json:"actorUserId"`
	Type        enums.LedgerEntryType `json:"type"`
	AmountCents int64                 `json:"amountCents"`
	SaleID      *uuid.UUID            `json:"saleId,omitempty"`
	Reason      *string               `json:"reason,omitempty"`
	Metadata    json.RawMessage       `json:"metadata,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// EntryList is a cursor page of drawer movements.
type EntryList struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// NewEntryDTO maps a persisted drawer movement into its API shape.
func NewEntryDTO(entry models.LedgerEntry) EntryDTO {
	dto := EntryDTO{
		ID:          entry.ID,
		RegisterID:  entry.RegisterID,
		ActorUserID: entry.ActorUserID,
		Type:        entry.Type,
		AmountCents: entry.AmountCents,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.SaleID != nil {
		saleID := *entry.SaleID
		dto.SaleID = &saleID
	}
	if entry.Reason != nil {
		reason := *entry.Reason
		dto.Reason = &reason
	}
	if len(entry.Metadata) > 0 {
		dto.Metadata = append(json.RawMessage(nil), entry.Metadata...)
	}
	return dto
}
