package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/settlement"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// SettlementQuote evaluates a split-tender plan without touching any
// state: the register calls it on every tender edit to refresh the
// remaining/change display and the exact-amount shortcut.
func SettlementQuote(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload settlementQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := payload.toEntries()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fillTarget := uuid.Nil
		if payload.FillTargetID != nil {
			fillTarget, err = uuid.Parse(*payload.FillTargetID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fill target id"))
				return
			}
		}

		responses.WriteSuccess(w, settlementQuoteResponse{
			Summary:         settlement.Summarize(payload.GrandTotalCents, entries),
			FillAmountCents: settlement.FillRemaining(payload.GrandTotalCents, entries, fillTarget),
		})
	}
}

type settlementQuoteRequest struct {
	GrandTotalCents int64                    `json:"grandTotalCents" validate:"gte=0"`
	Entries         []settlementEntryRequest `json:"entries" validate:"omitempty,max=8,dive"`
	FillTargetID    *string                  `json:"fillTargetId,omitempty" validate:"omitempty,uuid"`
}

type settlementEntryRequest struct {
	ID          *string `json:"id,omitempty" validate:"omitempty,uuid"`
	Method      string  `json:"method" validate:"required"`
	AmountCents int64   `json:"amountCents" validate:"gte=0"`
	Reference   string  `json:"reference,omitempty" validate:"omitempty,max=128"`
}

type settlementQuoteResponse struct {
	Summary         settlement.Summary `json:"summary"`
	FillAmountCents int64              `json:"fillAmountCents"`
}

func (r settlementQuoteRequest) toEntries() ([]settlement.Entry, error) {
	entries := make([]settlement.Entry, 0, len(r.Entries))
	for _, raw := range r.Entries {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(raw.Method))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}

		entry := settlement.Entry{
			Method:      method,
			AmountCents: raw.AmountCents,
			Reference:   raw.Reference,
		}
		if raw.ID != nil {
			id, err := uuid.Parse(*raw.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry id")
			}
			entry.ID = id
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
