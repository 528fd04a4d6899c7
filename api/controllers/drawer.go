package controllers

import (
	"net/http"
	"strings"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/ledger"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// DrawerMovements pages through the cash drawer ledger.
func DrawerMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := drawerFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), storeID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DrawerRecord books a manual drawer movement: a paid-in, a paid-out,
// or a float adjustment. Requires the drawer.manage capability.
func DrawerRecord(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toRecordInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Record(r.Context(), actor, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, entry)
	}
}

type recordMovementRequest struct {
	RegisterID  string  `json:"registerId" validate:"required,max=64"`
	Type        string  `json:"type" validate:"required"`
	AmountCents int64   `json:"amountCents" validate:"required"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func (r recordMovementRequest) toRecordInput() (ledger.RecordEntryInput, error) {
	entryType, err := enums.ParseLedgerEntryType(strings.TrimSpace(r.Type))
	if err != nil {
		return ledger.RecordEntryInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type")
	}

	return ledger.RecordEntryInput{
		RegisterID:  strings.TrimSpace(r.RegisterID),
		Type:        entryType,
		AmountCents: r.AmountCents,
		Reason:      r.Reason,
	}, nil
}

func drawerFiltersFromQuery(r *http.Request) (ledger.ListFilters, error) {
	query := r.URL.Query()
	filters := ledger.ListFilters{
		RegisterID: validators.SanitizeString(query.Get("registerId"), maxRegisterIDLength),
	}

	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		entryType, err := enums.ParseLedgerEntryType(raw)
		if err != nil {
			return ledger.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type")
		}
		filters.Type = &entryType
	}

	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return ledger.ListFilters{}, err
	}
	filters.From = from

	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return ledger.ListFilters{}, err
	}
	filters.To = to

	return filters, nil
}
