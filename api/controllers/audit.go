package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// AuditList pages through the store's audit trail. Requires the
// audit.read capability.
func AuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
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

		filters, err := auditFiltersFromQuery(r)
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

func auditFiltersFromQuery(r *http.Request) (audit.ListFilters, error) {
	query := r.URL.Query()
	filters := audit.ListFilters{
		EntityType: validators.SanitizeString(query.Get("entityType"), 64),
		EntityID:   validators.SanitizeString(query.Get("entityId"), 64),
	}

	if raw := strings.TrimSpace(query.Get("action")); raw != "" {
		action, err := enums.ParseAuditAction(raw)
		if err != nil {
			return audit.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action")
		}
		filters.Action = &action
	}
	if raw := strings.TrimSpace(query.Get("actorId")); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return audit.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id")
		}
		filters.ActorID = &actorID
	}

	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return audit.ListFilters{}, err
	}
	filters.From = from

	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return audit.ListFilters{}, err
	}
	filters.To = to

	return filters, nil
}
