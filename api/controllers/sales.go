package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/pricing"
	"github.com/karatworks/aurumpos-backend/internal/sales"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// SaleCreate finalizes the register session into a persisted sale. The
// route sits behind the Idempotency middleware so a register retrying a
// timed-out submit cannot double-charge.
func SaleCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Create(r.Context(), actor, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, sale)
	}
}

// SaleList pages through completed sales, newest first.
func SaleList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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

		filters, err := saleFiltersFromQuery(r)
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

// SaleGet fetches one sale with its lines and payments.
func SaleGet(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := pathUUID(chi.URLParam(r, "saleID"), "sale id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), storeID, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SaleReceipt renders the printable receipt payload for a sale.
func SaleReceipt(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := pathUUID(chi.URLParam(r, "saleID"), "sale id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Receipt(r.Context(), storeID, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// SaleVoid reverses a completed sale. Requires the sale.void capability.
func SaleVoid(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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

		saleID, err := pathUUID(chi.URLParam(r, "saleID"), "sale id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload voidSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Void(r.Context(), actor, storeID, saleID, sales.VoidSaleInput{
			Reason: validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

type createSaleRequest struct {
	RegisterID string               `json:"registerId" validate:"required,max=64"`
	Totals     pricing.Totals       `json:"totals" validate:"required"`
	Payments   []salePaymentRequest `json:"payments" validate:"required,min=1,max=8,dive"`
}

type salePaymentRequest struct {
	Method      string `json:"method" validate:"required"`
	AmountCents int64  `json:"amountCents" validate:"required,gt=0"`
	Reference   string `json:"reference,omitempty" validate:"omitempty,max=128"`
	SourceToken string `json:"sourceToken,omitempty" validate:"omitempty,max=256"`
}

type voidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

func (r createSaleRequest) toCreateInput() (sales.CreateSaleInput, error) {
	payments := make([]sales.PaymentInput, 0, len(r.Payments))
	for _, raw := range r.Payments {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(raw.Method))
		if err != nil {
			return sales.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		payments = append(payments, sales.PaymentInput{
			Method:      method,
			AmountCents: raw.AmountCents,
			Reference:   raw.Reference,
			SourceToken: raw.SourceToken,
		})
	}

	return sales.CreateSaleInput{
		RegisterID: strings.TrimSpace(r.RegisterID),
		Totals:     r.Totals,
		Payments:   payments,
	}, nil
}

func saleFiltersFromQuery(r *http.Request) (sales.ListFilters, error) {
	query := r.URL.Query()
	filters := sales.ListFilters{
		RegisterID: validators.SanitizeString(query.Get("registerId"), maxRegisterIDLength),
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseSaleStatus(raw)
		if err != nil {
			return sales.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}

	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return sales.ListFilters{}, err
	}
	filters.From = from

	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return sales.ListFilters{}, err
	}
	filters.To = to

	return filters, nil
}
