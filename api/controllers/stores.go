package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// StoreGet returns the store profile and register settings for the
// store bound into the token.
func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Get(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store)
	}
}

// StoreUpdate changes the store profile or register settings. Admin only.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
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

		var payload updateStoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Update(r.Context(), actor, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store)
	}
}

type updateStoreRequest struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone             *string          `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email             *string          `json:"email,omitempty" validate:"omitempty,email"`
	AddressLine       *string          `json:"addressLine,omitempty" validate:"omitempty,max=200"`
	City              *string          `json:"city,omitempty" validate:"omitempty,max=80"`
	Region            *string          `json:"region,omitempty" validate:"omitempty,max=80"`
	PostalCode        *string          `json:"postalCode,omitempty" validate:"omitempty,max=16"`
	Currency          *string          `json:"currency,omitempty"`
	TaxRatePct        *decimal.Decimal `json:"taxRatePct,omitempty"`
	MaxPaymentSplits  *int             `json:"maxPaymentSplits,omitempty" validate:"omitempty,min=1,max=8"`
	HeldOrderTTLHours *int             `json:"heldOrderTtlHours,omitempty" validate:"omitempty,min=1,max=720"`
	ReceiptFooter     *string          `json:"receiptFooter,omitempty" validate:"omitempty,max=500"`
}

func (r updateStoreRequest) toUpdateInput() (stores.UpdateStoreInput, error) {
	input := stores.UpdateStoreInput{
		Name:              r.Name,
		Phone:             r.Phone,
		Email:             r.Email,
		AddressLine:       r.AddressLine,
		City:              r.City,
		Region:            r.Region,
		PostalCode:        r.PostalCode,
		TaxRatePct:        r.TaxRatePct,
		MaxPaymentSplits:  r.MaxPaymentSplits,
		HeldOrderTTLHours: r.HeldOrderTTLHours,
		ReceiptFooter:     r.ReceiptFooter,
	}

	if r.Currency != nil {
		currency, err := enums.ParseCurrency(*r.Currency)
		if err != nil {
			return stores.UpdateStoreInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		input.Currency = &currency
	}

	return input, nil
}
