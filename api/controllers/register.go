package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

const maxRegisterIDLength = 64

// registerIDFromRequest pulls the register identifier from the route.
// Register ids are free-form labels like "front-counter", not UUIDs.
func registerIDFromRequest(r *http.Request) (string, error) {
	registerID := validators.SanitizeString(chi.URLParam(r, "registerID"), maxRegisterIDLength)
	if registerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "register id required")
	}
	return registerID, nil
}

// RegisterSession returns the active cart with derived totals.
func RegisterSession(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Session(r.Context(), storeID, registerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterAddItem rings a product into the cart.
func RegisterAddItem(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		session, err := svc.AddItem(r.Context(), storeID, registerID, register.AddItemParams{
			ProductID: productID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterUpdateItem changes the quantity on a cart line.
func RegisterUpdateItem(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(chi.URLParam(r, "lineID"), "line id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UpdateItemQuantity(r.Context(), storeID, registerID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterSetItemDiscount applies a percent or fixed discount to a line.
func RegisterSetItemDiscount(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(chi.URLParam(r, "lineID"), "line id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := payload.toDiscount()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SetItemDiscount(r.Context(), storeID, registerID, lineID, discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterClearItemDiscount removes the discount from a line.
func RegisterClearItemDiscount(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(chi.URLParam(r, "lineID"), "line id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SetItemDiscount(r.Context(), storeID, registerID, lineID, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterRemoveItem drops a line from the cart.
func RegisterRemoveItem(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(chi.URLParam(r, "lineID"), "line id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.RemoveItem(r.Context(), storeID, registerID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterSetCustomer attaches a customer to the sale in progress.
func RegisterSetCustomer(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		session, err := svc.SetCustomer(r.Context(), storeID, registerID, &customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterClearCustomer detaches the customer from the sale in progress.
func RegisterClearCustomer(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SetCustomer(r.Context(), storeID, registerID, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterSetOrderDiscount applies a discount across the whole order.
func RegisterSetOrderDiscount(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := payload.toDiscount()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SetOrderDiscount(r.Context(), storeID, registerID, discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterClearOrderDiscount removes the order-level discount.
func RegisterClearOrderDiscount(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SetOrderDiscount(r.Context(), storeID, registerID, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterSetNotes replaces the order notes.
func RegisterSetNotes(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setNotesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SetNotes(r.Context(), storeID, registerID, validators.SanitizeString(payload.Notes, 2000))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterClear abandons the cart and resets the register to idle.
func RegisterClear(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Clear(r.Context(), storeID, registerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterHold parks the active cart so another sale can be rung.
func RegisterHold(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Hold(r.Context(), storeID, registerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterHeldOrders lists the carts parked on this register.
func RegisterHeldOrders(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		held, err := svc.HeldOrders(r.Context(), storeID, registerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"held": held})
	}
}

// RegisterRestore swaps a held order back into the active cart.
func RegisterRestore(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		heldID, err := pathUUID(chi.URLParam(r, "heldID"), "held order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Restore(r.Context(), storeID, registerID, heldID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// RegisterDeleteHeld discards a parked cart without restoring it.
func RegisterDeleteHeld(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, registerID, err := sessionScope(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		heldID, err := pathUUID(chi.URLParam(r, "heldID"), "held order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.DeleteHeldOrder(r.Context(), storeID, registerID, heldID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// sessionScope resolves the common guards shared by every session route.
func sessionScope(svc register.Service, r *http.Request) (uuid.UUID, string, error) {
	if svc == nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable")
	}
	storeID, err := storeIDFromRequest(r)
	if err != nil {
		return uuid.Nil, "", err
	}
	registerID, err := registerIDFromRequest(r)
	if err != nil {
		return uuid.Nil, "", err
	}
	return storeID, registerID, nil
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type setCustomerRequest struct {
	CustomerID string `json:"customerId" validate:"required,uuid"`
}

type setNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type discountRequest struct {
	Type  string          `json:"type" validate:"required"`
	Value decimal.Decimal `json:"value" validate:"required"`
}

func (r discountRequest) toDiscount() (*types.Discount, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(r.Type))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	discount := &types.Discount{Type: discountType, Amount: r.Value}
	if err := discount.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount")
	}
	return discount, nil
}
