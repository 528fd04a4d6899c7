package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/api/responses"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/catalog"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// ProductList searches the store catalog with optional filters.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
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

		filters, err := productFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Search(r.Context(), storeID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ProductGet fetches a single product by id.
func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), storeID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductByBarcode resolves a scanned barcode to a product.
func ProductByBarcode(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		barcode := validators.SanitizeString(chi.URLParam(r, "barcode"), 64)
		if barcode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "barcode required"))
			return
		}

		product, err := svc.GetByBarcode(r.Context(), storeID, barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductCreate adds a product to the store catalog.
func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
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

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), actor, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, product)
	}
}

// ProductUpdate applies a partial update to a product.
func ProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
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

		productID, err := pathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), actor, storeID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	SKU         string           `json:"sku" validate:"required,max=64"`
	Barcode     *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description *string          `json:"description,omitempty"`
	Category    string           `json:"category" validate:"required"`
	Metal       *string          `json:"metal,omitempty"`
	Purity      *string          `json:"purity,omitempty" validate:"omitempty,max=16"`
	WeightGrams *decimal.Decimal `json:"weightGrams,omitempty"`
	Gemstones   []string         `json:"gemstones,omitempty" validate:"omitempty,dive,required"`
	CaratWeight *float64         `json:"caratWeight,omitempty" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	PriceCents  int64            `json:"priceCents" validate:"required,gt=0"`
	StockQty    int              `json:"stockQty" validate:"gte=0"`
	OneOfAKind  bool             `json:"oneOfAKind"`
}

func (r createProductRequest) toCreateInput() (catalog.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	var metal *enums.Metal
	if r.Metal != nil {
		parsed, err := enums.ParseMetal(strings.TrimSpace(*r.Metal))
		if err != nil {
			return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metal")
		}
		metal = &parsed
	}

	return catalog.CreateProductInput{
		SKU:         strings.TrimSpace(r.SKU),
		Barcode:     r.Barcode,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Category:    category,
		Metal:       metal,
		Purity:      r.Purity,
		WeightGrams: r.WeightGrams,
		Gemstones:   r.Gemstones,
		CaratWeight: r.CaratWeight,
		ImageURL:    r.ImageURL,
		PriceCents:  r.PriceCents,
		StockQty:    r.StockQty,
		OneOfAKind:  r.OneOfAKind,
	}, nil
}

type updateProductRequest struct {
	SKU         *string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Barcode     *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Metal       *string          `json:"metal,omitempty"`
	Purity      *string          `json:"purity,omitempty" validate:"omitempty,max=16"`
	WeightGrams *decimal.Decimal `json:"weightGrams,omitempty"`
	Gemstones   *[]string        `json:"gemstones,omitempty"`
	CaratWeight *float64         `json:"caratWeight,omitempty" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	PriceCents  *int64           `json:"priceCents,omitempty" validate:"omitempty,gt=0"`
	StockQty    *int             `json:"stockQty,omitempty" validate:"omitempty,gte=0"`
	OneOfAKind  *bool            `json:"oneOfAKind,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		SKU:         r.SKU,
		Barcode:     r.Barcode,
		Name:        r.Name,
		Description: r.Description,
		Purity:      r.Purity,
		WeightGrams: r.WeightGrams,
		Gemstones:   r.Gemstones,
		CaratWeight: r.CaratWeight,
		ImageURL:    r.ImageURL,
		PriceCents:  r.PriceCents,
		StockQty:    r.StockQty,
		OneOfAKind:  r.OneOfAKind,
	}

	if r.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if r.Metal != nil {
		metal, err := enums.ParseMetal(strings.TrimSpace(*r.Metal))
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metal")
		}
		input.Metal = &metal
	}
	if r.Status != nil {
		status, err := enums.ParseProductStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}

	return input, nil
}

func productFiltersFromQuery(r *http.Request) (catalog.ListFilters, error) {
	query := r.URL.Query()
	filters := catalog.ListFilters{
		Query: validators.SanitizeString(query.Get("q"), 120),
	}

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return catalog.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filters.Category = &category
	}
	if raw := strings.TrimSpace(query.Get("metal")); raw != "" {
		metal, err := enums.ParseMetal(raw)
		if err != nil {
			return catalog.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metal")
		}
		filters.Metal = &metal
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseProductStatus(raw)
		if err != nil {
			return catalog.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("priceMinCents")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return catalog.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priceMinCents")
		}
		filters.PriceMinCents = &value
	}
	if raw := strings.TrimSpace(query.Get("priceMaxCents")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return catalog.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priceMaxCents")
		}
		filters.PriceMaxCents = &value
	}
	if raw := strings.TrimSpace(query.Get("oneOfAKind")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid oneOfAKind")
		}
		filters.OneOfAKind = &value
	}

	return filters, nil
}
