package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// StoreDTO is the store profile and register settings returned by the
// API.
type StoreDTO struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Phone             *string         `json:"phone,omitempty"`
	Email             *string         `json:"email,omitempty"`
	AddressLine       *string         `json:"addressLine,omitempty"`
	City              *string         `json:"city,omitempty"`
	Region            *string         `json:"region,omitempty"`
	PostalCode        *string         `json:"postalCode,omitempty"`
	Currency          enums.Currency  `json:"currency"`
	TaxRatePct        decimal.Decimal `json:"taxRatePct"`
	MaxPaymentSplits  int             `json:"maxPaymentSplits"`
	HeldOrderTTLHours int             `json:"heldOrderTtlHours"`
	ReceiptFooter     *string         `json:"receiptFooter,omitempty"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// RegisterSettings is the slice of store configuration the register and
// checkout paths load on every sale.
type RegisterSettings struct {
	StoreName         string
	Currency          enums.Currency
	TaxRatePct        decimal.Decimal
	MaxPaymentSplits  int
	HeldOrderTTLHours int
	ReceiptFooter     *string
}

// NewStoreDTO maps a persisted store into its API shape.
func NewStoreDTO(store *models.Store) *StoreDTO {
	if store == nil {
		return nil
	}
	return &StoreDTO{
		ID:                store.ID,
		Name:              store.Name,
		Phone:             copyStringPtr(store.Phone),
		Email:             copyStringPtr(store.Email),
		AddressLine:       copyStringPtr(store.AddressLine),
		City:              copyStringPtr(store.City),
		Region:            copyStringPtr(store.Region),
		PostalCode:        copyStringPtr(store.PostalCode),
		Currency:          store.Currency,
		TaxRatePct:        store.TaxRatePct,
		MaxPaymentSplits:  store.MaxPaymentSplits,
		HeldOrderTTLHours: store.HeldOrderTTLHours,
		ReceiptFooter:     copyStringPtr(store.ReceiptFooter),
		IsActive:          store.IsActive,
		CreatedAt:         store.CreatedAt,
		UpdatedAt:         store.UpdatedAt,
	}
}

func newRegisterSettings(store *models.Store) *RegisterSettings {
	return &RegisterSettings{
		StoreName:         store.Name,
		Currency:          store.Currency,
		TaxRatePct:        store.TaxRatePct,
		MaxPaymentSplits:  store.MaxPaymentSplits,
		HeldOrderTTLHours: store.HeldOrderTTLHours,
		ReceiptFooter:     copyStringPtr(store.ReceiptFooter),
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
