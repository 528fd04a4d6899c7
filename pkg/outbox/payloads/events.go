package payloads

import (
	"time"

	"github.com/google/uuid"
)

// SaleCreatedEvent carries the finalized sale totals for downstream analytics.
type SaleCreatedEvent struct {
	SaleID         uuid.UUID  `json:"saleId"`
	StoreID        uuid.UUID  `json:"storeId"`
	RegisterID     string     `json:"registerId"`
	SaleNumber     string     `json:"saleNumber"`
	CashierID      uuid.UUID  `json:"cashierId"`
	CustomerID     *uuid.UUID `json:"customerId,omitempty"`
	SubtotalCents  int64      `json:"subtotalCents"`
	DiscountCents  int64      `json:"discountCents"`
	TaxCents       int64      `json:"taxCents"`
	TotalCents     int64      `json:"totalCents"`
	ItemCount      int        `json:"itemCount"`
	PaymentMethods []string   `json:"paymentMethods"`
	CompletedAt    time.Time  `json:"completedAt"`
}

// SaleVoidedEvent is emitted when a completed sale is voided.
type SaleVoidedEvent struct {
	SaleID     uuid.UUID `json:"saleId"`
	StoreID    uuid.UUID `json:"storeId"`
	RegisterID string    `json:"registerId"`
	SaleNumber string    `json:"saleNumber"`
	VoidedBy   uuid.UUID `json:"voidedBy"`
	Reason     string    `json:"reason,omitempty"`
	TotalCents int64     `json:"totalCents"`
	VoidedAt   time.Time `json:"voidedAt"`
}

// HeldOrderExpiredEvent reports a held order discarded by the expiry job.
type HeldOrderExpiredEvent struct {
	HeldOrderID uuid.UUID `json:"heldOrderId"`
	StoreID     uuid.UUID `json:"storeId"`
	RegisterID  string    `json:"registerId"`
	OrderName   string    `json:"orderName"`
	ItemCount   int       `json:"itemCount"`
	HeldAt      time.Time `json:"heldAt"`
	ExpiredAt   time.Time `json:"expiredAt"`
}
