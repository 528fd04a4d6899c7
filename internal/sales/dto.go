package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// FormatSaleNumber renders the printed sale number from the store-wide
// sequence and the sale's business date.
func FormatSaleNumber(seq int64, at time.Time) string {
	return fmt.Sprintf("S-%s-%04d", at.UTC().Format("20060102"), seq)
}

// SaleItemDTO is one receipt line as it was sold.
type SaleItemDTO struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      *uuid.UUID      `json:"productId,omitempty"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	UnitPriceCents int64           `json:"unitPriceCents"`
	Qty            int             `json:"qty"`
	LineDiscount   *types.Discount `json:"lineDiscount,omitempty"`
	DiscountCents  int64           `json:"discountCents"`
	TotalCents     int64           `json:"totalCents"`
}

// SalePaymentDTO is one settled tender on the sale.
type SalePaymentDTO struct {
	ID            uuid.UUID           `json:"id"`
	Method        enums.PaymentMethod `json:"method"`
	AmountCents   int64               `json:"amountCents"`
	CardReference *string             `json:"cardReference,omitempty"`
}

// SaleDTO is the full sale record with its lines and tenders.
type SaleDTO struct {
	ID                 uuid.UUID        `json:"id"`
	SaleNumber         string           `json:"saleNumber"`
	RegisterID         string           `json:"registerId"`
	CashierID          uuid.UUID        `json:"cashierId"`
	CustomerID         *uuid.UUID       `json:"customerId,omitempty"`
	Status             enums.SaleStatus `json:"status"`
	Currency           enums.Currency   `json:"currency"`
	SubtotalCents      int64            `json:"subtotalCents"`
	LineDiscountsCents int64            `json:"lineDiscountsCents"`
	OrderDiscount      *types.Discount  `json:"orderDiscount,omitempty"`
	OrderDiscountCents int64            `json:"orderDiscountCents"`
	TaxRatePct         decimal.Decimal  `json:"taxRatePct"`
	TaxCents           int64            `json:"taxCents"`
	TotalCents         int64            `json:"totalCents"`
	PaidCents          int64            `json:"paidCents"`
	ChangeCents        int64            `json:"changeCents"`
	Notes              *string          `json:"notes,omitempty"`
	VoidReason         *string          `json:"voidReason,omitempty"`
	VoidedBy           *uuid.UUID       `json:"voidedBy,omitempty"`
	VoidedAt           *time.Time       `json:"voidedAt,omitempty"`
	Items              []SaleItemDTO    `json:"items"`
	Payments           []SalePaymentDTO `json:"payments"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// SaleSummaryDTO is the sale history row; lines and tenders stay behind
// the detail endpoint.
type SaleSummaryDTO struct {
	ID          uuid.UUID        `json:"id"`
	SaleNumber  string           `json:"saleNumber"`
	RegisterID  string           `json:"registerId"`
	CashierID   uuid.UUID        `json:"cashierId"`
	CustomerID  *uuid.UUID       `json:"customerId,omitempty"`
	Status      enums.SaleStatus `json:"status"`
	TotalCents  int64            `json:"totalCents"`
	PaidCents   int64            `json:"paidCents"`
	ChangeCents int64            `json:"changeCents"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// SaleList is one page of sale history.
type SaleList struct {
	Sales      []SaleSummaryDTO `json:"sales"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// ReceiptStoreDTO is the store header block on a printed receipt.
type ReceiptStoreDTO struct {
	Name        string  `json:"name"`
	Phone       *string `json:"phone,omitempty"`
	AddressLine *string `json:"addressLine,omitempty"`
	City        *string `json:"city,omitempty"`
	Region      *string `json:"region,omitempty"`
	PostalCode  *string `json:"postalCode,omitempty"`
	Footer      *string `json:"footer,omitempty"`
}

// ReceiptPersonDTO names a person on the receipt.
type ReceiptPersonDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReceiptDTO bundles everything an external renderer needs to print a
// receipt; the API never renders receipts itself.
type ReceiptDTO struct {
	Sale     *SaleDTO          `json:"sale"`
	Store    ReceiptStoreDTO   `json:"store"`
	Cashier  ReceiptPersonDTO  `json:"cashier"`
	Customer *ReceiptPersonDTO `json:"customer,omitempty"`
}

// NewSaleDTO maps a persisted sale with its lines and tenders into the
// API shape.
func NewSaleDTO(sale *models.Sale) *SaleDTO {
	if sale == nil {
		return nil
	}

	items := make([]SaleItemDTO, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemDTO{
			ID:             item.ID,
			ProductID:      cloneUUIDPtr(item.ProductID),
			SKU:            item.SKU,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			LineDiscount:   item.LineDiscount.Clone(),
			DiscountCents:  item.DiscountCents,
			TotalCents:     item.TotalCents,
		}
	}

	tenders := make([]SalePaymentDTO, len(sale.Payments))
	for i, payment := range sale.Payments {
		tenders[i] = SalePaymentDTO{
			ID:            payment.ID,
			Method:        payment.Method,
			AmountCents:   payment.AmountCents,
			CardReference: cloneStringPtr(payment.CardReference),
		}
	}

	return &SaleDTO{
		ID:                 sale.ID,
		SaleNumber:         FormatSaleNumber(sale.SaleNumber, sale.CreatedAt),
		RegisterID:         sale.RegisterID,
		CashierID:          sale.CashierID,
		CustomerID:         cloneUUIDPtr(sale.CustomerID),
		Status:             sale.Status,
		Currency:           sale.Currency,
		SubtotalCents:      sale.SubtotalCents,
		LineDiscountsCents: sale.LineDiscountsCents,
		OrderDiscount:      sale.OrderDiscount.Clone(),
		OrderDiscountCents: sale.OrderDiscountCents,
		TaxRatePct:         sale.TaxRatePct,
		TaxCents:           sale.TaxCents,
		TotalCents:         sale.TotalCents,
		PaidCents:          sale.PaidCents,
		ChangeCents:        sale.ChangeCents,
		Notes:              cloneStringPtr(sale.Notes),
		VoidReason:         cloneStringPtr(sale.VoidReason),
		VoidedBy:           cloneUUIDPtr(sale.VoidedBy),
		VoidedAt:           cloneTimePtr(sale.VoidedAt),
		Items:              items,
		Payments:           tenders,
		CreatedAt:          sale.CreatedAt,
	}
}

// NewSaleSummaryDTO maps a sale row into its history shape.
func NewSaleSummaryDTO(sale models.Sale) SaleSummaryDTO {
	return SaleSummaryDTO{
		ID:          sale.ID,
		SaleNumber:  FormatSaleNumber(sale.SaleNumber, sale.CreatedAt),
		RegisterID:  sale.RegisterID,
		CashierID:   sale.CashierID,
		CustomerID:  cloneUUIDPtr(sale.CustomerID),
		Status:      sale.Status,
		TotalCents:  sale.TotalCents,
		PaidCents:   sale.PaidCents,
		ChangeCents: sale.ChangeCents,
		CreatedAt:   sale.CreatedAt,
	}
}

func cloneUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
