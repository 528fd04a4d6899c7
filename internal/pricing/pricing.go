package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// Line is one sale line as the register holds it. Everything needed to
// price and print the line is snapshotted here so a session never reads
// the catalog twice for the same piece.
type Line struct {
	ID             uuid.UUID             `json:"id"`
	ProductID      uuid.UUID             `json:"productId"`
	SKU            string                `json:"sku"`
	Barcode        string                `json:"barcode,omitempty"`
	Name           string                `json:"name"`
	Category       enums.ProductCategory `json:"category,omitempty"`
	Metal          enums.Metal           `json:"metal,omitempty"`
	Purity         string                `json:"purity,omitempty"`
	WeightGrams    *decimal.Decimal      `json:"weightGrams,omitempty"`
	ImageURL       *string               `json:"imageUrl,omitempty"`
	UnitPriceCents int64                 `json:"unitPriceCents"`
	Quantity       int64                 `json:"quantity"`
	OneOfAKind     bool                  `json:"oneOfAKind,omitempty"`
	Discount       *types.Discount       `json:"discount,omitempty"`
}

// Clone returns a deep copy; the register relies on this when it
// snapshots a cart into a held order.
func (l Line) Clone() Line {
	out := l
	out.Discount = l.Discount.Clone()
	if l.WeightGrams != nil {
		weight := *l.WeightGrams
		out.WeightGrams = &weight
	}
	if l.ImageURL != nil {
		url := *l.ImageURL
		out.ImageURL = &url
	}
	return out
}

// Totals is the full price breakdown for a cart. All amounts are cents.
type Totals struct {
	SubtotalCents      int64           `json:"subtotalCents"`
	LineDiscountCents  int64           `json:"lineDiscountCents"`
	OrderDiscountCents int64           `json:"orderDiscountCents"`
	TaxRatePct         decimal.Decimal `json:"taxRatePct"`
	TaxCents           int64           `json:"taxCents"`
	GrandTotalCents    int64           `json:"grandTotalCents"`
}

// LineBase returns the undiscounted extended price for the line.
func LineBase(l Line) int64 {
	return l.UnitPriceCents * l.Quantity
}

// LineDiscountAmount returns the cents taken off the line, always in
// [0, base]: percentages round half away from zero, fixed amounts cap
// at the line base.
func LineDiscountAmount(l Line) int64 {
	return discountAmount(LineBase(l), l.Discount)
}

// LineTotal returns the line price after its own discount.
func LineTotal(l Line) int64 {
	base := LineBase(l)
	return base - discountAmount(base, l.Discount)
}

// Subtotal sums the discounted line totals. An empty cart is zero.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += LineTotal(l)
	}
	return sum
}

// LineDiscountsTotal sums the per-line discount amounts.
func LineDiscountsTotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += LineDiscountAmount(l)
	}
	return sum
}

// OrderDiscountAmount returns the order-level reduction against the
// subtotal, never negative and never exceeding the subtotal.
func OrderDiscountAmount(subtotalCents int64, d *types.Discount) int64 {
	return discountAmount(subtotalCents, d)
}

// TaxAmount computes tax on the post-order-discount base. Applying the
// order discount before tax is the load-bearing ordering: 100.00 with a
// 20% order discount and 5% tax comes to 84.00, not 85.00.
func TaxAmount(subtotalCents, orderDiscountCents int64, ratePct decimal.Decimal) int64 {
	base := subtotalCents - orderDiscountCents
	if base <= 0 || !ratePct.IsPositive() {
		return 0
	}
	tax := decimal.NewFromInt(base).Mul(ratePct).Div(decimal.NewFromInt(100))
	return types.RoundCents(tax)
}

// GrandTotal returns subtotal − order discount + tax.
func GrandTotal(subtotalCents, orderDiscountCents, taxCents int64) int64 {
	return subtotalCents - orderDiscountCents + taxCents
}

// Quantity sums the line quantities, the "items in this sale" figure on
// receipts and analytics rows.
func Quantity(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Quantity
	}
	return sum
}

// Compute runs the whole pipeline: per-line discounts, subtotal, order
// discount, then tax. Pure; safe to re-run on every cart mutation.
func Compute(lines []Line, orderDiscount *types.Discount, taxRatePct decimal.Decimal) Totals {
	var subtotal, lineDiscounts int64
	for _, l := range lines {
		base := LineBase(l)
		discount := discountAmount(base, l.Discount)
		subtotal += base - discount
		lineDiscounts += discount
	}

	orderDiscountCents := discountAmount(subtotal, orderDiscount)
	tax := TaxAmount(subtotal, orderDiscountCents, taxRatePct)

	return Totals{
		SubtotalCents:      subtotal,
		LineDiscountCents:  lineDiscounts,
		OrderDiscountCents: orderDiscountCents,
		TaxRatePct:         taxRatePct,
		TaxCents:           tax,
		GrandTotalCents:    GrandTotal(subtotal, orderDiscountCents, tax),
	}
}

func discountAmount(baseCents int64, d *types.Discount) int64 {
	if d == nil || baseCents <= 0 {
		return 0
	}
	switch d.Type {
	case enums.DiscountTypePercentage:
		pct := d.Amount
		if pct.IsNegative() {
			return 0
		}
		if pct.GreaterThan(decimal.NewFromInt(100)) {
			pct = decimal.NewFromInt(100)
		}
		amount := decimal.NewFromInt(baseCents).Mul(pct).Div(decimal.NewFromInt(100))
		cents := types.RoundCents(amount)
		if cents < 0 {
			return 0
		}
		if cents > baseCents {
			return baseCents
		}
		return cents
	case enums.DiscountTypeFixed:
		cents := d.Amount.Round(0).IntPart()
		if cents < 0 {
			return 0
		}
		if cents > baseCents {
			return baseCents
		}
		return cents
	}
	return 0
}
