package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Discount is a reduction applied to a single sale line or to the order
// as a whole. Amount carries percent points for percentage discounts and
// whole cents for fixed ones. The field is not named Value because the
// type implements driver.Valuer for the discount_value composite column.
type Discount struct {
	Type   enums.DiscountType `json:"type"`
	Amount decimal.Decimal    `json:"value"`
}

// Validate rejects discounts the register should never send.
func (d Discount) Validate() error {
	if !d.Type.IsValid() {
		return fmt.Errorf("discount: invalid type %q", d.Type)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("discount: value must not be negative")
	}
	switch d.Type {
	case enums.DiscountTypePercentage:
		if d.Amount.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("discount: percentage must not exceed 100")
		}
	case enums.DiscountTypeFixed:
		if !d.Amount.IsInteger() {
			return fmt.Errorf("discount: fixed amount must be whole cents")
		}
	}
	return nil
}

// Clone returns a copy, preserving nil.
func (d *Discount) Clone() *Discount {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}

// Clamp returns a copy with the amount forced into the storable range:
// percentages into [0,100], fixed amounts to non-negative whole cents.
// Fixed amounts are additionally capped against the line base or subtotal
// at computation time, not here.
func (d *Discount) Clamp() *Discount {
	if d == nil {
		return nil
	}
	out := Discount{Type: d.Type, Amount: d.Amount}
	switch d.Type {
	case enums.DiscountTypePercentage:
		if out.Amount.IsNegative() {
			out.Amount = decimal.Zero
		} else if out.Amount.GreaterThan(decimal.NewFromInt(100)) {
			out.Amount = decimal.NewFromInt(100)
		}
	case enums.DiscountTypeFixed:
		out.Amount = out.Amount.Round(0)
		if out.Amount.IsNegative() {
			out.Amount = decimal.Zero
		}
	}
	return &out
}

// Value implements driver.Valuer for the discount_value composite column.
func (d *Discount) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return d.toComposite()
}

// Scan decodes a discount_value composite into the struct.
func (d *Discount) Scan(value interface{}) error {
	if value == nil {
		*d = Discount{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("discount: unsupported scan type %T", value)
	}

	parsed, err := parseDiscount(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Discount) toComposite() (string, error) {
	if !d.Type.IsValid() {
		return "", fmt.Errorf("discount: invalid type %q", d.Type)
	}
	if d.Amount.IsNegative() {
		return "", fmt.Errorf("discount: negative value")
	}

	parts := []string{
		quoteCompositeString(string(d.Type)),
		quoteCompositeString(d.Amount.String()),
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func parseDiscount(raw string) (Discount, error) {
	fields, err := parseComposite(raw, 2)
	if err != nil {
		return Discount{}, err
	}

	discountType, err := enums.ParseDiscountType(strings.TrimSpace(fields[0]))
	if err != nil {
		return Discount{}, fmt.Errorf("discount: %w", err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
	if err != nil {
		return Discount{}, fmt.Errorf("discount: parse value %w", err)
	}

	return Discount{Type: discountType, Amount: amount}, nil
}

// NullableDiscount tracks whether a discount field was explicitly present
// in JSON. A literal null clears the discount; an absent field leaves it
// untouched.
type NullableDiscount struct {
	Valid bool
	Value *Discount
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableDiscount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed Discount
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}
