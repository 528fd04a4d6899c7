package settlement

import (
	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// DefaultMaxEntries is the split-tender ceiling when store settings do
// not override it.
const DefaultMaxEntries = 4

// Entry is one tender in a split payment. Reference carries whatever the
// method needs downstream: a card payment id, a cheque number, nothing
// for cash.
type Entry struct {
	ID          uuid.UUID           `json:"id"`
	Method      enums.PaymentMethod `json:"method"`
	AmountCents int64               `json:"amountCents"`
	Reference   string              `json:"reference,omitempty"`
}

// Summary is the settlement state for a grand total against a set of
// tenders. Settled is the gate for completing a sale: covered in full,
// with any overage returnable as cash change.
type Summary struct {
	AmountPaidCents int64 `json:"amountPaidCents"`
	RemainingCents  int64 `json:"remainingCents"`
	ChangeCents     int64 `json:"changeCents"`
	FullyPaid       bool  `json:"fullyPaid"`
	Overpaid        bool  `json:"overpaid"`
	Settled         bool  `json:"settled"`
}

// AmountPaid sums the tendered amounts.
func AmountPaid(entries []Entry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.AmountCents
	}
	return sum
}

// Remaining returns grand total minus paid. Negative means the customer
// tendered more than the total.
func Remaining(grandTotalCents int64, entries []Entry) int64 {
	return grandTotalCents - AmountPaid(entries)
}

// CashTendered sums only cash entries, the pool change can come out of.
func CashTendered(entries []Entry) int64 {
	var sum int64
	for _, e := range entries {
		if e.Method == enums.PaymentMethodCash {
			sum += e.AmountCents
		}
	}
	return sum
}

// FillRemaining returns the amount that would exactly cover the balance,
// ignoring the entry being edited so repeated fills never double-count.
// A zero editID excludes nothing.
func FillRemaining(grandTotalCents int64, entries []Entry, editID uuid.UUID) int64 {
	var others int64
	for _, e := range entries {
		if editID != uuid.Nil && e.ID == editID {
			continue
		}
		others += e.AmountCents
	}
	remaining := grandTotalCents - others
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Summarize evaluates the tenders against the grand total. Change can
// only be handed back in cash, so an overage beyond the cash tendered
// marks the split overpaid instead of producing change.
func Summarize(grandTotalCents int64, entries []Entry) Summary {
	paid := AmountPaid(entries)
	remaining := grandTotalCents - paid

	var overage int64
	if paid > grandTotalCents {
		overage = paid - grandTotalCents
	}

	cash := CashTendered(entries)
	change := overage
	if change > cash {
		change = cash
	}
	overpaid := overage > cash

	return Summary{
		AmountPaidCents: paid,
		RemainingCents:  remaining,
		ChangeCents:     change,
		FullyPaid:       remaining == 0,
		Overpaid:        overpaid,
		Settled:         paid >= grandTotalCents && !overpaid,
	}
}
