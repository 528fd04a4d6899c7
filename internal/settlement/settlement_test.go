package settlement

import (
	"testing"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

func entry(method enums.PaymentMethod, amount int64) Entry {
	return Entry{ID: uuid.New(), Method: method, AmountCents: amount}
}

func TestRemainingMayGoNegative(t *testing.T) {
	entries := []Entry{entry(enums.PaymentMethodCash, 12000)}

	if got := Remaining(10000, entries); got != -2000 {
		t.Fatalf("expected -2000, got %d", got)
	}
	if got := Remaining(10000, nil); got != 10000 {
		t.Fatalf("expected 10000 for empty tenders, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		name       string
		grandTotal int64
		entries    []Entry
		want       Summary
	}{
		{
			name:       "nothing tendered",
			grandTotal: 10000,
			want: Summary{
				AmountPaidCents: 0,
				RemainingCents:  10000,
			},
		},
		{
			name:       "exact split settles",
			grandTotal: 10000,
			entries: []Entry{
				entry(enums.PaymentMethodCard, 6000),
				entry(enums.PaymentMethodCash, 4000),
			},
			want: Summary{
				AmountPaidCents: 10000,
				RemainingCents:  0,
				FullyPaid:       true,
				Settled:         true,
			},
		},
		{
			name:       "cash overage is change",
			grandTotal: 8400,
			entries:    []Entry{entry(enums.PaymentMethodCash, 10000)},
			want: Summary{
				AmountPaidCents: 10000,
				RemainingCents:  -1600,
				ChangeCents:     1600,
				Settled:         true,
			},
		},
		{
			name:       "card overage cannot be handed back",
			grandTotal: 8400,
			entries:    []Entry{entry(enums.PaymentMethodCard, 9000)},
			want: Summary{
				AmountPaidCents: 9000,
				RemainingCents:  -600,
				Overpaid:        true,
			},
		},
		{
			name:       "overage within cash tendered",
			grandTotal: 10000,
			entries: []Entry{
				entry(enums.PaymentMethodCash, 3000),
				entry(enums.PaymentMethodCard, 9000),
			},
			want: Summary{
				AmountPaidCents: 12000,
				RemainingCents:  -2000,
				ChangeCents:     2000,
				Settled:         true,
			},
		},
		{
			name:       "overage beyond cash tendered",
			grandTotal: 10000,
			entries: []Entry{
				entry(enums.PaymentMethodCash, 1000),
				entry(enums.PaymentMethodCard, 12000),
			},
			want: Summary{
				AmountPaidCents: 13000,
				RemainingCents:  -3000,
				ChangeCents:     1000,
				Overpaid:        true,
			},
		},
		{
			name:       "partial payment",
			grandTotal: 10000,
			entries:    []Entry{entry(enums.PaymentMethodStoreCredit, 2500)},
			want: Summary{
				AmountPaidCents: 2500,
				RemainingCents:  7500,
			},
		},
		{
			name:       "zero total settles immediately",
			grandTotal: 0,
			want: Summary{
				FullyPaid: true,
				Settled:   true,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.grandTotal, tc.entries)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestFillRemainingExcludesEditedEntry(t *testing.T) {
	cash := entry(enums.PaymentMethodCash, 3000)
	card := entry(enums.PaymentMethodCard, 9999)
	entries := []Entry{cash, card}

	// Filling the card entry counts only the cash tender.
	if got := FillRemaining(10000, entries, card.ID); got != 7000 {
		t.Fatalf("expected 7000, got %d", got)
	}

	// A second fill with the updated amount lands on the same figure.
	entries[1].AmountCents = 7000
	if got := FillRemaining(10000, entries, card.ID); got != 7000 {
		t.Fatalf("expected repeated fill to stay 7000, got %d", got)
	}
}

func TestFillRemainingFloorsAtZero(t *testing.T) {
	entries := []Entry{
		entry(enums.PaymentMethodCash, 15000),
		entry(enums.PaymentMethodCard, 500),
	}

	if got := FillRemaining(10000, entries, entries[1].ID); got != 0 {
		t.Fatalf("expected 0 when others already cover the total, got %d", got)
	}
}

func TestFillRemainingNilIDExcludesNothing(t *testing.T) {
	entries := []Entry{entry(enums.PaymentMethodCash, 4000)}

	if got := FillRemaining(10000, entries, uuid.Nil); got != 6000 {
		t.Fatalf("expected 6000, got %d", got)
	}
}
