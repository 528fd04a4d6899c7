package enums

import "fmt"

// LedgerEntryType maps to the ledger_entry_type enum in Postgres. Every
// movement of physical cash through the drawer gets exactly one entry.
type LedgerEntryType string

const (
	LedgerSaleCash    LedgerEntryType = "sale_cash"
	LedgerChangeGiven LedgerEntryType = "change_given"
	LedgerPaidIn      LedgerEntryType = "paid_in"
	LedgerPaidOut     LedgerEntryType = "paid_out"
	LedgerFloatOpen   LedgerEntryType = "float_open"
	LedgerFloatClose  LedgerEntryType = "float_close"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerSaleCash,
	LedgerChangeGiven,
	LedgerPaidIn,
	LedgerPaidOut,
	LedgerFloatOpen,
	LedgerFloatClose,
}

// String implements fmt.Stringer.
func (l LedgerEntryType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerEntryType.
func (l LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
