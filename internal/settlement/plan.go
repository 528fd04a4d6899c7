package settlement

import (
	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Plan is the mutable split the register UI edits during checkout. It is
// never persisted; a settled plan becomes sale payment rows.
type Plan struct {
	MaxEntries int     `json:"maxEntries"`
	Entries    []Entry `json:"entries"`
}

// NewPlan returns an empty plan. A maxEntries below one falls back to
// the default ceiling.
func NewPlan(maxEntries int) *Plan {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &Plan{MaxEntries: maxEntries}
}

// Add appends a tender. Each payment method may appear at most once per
// split, the plan caps at MaxEntries, and negative amounts are rejected;
// all three cases report false without changing the plan.
func (p *Plan) Add(method enums.PaymentMethod, amountCents int64, reference string) (Entry, bool) {
	if !method.IsValid() || amountCents < 0 {
		return Entry{}, false
	}
	if len(p.Entries) >= p.maxEntries() {
		return Entry{}, false
	}
	if p.indexOfMethod(method) >= 0 {
		return Entry{}, false
	}

	entry := Entry{
		ID:          uuid.New(),
		Method:      method,
		AmountCents: amountCents,
		Reference:   reference,
	}
	p.Entries = append(p.Entries, entry)
	return entry, true
}

// Update replaces the amount and reference of an existing entry.
func (p *Plan) Update(id uuid.UUID, amountCents int64, reference string) bool {
	if amountCents < 0 {
		return false
	}
	idx := p.indexOf(id)
	if idx < 0 {
		return false
	}
	p.Entries[idx].AmountCents = amountCents
	p.Entries[idx].Reference = reference
	return true
}

// Remove deletes the entry with the given id.
func (p *Plan) Remove(id uuid.UUID) bool {
	idx := p.indexOf(id)
	if idx < 0 {
		return false
	}
	p.Entries = append(p.Entries[:idx], p.Entries[idx+1:]...)
	return true
}

// Fill sets the entry's amount to exactly cover the outstanding balance,
// counting every other tender in the plan.
func (p *Plan) Fill(id uuid.UUID, grandTotalCents int64) bool {
	idx := p.indexOf(id)
	if idx < 0 {
		return false
	}
	p.Entries[idx].AmountCents = FillRemaining(grandTotalCents, p.Entries, id)
	return true
}

// Summarize evaluates the plan against a grand total.
func (p *Plan) Summarize(grandTotalCents int64) Summary {
	return Summarize(grandTotalCents, p.Entries)
}

func (p *Plan) maxEntries() int {
	if p.MaxEntries < 1 {
		return DefaultMaxEntries
	}
	return p.MaxEntries
}

func (p *Plan) indexOf(id uuid.UUID) int {
	for i, e := range p.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (p *Plan) indexOfMethod(method enums.PaymentMethod) int {
	for i, e := range p.Entries {
		if e.Method == method {
			return i
		}
	}
	return -1
}
