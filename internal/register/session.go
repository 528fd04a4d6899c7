package register

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/internal/pricing"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// Session is the in-progress sale on one register terminal, stored in
// Redis as JSON. Whether the register is empty or building is derived
// from the item count, never stored.
//
// Commands are total: misuse reports false and leaves the session
// untouched. Mutations swap whole slices so a session read mid-command
// is never torn.
type Session struct {
	StoreID    uuid.UUID       `json:"storeId"`
	RegisterID string          `json:"registerId"`
	Items      []pricing.Line  `json:"items"`
	CustomerID *uuid.UUID      `json:"customerId,omitempty"`
	Discount   *types.Discount `json:"discount,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	HeldOrders []HeldOrder     `json:"heldOrders,omitempty"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// HeldOrder is a parked sale. The snapshot is deep: edits to the live
// cart after a hold can never reach into it.
type HeldOrder struct {
	ID         uuid.UUID       `json:"id"`
	Label      string          `json:"label"`
	HeldAt     time.Time       `json:"heldAt"`
	Items      []pricing.Line  `json:"items"`
	CustomerID *uuid.UUID      `json:"customerId,omitempty"`
	Discount   *types.Discount `json:"discount,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// NewSession returns an empty session for the terminal.
func NewSession(storeID uuid.UUID, registerID string) *Session {
	return &Session{StoreID: storeID, RegisterID: registerID}
}

// State derives the register state from the cart.
func (s *Session) State() enums.RegisterState {
	if len(s.Items) == 0 {
		return enums.RegisterStateEmpty
	}
	return enums.RegisterStateBuilding
}

// AddItem puts a line in the cart. A line for the same product merges
// into the existing one by quantity; one-of-a-kind pieces stay at
// quantity one. Incoming quantity floors at one and the discount is
// clamped before storage.
func (s *Session) AddItem(line pricing.Line) {
	line = line.Clone()
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.OneOfAKind {
		line.Quantity = 1
	}
	line.Discount = line.Discount.Clamp()

	if idx := s.indexOfProduct(line.ProductID); idx >= 0 {
		items := cloneLines(s.Items)
		merged := &items[idx]
		merged.Quantity += line.Quantity
		if merged.OneOfAKind {
			merged.Quantity = 1
		}
		s.Items = items
		return
	}

	items := make([]pricing.Line, 0, len(s.Items)+1)
	items = append(items, s.Items...)
	items = append(items, line)
	s.Items = items
}

// RemoveItem drops the line. Unknown id reports false.
func (s *Session) RemoveItem(lineID uuid.UUID) bool {
	idx := s.indexOfLine(lineID)
	if idx < 0 {
		return false
	}
	items := make([]pricing.Line, 0, len(s.Items)-1)
	items = append(items, s.Items[:idx]...)
	items = append(items, s.Items[idx+1:]...)
	s.Items = items
	return true
}

// UpdateQuantity sets the line quantity. Quantities below one are
// rejected before they can reach pricing; one-of-a-kind lines clamp
// back to one.
func (s *Session) UpdateQuantity(lineID uuid.UUID, quantity int64) bool {
	if quantity < 1 {
		return false
	}
	idx := s.indexOfLine(lineID)
	if idx < 0 {
		return false
	}
	items := cloneLines(s.Items)
	if items[idx].OneOfAKind {
		quantity = 1
	}
	items[idx].Quantity = quantity
	s.Items = items
	return true
}

// SetItemDiscount stores a clamped discount on the line; nil clears it.
func (s *Session) SetItemDiscount(lineID uuid.UUID, d *types.Discount) bool {
	idx := s.indexOfLine(lineID)
	if idx < 0 {
		return false
	}
	items := cloneLines(s.Items)
	items[idx].Discount = d.Clamp()
	s.Items = items
	return true
}

// SetCustomer attaches a customer; nil means walk-in.
func (s *Session) SetCustomer(id *uuid.UUID) {
	s.CustomerID = cloneUUIDPtr(id)
}

// SetOrderDiscount stores a clamped order-level discount; nil clears.
func (s *Session) SetOrderDiscount(d *types.Discount) {
	s.Discount = d.Clamp()
}

// SetNotes replaces the free-form note on the sale.
func (s *Session) SetNotes(notes string) {
	s.Notes = notes
}

// Clear resets the active sale. Held orders survive.
func (s *Session) Clear() {
	s.Items = nil
	s.CustomerID = nil
	s.Discount = nil
	s.Notes = ""
}

// Hold parks the active sale as a labeled snapshot and resets the cart.
// Holding an empty cart is a no-op.
func (s *Session) Hold(now time.Time) (*HeldOrder, bool) {
	if len(s.Items) == 0 {
		return nil, false
	}

	held := HeldOrder{
		ID:         uuid.New(),
		Label:      fmt.Sprintf("Order #%d", len(s.HeldOrders)+1),
		HeldAt:     now,
		Items:      cloneLines(s.Items),
		CustomerID: cloneUUIDPtr(s.CustomerID),
		Discount:   s.Discount.Clone(),
		Notes:      s.Notes,
	}

	orders := make([]HeldOrder, 0, len(s.HeldOrders)+1)
	orders = append(orders, s.HeldOrders...)
	orders = append(orders, held)
	s.HeldOrders = orders
	s.Clear()
	return &held, true
}

// Restore replaces the active sale with the snapshot and removes it
// from the held list. Whatever was in the cart is discarded.
func (s *Session) Restore(id uuid.UUID) bool {
	idx := s.indexOfHeld(id)
	if idx < 0 {
		return false
	}

	held := s.HeldOrders[idx]
	s.Items = held.Items
	s.CustomerID = held.CustomerID
	s.Discount = held.Discount
	s.Notes = held.Notes
	s.removeHeldAt(idx)
	return true
}

// DeleteHeldOrder drops the snapshot without touching the active sale.
func (s *Session) DeleteHeldOrder(id uuid.UUID) bool {
	idx := s.indexOfHeld(id)
	if idx < 0 {
		return false
	}
	s.removeHeldAt(idx)
	return true
}

// ExpireHeldBefore removes held orders parked strictly before the
// cutoff and returns them, oldest first. The active sale is untouched.
func (s *Session) ExpireHeldBefore(cutoff time.Time) []HeldOrder {
	if len(s.HeldOrders) == 0 {
		return nil
	}
	var expired []HeldOrder
	kept := make([]HeldOrder, 0, len(s.HeldOrders))
	for _, held := range s.HeldOrders {
		if held.HeldAt.Before(cutoff) {
			expired = append(expired, held)
			continue
		}
		kept = append(kept, held)
	}
	if len(expired) == 0 {
		return nil
	}
	s.HeldOrders = kept
	return expired
}

// HeldOrderByID returns the snapshot, or nil.
func (s *Session) HeldOrderByID(id uuid.UUID) *HeldOrder {
	idx := s.indexOfHeld(id)
	if idx < 0 {
		return nil
	}
	held := s.HeldOrders[idx]
	return &held
}

func (s *Session) indexOfLine(id uuid.UUID) int {
	for i, l := range s.Items {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) indexOfProduct(productID uuid.UUID) int {
	for i, l := range s.Items {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Session) indexOfHeld(id uuid.UUID) int {
	for i, h := range s.HeldOrders {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) removeHeldAt(idx int) {
	orders := make([]HeldOrder, 0, len(s.HeldOrders)-1)
	orders = append(orders, s.HeldOrders[:idx]...)
	orders = append(orders, s.HeldOrders[idx+1:]...)
	s.HeldOrders = orders
}

func cloneLines(lines []pricing.Line) []pricing.Line {
	if lines == nil {
		return nil
	}
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

func cloneUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}
