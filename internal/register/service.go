package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/internal/pricing"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// Service drives one register terminal's session: cart commands, held
// orders, and the current totals.
type Service interface {
	Session(ctx context.Context, storeID uuid.UUID, registerID string) (*SessionDTO, error)
	AddItem(ctx context.Context, storeID uuid.UUID, registerID string, params AddItemParams) (*SessionDTO, error)
	UpdateItemQuantity(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID, quantity int64) (*SessionDTO, error)
	SetItemDiscount(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID, discount *types.Discount) (*SessionDTO, error)
	RemoveItem(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID) (*SessionDTO, error)
	SetCustomer(ctx context.Context, storeID uuid.UUID, registerID string, customerID *uuid.UUID) (*SessionDTO, error)
	SetOrderDiscount(ctx context.Context, storeID uuid.UUID, registerID string, discount *types.Discount) (*SessionDTO, error)
	SetNotes(ctx context.Context, storeID uuid.UUID, registerID string, notes string) (*SessionDTO, error)
	Clear(ctx context.Context, storeID uuid.UUID, registerID string) (*SessionDTO, error)
	Hold(ctx context.Context, storeID uuid.UUID, registerID string) (*SessionDTO, error)
	HeldOrders(ctx context.Context, storeID uuid.UUID, registerID string) ([]HeldOrderSummary, error)
	Restore(ctx context.Context, storeID uuid.UUID, registerID string, heldID uuid.UUID) (*SessionDTO, error)
	DeleteHeldOrder(ctx context.Context, storeID uuid.UUID, registerID string, heldID uuid.UUID) (*SessionDTO, error)
}

// AddItemParams identifies what lands in the cart.
type AddItemParams struct {
	ProductID uuid.UUID
	Quantity  int64
}

// SessionDTO is the session plus derived state and totals, the shape
// every session route responds with.
type SessionDTO struct {
	StoreID    uuid.UUID           `json:"storeId"`
	RegisterID string              `json:"registerId"`
	State      enums.RegisterState `json:"state"`
	Items      []pricing.Line      `json:"items"`
	CustomerID *uuid.UUID          `json:"customerId,omitempty"`
	Discount   *types.Discount     `json:"discount,omitempty"`
	Notes      string              `json:"notes,omitempty"`
	HeldOrders []HeldOrderSummary  `json:"heldOrders"`
	Totals     pricing.Totals      `json:"totals"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// HeldOrderSummary is the pick-list view of a parked sale.
type HeldOrderSummary struct {
	ID            uuid.UUID `json:"id"`
	Label         string    `json:"label"`
	HeldAt        time.Time `json:"heldAt"`
	ItemCount     int       `json:"itemCount"`
	SubtotalCents int64     `json:"subtotalCents"`
}

// productLoader resolves a sellable product for the cart snapshot.
type productLoader interface {
	ProductForSale(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)
}

// customerChecker verifies a customer belongs to the store.
type customerChecker interface {
	CustomerExists(ctx context.Context, storeID, customerID uuid.UUID) (bool, error)
}

// settingsLoader supplies the store's tax rate for totals.
type settingsLoader interface {
	TaxRatePct(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	sessions  SessionStore
	products  productLoader
	customers customerChecker
	settings  settingsLoader
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the register command service.
func NewService(sessions SessionStore, products productLoader, customers customerChecker, settings settingsLoader, logg *logger.Logger) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer checker required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		sessions:  sessions,
		products:  products,
		customers: customers,
		settings:  settings,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Session(ctx context.Context, storeID uuid.UUID, registerID string) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, session)
}

func (s *service) AddItem(ctx context.Context, storeID uuid.UUID, registerID string, params AddItemParams) (*SessionDTO, error) {
	if params.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if params.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.ProductForSale(ctx, storeID, params.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != enums.ProductStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product not available for sale")
	}

	requested := params.Quantity
	if product.OneOfAKind {
		requested = 1
	}
	var inCart int64
	for _, l := range session.Items {
		if l.ProductID == product.ID {
			inCart = l.Quantity
			break
		}
	}
	if !product.OneOfAKind && inCart+requested > int64(product.StockQty) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}
	if product.OneOfAKind && inCart == 0 && product.StockQty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "piece already sold")
	}

	session.AddItem(lineFromProduct(product, requested))
	return s.save(ctx, session)
}

func (s *service) UpdateItemQuantity(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID, quantity int64) (*SessionDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}

	idx := session.indexOfLine(lineID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not in cart")
	}

	line := session.Items[idx]
	if !line.OneOfAKind {
		product, err := s.products.ProductForSale(ctx, storeID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if quantity > int64(product.StockQty) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
		}
	}

	if !session.UpdateQuantity(lineID, quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not in cart")
	}
	return s.save(ctx, session)
}

func (s *service) SetItemDiscount(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID, discount *types.Discount) (*SessionDTO, error) {
	if discount != nil {
		if err := discount.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount")
		}
	}

	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	if !session.SetItemDiscount(lineID, discount) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not in cart")
	}
	return s.save(ctx, session)
}

func (s *service) RemoveItem(ctx context.Context, storeID uuid.UUID, registerID string, lineID uuid.UUID) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	if !session.RemoveItem(lineID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not in cart")
	}
	return s.save(ctx, session)
}

func (s *service) SetCustomer(ctx context.Context, storeID uuid.UUID, registerID string, customerID *uuid.UUID) (*SessionDTO, error) {
	if customerID != nil {
		ok, err := s.customers.CustomerExists(ctx, storeID, *customerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
	}

	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	session.SetCustomer(customerID)
	return s.save(ctx, session)
}

func (s *service) SetOrderDiscount(ctx context.Context, storeID uuid.UUID, registerID string, discount *types.Discount) (*SessionDTO, error) {
	if discount != nil {
		if err := discount.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount")
		}
	}

	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	session.SetOrderDiscount(discount)
	return s.save(ctx, session)
}

func (s *service) SetNotes(ctx context.Context, storeID uuid.UUID, registerID string, notes string) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	session.SetNotes(notes)
	return s.save(ctx, session)
}

func (s *service) Clear(ctx context.Context, storeID uuid.UUID, registerID string) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	session.Clear()
	s.logg.Info(s.logg.WithRegisterID(ctx, registerID), "register sale cleared")
	return s.save(ctx, session)
}

func (s *service) Hold(ctx context.Context, storeID uuid.UUID, registerID string) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}

	held, ok := session.Hold(s.now().UTC())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot hold an empty sale")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"register_id":   registerID,
		"held_order_id": held.ID.String(),
		"label":         held.Label,
	})
	s.logg.Info(logCtx, "sale parked")
	return s.save(ctx, session)
}

func (s *service) HeldOrders(ctx context.Context, storeID uuid.UUID, registerID string) ([]HeldOrderSummary, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	return heldSummaries(session), nil
}

func (s *service) Restore(ctx context.Context, storeID uuid.UUID, registerID string, heldID uuid.UUID) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	if !session.Restore(heldID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "held order not found")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"register_id":   registerID,
		"held_order_id": heldID.String(),
	})
	s.logg.Info(logCtx, "held order restored")
	return s.save(ctx, session)
}

func (s *service) DeleteHeldOrder(ctx context.Context, storeID uuid.UUID, registerID string, heldID uuid.UUID) (*SessionDTO, error) {
	session, err := s.load(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	if !session.DeleteHeldOrder(heldID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "held order not found")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"register_id":   registerID,
		"held_order_id": heldID.String(),
	})
	s.logg.Info(logCtx, "held order deleted")
	return s.save(ctx, session)
}

func (s *service) load(ctx context.Context, storeID uuid.UUID, registerID string) (*Session, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if err := ValidateRegisterID(registerID); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, storeID, registerID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = NewSession(storeID, registerID)
	}
	return session, nil
}

func (s *service) save(ctx context.Context, session *Session) (*SessionDTO, error) {
	session.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.toDTO(ctx, session)
}

func (s *service) toDTO(ctx context.Context, session *Session) (*SessionDTO, error) {
	rate, err := s.settings.TaxRatePct(ctx, session.StoreID)
	if err != nil {
		return nil, err
	}

	items := cloneLines(session.Items)
	if items == nil {
		items = []pricing.Line{}
	}

	return &SessionDTO{
		StoreID:    session.StoreID,
		RegisterID: session.RegisterID,
		State:      session.State(),
		Items:      items,
		CustomerID: cloneUUIDPtr(session.CustomerID),
		Discount:   session.Discount.Clone(),
		Notes:      session.Notes,
		HeldOrders: heldSummaries(session),
		Totals:     pricing.Compute(session.Items, session.Discount, rate),
		UpdatedAt:  session.UpdatedAt,
	}, nil
}

// ValidateRegisterID rejects terminal names that cannot live inside a
// redis key.
func ValidateRegisterID(registerID string) error {
	if registerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "register id required")
	}
	if len(registerID) > 64 || strings.ContainsAny(registerID, ": \t\n*") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid register id")
	}
	return nil
}

func heldSummaries(session *Session) []HeldOrderSummary {
	out := make([]HeldOrderSummary, 0, len(session.HeldOrders))
	for _, h := range session.HeldOrders {
		out = append(out, HeldOrderSummary{
			ID:            h.ID,
			Label:         h.Label,
			HeldAt:        h.HeldAt,
			ItemCount:     len(h.Items),
			SubtotalCents: pricing.Subtotal(h.Items),
		})
	}
	return out
}

func lineFromProduct(p *models.Product, quantity int64) pricing.Line {
	line := pricing.Line{
		ProductID:      p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Category:       p.Category,
		UnitPriceCents: p.PriceCents,
		Quantity:       quantity,
		OneOfAKind:     p.OneOfAKind,
	}
	if p.Barcode != nil {
		line.Barcode = *p.Barcode
	}
	if p.Metal != nil {
		line.Metal = *p.Metal
	}
	if p.Purity != nil {
		line.Purity = *p.Purity
	}
	if p.WeightGrams != nil {
		weight := *p.WeightGrams
		line.WeightGrams = &weight
	}
	if p.ImageURL != nil {
		url := *p.ImageURL
		line.ImageURL = &url
	}
	return line
}
