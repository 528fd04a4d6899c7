package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/internal/catalog"
	"github.com/karatworks/aurumpos-backend/internal/customers"
	"github.com/karatworks/aurumpos-backend/internal/ledger"
	"github.com/karatworks/aurumpos-backend/internal/payments"
	"github.com/karatworks/aurumpos-backend/internal/pricing"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/settlement"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	dbpkg "github.com/karatworks/aurumpos-backend/pkg/db"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/metrics"
	"github.com/karatworks/aurumpos-backend/pkg/outbox"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/payloads"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// saleNumberAttempts bounds the retries when two registers allocate the
// same sale number concurrently.
const saleNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// sessionStore is the slice of the register session store checkout
// needs: read the cart, then clear it once the sale commits.
type sessionStore interface {
	Get(ctx context.Context, storeID uuid.UUID, registerID string) (*register.Session, error)
	Save(ctx context.Context, session *register.Session) error
}

// userLoader resolves the staff account behind a sale for receipts.
type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service executes checkout and the read side of sale history.
type Service interface {
	Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateSaleInput) (*SaleDTO, error)
	Get(ctx context.Context, storeID, saleID uuid.UUID) (*SaleDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*SaleList, error)
	Void(ctx context.Context, actor audit.Actor, storeID, saleID uuid.UUID, input VoidSaleInput) (*SaleDTO, error)
	Receipt(ctx context.Context, storeID, saleID uuid.UUID) (*ReceiptDTO, error)
}

// PaymentInput is one tender of the submitted split. SourceToken is
// only meaningful for card tenders captured through Square; card
// tenders without one are treated as captured on the terminal.
type PaymentInput struct {
	Method      enums.PaymentMethod `json:"method"`
	AmountCents int64               `json:"amountCents"`
	Reference   string              `json:"reference,omitempty"`
	SourceToken string              `json:"sourceToken,omitempty"`
}

// CreateSaleInput is the checkout submission. Totals echo what the
// register displayed so the server can refuse a stale cart.
type CreateSaleInput struct {
	RegisterID string         `json:"registerId"`
	Totals     pricing.Totals `json:"totals"`
	Payments   []PaymentInput `json:"payments"`
}

// VoidSaleInput carries the manager's reason for reversing a sale.
type VoidSaleInput struct {
	Reason string `json:"reason"`
}

type service struct {
	tx           txRunner
	repo         Repository
	sessions     sessionStore
	productRepo  catalog.Repository
	customerRepo customers.Repository
	drawerRepo   ledger.Repository
	auditRepo    audit.Repository
	storeSvc     stores.Service
	userRepo     userLoader
	cards        payments.Service
	outbox       outboxPublisher
	saleMetrics  *metrics.SaleMetrics
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the sales service. cards may be nil when card
// capture is not configured; saleMetrics may be nil outside the API
// binary.
func NewService(
	tx txRunner,
	repo Repository,
	sessions sessionStore,
	productRepo catalog.Repository,
	customerRepo customers.Repository,
	drawerRepo ledger.Repository,
	auditRepo audit.Repository,
	storeSvc stores.Service,
	userRepo userLoader,
	cards payments.Service,
	publisher outboxPublisher,
	saleMetrics *metrics.SaleMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if drawerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if storeSvc == nil {
		return nil, fmt.Errorf("store service required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:           tx,
		repo:         repo,
		sessions:     sessions,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		drawerRepo:   drawerRepo,
		auditRepo:    auditRepo,
		storeSvc:     storeSvc,
		userRepo:     userRepo,
		cards:        cards,
		outbox:       publisher,
		saleMetrics:  saleMetrics,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Create turns the register session into a persisted sale: server-side
// totals verification, settlement validation, card capture, then one
// transaction covering stock, store credit, the sale rows, the drawer
// ledger, the audit trail, and the outbox event. The register cart is
// cleared afterwards; held orders survive.
func (s *service) Create(ctx context.Context, actor audit.Actor, storeID uuid.UUID, input CreateSaleInput) (*SaleDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier required")
	}
	if err := register.ValidateRegisterID(input.RegisterID); err != nil {
		return nil, err
	}
	if len(input.Payments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one payment required")
	}

	session, err := s.sessions.Get(ctx, storeID, input.RegisterID)
	if err != nil {
		return nil, err
	}
	if session == nil || len(session.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no sale in progress on this register")
	}

	settings, err := s.storeSvc.Settings(ctx, storeID)
	if err != nil {
		return nil, err
	}

	totals := pricing.Compute(session.Items, session.Discount, settings.TaxRatePct)
	if !totalsMatch(totals, input.Totals) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "totals do not match the register session")
	}

	plan, err := buildPlan(input.Payments, settings.MaxPaymentSplits)
	if err != nil {
		return nil, err
	}
	summary := plan.Summarize(totals.GrandTotalCents)
	if summary.Overpaid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tendered amount exceeds the total beyond cash change").
			WithDetails(map[string]string{"overage": types.FormatCents(-summary.RemainingCents, settings.Currency.Symbol())})
	}
	if !summary.Settled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payments do not cover the total").
			WithDetails(map[string]string{"remaining": types.FormatCents(summary.RemainingCents, settings.Currency.Symbol())})
	}

	creditEntry := planEntryByMethod(plan.Entries, enums.PaymentMethodStoreCredit)
	if creditEntry != nil && creditEntry.AmountCents > 0 && session.CustomerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store credit requires a customer on the sale")
	}

	seq, err := s.repo.NextSaleNumber(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: allocate sale number")
	}
	number := FormatSaleNumber(seq, s.now().UTC())

	capture, err := s.captureCardTender(ctx, plan, input, settings, number)
	if err != nil {
		return nil, err
	}

	var created *models.Sale
	for attempt := 1; ; attempt++ {
		sale := buildSale(storeID, seq, input.RegisterID, actor, session, settings, totals, summary)
		createErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			productRepo := s.productRepo.WithTx(tx)

			for _, line := range session.Items {
				if _, err := productRepo.DecrementStock(ctx, line.ProductID, int(line.Quantity)); err != nil {
					return err
				}
			}
			if creditEntry != nil && creditEntry.AmountCents > 0 {
				if _, err := s.customerRepo.WithTx(tx).DebitBalance(ctx, *session.CustomerID, creditEntry.AmountCents); err != nil {
					return err
				}
			}

			if _, err := repo.CreateSale(ctx, sale); err != nil {
				return err
			}
			if err := repo.CreateSaleItems(ctx, buildSaleItems(sale.ID, session.Items)); err != nil {
				return err
			}
			if err := repo.CreateSalePayments(ctx, buildSalePayments(sale.ID, plan.Entries)); err != nil {
				return err
			}
			if err := s.recordDrawerMovements(ctx, tx, sale, number, actor, plan.Entries); err != nil {
				return err
			}
			if err := s.insertSaleAudit(ctx, tx, actor, enums.AuditSaleCreated, sale, map[string]any{
				"saleNumber":      number,
				"grandTotalCents": sale.TotalCents,
				"paymentMethods":  methodNames(plan.Entries),
			}); err != nil {
				return err
			}
			if err := s.emitSaleCreated(ctx, tx, actor, sale, number, plan.Entries, session); err != nil {
				return err
			}

			var findErr error
			created, findErr = repo.FindByID(ctx, sale.ID)
			return findErr
		})
		if createErr == nil {
			break
		}
		if dbpkg.IsUniqueViolation(createErr, "ux_sales_store_number") && attempt < saleNumberAttempts {
			if seq, err = s.repo.NextSaleNumber(ctx, storeID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: allocate sale number")
			}
			number = FormatSaleNumber(seq, s.now().UTC())
			continue
		}
		if capture != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"register_id": input.RegisterID,
				"payment_id":  capture.PaymentID,
			})
			s.logg.Error(logCtx, "card captured but sale failed; refund required", createErr)
		}
		if pkgerrors.As(createErr) != nil {
			return nil, createErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create sale")
	}

	s.clearRegister(ctx, session)

	if s.saleMetrics != nil {
		s.saleMetrics.IncCompleted(storeID.String(), created.TotalCents)
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"register_id": created.RegisterID,
		"sale_number": number,
		"total_cents": created.TotalCents,
	})
	s.logg.Info(logCtx, "sale completed")
	return NewSaleDTO(created), nil
}

func (s *service) Get(ctx context.Context, storeID, saleID uuid.UUID) (*SaleDTO, error) {
	sale, err := s.loadSale(ctx, storeID, saleID)
	if err != nil {
		return nil, err
	}
	return NewSaleDTO(sale), nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters ListFilters) (*SaleList, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sale status")
	}
	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time window is inverted")
	}

	list, err := s.repo.List(ctx, storeID, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return list, nil
}

// Void reverses a completed sale: status flip, stock restore, and a
// store-credit refund where credit was spent. Cash already handed back
// as change and card captures are manual follow-ups; the audit row
// records the reason.
func (s *service) Void(ctx context.Context, actor audit.Actor, storeID, saleID uuid.UUID, input VoidSaleInput) (*SaleDTO, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "void reason required")
	}
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}

	sale, err := s.loadSale(ctx, storeID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != enums.SaleStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sale already voided")
	}

	number := FormatSaleNumber(sale.SaleNumber, sale.CreatedAt)
	voidedAt := s.now().UTC()

	var voided *models.Sale
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		flipped, err := repo.MarkVoided(ctx, sale.ID, reason, actor.ID, voidedAt)
		if err != nil {
			return err
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale already voided")
		}

		productRepo := s.productRepo.WithTx(tx)
		for _, item := range sale.Items {
			if item.ProductID == nil {
				continue
			}
			if _, err := productRepo.RestoreStock(ctx, *item.ProductID, item.Qty); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			if credit := storeCreditPaid(sale.Payments); credit > 0 {
				if _, err := s.customerRepo.WithTx(tx).CreditBalance(ctx, *sale.CustomerID, credit); err != nil {
					return err
				}
			}
		}

		if err := s.insertSaleAudit(ctx, tx, actor, enums.AuditSaleVoided, sale, map[string]any{
			"saleNumber": number,
			"reason":     reason,
		}); err != nil {
			return err
		}
		if err := s.emitSaleVoided(ctx, tx, actor, sale, number, reason, voidedAt); err != nil {
			return err
		}

		var findErr error
		voided, findErr = repo.FindByID(ctx, sale.ID)
		return findErr
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "void sale")
	}

	if s.saleMetrics != nil {
		s.saleMetrics.IncVoided(storeID.String())
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"register_id": sale.RegisterID,
		"sale_number": number,
	})
	s.logg.Info(logCtx, "sale voided")
	return NewSaleDTO(voided), nil
}

// Receipt bundles the sale with its store header and people for an
// external renderer.
func (s *service) Receipt(ctx context.Context, storeID, saleID uuid.UUID) (*ReceiptDTO, error) {
	sale, err := s.loadSale(ctx, storeID, saleID)
	if err != nil {
		return nil, err
	}
	store, err := s.storeSvc.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	cashier, err := s.userRepo.FindByID(ctx, sale.CashierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cashier")
	}

	receipt := &ReceiptDTO{
		Sale: NewSaleDTO(sale),
		Store: ReceiptStoreDTO{
			Name:        store.Name,
			Phone:       store.Phone,
			AddressLine: store.AddressLine,
			City:        store.City,
			Region:      store.Region,
			PostalCode:  store.PostalCode,
			Footer:      store.ReceiptFooter,
		},
		Cashier: ReceiptPersonDTO{ID: cashier.ID, Name: personName(cashier.FirstName, cashier.LastName)},
	}
	if sale.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *sale.CustomerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		receipt.Customer = &ReceiptPersonDTO{ID: customer.ID, Name: personName(customer.FirstName, customer.LastName)}
	}
	return receipt, nil
}

// captureCardTender runs the Square capture for a tokenized card tender
// before the sale transaction opens. Card tenders without a token are
// terminal-captured and pass through with their reference untouched.
func (s *service) captureCardTender(ctx context.Context, plan *settlement.Plan, input CreateSaleInput, settings *stores.RegisterSettings, number string) (*payments.CardCaptureDTO, error) {
	cardEntry := planEntryByMethod(plan.Entries, enums.PaymentMethodCard)
	if cardEntry == nil || cardEntry.AmountCents <= 0 {
		return nil, nil
	}
	token := ""
	for _, p := range input.Payments {
		if p.Method == enums.PaymentMethodCard {
			token = strings.TrimSpace(p.SourceToken)
			break
		}
	}
	if token == "" {
		return nil, nil
	}
	if s.cards == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card capture is not configured")
	}

	capture, err := s.cards.CaptureCard(ctx, payments.CaptureCardInput{
		SourceToken: token,
		AmountCents: cardEntry.AmountCents,
		Currency:    settings.Currency,
		SaleNumber:  number,
		RegisterID:  input.RegisterID,
	})
	if err != nil {
		return nil, err
	}
	plan.Update(cardEntry.ID, cardEntry.AmountCents, capture.PaymentID)
	return capture, nil
}

// recordDrawerMovements follows the cash, not the sale: full cash
// tendered in, change handed back out.
func (s *service) recordDrawerMovements(ctx context.Context, tx *gorm.DB, sale *models.Sale, number string, actor audit.Actor, entries []settlement.Entry) error {
	drawerRepo := s.drawerRepo.WithTx(tx)
	saleID := sale.ID
	meta := map[string]any{"saleNumber": number}

	if cash := settlement.CashTendered(entries); cash > 0 {
		entry, err := ledger.NewEntry(ledger.NewEntryInput{
			StoreID:     sale.StoreID,
			RegisterID:  sale.RegisterID,
			ActorUserID: actor.ID,
			Type:        enums.LedgerSaleCash,
			AmountCents: cash,
			SaleID:      &saleID,
			Metadata:    meta,
		})
		if err != nil {
			return err
		}
		if err := drawerRepo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger entry")
		}
	}
	if sale.ChangeCents > 0 {
		entry, err := ledger.NewEntry(ledger.NewEntryInput{
			StoreID:     sale.StoreID,
			RegisterID:  sale.RegisterID,
			ActorUserID: actor.ID,
			Type:        enums.LedgerChangeGiven,
			AmountCents: -sale.ChangeCents,
			SaleID:      &saleID,
			Metadata:    meta,
		})
		if err != nil {
			return err
		}
		if err := drawerRepo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger entry")
		}
	}
	return nil
}

func (s *service) insertSaleAudit(ctx context.Context, tx *gorm.DB, actor audit.Actor, action enums.AuditAction, sale *models.Sale, meta map[string]any) error {
	event, err := audit.NewEvent(sale.StoreID, actor, action, "sale", sale.ID.String(), meta)
	if err != nil {
		return err
	}
	if _, err := s.auditRepo.WithTx(tx).Insert(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit event")
	}
	return nil
}

func (s *service) emitSaleCreated(ctx context.Context, tx *gorm.DB, actor audit.Actor, sale *models.Sale, number string, entries []settlement.Entry, session *register.Session) error {
	storeID := sale.StoreID
	event := outbox.DomainEvent{
		StoreID:       storeID,
		EventType:     enums.EventSaleCreated,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Actor: &outbox.ActorRef{
			UserID:     actor.ID,
			StoreID:    &storeID,
			RegisterID: sale.RegisterID,
			Role:       string(actor.Role),
		},
		Data: payloads.SaleCreatedEvent{
			SaleID:         sale.ID,
			StoreID:        sale.StoreID,
			RegisterID:     sale.RegisterID,
			SaleNumber:     number,
			CashierID:      sale.CashierID,
			CustomerID:     cloneUUIDPtr(sale.CustomerID),
			SubtotalCents:  sale.SubtotalCents,
			DiscountCents:  sale.LineDiscountsCents + sale.OrderDiscountCents,
			TaxCents:       sale.TaxCents,
			TotalCents:     sale.TotalCents,
			ItemCount:      int(pricing.Quantity(session.Items)),
			PaymentMethods: methodNames(entries),
			CompletedAt:    s.now().UTC(),
		},
		Version: 1,
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) emitSaleVoided(ctx context.Context, tx *gorm.DB, actor audit.Actor, sale *models.Sale, number, reason string, voidedAt time.Time) error {
	storeID := sale.StoreID
	event := outbox.DomainEvent{
		StoreID:       storeID,
		EventType:     enums.EventSaleVoided,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Actor: &outbox.ActorRef{
			UserID:     actor.ID,
			StoreID:    &storeID,
			RegisterID: sale.RegisterID,
			Role:       string(actor.Role),
		},
		Data: payloads.SaleVoidedEvent{
			SaleID:     sale.ID,
			StoreID:    sale.StoreID,
			RegisterID: sale.RegisterID,
			SaleNumber: number,
			VoidedBy:   actor.ID,
			Reason:     reason,
			TotalCents: sale.TotalCents,
			VoidedAt:   voidedAt,
		},
		Version: 1,
	}
	return s.outbox.Emit(ctx, tx, event)
}

// clearRegister resets the live cart after checkout; held orders
// survive. The sale is already committed, so a failed save only logs.
func (s *service) clearRegister(ctx context.Context, session *register.Session) {
	session.Clear()
	session.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		logCtx := s.logg.WithRegisterID(ctx, session.RegisterID)
		s.logg.Error(logCtx, "clear register session after sale", err)
	}
}

func (s *service) loadSale(ctx context.Context, storeID, saleID uuid.UUID) (*models.Sale, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if saleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}

	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	if sale.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return sale, nil
}

func buildPlan(tenders []PaymentInput, maxSplits int) (*settlement.Plan, error) {
	plan := settlement.NewPlan(maxSplits)
	seen := make(map[enums.PaymentMethod]bool, len(tenders))
	for _, p := range tenders {
		if !p.Method.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", p.Method))
		}
		if p.AmountCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amounts cannot be negative")
		}
		if seen[p.Method] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %s appears more than once", p.Method))
		}
		if _, ok := plan.Add(p.Method, p.AmountCents, strings.TrimSpace(p.Reference)); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d tenders per sale", plan.MaxEntries))
		}
		seen[p.Method] = true
	}
	return plan, nil
}

func buildSale(storeID uuid.UUID, seq int64, registerID string, actor audit.Actor, session *register.Session, settings *stores.RegisterSettings, totals pricing.Totals, summary settlement.Summary) *models.Sale {
	sale := &models.Sale{
		StoreID:            storeID,
		SaleNumber:         seq,
		RegisterID:         registerID,
		CashierID:          actor.ID,
		CustomerID:         cloneUUIDPtr(session.CustomerID),
		Status:             enums.SaleStatusCompleted,
		Currency:           settings.Currency,
		SubtotalCents:      totals.SubtotalCents,
		LineDiscountsCents: totals.LineDiscountCents,
		OrderDiscount:      session.Discount.Clone(),
		OrderDiscountCents: totals.OrderDiscountCents,
		TaxRatePct:         totals.TaxRatePct,
		TaxCents:           totals.TaxCents,
		TotalCents:         totals.GrandTotalCents,
		PaidCents:          summary.AmountPaidCents,
		ChangeCents:        summary.ChangeCents,
	}
	if notes := strings.TrimSpace(session.Notes); notes != "" {
		sale.Notes = &notes
	}
	return sale
}

func buildSaleItems(saleID uuid.UUID, lines []pricing.Line) []models.SaleItem {
	items := make([]models.SaleItem, len(lines))
	for i, line := range lines {
		productID := line.ProductID
		items[i] = models.SaleItem{
			SaleID:         saleID,
			ProductID:      &productID,
			SKU:            line.SKU,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            int(line.Quantity),
			LineDiscount:   line.Discount.Clone(),
			DiscountCents:  pricing.LineDiscountAmount(line),
			TotalCents:     pricing.LineTotal(line),
		}
	}
	return items
}

// buildSalePayments drops zero-amount tenders; they carry no money and
// the payments table rejects them.
func buildSalePayments(saleID uuid.UUID, entries []settlement.Entry) []models.SalePayment {
	rows := make([]models.SalePayment, 0, len(entries))
	for _, entry := range entries {
		if entry.AmountCents <= 0 {
			continue
		}
		row := models.SalePayment{
			SaleID:      saleID,
			Method:      entry.Method,
			AmountCents: entry.AmountCents,
		}
		if ref := strings.TrimSpace(entry.Reference); ref != "" {
			row.CardReference = &ref
		}
		rows = append(rows, row)
	}
	return rows
}

func totalsMatch(server, client pricing.Totals) bool {
	return server.SubtotalCents == client.SubtotalCents &&
		server.LineDiscountCents == client.LineDiscountCents &&
		server.OrderDiscountCents == client.OrderDiscountCents &&
		server.TaxRatePct.Equal(client.TaxRatePct) &&
		server.TaxCents == client.TaxCents &&
		server.GrandTotalCents == client.GrandTotalCents
}

func planEntryByMethod(entries []settlement.Entry, method enums.PaymentMethod) *settlement.Entry {
	for i := range entries {
		if entries[i].Method == method {
			return &entries[i]
		}
	}
	return nil
}

func methodNames(entries []settlement.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.AmountCents <= 0 {
			continue
		}
		names = append(names, string(entry.Method))
	}
	return names
}

func storeCreditPaid(payments []models.SalePayment) int64 {
	for _, payment := range payments {
		if payment.Method == enums.PaymentMethodStoreCredit {
			return payment.AmountCents
		}
	}
	return 0
}

func personName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
