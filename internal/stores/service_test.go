package stores

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type stubStoresRepo struct {
	stores    map[uuid.UUID]*models.Store
	updateErr error
}

func newStubStoresRepo() *stubStoresRepo {
	return &stubStoresRepo{stores: map[uuid.UUID]*models.Store{}}
}

func (s *stubStoresRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubStoresRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := s.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *store
	return &cpy, nil
}

func (s *stubStoresRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(s.stores))
	for id := range s.stores {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *stubStoresRepo) Update(ctx context.Context, store *models.Store) (*models.Store, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	cpy := *store
	s.stores[store.ID] = &cpy
	return store, nil
}

type recordingAuditRepo struct {
	events []*models.AuditEvent
}

func (r *recordingAuditRepo) WithTx(tx *gorm.DB) audit.Repository { return r }

func (r *recordingAuditRepo) Insert(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	r.events = append(r.events, event)
	return event, nil
}

func (r *recordingAuditRepo) List(ctx context.Context, storeID uuid.UUID, params pagination.Params, filters audit.ListFilters) (*audit.EventList, error) {
	return &audit.EventList{}, nil
}

func (r *recordingAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type storesFixture struct {
	svc       Service
	repo      *stubStoresRepo
	auditRepo *recordingAuditRepo
	store     *models.Store
	actor     audit.Actor
}

func newStoresFixture(t *testing.T) *storesFixture {
	t.Helper()

	repo := newStubStoresRepo()
	auditRepo := &recordingAuditRepo{}
	svc, err := NewService(stubTxRunner{}, repo, auditRepo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	phone := "405-555-0100"
	footer := "Thank you for visiting Karat Works"
	store := &models.Store{
		ID:                uuid.New(),
		Name:              "Karat Works Norman",
		Phone:             &phone,
		Currency:          enums.CurrencyUSD,
		TaxRatePct:        decimal.NewFromFloat(8.75),
		MaxPaymentSplits:  4,
		HeldOrderTTLHours: 72,
		ReceiptFooter:     &footer,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	repo.stores[store.ID] = store

	return &storesFixture{
		svc:       svc,
		repo:      repo,
		auditRepo: auditRepo,
		store:     store,
		actor:     audit.Actor{ID: uuid.New(), Role: enums.UserRoleAdmin},
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestGetStore(t *testing.T) {
	f := newStoresFixture(t)

	dto, err := f.svc.Get(context.Background(), f.store.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.Name != "Karat Works Norman" {
		t.Fatalf("expected store name, got %s", dto.Name)
	}
	if !dto.TaxRatePct.Equal(decimal.NewFromFloat(8.75)) {
		t.Fatalf("expected tax rate 8.75, got %s", dto.TaxRatePct)
	}
	if dto.MaxPaymentSplits != 4 || dto.HeldOrderTTLHours != 72 {
		t.Fatalf("unexpected register settings: %d splits, %d ttl", dto.MaxPaymentSplits, dto.HeldOrderTTLHours)
	}
	if dto.ReceiptFooter == nil || *dto.ReceiptFooter != "Thank you for visiting Karat Works" {
		t.Fatalf("expected receipt footer, got %v", dto.ReceiptFooter)
	}

	_, err = f.svc.Get(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Get(context.Background(), uuid.Nil)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateStoreSettings(t *testing.T) {
	f := newStoresFixture(t)

	name := "  Karat Works Midtown  "
	rate := decimal.NewFromFloat(9.25)
	splits := 3
	ttl := 48
	blankFooter := "   "
	dto, err := f.svc.Update(context.Background(), f.actor, f.store.ID, UpdateStoreInput{
		Name:              &name,
		TaxRatePct:        &rate,
		MaxPaymentSplits:  &splits,
		HeldOrderTTLHours: &ttl,
		ReceiptFooter:     &blankFooter,
	})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.Name != "Karat Works Midtown" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if !dto.TaxRatePct.Equal(rate) {
		t.Fatalf("expected tax rate %s, got %s", rate, dto.TaxRatePct)
	}
	if dto.MaxPaymentSplits != 3 || dto.HeldOrderTTLHours != 48 {
		t.Fatalf("unexpected settings after update: %d splits, %d ttl", dto.MaxPaymentSplits, dto.HeldOrderTTLHours)
	}
	if dto.ReceiptFooter != nil {
		t.Fatalf("expected blank footer to clear, got %q", *dto.ReceiptFooter)
	}

	saved := f.repo.stores[f.store.ID]
	if saved.MaxPaymentSplits != 3 {
		t.Fatalf("expected persisted splits 3, got %d", saved.MaxPaymentSplits)
	}

	if len(f.auditRepo.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(f.auditRepo.events))
	}
	event := f.auditRepo.events[0]
	if event.Action != enums.AuditStoreSettingsUpdated {
		t.Fatalf("expected store_settings_updated, got %s", event.Action)
	}
	if event.EntityType != "store" || event.EntityID != f.store.ID.String() {
		t.Fatalf("unexpected audit entity: %s %s", event.EntityType, event.EntityID)
	}

	var meta struct {
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(event.Meta, &meta); err != nil {
		t.Fatalf("decode audit meta: %v", err)
	}
	want := map[string]bool{"name": true, "taxRatePct": true, "maxPaymentSplits": true, "heldOrderTtlHours": true, "receiptFooter": true}
	if len(meta.Fields) != len(want) {
		t.Fatalf("expected %d changed fields, got %v", len(want), meta.Fields)
	}
	for _, field := range meta.Fields {
		if !want[field] {
			t.Fatalf("unexpected changed field %q", field)
		}
	}
}

func TestUpdateStoreValidation(t *testing.T) {
	f := newStoresFixture(t)

	blank := "   "
	badCurrency := enums.Currency("DOGE")
	negative := decimal.NewFromInt(-1)
	tooHigh := decimal.NewFromInt(101)
	zero := 0

	cases := []struct {
		name  string
		input UpdateStoreInput
	}{
		{"blank name", UpdateStoreInput{Name: &blank}},
		{"unknown currency", UpdateStoreInput{Currency: &badCurrency}},
		{"negative tax rate", UpdateStoreInput{TaxRatePct: &negative}},
		{"tax rate above 100", UpdateStoreInput{TaxRatePct: &tooHigh}},
		{"zero payment splits", UpdateStoreInput{MaxPaymentSplits: &zero}},
		{"zero held order ttl", UpdateStoreInput{HeldOrderTTLHours: &zero}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Update(context.Background(), f.actor, f.store.ID, tc.input)
			expectCode(t, err, pkgerrors.CodeValidation)
		})
	}

	if len(f.auditRepo.events) != 0 {
		t.Fatalf("expected no audit events after rejected updates, got %d", len(f.auditRepo.events))
	}
}

func TestUpdateStoreUnknown(t *testing.T) {
	f := newStoresFixture(t)

	splits := 2
	_, err := f.svc.Update(context.Background(), f.actor, uuid.New(), UpdateStoreInput{MaxPaymentSplits: &splits})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestTaxRatePct(t *testing.T) {
	f := newStoresFixture(t)

	rate, err := f.svc.TaxRatePct(context.Background(), f.store.ID)
	if err != nil {
		t.Fatalf("tax rate: %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(8.75)) {
		t.Fatalf("expected 8.75, got %s", rate)
	}

	_, err = f.svc.TaxRatePct(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestSettings(t *testing.T) {
	f := newStoresFixture(t)

	settings, err := f.svc.Settings(context.Background(), f.store.ID)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.StoreName != "Karat Works Norman" {
		t.Fatalf("expected store name, got %s", settings.StoreName)
	}
	if settings.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD, got %s", settings.Currency)
	}
	if settings.MaxPaymentSplits != 4 || settings.HeldOrderTTLHours != 72 {
		t.Fatalf("unexpected settings: %+v", settings)
	}
	if !settings.TaxRatePct.Equal(decimal.NewFromFloat(8.75)) {
		t.Fatalf("expected tax rate 8.75, got %s", settings.TaxRatePct)
	}
}
