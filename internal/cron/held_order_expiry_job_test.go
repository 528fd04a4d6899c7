package cron

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/internal/pricing"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/outbox"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/payloads"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

var expiryNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

type stubStoreLister struct {
	ids []uuid.UUID
	err error
}

func (s stubStoreLister) ListIDs(context.Context) ([]uuid.UUID, error) { return s.ids, s.err }

type stubSettingsReader struct {
	ttlHours int
	errFor   map[uuid.UUID]error
}

func (s stubSettingsReader) Settings(_ context.Context, storeID uuid.UUID) (*stores.RegisterSettings, error) {
	if err := s.errFor[storeID]; err != nil {
		return nil, err
	}
	return &stores.RegisterSettings{HeldOrderTTLHours: s.ttlHours}, nil
}

type memorySessionStore struct {
	sessions map[string]*register.Session
	saveErr  error
	saves    int
}

func newMemorySessionStore(sessions ...*register.Session) *memorySessionStore {
	store := &memorySessionStore{sessions: make(map[string]*register.Session)}
	for _, s := range sessions {
		store.sessions[sessionKey(s.StoreID, s.RegisterID)] = s
	}
	return store
}

func sessionKey(storeID uuid.UUID, registerID string) string {
	return storeID.String() + "/" + registerID
}

func (m *memorySessionStore) Get(_ context.Context, storeID uuid.UUID, registerID string) (*register.Session, error) {
	return m.sessions[sessionKey(storeID, registerID)], nil
}

func (m *memorySessionStore) Save(_ context.Context, session *register.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.sessions[sessionKey(session.StoreID, session.RegisterID)] = session
	return nil
}

func (m *memorySessionStore) Delete(_ context.Context, storeID uuid.UUID, registerID string) error {
	delete(m.sessions, sessionKey(storeID, registerID))
	return nil
}

func (m *memorySessionStore) ListRegisterIDs(_ context.Context, storeID uuid.UUID) ([]string, error) {
	ids := make([]string, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.StoreID == storeID {
			ids = append(ids, s.RegisterID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type recordingEmitter struct {
	events   []outbox.DomainEvent
	recorded map[uuid.UUID]bool
	err      error
}

func (r *recordingEmitter) EmitIfNotExists(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.recorded[event.AggregateID] {
		return false, nil
	}
	r.events = append(r.events, event)
	return true, nil
}

type recordingAuditRepo struct {
	inserted []*models.AuditEvent
}

func (r *recordingAuditRepo) WithTx(*gorm.DB) audit.Repository { return r }

func (r *recordingAuditRepo) Insert(_ context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	r.inserted = append(r.inserted, event)
	return event, nil
}

func (r *recordingAuditRepo) List(context.Context, uuid.UUID, pagination.Params, audit.ListFilters) (*audit.EventList, error) {
	return nil, nil
}

func (r *recordingAuditRepo) DeleteBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type expiryFixture struct {
	job      Job
	sessions *memorySessionStore
	emitter  *recordingEmitter
	audits   *recordingAuditRepo
}

func newExpiryFixture(t *testing.T, params HeldOrderExpiryJobParams) *expiryFixture {
	t.Helper()
	fixture := &expiryFixture{
		emitter: &recordingEmitter{},
		audits:  &recordingAuditRepo{},
	}
	if params.Logger == nil {
		params.Logger = logger.New(logger.Options{ServiceName: "cron-test"})
	}
	if params.DB == nil {
		params.DB = stubTxRunner{}
	}
	if params.Outbox == nil {
		params.Outbox = fixture.emitter
	} else if emitter, ok := params.Outbox.(*recordingEmitter); ok {
		fixture.emitter = emitter
	}
	if params.AuditRepo == nil {
		params.AuditRepo = fixture.audits
	}
	if store, ok := params.Sessions.(*memorySessionStore); ok {
		fixture.sessions = store
	}

	job, err := NewHeldOrderExpiryJob(params)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.(*heldOrderExpiryJob).now = func() time.Time { return expiryNow }
	fixture.job = job
	return fixture
}

func heldOrder(label string, heldAt time.Time, quantities ...int64) register.HeldOrder {
	items := make([]pricing.Line, 0, len(quantities))
	for _, q := range quantities {
		items = append(items, pricing.Line{ID: uuid.New(), ProductID: uuid.New(), Quantity: q})
	}
	return register.HeldOrder{
		ID:     uuid.New(),
		Label:  label,
		HeldAt: heldAt,
		Items:  items,
	}
}

func TestHeldOrderExpirySweepsStaleOrders(t *testing.T) {
	storeID := uuid.New()
	stale := heldOrder("Mrs. Alvarez ring", expiryNow.Add(-80*time.Hour), 2, 1)
	atCutoff := heldOrder("boundary", expiryNow.Add(-72*time.Hour), 1)
	fresh := heldOrder("engraving pickup", expiryNow.Add(-2*time.Hour), 1)
	session := &register.Session{
		StoreID:    storeID,
		RegisterID: "reg-1",
		HeldOrders: []register.HeldOrder{stale, atCutoff, fresh},
	}
	sessions := newMemorySessionStore(session)

	fixture := newExpiryFixture(t, HeldOrderExpiryJobParams{
		Stores:   stubStoreLister{ids: []uuid.UUID{storeID}},
		Settings: stubSettingsReader{ttlHours: 72},
		Sessions: sessions,
	})

	rows, err := fixture.job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one expired order reported, got %d", rows)
	}

	if len(fixture.emitter.events) != 1 {
		t.Fatalf("expected one expiry event, got %d", len(fixture.emitter.events))
	}
	event := fixture.emitter.events[0]
	if event.EventType != enums.EventHeldOrderExpired {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.StoreID != storeID {
		t.Fatalf("expected store %s, got %s", storeID, event.StoreID)
	}
	if event.AggregateType != enums.AggregateRegister {
		t.Fatalf("unexpected aggregate type %s", event.AggregateType)
	}
	if event.AggregateID != stale.ID {
		t.Fatalf("expected aggregate %s, got %s", stale.ID, event.AggregateID)
	}
	if event.Version != 1 {
		t.Fatalf("unexpected version %d", event.Version)
	}
	if !event.OccurredAt.Equal(expiryNow) {
		t.Fatalf("unexpected occurred at %s", event.OccurredAt)
	}
	payload, ok := event.Data.(payloads.HeldOrderExpiredEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.HeldOrderID != stale.ID || payload.StoreID != storeID {
		t.Fatal("payload identifiers do not match the dropped order")
	}
	if payload.RegisterID != "reg-1" || payload.OrderName != "Mrs. Alvarez ring" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", payload.ItemCount)
	}
	if !payload.HeldAt.Equal(stale.HeldAt) || !payload.ExpiredAt.Equal(expiryNow) {
		t.Fatalf("unexpected payload timestamps %+v", payload)
	}

	if len(fixture.audits.inserted) != 1 {
		t.Fatalf("expected one audit row, got %d", len(fixture.audits.inserted))
	}
	auditRow := fixture.audits.inserted[0]
	if auditRow.Action != enums.AuditHeldOrderExpired {
		t.Fatalf("unexpected audit action %s", auditRow.Action)
	}
	if auditRow.StoreID != storeID || auditRow.EntityType != "held_order" || auditRow.EntityID != stale.ID.String() {
		t.Fatalf("unexpected audit row %+v", auditRow)
	}
	if auditRow.ActorID != nil {
		t.Fatal("background sweep should not record an actor")
	}
	var meta map[string]any
	if err := json.Unmarshal(auditRow.Meta, &meta); err != nil {
		t.Fatalf("decode audit meta: %v", err)
	}
	if meta["registerId"] != "reg-1" || meta["label"] != "Mrs. Alvarez ring" {
		t.Fatalf("unexpected audit meta %v", meta)
	}

	saved := sessions.sessions[sessionKey(storeID, "reg-1")]
	if len(saved.HeldOrders) != 2 {
		t.Fatalf("expected two surviving held orders, got %d", len(saved.HeldOrders))
	}
	if saved.HeldOrders[0].ID != atCutoff.ID || saved.HeldOrders[1].ID != fresh.ID {
		t.Fatal("orders held at or after the cutoff should survive")
	}
	if sessions.saves != 1 {
		t.Fatalf("expected one save, got %d", sessions.saves)
	}
}

func TestHeldOrderExpirySkipsAlreadyRecordedEvents(t *testing.T) {
	storeID := uuid.New()
	stale := heldOrder("left behind", expiryNow.Add(-100*time.Hour), 1)
	session := &register.Session{
		StoreID:    storeID,
		RegisterID: "reg-1",
		HeldOrders: []register.HeldOrder{stale},
	}
	sessions := newMemorySessionStore(session)

	fixture := newExpiryFixture(t, HeldOrderExpiryJobParams{
		Stores:   stubStoreLister{ids: []uuid.UUID{storeID}},
		Settings: stubSettingsReader{ttlHours: 72},
		Sessions: sessions,
		Outbox:   &recordingEmitter{recorded: map[uuid.UUID]bool{stale.ID: true}},
	})

	if _, err := fixture.job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(fixture.emitter.events) != 0 {
		t.Fatalf("expected no duplicate events, got %d", len(fixture.emitter.events))
	}
	if len(fixture.audits.inserted) != 0 {
		t.Fatalf("expected no duplicate audit rows, got %d", len(fixture.audits.inserted))
	}
	if sessions.saves != 1 {
		t.Fatal("session should still be saved without the stale order")
	}
	if got := sessions.sessions[sessionKey(storeID, "reg-1")]; len(got.HeldOrders) != 0 {
		t.Fatalf("expected the stale order dropped, %d remain", len(got.HeldOrders))
	}
}

func TestHeldOrderExpiryUsesFallbackTTL(t *testing.T) {
	storeID := uuid.New()
	old := heldOrder("old", expiryNow.Add(-30*time.Hour), 1)
	recent := heldOrder("recent", expiryNow.Add(-2*time.Hour), 1)
	sessions := newMemorySessionStore(&register.Session{
		StoreID:    storeID,
		RegisterID: "reg-2",
		HeldOrders: []register.HeldOrder{old, recent},
	})

	fixture := newExpiryFixture(t, HeldOrderExpiryJobParams{
		Stores:           stubStoreLister{ids: []uuid.UUID{storeID}},
		Settings:         stubSettingsReader{ttlHours: 0},
		Sessions:         sessions,
		FallbackTTLHours: 24,
	})

	if _, err := fixture.job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fixture.emitter.events) != 1 {
		t.Fatalf("expected one expiry under the fallback TTL, got %d", len(fixture.emitter.events))
	}
	if fixture.emitter.events[0].AggregateID != old.ID {
		t.Fatal("expected the thirty hour old order to expire")
	}
}

func TestHeldOrderExpirySkipsStoreWithoutTTL(t *testing.T) {
	storeID := uuid.New()
	sessions := newMemorySessionStore(&register.Session{
		StoreID:    storeID,
		RegisterID: "reg-3",
		HeldOrders: []register.HeldOrder{heldOrder("ancient", expiryNow.Add(-1000*time.Hour), 1)},
	})

	fixture := newExpiryFixture(t, HeldOrderExpiryJobParams{
		Stores:   stubStoreLister{ids: []uuid.UUID{storeID}},
		Settings: stubSettingsReader{ttlHours: 0},
		Sessions: sessions,
	})

	if _, err := fixture.job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fixture.emitter.events) != 0 || sessions.saves != 0 {
		t.Fatal("a store without a TTL should never expire held orders")
	}
}

func TestHeldOrderExpiryCollectsStoreFailures(t *testing.T) {
	brokenStore := uuid.New()
	healthyStore := uuid.New()
	stale := heldOrder("still swept", expiryNow.Add(-90*time.Hour), 1)
	sessions := newMemorySessionStore(&register.Session{
		StoreID:    healthyStore,
		RegisterID: "reg-1",
		HeldOrders: []register.HeldOrder{stale},
	})

	fixture := newExpiryFixture(t, HeldOrderExpiryJobParams{
		Stores: stubStoreLister{ids: []uuid.UUID{brokenStore, healthyStore}},
		Settings: stubSettingsReader{
			ttlHours: 72,
			errFor:   map[uuid.UUID]error{brokenStore: errors.New("settings down")},
		},
		Sessions: sessions,
	})

	rows, err := fixture.job.Run(context.Background())
	if err == nil {
		t.Fatal("expected the broken store to surface an error")
	}
	if !strings.Contains(err.Error(), brokenStore.String()) {
		t.Fatalf("error should name the broken store: %v", err)
	}
	if len(fixture.emitter.events) != 1 {
		t.Fatal("healthy stores should still be swept when one store fails")
	}
	if rows != 1 {
		t.Fatalf("orders expired before the failure should report, got %d", rows)
	}
}
