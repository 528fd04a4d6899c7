package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/internal/analytics/router"
	"github.com/karatworks/aurumpos-backend/internal/analytics/types"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/outbox"
)

func TestBuildEnvelope(t *testing.T) {
	svc := newTestService(t)
	saleID := uuid.NewString()
	storeID := uuid.NewString()
	payload := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    "evt-1",
		OccurredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"saleId":"` + saleID + `"}`),
	}
	msg := buildMessage(payload, map[string]string{
		"event_type":     "sale_created",
		"store_id":       storeID,
		"aggregate_type": "sale",
		"aggregate_id":   saleID,
	})

	env, err := svc.buildEnvelope(msg)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.EventType != enums.EventSaleCreated {
		t.Fatalf("unexpected event type %v", env.EventType)
	}
	if env.AggregateType != enums.AggregateSale {
		t.Fatalf("unexpected aggregate type %v", env.AggregateType)
	}
	if env.AggregateID != saleID {
		t.Fatalf("unexpected aggregate id %s", env.AggregateID)
	}
	if env.StoreID != storeID {
		t.Fatalf("unexpected store id %s", env.StoreID)
	}
	if env.EventID != "evt-1" {
		t.Fatalf("unexpected event id %s", env.EventID)
	}
	if env.OccurredAt != payload.OccurredAt {
		t.Fatalf("unexpected occurred at %v", env.OccurredAt)
	}
	if env.Version != 1 {
		t.Fatalf("unexpected version %d", env.Version)
	}
	if string(env.Payload) != string(payload.Data) {
		t.Fatalf("unexpected payload %s", env.Payload)
	}
}

func TestBuildEnvelopeFallbacks(t *testing.T) {
	svc := newTestService(t)
	payload := outbox.PayloadEnvelope{
		Data: json.RawMessage(`{"saleId":"abc"}`),
	}
	msg := buildMessage(payload, map[string]string{
		"event_type":     "sale_voided",
		"aggregate_type": "sale",
		"aggregate_id":   "abc",
		"event_id":       "evt-attr",
		"created_at":     "2026-08-02T09:30:00Z",
	})

	env, err := svc.buildEnvelope(msg)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.EventID != "evt-attr" {
		t.Fatalf("expected attribute event id, got %s", env.EventID)
	}
	want := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	if !env.OccurredAt.Equal(want) {
		t.Fatalf("expected created_at fallback, got %v", env.OccurredAt)
	}
}

func TestProcessDuplicateDelivery(t *testing.T) {
	guard := &stubGuard{dup: true}
	handler := &stubHandler{}
	svc := newTestServiceWithDeps(t, handler, guard)

	msg := buildSaleMessage(t)
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("expected ack, got nack")
	}
	if handler.called {
		t.Fatal("handler should not be invoked for a duplicate")
	}
	if len(guard.claimed) != 1 {
		t.Fatalf("expected one claim, got %d", len(guard.claimed))
	}
}

func TestProcessHandlerErrorRetries(t *testing.T) {
	guard := &stubGuard{}
	handler := &stubHandler{err: errors.New("boom")}
	svc := newTestServiceWithDeps(t, handler, guard)

	msg := buildSaleMessage(t)
	res := svc.process(context.Background(), msg)
	if !res.nack {
		t.Fatalf("expected nack on handler error")
	}
	if !handler.called {
		t.Fatal("handler should be invoked")
	}
	if len(guard.released) != 1 {
		t.Fatalf("expected the claim released on failure")
	}
}

func TestProcessInvalidEnvelope(t *testing.T) {
	guard := &stubGuard{}
	handler := &stubHandler{}
	svc := newTestServiceWithDeps(t, handler, guard)

	msg := &gcppubsub.Message{Data: []byte("invalid json")}
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("invalid envelope should ack")
	}
	if handler.called {
		t.Fatal("handler should not be invoked")
	}
	if len(guard.claimed) != 0 {
		t.Fatalf("guard should not be touched")
	}
}

func TestProcessUnsupportedEvent(t *testing.T) {
	guard := &stubGuard{}
	handler := &stubHandler{err: fmt.Errorf("%w: held_order_expired", router.ErrUnsupportedEventType)}
	svc := newTestServiceWithDeps(t, handler, guard)

	msg := buildSaleMessage(t)
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("unsupported event should ack")
	}
	if len(guard.released) != 0 {
		t.Fatalf("claim should stay so redelivery stays deduped")
	}
}

func TestProcessMalformedPayloadSkips(t *testing.T) {
	guard := &stubGuard{}
	handler := &stubHandler{err: fmt.Errorf("%w: decode sale_created", router.ErrMalformedPayload)}
	svc := newTestServiceWithDeps(t, handler, guard)

	msg := buildSaleMessage(t)
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("malformed payload should ack")
	}
	if len(guard.released) != 0 {
		t.Fatalf("claim should stay for a poison payload")
	}
	if len(guard.claimed) != 1 {
		t.Fatalf("expected one claim, got %d", len(guard.claimed))
	}
}

func buildSaleMessage(t *testing.T) *gcppubsub.Message {
	t.Helper()
	payload := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"saleNumber":"S-000042"}`),
	}
	return buildMessage(payload, map[string]string{
		"event_type":     "sale_created",
		"aggregate_type": "sale",
		"aggregate_id":   uuid.NewString(),
	})
}

func buildMessage(payload outbox.PayloadEnvelope, attrs map[string]string) *gcppubsub.Message {
	data, _ := json.Marshal(payload)
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: attrs,
	}
}

func newTestService(t *testing.T) *Service {
	return newTestServiceWithDeps(t, &stubHandler{}, &stubGuard{})
}

func newTestServiceWithDeps(t *testing.T, handler Handler, guard *stubGuard) *Service {
	t.Helper()
	return &Service{
		handler: handler,
		guard:   guard,
		logg:    logger.New(logger.Options{ServiceName: "analytics-test"}),
	}
}

type stubHandler struct {
	called   bool
	envelope types.Envelope
	err      error
}

func (h *stubHandler) Handle(ctx context.Context, envelope types.Envelope) error {
	h.called = true
	h.envelope = envelope
	return h.err
}

type stubGuard struct {
	dup        bool
	claimErr   error
	releaseErr error
	claimed    []uuid.UUID
	released   []uuid.UUID
}

func (s *stubGuard) Claim(ctx context.Context, eventID uuid.UUID) (bool, error) {
	s.claimed = append(s.claimed, eventID)
	return !s.dup, s.claimErr
}

func (s *stubGuard) Release(ctx context.Context, eventID uuid.UUID) error {
	s.released = append(s.released, eventID)
	return s.releaseErr
}
