package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/internal/analytics/types"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/payloads"
)

func TestRouterUnsupportedEvent(t *testing.T) {
	router := newTestRouter(t, nil)
	env := types.Envelope{
		EventType: enums.EventHeldOrderExpired,
		Payload:   []byte(`{"orderName":"Mrs. Delgado"}`),
	}
	err := router.Handle(context.Background(), env)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestRouterUnsupportedVersion(t *testing.T) {
	router := newTestRouter(t, nil)
	env := types.Envelope{
		EventType: enums.EventSaleCreated,
		Version:   supportedEnvelopeVersion + 1,
		Payload:   []byte(`{}`),
	}
	err := router.Handle(context.Background(), env)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected unsupported error for newer version, got %v", err)
	}
}

func TestRouterMalformedPayload(t *testing.T) {
	router := newTestRouter(t, nil)

	empty := types.Envelope{EventType: enums.EventSaleCreated}
	if err := router.Handle(context.Background(), empty); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected malformed error for empty payload, got %v", err)
	}

	garbage := types.Envelope{
		EventType: enums.EventSaleCreated,
		Payload:   []byte("not json"),
	}
	if err := router.Handle(context.Background(), garbage); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected malformed error for garbage payload, got %v", err)
	}
}

func TestRouterRoutesToHandler(t *testing.T) {
	handler := &stubHandler{}
	router := newTestRouter(t, map[enums.OutboxEventType]Handler{
		enums.EventSaleCreated: handler,
	})
	payload := payloads.SaleCreatedEvent{
		SaleID:     uuid.New(),
		StoreID:    uuid.New(),
		SaleNumber: "S-000017",
		CashierID:  uuid.New(),
		TotalCents: 48250,
	}
	data, _ := json.Marshal(payload)
	env := types.Envelope{
		EventType: enums.EventSaleCreated,
		Version:   1,
		Payload:   data,
	}
	if err := router.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handler.called {
		t.Fatalf("handler not invoked")
	}
	decoded, ok := handler.payload.(*payloads.SaleCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", handler.payload)
	}
	if decoded.SaleNumber != payload.SaleNumber {
		t.Fatalf("unexpected sale number %s", decoded.SaleNumber)
	}
}

func newTestRouter(t *testing.T, overrides map[enums.OutboxEventType]Handler) *Router {
	t.Helper()
	router, err := NewRouter(&fakeWriter{}, logger.New(logger.Options{ServiceName: "router-test"}), overrides)
	if err != nil {
		t.Fatalf("construct router: %v", err)
	}
	return router
}

type stubHandler struct {
	called  bool
	payload any
}

func (s *stubHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	s.called = true
	s.payload = payload
	return nil
}
