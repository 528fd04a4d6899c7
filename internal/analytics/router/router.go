package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/karatworks/aurumpos-backend/internal/analytics/types"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/payloads"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/registry"
)

// supportedEnvelopeVersion is the highest payload envelope version this
// router understands. Version 0 envelopes predate versioning and are
// treated as version 1.
const supportedEnvelopeVersion = 1

// ErrUnsupportedEventType marks envelopes this router does not handle:
// event types with no handler and envelope versions newer than this
// build. The worker acks these instead of retrying them.
var ErrUnsupportedEventType = errors.New("unsupported analytics event type")

// ErrMalformedPayload marks envelopes whose payload cannot be decoded.
// Redelivery cannot fix these, so the worker acks them too.
var ErrMalformedPayload = errors.New("malformed analytics payload")

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertRevenue(ctx context.Context, row types.RevenueFactRow) error
}

// Handler receives an envelope plus a decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope, payload any) error
}

// Router dispatches analytics envelopes to the handler for their event
// type. Payload decoding goes through a versioned decoder registry so a
// schema bump registers a new decoder instead of forking the dispatch.
type Router struct {
	handlers map[enums.OutboxEventType]Handler
	decoders *registry.DecoderRegistry
	logg     *logger.Logger
}

// NewRouter wires the default handlers and allows overrides for specific events.
func NewRouter(writer Writer, logg *logger.Logger, overrides map[enums.OutboxEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	handlers := map[enums.OutboxEventType]Handler{
		enums.EventSaleCreated: newSaleCreatedHandler(writer, logg),
		enums.EventSaleVoided:  newSaleVoidedHandler(writer, logg),
	}
	for event, custom := range overrides {
		if _, ok := handlers[event]; !ok || custom == nil {
			continue
		}
		handlers[event] = custom
	}

	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.EventSaleCreated, 1, decodeInto[payloads.SaleCreatedEvent])
	decoders.Register(enums.EventSaleVoided, 1, decodeInto[payloads.SaleVoidedEvent])

	return &Router{
		handlers: handlers,
		decoders: decoders,
		logg:     logg,
	}, nil
}

// Handle dispatches the incoming envelope to the configured handler.
func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	version := envelope.Version
	if version == 0 {
		version = 1
	}
	if version > supportedEnvelopeVersion {
		return fmt.Errorf("%w: %s v%d", ErrUnsupportedEventType, envelope.EventType, envelope.Version)
	}
	handler, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("%w: empty payload for %s", ErrMalformedPayload, envelope.EventType)
	}

	payload, err := r.decoders.Decode(envelope.EventType, version, envelope.Payload)
	if err != nil {
		if errors.Is(err, registry.ErrDecoderNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrUnsupportedEventType, envelope.EventType, version)
		}
		return fmt.Errorf("%w: decode %s: %v", ErrMalformedPayload, envelope.EventType, err)
	}

	return handler.Handle(ctx, envelope, payload)
}

func decodeInto[T any](raw json.RawMessage) (interface{}, error) {
	payload := new(T)
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
