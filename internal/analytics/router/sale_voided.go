package router

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/karatworks/aurumpos-backend/internal/analytics/types"
	analyticswriter "github.com/karatworks/aurumpos-backend/internal/analytics/writer"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/payloads"
)

type saleVoidedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newSaleVoidedHandler(writer Writer, logg *logger.Logger) Handler {
	return &saleVoidedHandler{writer: writer, logg: logg}
}

func (h *saleVoidedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.SaleVoidedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for sale_voided")
	}

	fields := map[string]any{
		"event_type":  envelope.EventType,
		"sale_id":     event.SaleID,
		"store_id":    event.StoreID,
		"sale_number": event.SaleNumber,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildSaleVoidedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build negating row", err)
		return err
	}

	if err := h.writer.InsertRevenue(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert negating row", err)
		return err
	}

	h.logg.Info(logCtx, "sale_voided handler inserted negating row")
	return nil
}

// buildSaleVoidedRow reverses the sale's revenue on the date of the
// void, not the original sale date, so already-closed business days
// stay closed.
func buildSaleVoidedRow(envelope types.Envelope, event *payloads.SaleVoidedEvent) (types.RevenueFactRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.RevenueFactRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	occurred := event.VoidedAt
	if occurred.IsZero() {
		occurred = envelope.OccurredAt
	}
	occurred = occurred.UTC()

	return types.RevenueFactRow{
		EventID:           envelope.EventID,
		EventType:         string(envelope.EventType),
		OccurredAt:        occurred,
		BusinessDate:      civil.DateOf(occurred),
		SaleID:            event.SaleID.String(),
		StoreID:           event.StoreID.String(),
		RegisterID:        stringPtr(event.RegisterID),
		SaleNumber:        stringPtr(event.SaleNumber),
		GrossRevenueCents: int64Ptr(-event.TotalCents),
		NetRevenueCents:   int64Ptr(-event.TotalCents),
		Payload:           payloadJSON,
	}, nil
}
