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

type saleCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newSaleCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &saleCreatedHandler{writer: writer, logg: logg}
}

func (h *saleCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.SaleCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for sale_created")
	}

	fields := map[string]any{
		"event_type":  envelope.EventType,
		"sale_id":     event.SaleID,
		"store_id":    event.StoreID,
		"sale_number": event.SaleNumber,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildSaleCreatedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build revenue row", err)
		return err
	}

	if err := h.writer.InsertRevenue(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert revenue row", err)
		return err
	}

	h.logg.Info(logCtx, "sale_created handler inserted revenue row")
	return nil
}

func buildSaleCreatedRow(envelope types.Envelope, event *payloads.SaleCreatedEvent) (types.RevenueFactRow, error) {
	methodsJSON, err := analyticswriter.EncodeJSON(event.PaymentMethods)
	if err != nil {
		return types.RevenueFactRow{}, fmt.Errorf("encode payment methods json: %w", err)
	}
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.RevenueFactRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	occurred := event.CompletedAt
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
		CashierID:         uuidPtr(&event.CashierID),
		CustomerID:        uuidPtr(event.CustomerID),
		SubtotalCents:     int64Ptr(event.SubtotalCents),
		DiscountCents:     int64Ptr(event.DiscountCents),
		TaxCents:          int64Ptr(event.TaxCents),
		GrossRevenueCents: int64Ptr(event.TotalCents),
		NetRevenueCents:   int64Ptr(event.TotalCents),
		ItemCount:         int64Ptr(int64(event.ItemCount)),
		PaymentMethods:    methodsJSON,
		Payload:           payloadJSON,
	}, nil
}
