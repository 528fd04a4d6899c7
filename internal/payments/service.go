package payments

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/square/square-go-sdk"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/square"
)

// cardClient is the slice of the Square wrapper the capture path needs.
type cardClient interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
}

// Service captures card tenders through the configured processor. The
// checkout path calls it before opening the sale transaction so a
// declined card never leaves a half-written sale behind.
type Service interface {
	CaptureCard(ctx context.Context, input CaptureCardInput) (*CardCaptureDTO, error)
}

// CaptureCardInput carries one card tender to the processor. SaleNumber
// and RegisterID only annotate the capture for reconciliation.
type CaptureCardInput struct {
	SourceToken string
	AmountCents int64
	Currency    enums.Currency
	SaleNumber  string
	RegisterID  string
}

// CardCaptureDTO is the processor's answer for a captured tender.
type CardCaptureDTO struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

type service struct {
	client cardClient
}

// NewService wires the card capture service.
func NewService(client cardClient) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("square client required")
	}
	return &service{client: client}, nil
}

func (s *service) CaptureCard(ctx context.Context, input CaptureCardInput) (*CardCaptureDTO, error) {
	if strings.TrimSpace(input.SourceToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card source token required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capture amount must be positive")
	}

	params := square.PaymentCreateParams{
		AmountCents: input.AmountCents,
		Currency:    string(input.Currency),
		SourceID:    input.SourceToken,
		ReferenceID: input.SaleNumber,
		Note:        captureNote(input.SaleNumber, input.RegisterID),
	}
	payment, err := s.client.CreatePayment(ctx, params)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square payment missing")
	}

	paymentID := stringValue(payment.GetID())
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "square payment id missing")
	}
	status := stringValue(payment.GetStatus())
	switch status {
	case "FAILED", "CANCELED":
		return nil, pkgerrors.New(pkgerrors.CodePaymentDeclined, "card capture did not complete").
			WithDetails(map[string]string{"status": status})
	}

	return &CardCaptureDTO{PaymentID: paymentID, Status: status}, nil
}

func captureNote(saleNumber, registerID string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", saleNumber, registerID))
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
