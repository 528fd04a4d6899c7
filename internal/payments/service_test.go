package payments

import (
	"context"
	"testing"

	sq "github.com/square/square-go-sdk"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/square"
)

type stubCardClient struct {
	lastParams square.PaymentCreateParams
	payment    *sq.Payment
	err        error
}

func (s *stubCardClient) CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.payment, nil
}

func strPtr(v string) *string { return &v }

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
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestCaptureCard(t *testing.T) {
	client := &stubCardClient{payment: &sq.Payment{ID: strPtr("sq-pay-99"), Status: strPtr("COMPLETED")}}
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	capture, err := svc.CaptureCard(context.Background(), CaptureCardInput{
		SourceToken: "cnon:card-nonce-ok",
		AmountCents: 125000,
		Currency:    enums.CurrencyUSD,
		SaleNumber:  "S-20260825-0007",
		RegisterID:  "front-desk",
	})
	if err != nil {
		t.Fatalf("CaptureCard: %v", err)
	}
	if capture.PaymentID != "sq-pay-99" {
		t.Fatalf("unexpected payment id %q", capture.PaymentID)
	}
	if capture.Status != "COMPLETED" {
		t.Fatalf("unexpected status %q", capture.Status)
	}
	if client.lastParams.SourceID != "cnon:card-nonce-ok" {
		t.Fatalf("source token not forwarded")
	}
	if client.lastParams.ReferenceID != "S-20260825-0007" {
		t.Fatalf("sale number not carried as reference")
	}
	if client.lastParams.Note != "S-20260825-0007 front-desk" {
		t.Fatalf("unexpected capture note %q", client.lastParams.Note)
	}
}

func TestCaptureCardValidation(t *testing.T) {
	svc, err := NewService(&stubCardClient{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.CaptureCard(context.Background(), CaptureCardInput{AmountCents: 100})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CaptureCard(context.Background(), CaptureCardInput{SourceToken: "cnon:x", AmountCents: 0})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCaptureCardProcessorFailure(t *testing.T) {
	client := &stubCardClient{err: pkgerrors.New(pkgerrors.CodeDependency, "square create payment failed")}
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.CaptureCard(context.Background(), CaptureCardInput{SourceToken: "cnon:x", AmountCents: 100})
	expectCode(t, err, pkgerrors.CodeDependency)
}

func TestCaptureCardDeclinedStates(t *testing.T) {
	for _, status := range []string{"FAILED", "CANCELED"} {
		client := &stubCardClient{payment: &sq.Payment{ID: strPtr("sq-pay-1"), Status: strPtr(status)}}
		svc, err := NewService(client)
		if err != nil {
			t.Fatalf("NewService: %v", err)
		}
		_, err = svc.CaptureCard(context.Background(), CaptureCardInput{SourceToken: "cnon:x", AmountCents: 100})
		expectCode(t, err, pkgerrors.CodePaymentDeclined)

		details, ok := pkgerrors.As(err).Details().(map[string]string)
		if !ok || details["status"] != status {
			t.Fatalf("expected processor status in details, got %v", pkgerrors.As(err).Details())
		}
	}
}

func TestCaptureCardMissingPaymentID(t *testing.T) {
	client := &stubCardClient{payment: &sq.Payment{Status: strPtr("COMPLETED")}}
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.CaptureCard(context.Background(), CaptureCardInput{SourceToken: "cnon:x", AmountCents: 100})
	expectCode(t, err, pkgerrors.CodeDependency)
}
