package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/api/middleware"
	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/internal/sales"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

type stubSalesService struct {
	sale    *sales.SaleDTO
	list    *sales.SaleList
	receipt *sales.ReceiptDTO
	err     error

	lastActor   audit.Actor
	lastInput   sales.CreateSaleInput
	lastSaleID  uuid.UUID
	lastVoid    sales.VoidSaleInput
	lastFilters sales.ListFilters
	created     int
}

func (s *stubSalesService) Create(_ context.Context, actor audit.Actor, _ uuid.UUID, input sales.CreateSaleInput) (*sales.SaleDTO, error) {
	s.lastActor = actor
	s.lastInput = input
	s.created++
	return s.sale, s.err
}

func (s *stubSalesService) Get(_ context.Context, _, saleID uuid.UUID) (*sales.SaleDTO, error) {
	s.lastSaleID = saleID
	return s.sale, s.err
}

func (s *stubSalesService) List(_ context.Context, _ uuid.UUID, _ pagination.Params, filters sales.ListFilters) (*sales.SaleList, error) {
	s.lastFilters = filters
	return s.list, s.err
}

func (s *stubSalesService) Void(_ context.Context, actor audit.Actor, _, saleID uuid.UUID, input sales.VoidSaleInput) (*sales.SaleDTO, error) {
	s.lastActor = actor
	s.lastSaleID = saleID
	s.lastVoid = input
	return s.sale, s.err
}

func (s *stubSalesService) Receipt(_ context.Context, _, saleID uuid.UUID) (*sales.ReceiptDTO, error) {
	s.lastSaleID = saleID
	return s.receipt, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	storeID := uuid.New()
	ctx := middleware.WithActor(req.Context(), middleware.Actor{
		UserID:  uuid.New(),
		Role:    enums.UserRoleCashier,
		StoreID: &storeID,
	})
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSaleCreateParsesPayload(t *testing.T) {
	svc := &stubSalesService{sale: &sales.SaleDTO{ID: uuid.New(), SaleNumber: "AUR-000042"}}
	body := `{
		"registerId": "front-counter",
		"totals": {
			"subtotalCents": 120000,
			"lineDiscountCents": 0,
			"orderDiscountCents": 10000,
			"taxRatePct": "8.25",
			"taxCents": 9075,
			"grandTotalCents": 119075
		},
		"payments": [
			{"method": "card", "amountCents": 100000, "sourceToken": "cnon:card-nonce"},
			{"method": "cash", "amountCents": 19075}
		]
	}`

	req := authedRequest(http.MethodPost, "/api/v1/sales", body)
	resp := httptest.NewRecorder()
	SaleCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastInput.RegisterID != "front-counter" {
		t.Fatalf("unexpected register id %q", svc.lastInput.RegisterID)
	}
	if len(svc.lastInput.Payments) != 2 {
		t.Fatalf("expected 2 payments got %d", len(svc.lastInput.Payments))
	}
	if svc.lastInput.Payments[0].Method != enums.PaymentMethodCard {
		t.Fatalf("expected card method got %s", svc.lastInput.Payments[0].Method)
	}
	if svc.lastInput.Payments[0].SourceToken != "cnon:card-nonce" {
		t.Fatalf("unexpected source token %q", svc.lastInput.Payments[0].SourceToken)
	}
	if svc.lastInput.Totals.GrandTotalCents != 119075 {
		t.Fatalf("unexpected grand total %d", svc.lastInput.Totals.GrandTotalCents)
	}
	if svc.lastActor.Role != enums.UserRoleCashier {
		t.Fatalf("unexpected actor role %s", svc.lastActor.Role)
	}

	var envelope struct {
		Data struct {
			SaleNumber string `json:"saleNumber"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SaleNumber != "AUR-000042" {
		t.Fatalf("unexpected sale number %q", envelope.Data.SaleNumber)
	}
}

func TestSaleCreateRequiresPayments(t *testing.T) {
	svc := &stubSalesService{sale: &sales.SaleDTO{}}
	body := `{
		"registerId": "front-counter",
		"totals": {"subtotalCents": 1000, "grandTotalCents": 1000},
		"payments": []
	}`

	req := authedRequest(http.MethodPost, "/api/v1/sales", body)
	resp := httptest.NewRecorder()
	SaleCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.created != 0 {
		t.Fatal("service should not have been called")
	}
}

func TestSaleCreateRejectsUnknownMethod(t *testing.T) {
	svc := &stubSalesService{sale: &sales.SaleDTO{}}
	body := `{
		"registerId": "front-counter",
		"totals": {"subtotalCents": 1000, "grandTotalCents": 1000},
		"payments": [{"method": "goat", "amountCents": 1000}]
	}`

	req := authedRequest(http.MethodPost, "/api/v1/sales", body)
	resp := httptest.NewRecorder()
	SaleCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.created != 0 {
		t.Fatal("service should not have been called")
	}
}

func TestSaleVoidRequiresReason(t *testing.T) {
	svc := &stubSalesService{sale: &sales.SaleDTO{}}
	req := withURLParam(authedRequest(http.MethodPost, "/api/v1/sales/x/void", `{"reason": ""}`), "saleID", uuid.NewString())
	resp := httptest.NewRecorder()
	SaleVoid(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSaleVoidPassesReason(t *testing.T) {
	svc := &stubSalesService{sale: &sales.SaleDTO{Status: enums.SaleStatusVoided}}
	saleID := uuid.New()
	req := withURLParam(authedRequest(http.MethodPost, "/api/v1/sales/x/void", `{"reason": "customer changed mind"}`), "saleID", saleID.String())
	resp := httptest.NewRecorder()
	SaleVoid(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastSaleID != saleID {
		t.Fatalf("expected sale id %s got %s", saleID, svc.lastSaleID)
	}
	if svc.lastVoid.Reason != "customer changed mind" {
		t.Fatalf("unexpected reason %q", svc.lastVoid.Reason)
	}
}

func TestSaleListParsesFilters(t *testing.T) {
	svc := &stubSalesService{list: &sales.SaleList{}}
	req := authedRequest(http.MethodGet, "/api/v1/sales?registerId=front-counter&status=completed&from=2026-08-01T00:00:00Z", "")
	resp := httptest.NewRecorder()
	SaleList(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastFilters.RegisterID != "front-counter" {
		t.Fatalf("unexpected register filter %q", svc.lastFilters.RegisterID)
	}
	if svc.lastFilters.Status == nil || *svc.lastFilters.Status != enums.SaleStatusCompleted {
		t.Fatalf("unexpected status filter %v", svc.lastFilters.Status)
	}
	if svc.lastFilters.From == nil || svc.lastFilters.From.Day() != 1 {
		t.Fatalf("unexpected from filter %v", svc.lastFilters.From)
	}
}
