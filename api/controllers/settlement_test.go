package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/karatworks/aurumpos-backend/internal/settlement"
)

func TestSettlementQuoteSummarizesSplit(t *testing.T) {
	body := `{
		"grandTotalCents": 10000,
		"entries": [
			{"method": "cash", "amountCents": 4000},
			{"method": "card", "amountCents": 3500}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/quote", strings.NewReader(body))
	resp := httptest.NewRecorder()
	SettlementQuote(nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Summary         settlement.Summary `json:"summary"`
			FillAmountCents int64              `json:"fillAmountCents"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if envelope.Data.Summary.AmountPaidCents != 7500 {
		t.Fatalf("expected 7500 paid got %d", envelope.Data.Summary.AmountPaidCents)
	}
	if envelope.Data.Summary.RemainingCents != 2500 {
		t.Fatalf("expected 2500 remaining got %d", envelope.Data.Summary.RemainingCents)
	}
	if envelope.Data.Summary.Settled {
		t.Fatal("expected split to be unsettled")
	}
	if envelope.Data.FillAmountCents != 2500 {
		t.Fatalf("expected fill amount 2500 got %d", envelope.Data.FillAmountCents)
	}
}

func TestSettlementQuoteExactCashIsSettled(t *testing.T) {
	body := `{
		"grandTotalCents": 5000,
		"entries": [{"method": "cash", "amountCents": 6000}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/quote", strings.NewReader(body))
	resp := httptest.NewRecorder()
	SettlementQuote(nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Summary settlement.Summary `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !envelope.Data.Summary.Settled {
		t.Fatal("expected cash overpayment to settle")
	}
	if envelope.Data.Summary.ChangeCents != 1000 {
		t.Fatalf("expected 1000 change got %d", envelope.Data.Summary.ChangeCents)
	}
}

func TestSettlementQuoteRejectsUnknownMethod(t *testing.T) {
	body := `{
		"grandTotalCents": 5000,
		"entries": [{"method": "barter", "amountCents": 5000}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/quote", strings.NewReader(body))
	resp := httptest.NewRecorder()
	SettlementQuote(nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSettlementQuoteRejectsUnknownFields(t *testing.T) {
	body := `{"grandTotalCents": 5000, "tender": []}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/quote", strings.NewReader(body))
	resp := httptest.NewRecorder()
	SettlementQuote(nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
