package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
)

type holdRequest struct {
	RegisterID string `json:"registerId" validate:"required"`
	Note       string `json:"note" validate:"max=500"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

func postBody(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func expectValidation(t *testing.T, err error) *pkgerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	return typed
}

func TestDecodeJSONBody(t *testing.T) {
	var dest holdRequest
	err := DecodeJSONBody(postBody(`{"registerId":"front-desk","note":"hold for pickup","quantity":2}`), &dest)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dest.RegisterID != "front-desk" || dest.Quantity != 2 {
		t.Fatalf("unexpected decode result %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest holdRequest
	err := DecodeJSONBody(postBody(`{"registerId":"front-desk","quantity":1,"registerid":"typo"}`), &dest)
	expectValidation(t, err)
}

func TestDecodeJSONBodyFieldMessages(t *testing.T) {
	var dest holdRequest
	err := DecodeJSONBody(postBody(`{"note":"x","quantity":0}`), &dest)
	typed := expectValidation(t, err)

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %v", typed.Details())
	}
	if details["registerId"] != "is required" {
		t.Fatalf("unexpected message for registerId: %q", details["registerId"])
	}
	if details["quantity"] != "must be greater than 0" {
		t.Fatalf("unexpected message for quantity: %q", details["quantity"])
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	padding := strings.Repeat("a", maxBodyBytes)
	var dest holdRequest
	err := DecodeJSONBody(postBody(`{"registerId":"front-desk","quantity":1,"note":"`+padding+`"}`), &dest)
	typed := expectValidation(t, err)
	if typed.Message() != "request body too large" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25", nil)
	got, err := ParseQueryInt(req, "limit", 50, 1, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got, err = ParseQueryInt(req, "limit", 50, 1, 100); err != nil || got != 50 {
		t.Fatalf("expected default 50, got %d (%v)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err = ParseQueryInt(req, "limit", 50, 1, 100)
	expectValidation(t, err)

	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	_, err = ParseQueryInt(req, "limit", 50, 1, 100)
	expectValidation(t, err)
}

func TestParseQueryTime(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?since=2026-08-25T10:30:00Z", nil)
	got, err := ParseQueryTime(req, "since")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got == nil || got.UTC().Hour() != 10 {
		t.Fatalf("unexpected time %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got, err = ParseQueryTime(req, "since"); err != nil || got != nil {
		t.Fatalf("expected nil for missing value, got %v (%v)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?since=yesterday", nil)
	_, err = ParseQueryTime(req, "since")
	expectValidation(t, err)
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  front-desk  ", 32); got != "front-desk" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("expected capped value, got %q", got)
	}
	// The cap counts runes, not bytes.
	if got := SanitizeString("ØreÅl", 4); got != "ØreÅ" {
		t.Fatalf("expected rune-aware cap, got %q", got)
	}
	if got := SanitizeString("note", 0); got != "note" {
		t.Fatalf("expected unlimited value, got %q", got)
	}
}
