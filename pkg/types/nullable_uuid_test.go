package types

import (
	"encoding/json"
	"testing"
)

func TestNullableUUIDUnmarshal(t *testing.T) {
	type payload struct {
		CustomerID NullableUUID `json:"customerId"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"customerId": "6f1f9f2a-0b7e-4a38-92ad-0d6c53d4c001"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.CustomerID.Valid || got.CustomerID.Value == nil {
		t.Fatalf("expected valid uuid, got %v", got.CustomerID)
	}
	if got.CustomerID.Value.String() != "6f1f9f2a-0b7e-4a38-92ad-0d6c53d4c001" {
		t.Fatalf("unexpected uuid %s", got.CustomerID.Value)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"customerId": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.CustomerID.Valid || got.CustomerID.Value != nil {
		t.Fatalf("expected null to be valid but nil, got %v", got.CustomerID)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.CustomerID.Valid {
		t.Fatalf("expected invalid flag for missing field, got %+v", got.CustomerID)
	}
}
