package dbtypes

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayScan(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	var arr UUIDArray
	if err := arr.Scan("{" + a.String() + "," + b.String() + "}"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(arr) != 2 || arr[0] != a || arr[1] != b {
		t.Fatalf("unexpected scan result %v", arr)
	}

	// Some drivers hand the literal over as bytes, and pg quotes
	// elements in certain outputs.
	if err := arr.Scan([]byte(`{"` + a.String() + `"}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if len(arr) != 1 || arr[0] != a {
		t.Fatalf("unexpected quoted scan result %v", arr)
	}

	if err := arr.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if len(arr) != 0 {
		t.Fatalf("expected empty array for nil, got %v", arr)
	}

	if err := arr.Scan("{}"); err != nil {
		t.Fatalf("scan empty literal: %v", err)
	}
	if len(arr) != 0 {
		t.Fatalf("expected empty array, got %v", arr)
	}

	if err := arr.Scan("{not-a-uuid}"); err == nil {
		t.Fatal("expected parse error for malformed element")
	}
	if err := arr.Scan(42); err == nil {
		t.Fatal("expected error for unsupported source type")
	}
}

func TestUUIDArrayValue(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	val, err := UUIDArray{a, b}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if val != "{"+a.String()+","+b.String()+"}" {
		t.Fatalf("unexpected literal %v", val)
	}

	val, err = UUIDArray{}.Value()
	if err != nil || val != "{}" {
		t.Fatalf("expected empty literal, got %v (%v)", val, err)
	}
}

func TestUUIDArrayContains(t *testing.T) {
	a := uuid.New()
	arr := UUIDArray{a, uuid.New()}

	if !arr.Contains(a) {
		t.Fatal("expected array to contain id")
	}
	if arr.Contains(uuid.New()) {
		t.Fatal("expected miss for unrelated id")
	}
	if (UUIDArray{}).Contains(a) {
		t.Fatal("expected miss on empty array")
	}
}
