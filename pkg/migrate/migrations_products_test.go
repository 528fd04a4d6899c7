package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProductsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no product migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"category product_category NOT NULL",
		"metal metal",
		"gemstones text[] NOT NULL",
		"CHECK (price_cents >= 0)",
		"CHECK (stock_qty >= 0)",
		"one_of_a_kind boolean NOT NULL DEFAULT false",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_products_store_sku",
		"CREATE INDEX IF NOT EXISTS idx_products_store_status",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBaseTypesMigrationContainsEnums(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_base_types.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no base types migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE product_category AS ENUM",
		"CREATE TYPE payment_method AS ENUM",
		"CREATE TYPE discount_type AS ENUM",
		"CREATE TYPE discount_value AS (type discount_type, value numeric)",
		"CREATE TYPE ledger_entry_type AS ENUM",
		"CREATE TYPE audit_action AS ENUM",
		"CREATE TYPE event_type_enum AS ENUM ('sale_created', 'sale_voided', 'held_order_expired')",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
