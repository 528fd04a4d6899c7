package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// RevenueFactRow mirrors the sales_revenue BigQuery schema. A completed
// sale inserts one row with positive amounts; a void inserts a negating
// row, so SUM(net_revenue_cents) is net of voids. BusinessDate is the
// UTC calendar date the row lands on.
type RevenueFactRow struct {
	EventID           string             `bigquery:"event_id"`
	EventType         string             `bigquery:"event_type"`
	OccurredAt        time.Time          `bigquery:"occurred_at"`
	BusinessDate      civil.Date         `bigquery:"business_date"`
	SaleID            string             `bigquery:"sale_id"`
	StoreID           string             `bigquery:"store_id"`
	RegisterID        *string            `bigquery:"register_id"`
	SaleNumber        *string            `bigquery:"sale_number"`
	CashierID         *string            `bigquery:"cashier_id"`
	CustomerID        *string            `bigquery:"customer_id"`
	SubtotalCents     *int64             `bigquery:"subtotal_cents"`
	DiscountCents     *int64             `bigquery:"discount_cents"`
	TaxCents          *int64             `bigquery:"tax_cents"`
	GrossRevenueCents *int64             `bigquery:"gross_revenue_cents"`
	NetRevenueCents   *int64             `bigquery:"net_revenue_cents"`
	ItemCount         *int64             `bigquery:"item_count"`
	PaymentMethods    cbigquery.NullJSON `bigquery:"payment_methods"`
	Payload           cbigquery.NullJSON `bigquery:"payload"`
}
