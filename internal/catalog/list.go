package catalog

import (
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// ListFilters describe the supported filter knobs for catalog search.
// Query matches name, SKU, and barcode case-insensitively.
type ListFilters struct {
	Query         string                 `json:"q,omitempty"`
	Category      *enums.ProductCategory `json:"category,omitempty"`
	Metal         *enums.Metal           `json:"metal,omitempty"`
	Status        *enums.ProductStatus   `json:"status,omitempty"`
	PriceMinCents *int64                 `json:"priceMinCents,omitempty"`
	PriceMaxCents *int64                 `json:"priceMaxCents,omitempty"`
	OneOfAKind    *bool                  `json:"oneOfAKind,omitempty"`
}
