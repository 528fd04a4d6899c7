package enums

import "fmt"

// ProductCategory groups catalog pieces for search and reporting.
type ProductCategory string

const (
	ProductCategoryRing       ProductCategory = "ring"
	ProductCategoryNecklace   ProductCategory = "necklace"
	ProductCategoryBracelet   ProductCategory = "bracelet"
	ProductCategoryEarrings   ProductCategory = "earrings"
	ProductCategoryPendant    ProductCategory = "pendant"
	ProductCategoryWatch      ProductCategory = "watch"
	ProductCategoryLooseStone ProductCategory = "loose_stone"
)

var validProductCategories = []ProductCategory{
	ProductCategoryRing,
	ProductCategoryNecklace,
	ProductCategoryBracelet,
	ProductCategoryEarrings,
	ProductCategoryPendant,
	ProductCategoryWatch,
	ProductCategoryLooseStone,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
