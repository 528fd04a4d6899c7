package enums

import "fmt"

// Metal is the primary metal of a catalog piece.
type Metal string

const (
	MetalGold      Metal = "gold"
	MetalSilver    Metal = "silver"
	MetalPlatinum  Metal = "platinum"
	MetalPalladium Metal = "palladium"
	MetalTitanium  Metal = "titanium"
	MetalMixed     Metal = "mixed"
)

var validMetals = []Metal{
	MetalGold,
	MetalSilver,
	MetalPlatinum,
	MetalPalladium,
	MetalTitanium,
	MetalMixed,
}

// String implements fmt.Stringer.
func (m Metal) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Metal.
func (m Metal) IsValid() bool {
	for _, candidate := range validMetals {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMetal converts raw input into a Metal.
func ParseMetal(value string) (Metal, error) {
	for _, candidate := range validMetals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid metal %q", value)
}
