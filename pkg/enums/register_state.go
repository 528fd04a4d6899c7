package enums

// RegisterState is derived from the active cart: a register is EMPTY
// until the first item lands and BUILDING until the cart is cleared.
// It is never stored, only computed.
type RegisterState string

const (
	RegisterStateEmpty    RegisterState = "empty"
	RegisterStateBuilding RegisterState = "building"
)

// String implements fmt.Stringer.
func (r RegisterState) String() string {
	return string(r)
}
