package enums

// Capability names a single action a role may perform. Route middleware
// checks capabilities rather than raw roles so the matrix lives in one
// place.
type Capability string

const (
	CapabilitySaleCreate         Capability = "sale.create"
	CapabilitySaleVoid           Capability = "sale.void"
	CapabilityDiscountLineApply  Capability = "discount.line.apply"
	CapabilityDiscountOrderApply Capability = "discount.order.apply"
	CapabilityHeldOrderDelete    Capability = "heldorder.delete"
	CapabilityCatalogWrite       Capability = "catalog.write"
	CapabilityCustomerWrite      Capability = "customer.write"
	CapabilityAuditRead          Capability = "audit.read"
	CapabilityDrawerManage       Capability = "drawer.manage"
	CapabilityUserManage         Capability = "user.manage"
)

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}
