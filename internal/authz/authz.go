package authz

import (
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Role grants are strict supersets up the chain: everything a cashier
// can do a manager can do, everything a manager can do an admin can do.
var (
	cashierCapabilities = []enums.Capability{
		enums.CapabilitySaleCreate,
		enums.CapabilityDiscountLineApply,
		enums.CapabilityCustomerWrite,
	}

	managerCapabilities = concat(cashierCapabilities, []enums.Capability{
		enums.CapabilitySaleVoid,
		enums.CapabilityDiscountOrderApply,
		enums.CapabilityHeldOrderDelete,
		enums.CapabilityCatalogWrite,
		enums.CapabilityDrawerManage,
		enums.CapabilityAuditRead,
	})

	adminCapabilities = concat(managerCapabilities, []enums.Capability{
		enums.CapabilityUserManage,
	})
)

var grants = map[enums.UserRole]map[enums.Capability]struct{}{
	enums.UserRoleCashier: toSet(cashierCapabilities),
	enums.UserRoleManager: toSet(managerCapabilities),
	enums.UserRoleAdmin:   toSet(adminCapabilities),
}

// Can reports whether the role is granted the capability. Unknown roles
// and unknown capabilities are simply not granted.
func Can(role enums.UserRole, capability enums.Capability) bool {
	caps, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

// Capabilities returns the role's grant list, useful for exposing the
// matrix to clients. The returned slice is a copy.
func Capabilities(role enums.UserRole) []enums.Capability {
	var source []enums.Capability
	switch role {
	case enums.UserRoleCashier:
		source = cashierCapabilities
	case enums.UserRoleManager:
		source = managerCapabilities
	case enums.UserRoleAdmin:
		source = adminCapabilities
	default:
		return nil
	}
	out := make([]enums.Capability, len(source))
	copy(out, source)
	return out
}

func concat(base, extra []enums.Capability) []enums.Capability {
	out := make([]enums.Capability, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func toSet(caps []enums.Capability) map[enums.Capability]struct{} {
	set := make(map[enums.Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}
