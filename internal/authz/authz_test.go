package authz

import (
	"testing"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

func TestCan(t *testing.T) {
	cases := []struct {
		name       string
		role       enums.UserRole
		capability enums.Capability
		want       bool
	}{
		{name: "cashier creates sales", role: enums.UserRoleCashier, capability: enums.CapabilitySaleCreate, want: true},
		{name: "cashier applies line discount", role: enums.UserRoleCashier, capability: enums.CapabilityDiscountLineApply, want: true},
		{name: "cashier cannot void", role: enums.UserRoleCashier, capability: enums.CapabilitySaleVoid, want: false},
		{name: "cashier cannot apply order discount", role: enums.UserRoleCashier, capability: enums.CapabilityDiscountOrderApply, want: false},
		{name: "cashier cannot manage users", role: enums.UserRoleCashier, capability: enums.CapabilityUserManage, want: false},
		{name: "manager voids sales", role: enums.UserRoleManager, capability: enums.CapabilitySaleVoid, want: true},
		{name: "manager deletes held orders", role: enums.UserRoleManager, capability: enums.CapabilityHeldOrderDelete, want: true},
		{name: "manager reads audit log", role: enums.UserRoleManager, capability: enums.CapabilityAuditRead, want: true},
		{name: "manager cannot manage users", role: enums.UserRoleManager, capability: enums.CapabilityUserManage, want: false},
		{name: "admin manages users", role: enums.UserRoleAdmin, capability: enums.CapabilityUserManage, want: true},
		{name: "unknown role gets nothing", role: "intern", capability: enums.CapabilitySaleCreate, want: false},
		{name: "unknown capability never granted", role: enums.UserRoleAdmin, capability: "vault.open", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.capability); got != tc.want {
				t.Fatalf("Can(%s, %s) = %v, want %v", tc.role, tc.capability, got, tc.want)
			}
		})
	}
}

func TestRoleChainIsStrictSupersets(t *testing.T) {
	cashier := Capabilities(enums.UserRoleCashier)
	manager := Capabilities(enums.UserRoleManager)
	admin := Capabilities(enums.UserRoleAdmin)

	if len(cashier) >= len(manager) || len(manager) >= len(admin) {
		t.Fatalf("expected strictly growing grants, got %d/%d/%d", len(cashier), len(manager), len(admin))
	}

	for _, c := range cashier {
		if !Can(enums.UserRoleManager, c) {
			t.Fatalf("manager missing cashier capability %s", c)
		}
	}
	for _, c := range manager {
		if !Can(enums.UserRoleAdmin, c) {
			t.Fatalf("admin missing manager capability %s", c)
		}
	}
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	first := Capabilities(enums.UserRoleCashier)
	first[0] = "tampered"

	second := Capabilities(enums.UserRoleCashier)
	if second[0] == "tampered" {
		t.Fatal("expected Capabilities to return a copy")
	}

	if Capabilities("intern") != nil {
		t.Fatal("expected nil for unknown role")
	}
}
