package enums

import "fmt"

// AuditAction maps to the audit_action enum in Postgres.
type AuditAction string

const (
	AuditSaleCreated          AuditAction = "sale_created"
	AuditSaleVoided           AuditAction = "sale_voided"
	AuditHeldOrderDeleted     AuditAction = "held_order_deleted"
	AuditHeldOrderExpired     AuditAction = "held_order_expired"
	AuditProductCreated       AuditAction = "product_created"
	AuditProductUpdated       AuditAction = "product_updated"
	AuditProductDiscontinued  AuditAction = "product_discontinued"
	AuditCustomerCreated      AuditAction = "customer_created"
	AuditCustomerUpdated      AuditAction = "customer_updated"
	AuditUserCreated          AuditAction = "user_created"
	AuditUserUpdated          AuditAction = "user_updated"
	AuditStoreSettingsUpdated AuditAction = "store_settings_updated"
	AuditDrawerEntryRecorded  AuditAction = "drawer_entry_recorded"
)

var validAuditActions = []AuditAction{
	AuditSaleCreated,
	AuditSaleVoided,
	AuditHeldOrderDeleted,
	AuditHeldOrderExpired,
	AuditProductCreated,
	AuditProductUpdated,
	AuditProductDiscontinued,
	AuditCustomerCreated,
	AuditCustomerUpdated,
	AuditUserCreated,
	AuditUserUpdated,
	AuditStoreSettingsUpdated,
	AuditDrawerEntryRecorded,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
