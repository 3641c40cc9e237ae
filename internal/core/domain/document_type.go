package domain

// DocumentType configures a class of vouchers: its numbering prefix, whether
// posting requires approval, and optional account-type restrictions on lines.
// Never deleted once referenced by a voucher; deactivation is soft.
type DocumentType struct {
	DocTypeID        string `json:"docTypeID"` // Primary Key (UUID)
	TenantID         string `json:"tenantID"`  // FK -> tenants.tenant_id (NOT NULL)
	Code             string `json:"code"`      // Unique within tenant, e.g. "GJ", "CASH"
	Name             string `json:"name"`
	NumberPrefix     string `json:"numberPrefix"` // Presentation prefix for formatted numbers
	RequiresApproval bool   `json:"requiresApproval"`
	// RestrictAccountTypes, when non-empty, requires every line's account type
	// to be in the list (e.g. a cash voucher type restricted to ASSET accounts).
	RestrictAccountTypes []AccountType `json:"restrictAccountTypes"`
	IsActive             bool          `json:"isActive"`
	AuditFields
}

// AllowsAccountType reports whether lines of this type may reference an
// account of the given type.
func (d DocumentType) AllowsAccountType(t AccountType) bool {
	if len(d.RestrictAccountTypes) == 0 {
		return true
	}
	for _, allowed := range d.RestrictAccountTypes {
		if allowed == t {
			return true
		}
	}
	return false
}
