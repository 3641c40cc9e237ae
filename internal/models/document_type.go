package models

// DocumentType maps to the document_types table. RestrictAccountTypes is
// stored as a text[] column.
type DocumentType struct {
	DocTypeID            string   `json:"docTypeID"`
	TenantID             string   `json:"tenantID"`
	Code                 string   `json:"code"`
	Name                 string   `json:"name"`
	NumberPrefix         string   `json:"numberPrefix"`
	RequiresApproval     bool     `json:"requiresApproval"`
	RestrictAccountTypes []string `json:"restrictAccountTypes"`
	IsActive             bool     `json:"isActive"`
	AuditFields
}
