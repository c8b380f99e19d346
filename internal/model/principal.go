package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type PrincipalStatus string

const (
	StatusActive   PrincipalStatus = "active"
	StatusDisabled PrincipalStatus = "disabled"
)

// Address is a customer shipping address.
type Address struct {
	Label      string `json:"label,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

// Principal is the authenticated actor: an admin user or a customer.
// Admin principals carry permissions, customer principals carry addresses
// and a phone number; the remaining fields are shared.
type Principal struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Status      PrincipalStatus `json:"status"`
	Role        Role            `json:"role"`
	Permissions []string        `json:"permissions,omitempty"`
	Addresses   []Address       `json:"addresses,omitempty"`
	Phone       string          `json:"phone,omitempty"`

	// Provisional marks identity data restored from cache that the backend
	// has not yet confirmed. Cleared after a successful profile validation.
	Provisional bool `json:"-"`
}
