package model

// Tenant is one merchant's namespace within the shared platform.
// Every catalog entity belongs to exactly one tenant; the scoping itself
// is enforced by the backend, this layer only carries the identifier.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
