// Package storage provides the durable client-side key-value store that
// survives restarts, standing in for the browser's persistent storage.
// Each consuming store owns a disjoint set of keys; there is no
// cross-component transactional guarantee and none is needed.
package storage

import "context"

// Durable storage keys. The session store owns the identity keys, the
// tenant resolver owns the store keys and the cart store owns the cart key.
// The API client reads KeyToken and KeyStoreID for request shaping.
const (
	KeyToken     = "auth_token"
	KeyPrincipal = "auth_user"
	KeyStoreID   = "store_id"
	KeyCartItems = "cart_items"
)

// IdentityKeys lists every key cleared on logout and before storing a new
// login. The trailing entries are legacy names left behind by earlier
// releases; clearing them defensively prevents stale-key leakage between
// sessions.
var IdentityKeys = []string{
	KeyToken,
	KeyPrincipal,
	"token",
	"user",
	"admin_token",
	"admin_user",
	"userInfo",
}

// KV is the narrow capability each store persists through.
type KV interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
