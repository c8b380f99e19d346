// Package tenant resolves which store's data the client shows. Resolution
// runs once per load; catalog views must observe a resolved tenant before
// they query scoped data.
package tenant

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/sellora/client-go/internal/api"
	"github.com/sellora/client-go/internal/model"
	"github.com/sellora/client-go/internal/storage"
	"github.com/sellora/client-go/pkg/logger"
)

// State distinguishes "not yet resolved" from "resolution failed" so
// dependent views can render loading and error surfaces separately.
type State string

const (
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Resolver determines the active tenant with first-match-wins precedence:
// host subdomain, then the store query parameter, then the cached
// identifier, then the backend's default tenant.
type Resolver struct {
	api        *api.Client
	kv         storage.KV
	queryParam string

	mu     sync.Mutex
	state  State
	tenant *model.Tenant
	err    error
}

func NewResolver(client *api.Client, kv storage.KV, queryParam string) *Resolver {
	return &Resolver{
		api:        client,
		kv:         kv,
		queryParam: queryParam,
		state:      StatePending,
	}
}

// State returns the current resolution state and, when resolved, the tenant.
func (r *Resolver) State() (State, *model.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.tenant, r.err
}

// Resolve runs the precedence chain and fetches tenant metadata. On success
// the identifier is cached for the next load; exactly one storage write and
// one metadata request happen per call. A canceled context leaves the
// state untouched.
func (r *Resolver) Resolve(ctx context.Context, host string, query url.Values) (*model.Tenant, error) {
	id := subdomainOf(host)
	source := "subdomain"

	if id == "" {
		id = query.Get(r.queryParam)
		source = "query"
	}
	if id == "" {
		if cached, ok, err := r.kv.Get(ctx, storage.KeyStoreID); err == nil && ok {
			id = cached
			source = "cache"
		}
	}

	logger.Debug("Resolving tenant", map[string]interface{}{
		"host":   host,
		"id":     id,
		"source": source,
	})

	var tenant model.Tenant
	var err error
	if id != "" {
		err = r.api.Get(ctx, "/stores/"+url.PathEscape(id), nil, &tenant)
	} else {
		source = "default"
		err = r.api.Get(ctx, "/stores/default", nil, &tenant)
	}

	// Guard against committing state after the caller has moved on.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		logger.Warn("Tenant resolution failed", map[string]interface{}{
			"id":     id,
			"source": source,
			"error":  err.Error(),
		})
		r.state = StateFailed
		r.err = err
		return nil, err
	}

	if err := r.kv.Set(ctx, storage.KeyStoreID, tenant.ID); err != nil {
		logger.Error("Failed to cache tenant identifier", err, nil)
	}

	logger.Info("Tenant resolved", map[string]interface{}{
		"store_id": tenant.ID,
		"slug":     tenant.Slug,
		"source":   source,
	})

	r.state = StateResolved
	r.tenant = &tenant
	r.err = nil
	return &tenant, nil
}

// subdomainOf extracts the tenant label from the host, or "" when the host
// carries none. Reserved labels and bare or loopback hosts never resolve
// to a tenant.
func subdomainOf(host string) string {
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if !strings.Contains(host, ".") {
		return ""
	}
	label := host[:strings.Index(host, ".")]
	if label == "" || reservedLabel(label) {
		return ""
	}
	return label
}

func reservedLabel(label string) bool {
	if label == "www" || label == "localhost" {
		return true
	}
	// Numeric labels are loopback or raw-IP hosts, never tenants.
	for i := 0; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return false
		}
	}
	return true
}
