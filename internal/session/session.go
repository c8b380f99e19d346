// Package session owns the authenticated Principal and its lifecycle.
// The admin and customer apps use the same store with different endpoint
// paths and principal schemas.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sellora/client-go/internal/api"
	"github.com/sellora/client-go/internal/model"
	"github.com/sellora/client-go/internal/storage"
	"github.com/sellora/client-go/pkg/logger"
)

type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusValidating      Status = "validating"
	StatusAuthenticated   Status = "authenticated"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Endpoints selects the principal kind the store talks to.
type Endpoints struct {
	Login   string
	Profile string
}

// CustomerEndpoints and AdminEndpoints are the two principal kinds the
// platform exposes.
var (
	CustomerEndpoints = Endpoints{Login: "/auth/login", Profile: "/auth/profile"}
	AdminEndpoints    = Endpoints{Login: "/admin/auth/login", Profile: "/admin/auth/profile"}
)

// Store manages the session state machine:
// unauthenticated -> validating -> authenticated on startup, and
// unauthenticated -> authenticated directly via Login.
type Store struct {
	api        *api.Client
	kv         storage.KV
	endpoints  Endpoints
	retryDelay time.Duration

	mu        sync.Mutex
	status    Status
	principal *model.Principal
}

// Option adjusts store construction.
type Option func(*Store)

// WithRetryDelay overrides the fixed delay before the single startup
// validation retry.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Store) { s.retryDelay = d }
}

// NewStore creates a session store and registers it as the API client's
// unauthorized listener, keeping the 401 policy in one place.
func NewStore(client *api.Client, kv storage.KV, endpoints Endpoints, opts ...Option) *Store {
	s := &Store{
		api:        client,
		kv:         kv,
		endpoints:  endpoints,
		retryDelay: 2 * time.Second,
		status:     StatusUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	client.OnUnauthorized(s.forceUnauthenticated)
	return s
}

// Status returns the current session state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Principal returns a copy of the current principal, or nil when
// unauthenticated.
func (s *Store) Principal() *model.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// StartupValidate runs once per load. A cached token is presented
// optimistically (principal marked provisional) while the profile endpoint
// confirms it. Auth failures clear the session; transport failures get one
// bounded retry and then preserve the cached state, so a flaky connection
// never forces a logout.
func (s *Store) StartupValidate(ctx context.Context) {
	token, ok, err := s.kv.Get(ctx, storage.KeyToken)
	if err != nil || !ok || token == "" {
		s.setState(StatusUnauthenticated, nil)
		return
	}

	cached := s.loadCachedPrincipal(ctx)
	if cached != nil {
		cached.Provisional = true
	}
	s.setState(StatusValidating, cached)

	// A cached JWT that is already expired is a definitive auth failure;
	// skip the round trip.
	if tokenExpired(token) {
		logger.Info("Cached token expired, clearing session", nil)
		s.clearIdentity(ctx)
		s.setState(StatusUnauthenticated, nil)
		return
	}

	principal, err := s.fetchProfile(ctx)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.IsTransport() {
			logger.Warn("Profile validation hit a transport error, retrying once", map[string]interface{}{
				"delay": s.retryDelay.String(),
			})
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return
			}
			principal, err = s.fetchProfile(ctx)
		}
	}

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.IsAuth() {
			// The API client has already cleared the identity keys and
			// fired the unauthorized hook.
			logger.Info("Startup validation rejected, session cleared", nil)
			s.setState(StatusUnauthenticated, nil)
			return
		}
		// Transient failure after the retry: keep the last known state
		// rather than destroying it.
		logger.Warn("Profile validation unavailable, preserving cached session", map[string]interface{}{
			"error": err.Error(),
		})
		if cached != nil {
			s.setState(StatusAuthenticated, cached)
		} else {
			s.setState(StatusUnauthenticated, nil)
		}
		return
	}

	principal.Provisional = false
	s.persistPrincipal(ctx, principal)
	s.setState(StatusAuthenticated, principal)

	logger.Info("Session validated", map[string]interface{}{
		"principal_id": principal.ID,
		"role":         principal.Role,
	})
}

// Credentials are what the login endpoint accepts.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  model.Principal `json:"user"`
}

// Login authenticates against the backend. Success purges every legacy
// identity key before storing the new token and principal; failure leaves
// prior session state untouched and surfaces the backend's message.
func (s *Store) Login(ctx context.Context, creds Credentials) (*model.Principal, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": creds.Email,
	})

	var resp loginResponse
	// A 401 here means bad credentials, not an expired session, so the
	// global auth policy is suppressed for this one call.
	if err := s.api.Post(ctx, s.endpoints.Login, creds, &resp, api.SkipAuthPolicy()); err != nil {
		logger.Warn("Login failed", map[string]interface{}{
			"email": creds.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	s.clearIdentity(ctx)

	if err := s.kv.Set(ctx, storage.KeyToken, resp.Token); err != nil {
		logger.Error("Failed to persist token", err, nil)
	}
	principal := resp.User
	principal.Provisional = false
	s.persistPrincipal(ctx, &principal)
	s.setState(StatusAuthenticated, &principal)

	logger.Info("Login succeeded", map[string]interface{}{
		"principal_id": principal.ID,
		"role":         principal.Role,
	})
	return s.Principal(), nil
}

// Logout clears every identity key and transitions to unauthenticated.
// It never calls the backend.
func (s *Store) Logout(ctx context.Context) {
	logger.Info("Logging out", nil)
	s.clearIdentity(ctx)
	s.setState(StatusUnauthenticated, nil)
}

// ProfileUpdate carries the fields UpdateProfile may change.
type ProfileUpdate struct {
	Name      *string         `json:"name,omitempty"`
	Phone     *string         `json:"phone,omitempty"`
	Addresses []model.Address `json:"addresses,omitempty"`
}

// UpdateProfile merges partial fields into the current principal and
// re-persists. Callers must be authenticated.
func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.Principal, error) {
	s.mu.Lock()
	if s.status != StatusAuthenticated || s.principal == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if update.Name != nil {
		s.principal.Name = *update.Name
	}
	if update.Phone != nil {
		s.principal.Phone = *update.Phone
	}
	if update.Addresses != nil {
		s.principal.Addresses = update.Addresses
	}
	merged := *s.principal
	s.mu.Unlock()

	s.persistPrincipal(ctx, &merged)
	return &merged, nil
}

func (s *Store) fetchProfile(ctx context.Context) (*model.Principal, error) {
	var principal model.Principal
	if err := s.api.Get(ctx, s.endpoints.Profile, nil, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

func (s *Store) loadCachedPrincipal(ctx context.Context) *model.Principal {
	raw, ok, err := s.kv.Get(ctx, storage.KeyPrincipal)
	if err != nil || !ok || raw == "" {
		return nil
	}
	var p model.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.Warn("Discarding corrupt cached principal", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return &p
}

func (s *Store) persistPrincipal(ctx context.Context, p *model.Principal) {
	raw, err := json.Marshal(p)
	if err != nil {
		logger.Error("Failed to marshal principal", err, nil)
		return
	}
	if err := s.kv.Set(ctx, storage.KeyPrincipal, string(raw)); err != nil {
		logger.Error("Failed to persist principal", err, nil)
	}
}

func (s *Store) clearIdentity(ctx context.Context) {
	if err := s.kv.Delete(ctx, storage.IdentityKeys...); err != nil {
		logger.Error("Failed to clear identity keys", err, nil)
	}
}

func (s *Store) setState(status Status, principal *model.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.principal = principal
}

// forceUnauthenticated is the API client's unauthorized hook. The keys are
// already cleared by then; only the state transition happens here.
func (s *Store) forceUnauthenticated() {
	s.setState(StatusUnauthenticated, nil)
}

// tokenExpired reports whether the token is a JWT whose expiry has passed.
// Tokens that do not parse as JWTs are left for the backend to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
