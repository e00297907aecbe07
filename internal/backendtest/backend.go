// Package backendtest is a scripted stand-in for the storefront backend.
//
// It keeps accounts in memory, issues signed access cookies and opaque
// refresh cookies, and exposes hooks to expire or revoke them and to hold a
// refresh in flight, so the client's refresh coordination can be exercised
// end to end over real HTTP.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront-client/users"
	fakeuserrepo "github.com/jrsteele09/go-storefront-client/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	// VerificationOTP is the one-time code every registration accepts.
	VerificationOTP = "123456"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type Option func(*Backend)

func WithAccessTTL(d time.Duration) Option {
	return func(b *Backend) {
		b.accessTTL = d
	}
}

func WithRefreshTTL(d time.Duration) Option {
	return func(b *Backend) {
		b.refreshTTL = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// Backend is an http.Handler serving the storefront API.
type Backend struct {
	mux        *http.ServeMux
	users      *fakeuserrepo.FakeUserRepo
	tokens     *TokenIssuer
	logger     zerolog.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration

	accessGeneration atomic.Uint64
	refreshCalls     atomic.Int64

	mu          sync.Mutex
	hits        map[string]int
	refreshHold chan struct{}
	refreshFail *failure
	catalog     []product
	carts       map[string]map[string]int // user ID to product ID to quantity
	orders      map[string][]order

	// URL is set by Start.
	URL string
}

type failure struct {
	status  int
	message string
}

// New builds a Backend with a fresh HMAC signer and a small seeded catalog.
func New(opts ...Option) (*Backend, error) {
	signer, err := NewRandomHMACSigner()
	if err != nil {
		return nil, err
	}
	b := &Backend{
		mux:        http.NewServeMux(),
		users:      fakeuserrepo.NewFakeUserRepo(),
		logger:     log.Logger,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		hits:       make(map[string]int),
		catalog:    seedCatalog(),
		carts:      make(map[string]map[string]int),
		orders:     make(map[string][]order),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.tokens = NewTokenIssuer(signer, b.accessTTL, b.refreshTTL)
	b.initRoutes()
	return b, nil
}

// Start serves a new Backend on an httptest server closed at the end of
// the test.
func Start(t testing.TB, opts ...Option) *Backend {
	t.Helper()
	b, err := New(opts...)
	if err != nil {
		t.Fatalf("backendtest: %v", err)
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mux.ServeHTTP(w, r)
}

func (b *Backend) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	b.mux.HandleFunc(pattern, handler)
}

// SeedUser stores a verified account with password hashed by bcrypt. An
// empty u.ID gets a generated one.
func (b *Backend) SeedUser(u users.User, password string) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	u.IsVerified = true
	if u.Role == "" {
		u.Role = users.RoleCustomer
	}
	stored := u.Clone()
	if err := b.users.Upsert(stored); err != nil {
		return nil, err
	}
	return b.users.GetByID(stored.ID)
}

// ExpireAccessTokens invalidates every access cookie issued so far.
func (b *Backend) ExpireAccessTokens() {
	b.accessGeneration.Add(1)
}

// RevokeRefreshTokens invalidates every refresh cookie issued so far.
func (b *Backend) RevokeRefreshTokens() {
	b.tokens.RevokeAllRefreshTokens()
}

// HoldRefresh parks refresh calls until the returned release is called.
func (b *Backend) HoldRefresh() (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.refreshHold = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.refreshHold == ch {
				b.refreshHold = nil
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// FailRefresh makes the refresh endpoint answer status with message until
// cleared by FailRefresh(0, "").
func (b *Backend) FailRefresh(status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		b.refreshFail = nil
		return
	}
	b.refreshFail = &failure{status: status, message: message}
}

// RefreshCalls returns the number of requests the refresh endpoint received.
func (b *Backend) RefreshCalls() int {
	return int(b.refreshCalls.Load())
}

// Hits returns how many requests matched "METHOD path".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *Backend) countHit(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[route]++
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    status < 300,
		"message":    message,
		"data":       data,
		"statusCode": status,
	})
}
