package backendtest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const refreshTokenLength = 32

// AccessClaims is what the backend reads back from an access cookie.
type AccessClaims struct {
	UserID     string
	Role       users.RoleType
	Generation uint64
}

// TokenIssuer creates access tokens (signed JWTs) and refresh tokens
// (opaque random strings whose metadata stays server side).
type TokenIssuer struct {
	signer     Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	refresh    *refreshStore
}

func NewTokenIssuer(signer Signer, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		refresh:    newRefreshStore(),
	}
}

// CreateAccessToken signs an access token for user. generation ties the
// token to the backend's current access generation so tests can expire
// every outstanding token at once.
func (ti *TokenIssuer) CreateAccessToken(user *users.User, generation uint64) (string, error) {
	now := NowTimeFunc()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"gen":  generation,
		"typ":  "access",
		"iat":  now.Unix(),
		"exp":  now.Add(ti.accessTTL).Unix(),
		"jti":  uuid.New().String(),
	}
	signed, err := ti.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature and expiry.
func (ti *TokenIssuer) ParseAccessToken(raw string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(raw, jwt.MapClaims{}, ti.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{ti.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidAccessToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "access" {
		return nil, errors.ErrInvalidAccessToken
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	gen, _ := claims["gen"].(float64)
	if sub == "" {
		return nil, errors.ErrInvalidAccessToken
	}
	return &AccessClaims{UserID: sub, Role: users.RoleType(role), Generation: uint64(gen)}, nil
}

// StoredRefreshToken is the server-side record behind a refresh cookie.
type StoredRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// CreateRefreshToken issues a new refresh token for userID, replacing any
// existing one (single refresh token per user).
func (ti *TokenIssuer) CreateRefreshToken(userID string) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)
	ti.refresh.upsert(&StoredRefreshToken{Token: tokenStr, UserID: userID, Iat: NowTimeFunc()})
	return tokenStr, nil
}

// LookupRefreshToken returns the user a valid refresh token belongs to.
func (ti *TokenIssuer) LookupRefreshToken(token string) (string, error) {
	rt, ok := ti.refresh.get(token)
	if !ok {
		return "", errors.ErrInvalidRefreshToken
	}
	if ti.refreshTTL > 0 && NowTimeFunc().Sub(rt.Iat) > ti.refreshTTL {
		ti.refresh.delete(token)
		return "", errors.ErrInvalidRefreshToken
	}
	return rt.UserID, nil
}

func (ti *TokenIssuer) DeleteRefreshToken(token string) {
	ti.refresh.delete(token)
}

// RevokeAllRefreshTokens forgets every issued refresh token.
func (ti *TokenIssuer) RevokeAllRefreshTokens() {
	ti.refresh.clear()
}

type refreshStore struct {
	tokens  map[string]*StoredRefreshToken
	userIDs map[string]string // user ID to token
	lock    sync.RWMutex
}

func newRefreshStore() *refreshStore {
	return &refreshStore{
		tokens:  make(map[string]*StoredRefreshToken),
		userIDs: make(map[string]string),
	}
}

func (rs *refreshStore) upsert(rt *StoredRefreshToken) {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	if old, ok := rs.userIDs[rt.UserID]; ok {
		delete(rs.tokens, old)
	}
	rs.tokens[rt.Token] = rt
	rs.userIDs[rt.UserID] = rt.Token
}

func (rs *refreshStore) get(token string) (*StoredRefreshToken, bool) {
	rs.lock.RLock()
	defer rs.lock.RUnlock()
	rt, ok := rs.tokens[token]
	return rt, ok
}

func (rs *refreshStore) delete(token string) {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	rt, ok := rs.tokens[token]
	if !ok {
		return
	}
	delete(rs.userIDs, rt.UserID)
	delete(rs.tokens, token)
}

func (rs *refreshStore) clear() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.tokens = make(map[string]*StoredRefreshToken)
	rs.userIDs = make(map[string]string)
}
