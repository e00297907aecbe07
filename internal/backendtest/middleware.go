package backendtest

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the parsed access token claims
const ContextKeyClaims ContextKey = "claims"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (b *Backend) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		b.RecoverMiddleware,
		b.CountingMiddleware,
		b.LoggingMiddleware,
	}
	return append(chained, mw...)
}

func (b *Backend) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("backend request")
		next(w, r)
	}
}

func (b *Backend) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				b.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeEnvelope(w, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		next(w, r)
	}
}

// CountingMiddleware records one hit per request under "METHOD path".
func (b *Backend) CountingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.countHit(r.Method + " " + r.URL.Path)
		next(w, r)
	}
}

// RequireAccessToken rejects requests without a current access cookie.
func (b *Backend) RequireAccessToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AccessCookie)
		if err != nil || cookie.Value == "" {
			writeEnvelope(w, http.StatusUnauthorized, "Unauthorized request", nil)
			return
		}
		claims, err := b.tokens.ParseAccessToken(cookie.Value)
		if err != nil || claims.Generation < b.accessGeneration.Load() {
			writeEnvelope(w, http.StatusUnauthorized, "Access token expired", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin must run after RequireAccessToken.
func (b *Backend) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil || claims.Role != users.RoleAdmin {
			writeEnvelope(w, http.StatusForbidden, "Admin access required", nil)
			return
		}
		next(w, r)
	}
}

func claimsFrom(r *http.Request) *AccessClaims {
	claims, _ := r.Context().Value(ContextKeyClaims).(*AccessClaims)
	return claims
}
