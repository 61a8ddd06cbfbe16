// Package middleware holds the HTTP middleware chain: request
// authentication and telemetry emission.
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"namhatta-management/backend/internal/authz"
	"namhatta-management/backend/internal/security"
	userdomain "namhatta-management/backend/internal/user/domain"
)

// CookieName is the cookie carrying the access token.
const CookieName = "auth_token"

// SessionValidator checks that the session embedded in a token is still the
// account's single active session, touching its activity timestamp.
type SessionValidator interface {
	Validate(ctx context.Context, username, token string) (bool, error)
}

// TokenVerifier parses and verifies an access token.
type TokenVerifier interface {
	Verify(tokenString string) (*security.Claims, error)
}

// ScopeResolver derives the authorization context for an authenticated user.
type ScopeResolver interface {
	Resolve(ctx context.Context, userID int64, username string, role userdomain.Role) (*authz.Context, error)
}

// ExtractToken pulls the access token from the request: the auth_token cookie
// first, then the Authorization bearer header. Empty string when absent.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// Authenticator authenticates requests and attaches the authorization
// context. Every failure mode short of a storage error yields the same 401
// body so callers cannot distinguish a bad signature from a revoked session.
type Authenticator struct {
	tokens   TokenVerifier
	sessions SessionValidator
	scopes   ScopeResolver
}

// NewAuthenticator returns request-authentication middleware.
func NewAuthenticator(tokens TokenVerifier, sessions SessionValidator, scopes ScopeResolver) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, scopes: scopes}
}

// Wrap returns next guarded by authentication.
func (a *Authenticator) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			writeUnauthorized(w)
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ok, err := a.sessions.Validate(r.Context(), claims.Subject, claims.SessionToken)
		if err != nil {
			log.Printf("middleware: session validation failed: %v", err)
			writeServerError(w)
			return
		}
		if !ok {
			writeUnauthorized(w)
			return
		}

		role, err := userdomain.ParseRole(claims.Role)
		if err != nil {
			writeUnauthorized(w)
			return
		}
		ac, err := a.scopes.Resolve(r.Context(), claims.UserID, claims.Subject, role)
		if err != nil {
			log.Printf("middleware: scope resolution failed: %v", err)
			writeServerError(w)
			return
		}

		setAuthenticatedUser(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(authz.WithContext(r.Context(), ac)))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error":   "Unauthorized",
		"message": "Invalid or expired token",
	})
}

func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal Server Error",
		"message": "Something went wrong",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("middleware: write response: %v", err)
	}
}
