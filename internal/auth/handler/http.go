// Package handler exposes the authentication endpoints over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"namhatta-management/backend/internal/auth"
	"namhatta-management/backend/internal/authz"
	"namhatta-management/backend/internal/security"
	"namhatta-management/backend/internal/server/middleware"
)

// AuthService is the part of the auth service the handler needs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, username, sessionToken string) error
}

// TokenVerifier parses an access token so logout can identify the session.
type TokenVerifier interface {
	Verify(tokenString string) (*security.Claims, error)
}

// Handler serves login, logout, and verify.
type Handler struct {
	svc          AuthService
	tokens       TokenVerifier
	cookieSecure bool
	cookieMaxAge int
}

// New returns an auth handler. cookieSecure controls the Secure cookie flag;
// tokenTTL sets the cookie Max-Age to match the token lifetime.
func New(svc AuthService, tokens TokenVerifier, cookieSecure bool, tokenTTL time.Duration) *Handler {
	return &Handler{
		svc:          svc,
		tokens:       tokens,
		cookieSecure: cookieSecure,
		cookieMaxAge: int(tokenTTL / time.Second),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  auth.UserInfo `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "Unauthorized",
				"message": "Invalid credentials",
			})
			return
		}
		log.Printf("auth: login failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal Server Error",
			"message": "Something went wrong",
		})
		return
	}

	http.SetCookie(w, h.authCookie(res.Token, h.cookieMaxAge))
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, User: res.User})
}

// Logout handles POST /api/auth/logout. Fail-open for the client: the cookie
// is cleared and 200 returned even when the token is unreadable or the
// server-side invalidation fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.ExtractToken(r); token != "" {
		if claims, err := h.tokens.Verify(token); err == nil {
			if err := h.svc.Logout(r.Context(), claims.Subject, claims.SessionToken); err != nil {
				log.Printf("auth: logout: %v", err)
			}
		}
	}

	http.SetCookie(w, h.authCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Verify handles GET /api/auth/verify. Runs behind the auth middleware, so a
// missing authorization context means the middleware was bypassed.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	ac, ok := authz.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "Invalid or expired token",
		})
		return
	}
	districts := ac.Districts
	if districts == nil {
		districts = []string{}
	}
	writeJSON(w, http.StatusOK, auth.UserInfo{
		ID:        ac.UserID,
		Username:  ac.Username,
		Role:      ac.Role,
		Districts: districts,
	})
}

func (h *Handler) authCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("auth: write response: %v", err)
	}
}
