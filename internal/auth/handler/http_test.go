package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"namhatta-management/backend/internal/auth"
	"namhatta-management/backend/internal/authz"
	"namhatta-management/backend/internal/security"
	userdomain "namhatta-management/backend/internal/user/domain"
)

var testSecret = []byte("handler-test-secret")

type fakeAuthService struct {
	loginResult *auth.LoginResult
	loginErr    error
	logoutErr   error
	logoutCalls []string
}

func (f *fakeAuthService) Login(context.Context, string, string) (*auth.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthService) Logout(_ context.Context, username, sessionToken string) error {
	f.logoutCalls = append(f.logoutCalls, username+"/"+sessionToken)
	return f.logoutErr
}

func newHandler(svc *fakeAuthService) *Handler {
	tokens := security.NewTokenProvider(testSecret, 24*time.Hour)
	return New(svc, tokens, false, 24*time.Hour)
}

func findAuthCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	t.Fatal("auth_token cookie not set")
	return nil
}

func TestLoginSetsCookie(t *testing.T) {
	svc := &fakeAuthService{loginResult: &auth.LoginResult{
		Token:     "jwt-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		User: auth.UserInfo{
			ID: 1, Username: "admin", Role: userdomain.RoleAdmin, Districts: []string{},
		},
	}}
	h := newHandler(svc)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"secret123"}`))
	h.Login(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cookie := findAuthCookie(t, rec)
	if cookie.Value != "jwt-token" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if !cookie.HttpOnly || cookie.Path != "/" || cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie attributes: %+v", cookie)
	}
	if cookie.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400", cookie.MaxAge)
	}

	var body loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Token != "jwt-token" || body.User.Username != "admin" {
		t.Errorf("response = %+v", body)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHandler(&fakeAuthService{loginErr: auth.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"wrong"}`))
	h.Login(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "Unauthorized" || body["message"] != "Invalid credentials" {
		t.Errorf("body = %v", body)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			t.Error("no cookie should be set on failed login")
		}
	}
}

func TestLoginStorageFailureIs500(t *testing.T) {
	h := newHandler(&fakeAuthService{loginErr: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"secret123"}`))
	h.Login(rec, r)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (storage failure must not report bad credentials)", rec.Code)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	h := newHandler(&fakeAuthService{})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	h.Login(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLogoutInvalidatesSessionAndClearsCookie(t *testing.T) {
	svc := &fakeAuthService{}
	h := newHandler(svc)

	token, _, err := security.NewTokenProvider(testSecret, time.Hour).Issue(1, "admin", "ADMIN", "sess-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	h.Logout(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(svc.logoutCalls) != 1 || svc.logoutCalls[0] != "admin/sess-1" {
		t.Errorf("logout calls = %v", svc.logoutCalls)
	}
	if cookie := findAuthCookie(t, rec); cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Errorf("cookie not cleared: %+v", cookie)
	}
}

func TestLogoutFailOpen(t *testing.T) {
	cases := []struct {
		name  string
		setup func(r *http.Request, svc *fakeAuthService)
	}{
		{"no token", func(*http.Request, *fakeAuthService) {}},
		{"garbage token", func(r *http.Request, _ *fakeAuthService) {
			r.AddCookie(&http.Cookie{Name: "auth_token", Value: "garbage"})
		}},
		{"storage failure", func(r *http.Request, svc *fakeAuthService) {
			token, _, err := security.NewTokenProvider(testSecret, time.Hour).Issue(1, "admin", "ADMIN", "sess-1")
			if err != nil {
				t.Fatalf("issue token: %v", err)
			}
			r.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
			svc.logoutErr = errors.New("connection reset")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthService{}
			h := newHandler(svc)
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			tc.setup(r, svc)

			h.Logout(rec, r)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 regardless of server-side outcome", rec.Code)
			}
			if cookie := findAuthCookie(t, rec); cookie.MaxAge >= 0 {
				t.Errorf("cookie must be cleared, got MaxAge=%d", cookie.MaxAge)
			}
		})
	}
}

func TestVerifyReturnsAuthorizationContext(t *testing.T) {
	h := newHandler(&fakeAuthService{})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	ac := &authz.Context{
		UserID: 7, Username: "alice", Role: userdomain.RoleDistrictSupervisor,
		Districts: []string{"Hooghly"},
	}
	h.Verify(rec, r.WithContext(authz.WithContext(r.Context(), ac)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body auth.UserInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ID != 7 || body.Username != "alice" || len(body.Districts) != 1 || body.Districts[0] != "Hooghly" {
		t.Errorf("body = %+v", body)
	}
}

func TestVerifyWithoutContextIs401(t *testing.T) {
	h := newHandler(&fakeAuthService{})

	rec := httptest.NewRecorder()
	h.Verify(rec, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
