// Package auth orchestrates login and logout over the credential store,
// session registry, and token codec.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"namhatta-management/backend/internal/audit"
	"namhatta-management/backend/internal/authz"
	"namhatta-management/backend/internal/security"
	sessiondomain "namhatta-management/backend/internal/session/domain"
	"namhatta-management/backend/internal/telemetry"
	telemetrydomain "namhatta-management/backend/internal/telemetry/domain"
	userdomain "namhatta-management/backend/internal/user/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
// Unknown username, inactive account, and wrong password all collapse into
// ErrInvalidCredentials so responses cannot be used for user enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
}

// SessionRegistry is the part of the session registry the auth service needs.
type SessionRegistry interface {
	Create(ctx context.Context, userID int64) (*sessiondomain.Session, int64, error)
	InvalidateOne(ctx context.Context, username, token string) error
}

// UserInfo is the public projection of an account returned from login and
// verify. It never carries the password hash.
type UserInfo struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Role      userdomain.Role `json:"role"`
	Districts []string        `json:"districts"`
}

// LoginResult holds the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserInfo
}

// Service implements login and logout.
type Service struct {
	users    UserRepo
	sessions SessionRegistry
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	scopes   *authz.ScopeResolver
	audit    audit.AuditLogger
	emitter  telemetry.EventEmitter
}

// NewService returns an auth Service with the given dependencies.
// auditLogger and emitter may be nil; then no audit rows or telemetry
// events are written.
func NewService(
	users UserRepo,
	sessions SessionRegistry,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	scopes *authz.ScopeResolver,
	auditLogger audit.AuditLogger,
	emitter telemetry.EventEmitter,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		scopes:   scopes,
		audit:    auditLogger,
		emitter:  emitter,
	}
}

// Login authenticates username/password, supersedes any prior session for the
// account, and mints an access token bound to the new session.
//
// Bad credentials are terminal (ErrInvalidCredentials, never retried); any
// other error indicates infrastructure trouble and is surfaced distinctly so
// handlers return a 5xx rather than blaming the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil || !user.Active {
		s.logEvent(ctx, 0, username, audit.ActionLoginFailure, "")
		s.emitEvent(ctx, telemetrydomain.EventLoginFailure, username)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.logEvent(ctx, user.ID, username, audit.ActionLoginFailure, "")
		s.emitEvent(ctx, telemetrydomain.EventLoginFailure, username)
		return nil, ErrInvalidCredentials
	}

	session, superseded, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if superseded > 0 {
		s.logEvent(ctx, user.ID, username, audit.ActionSessionsSuperseded,
			`{"count":`+strconv.FormatInt(superseded, 10)+`}`)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, string(user.Role), session.Token)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	ac, err := s.scopes.Resolve(ctx, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, user.ID, username, audit.ActionLoginSuccess, "")
	s.emitEvent(ctx, telemetrydomain.EventLoginSuccess, username)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			Role:      user.Role,
			Districts: districtsOrEmpty(ac),
		},
	}, nil
}

// Logout invalidates the session identified by username and sessionToken.
// Idempotent from the caller's perspective: a missing or already-inactive
// session is not an error. Storage errors are returned so the handler can log
// them, but the handler clears the client cookie regardless.
func (s *Service) Logout(ctx context.Context, username, sessionToken string) error {
	if username == "" || sessionToken == "" {
		return nil
	}
	err := s.sessions.InvalidateOne(ctx, username, sessionToken)
	if err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	s.logEvent(ctx, 0, username, audit.ActionLogout, "")
	s.emitEvent(ctx, telemetrydomain.EventLogout, username)
	return nil
}

func (s *Service) logEvent(ctx context.Context, userID int64, username, action, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, userID, username, action, "auth", metadata)
}

func (s *Service) emitEvent(ctx context.Context, eventType, username string) {
	telemetry.EmitAsync(s.emitter, ctx, &telemetrydomain.Event{
		ID:        uuid.NewString(),
		EventType: eventType,
		Source:    telemetrydomain.SourceBackend,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	})
}

func districtsOrEmpty(ac *authz.Context) []string {
	if ac == nil || ac.Districts == nil {
		return []string{}
	}
	return ac.Districts
}
