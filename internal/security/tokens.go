package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are split so operators can tell a garbled token from a
// forged or stale one. Callers treat all three as unauthenticated.
var (
	// ErrTokenMalformed is returned when a token cannot be parsed at all.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignature is returned when the signature does not verify.
	ErrTokenSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when the token is past its expiry claim.
	ErrTokenExpired = errors.New("expired token")
)

// Claims holds the JWT claims for an access token. The embedded session token
// points at the server-side session row; invalidating that row revokes the
// token before its stated expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID       int64  `json:"userId"`
	Role         string `json:"role"`
	SessionToken string `json:"sessionToken"`
}

// TokenProvider issues and verifies HS256-signed access tokens. The secret is
// process-wide configuration loaded once at startup.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given HMAC secret.
// ttl is the lifetime stamped on issued tokens.
func NewTokenProvider(secret []byte, ttl time.Duration) *TokenProvider {
	return &TokenProvider{secret: secret, ttl: ttl}
}

// TTL returns the lifetime stamped on issued tokens.
func (p *TokenProvider) TTL() time.Duration { return p.ttl }

// Issue signs an access token for the given account carrying the session token.
// Returns the compact token string and its expiry time.
func (p *TokenProvider) Issue(userID int64, username, role, sessionToken string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:       userID,
		Role:         role,
		SessionToken: sessionToken,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates the access token. On failure it returns
// ErrTokenMalformed, ErrTokenSignature, or ErrTokenExpired; the caller rejects
// all three identically but may log them apart.
func (p *TokenProvider) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return p.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.SessionToken == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
