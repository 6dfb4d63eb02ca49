// Package auth resolves bearer credentials into a user identity. It is
// the only place tokens are minted or validated; handlers call
// Authenticate once per request at the boundary.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthenticated is returned when a credential is missing, invalid
// or expired.
var ErrUnauthenticated = errors.New("unauthenticated")

// Service mints and validates bearer tokens for user identities.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates an auth service. The secret and token lifetime come from
// configuration, never from package-level state.
func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Token mints a signed bearer token for the given user id.
func (s *Service) Token(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(s.now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves an Authorization header value into a user id.
// The credential must be of the form "Bearer <token>". All failures are
// reported as ErrUnauthenticated.
func (s *Service) Authenticate(credential string) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("missing bearer token: %w", ErrUnauthenticated)
	}
	parts := strings.SplitN(credential, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("missing bearer token: %w", ErrUnauthenticated)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}

	return claims.Subject, nil
}
