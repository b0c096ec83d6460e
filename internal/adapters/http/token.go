package http

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of a signed service token.
const DefaultTokenTTL = 30 * time.Second

// tokenSigner mints HS256 service tokens identifying the bridge to the
// backend. Each token names the operation as its subject and carries a
// unique ID.
type tokenSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func newTokenSigner(secret []byte, issuer string, ttl time.Duration) *tokenSigner {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if issuer == "" {
		issuer = "extauth"
	}
	return &tokenSigner{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign returns a compact JWT for operation.
func (s *tokenSigner) Sign(operation string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   operation,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
