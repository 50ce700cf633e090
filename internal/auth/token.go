// Package auth issues and verifies the HMAC-signed access tokens used by the
// frontend session layer.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	// Issuer is the token issuer claim
	Issuer = "wellness-api"
	// DefaultTokenTTL is the default access token lifetime
	DefaultTokenTTL = 24 * time.Hour
)

// ErrInvalidToken is returned for tokens that fail verification
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier verifies and issues HS256 access tokens
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier from a shared secret
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Issue creates a signed token with the user email as subject
func (v *Verifier) Issue(email string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer(Issuer).
		Subject(email).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, v.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify validates a token and returns the email it was issued for
func (v *Verifier) Verify(tokenString string) (string, error) {
	tok, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return "", ErrInvalidToken
	}

	email := tok.Subject()
	if email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}
