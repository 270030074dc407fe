// Package jwt implementa auth.AuthVerifier con tokens HS256 firmados con un secreto compartido.
// Es opcional: sin JWT_SECRET el router acepta la identidad declarada por headers de dev.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-record-sharing/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenEmpty     = errors.New("token is empty")
	ErrNotConfigured  = errors.New("jwt secret not configured")
	ErrMissingSubject = errors.New("token claims missing subject")
)

type tokenClaims struct {
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	gojwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	parsed, err := gojwt.ParseWithClaims(token, &tc, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("jwt verify failed: %w", err)
	}
	if !parsed.Valid {
		return auth.Claims{}, errors.New("jwt verify failed: invalid token")
	}

	sub := strings.TrimSpace(tc.Subject)
	if sub == "" {
		return auth.Claims{}, ErrMissingSubject
	}

	return auth.Claims{
		UserID: sub,
		Role:   strings.ToLower(strings.TrimSpace(tc.Role)),
		Email:  strings.TrimSpace(tc.Email),
	}, nil
}

// Sign emite un token para la identidad dada. Lo usa el login cuando hay secreto configurado.
func (v *Verifier) Sign(c auth.Claims, ttl time.Duration) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", ErrNotConfigured
	}
	now := time.Now()
	tc := tokenClaims{
		Role:  c.Role,
		Email: c.Email,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:  c.UserID,
			IssuedAt: gojwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		tc.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, tc).SignedString(v.secret)
}
