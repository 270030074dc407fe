package jwt

import (
	"context"
	"testing"
	"time"

	"health-record-sharing/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_SignAndVerify(t *testing.T) {
	v := NewVerifier("s3cret")

	token, err := v.Sign(auth.Claims{UserID: "doc-1", Role: "doctor", Email: "house@clinic.test"}, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, "house@clinic.test", claims.Email)
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("one").Sign(auth.Claims{UserID: "u"}, time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("two").Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := NewVerifier("s3cret")
	tc := tokenClaims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, tc).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifier_RequiresSubject(t *testing.T) {
	v := NewVerifier("s3cret")
	token, err := v.Sign(auth.Claims{Role: "patient"}, 0)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestVerifier_EmptyInputs(t *testing.T) {
	_, err := NewVerifier("").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier("s").Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}
