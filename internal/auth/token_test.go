package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", false)

	signed, err := m.Sign("64f0c0ffee0000000000abcd", "alice@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee0000000000abcd", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokenManager("secret-a", false).Sign("u1", "a@b.c")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", false).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", false)
	claims := &Claims{
		UserID: "u1",
		Email:  "a@b.c",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", false)
	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsUnexpectedSigningMethod(t *testing.T) {
	m := NewTokenManager("test-secret", false)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSetCookieFlags(t *testing.T) {
	for _, production := range []bool{false, true} {
		m := NewTokenManager("test-secret", production)
		rec := httptest.NewRecorder()
		m.SetCookie(rec, "tok")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, TokenCookie, c.Name)
		assert.Equal(t, "tok", c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, int(TokenTTL/time.Second), c.MaxAge)
		assert.Equal(t, production, c.Secure)
	}
}

func TestClearCookie(t *testing.T) {
	m := NewTokenManager("test-secret", false)
	rec := httptest.NewRecorder()
	m.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
