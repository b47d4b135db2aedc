package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenCookie is the cookie that carries the signed credential.
	TokenCookie = "token"
	// TokenTTL is how long an issued credential remains valid.
	TokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the signed contents of a credential: who the bearer is,
// plus the standard expiry fields.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies credentials with a shared HMAC secret.
type TokenManager struct {
	secret     []byte
	production bool
}

// NewTokenManager creates a token manager. The secret must be externally
// supplied; there is no usable default. production controls the Secure
// flag on issued cookies.
func NewTokenManager(secret string, production bool) *TokenManager {
	return &TokenManager{secret: []byte(secret), production: production}
}

// Sign issues a credential for the given user id and email.
func (m *TokenManager) Sign(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a credential and returns its claims if the signature and
// expiry check out.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SetCookie attaches the credential to the response.
func (m *TokenManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TokenTTL / time.Second),
	})
}

// ClearCookie expires the credential cookie.
func (m *TokenManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
