package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arjun/wishhub/internal/models"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	failAll bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*models.User{}}
}

func (s *fakeUserStore) CreateUser(_ context.Context, u *models.User) error {
	if s.failAll {
		return errors.New("store down")
	}
	u.ID = primitive.NewObjectID()
	s.byEmail[u.Email] = u
	return nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if s.failAll {
		return nil, errors.New("store down")
	}
	return s.byEmail[email], nil
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if s.failAll {
		return nil, errors.New("store down")
	}
	for _, u := range s.byEmail {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, nil
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, nil
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["message"]
}

func TestSignupValidation(t *testing.T) {
	h := NewHandler(newFakeUserStore(), NewTokenManager("s", false), nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"a@b.c","password":"secret1"}`, "All fields are required"},
		{"missing email", `{"name":"A","password":"secret1"}`, "All fields are required"},
		{"missing password", `{"name":"A","email":"a@b.c"}`, "All fields are required"},
		{"short password", `{"name":"A","email":"a@b.c","password":"12345"}`, "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Signup, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, message(t, rec))
		})
	}
}

func TestSignupCreatesUserAndCookie(t *testing.T) {
	users := newFakeUserStore()
	h := NewHandler(users, NewTokenManager("s", false), nil)

	rec := postJSON(t, h.Signup, `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Message string          `json:"message"`
		User    models.Identity `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Alice", body.User.Name)
	assert.Equal(t, "alice@example.com", body.User.Email)
	assert.NotEmpty(t, body.User.ID)

	// password stored hashed, never plain
	stored := users.byEmail["alice@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, TokenCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	h := NewHandler(users, NewTokenManager("s", false), nil)

	rec := postJSON(t, h.Signup, `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// regardless of password
	rec = postJSON(t, h.Signup, `{"name":"Mallory","email":"alice@example.com","password":"other-password"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists with this email", message(t, rec))
}

func TestLoginAfterSignup(t *testing.T) {
	users := newFakeUserStore()
	h := NewHandler(users, NewTokenManager("s", false), nil)

	rec := postJSON(t, h.Signup, `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, `{"email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User models.Identity `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, users.byEmail["alice@example.com"].ID.Hex(), body.User.ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestLoginNoAccountExistenceOracle(t *testing.T) {
	users := newFakeUserStore()
	h := NewHandler(users, NewTokenManager("s", false), nil)

	rec := postJSON(t, h.Signup, `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPw := postJSON(t, h.Login, `{"email":"alice@example.com","password":"wrong"}`)
	noUser := postJSON(t, h.Login, `{"email":"nobody@example.com","password":"whatever"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, noUser.Code)
	wrongPwMsg := message(t, wrongPw)
	noUserMsg := message(t, noUser)
	assert.Equal(t, wrongPwMsg, noUserMsg)
	assert.Equal(t, "Invalid credentials", noUserMsg)
}

func TestLoginRateLimited(t *testing.T) {
	users := newFakeUserStore()
	limiter := &fakeLimiter{allow: false}
	h := NewHandler(users, NewTokenManager("s", false), limiter)

	rec := postJSON(t, h.Login, `{"email":"alice@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, []string{"login:alice@example.com"}, limiter.keys)
}

func TestLoginStoreFailure(t *testing.T) {
	users := newFakeUserStore()
	users.failAll = true
	h := NewHandler(users, NewTokenManager("s", false), nil)

	rec := postJSON(t, h.Login, `{"email":"a@b.c","password":"secret1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", message(t, rec))
}

func TestLogoutClearsCookie(t *testing.T) {
	h := NewHandler(newFakeUserStore(), NewTokenManager("s", false), nil)

	rec := postJSON(t, h.Logout, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestMe(t *testing.T) {
	h := NewHandler(newFakeUserStore(), NewTokenManager("s", false), nil)
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      "Alice",
		Email:     "alice@example.com",
		CreatedAt: time.Now(),
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, user.Identity(), got)
}

func TestMeWithoutGate(t *testing.T) {
	h := NewHandler(newFakeUserStore(), NewTokenManager("s", false), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", message(t, rec))
}
