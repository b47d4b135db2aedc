package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/arjun/wishhub/internal/models"
)

// bcryptCost matches the work factor the stored hashes were created with.
const bcryptCost = 12

const minPasswordLen = 6

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// LoginLimiter throttles credential-guessing. A nil limiter disables
// throttling.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Handler holds the auth HTTP handlers.
type Handler struct {
	users   UserStore
	tokens  *TokenManager
	limiter LoginLimiter
}

func NewHandler(users UserStore, tokens *TokenManager, limiter LoginLimiter) *Handler {
	return &Handler{users: users, tokens: tokens, limiter: limiter}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Signup creates a new account and issues a credential cookie.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	existing, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("signup: lookup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusBadRequest, "User already exists with this email")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		slog.Error("signup: hash failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		slog.Error("signup: create failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.Sign(user.ID.Hex(), user.Email)
	if err != nil {
		slog.Error("signup: sign failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.tokens.SetCookie(w, token)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user.Identity(),
	})
}

// Login verifies credentials and issues a credential cookie. Unknown email
// and wrong password produce the same response so the route cannot be used
// to probe for accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if h.limiter != nil {
		ok, err := h.limiter.Allow(r.Context(), "login:"+req.Email)
		if err != nil {
			slog.Error("login: rate limiter failed", "error", err)
		} else if !ok {
			writeMessage(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("login: lookup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Sign(user.ID.Hex(), user.Email)
	if err != nil {
		slog.Error("login: sign failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.tokens.SetCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    user.Identity(),
	})
}

// Logout clears the credential cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.ClearCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me echoes the identity resolved by the authentication gate.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user.Identity())
}
