package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arjun/wishhub/internal/auth"
	"github.com/arjun/wishhub/internal/models"
	"github.com/arjun/wishhub/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// WishlistStore defines the interface for wishlist persistence. Every
// mutation is a single atomic array-operator update.
type WishlistStore interface {
	InsertWishlist(ctx context.Context, w *models.Wishlist) error
	ListWishlistsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Wishlist, error)
	GetWishlistByID(ctx context.Context, id primitive.ObjectID) (*models.Wishlist, error)
	AddCollaborator(ctx context.Context, wishlistID primitive.ObjectID, c models.Collaborator) error
	AddProduct(ctx context.Context, wishlistID primitive.ObjectID, p models.Product) error
	RemoveProduct(ctx context.Context, wishlistID, productID primitive.ObjectID) error
}

// UserStore is the slice of user persistence the invite flow needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds the wishlist HTTP handlers.
type Handler struct {
	wishlists WishlistStore
	users     UserStore
}

func NewHandler(wishlists WishlistStore, users UserStore) *Handler {
	return &Handler{wishlists: wishlists, users: users}
}

// Create persists a new wishlist with the caller as creator snapshot.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var req models.CreateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "Wishlist name is required")
		return
	}

	now := time.Now()
	list := &models.Wishlist{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy: models.Member{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Collaborators: []models.Collaborator{},
		Products:      []models.Product{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.wishlists.InsertWishlist(r.Context(), list); err != nil {
		slog.Error("create wishlist failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// List returns every wishlist visible to the caller, newest first, each
// annotated with the derived product count.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	lists, err := h.wishlists.ListWishlistsForUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list wishlists failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]models.WishlistSummary, 0, len(lists))
	for _, l := range lists {
		out = append(out, models.WishlistSummary{
			Wishlist:  l,
			ItemCount: len(l.Products),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// load resolves the {id} parameter, fetches the wishlist, and reports the
// 400/404 cases. A nil return means the response has been written.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) *models.Wishlist {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid wishlist ID")
		return nil
	}
	list, err := h.wishlists.GetWishlistByID(r.Context(), oid)
	if err != nil {
		slog.Error("get wishlist failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return nil
	}
	if list == nil {
		writeMessage(w, http.StatusNotFound, "Wishlist not found")
		return nil
	}
	return list
}

// Get returns a single wishlist after an access check.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	list := h.load(w, r)
	if list == nil {
		return
	}
	if !list.HasAccess(user.ID) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Invite adds a collaborator. Only the creator may invite. An email with
// no matching account gets a synthetic collaborator named after the local
// part, standing in for an email invitation.
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var req models.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	list := h.load(w, r)
	if list == nil {
		return
	}
	if list.CreatedBy.ID != user.ID {
		writeMessage(w, http.StatusForbidden, "Only the creator can invite collaborators")
		return
	}
	if list.HasCollaboratorEmail(email) {
		writeMessage(w, http.StatusBadRequest, "User is already a collaborator")
		return
	}
	if list.CreatedBy.Email == email {
		writeMessage(w, http.StatusBadRequest, "Cannot invite the creator")
		return
	}

	invited, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("invite: lookup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var collab models.Collaborator
	var msg string
	if invited == nil {
		// No account with this email yet: record a placeholder named
		// after the address's local part. Stands in for sending a real
		// invitation email.
		collab = models.Collaborator{
			ID:       primitive.NewObjectID(),
			Name:     strings.SplitN(email, "@", 2)[0],
			Email:    email,
			JoinedAt: time.Now(),
		}
		msg = "Invitation sent successfully (mock user created)"
	} else {
		collab = models.Collaborator{
			ID:       invited.ID,
			Name:     invited.Name,
			Email:    invited.Email,
			JoinedAt: time.Now(),
		}
		msg = "User added as collaborator successfully"
	}

	if err := h.wishlists.AddCollaborator(r.Context(), list.ID, collab); err != nil {
		slog.Error("invite: add collaborator failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

// AddProduct appends a product to the wishlist. Creator and collaborators
// may add.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var req models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "Product name is required")
		return
	}
	if req.Price <= 0 {
		writeMessage(w, http.StatusBadRequest, "Valid price is required")
		return
	}

	list := h.load(w, r)
	if list == nil {
		return
	}
	if !list.HasAccess(user.ID) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	now := time.Now()
	product := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Price:       req.Price,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Description: strings.TrimSpace(req.Description),
		AddedBy: models.Member{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Comments:  []models.Comment{},
		Reactions: []models.Reaction{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.wishlists.AddProduct(r.Context(), list.ID, product); err != nil {
		slog.Error("add product failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// DeleteProduct removes a product by id. Creator and collaborators may
// delete.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productId"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	list := h.load(w, r)
	if list == nil {
		return
	}
	if !list.HasAccess(user.ID) {
		writeMessage(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.wishlists.RemoveProduct(r.Context(), list.ID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("delete product failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}
