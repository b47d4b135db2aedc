package uploads

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arjun/wishhub/internal/auth"
	"github.com/arjun/wishhub/internal/store"
)

// maxImageSize caps uploaded product images at 5 MiB.
const maxImageSize = 5 << 20

// FileStore defines the interface for image storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler serves product image upload and retrieval. The returned key is
// what clients put into a product's imageUrl field.
type Handler struct {
	files FileStore
}

func NewHandler(files FileStore) *Handler {
	return &Handler{files: files}
}

// Upload accepts a multipart image and stores it under a fresh key.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, `{"message":"Image too large or malformed upload"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, `{"message":"Image file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := store.ImageExt(contentType)
	if !ok {
		http.Error(w, `{"message":"Unsupported image type"}`, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		slog.Error("upload: read failed", "error", err)
		http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	if len(data) > maxImageSize {
		http.Error(w, `{"message":"Image too large or malformed upload"}`, http.StatusBadRequest)
		return
	}

	key := store.ImageKey(user.ID.Hex(), uuid.New().String(), ext)
	if err := h.files.Upload(r.Context(), key, data, contentType); err != nil {
		slog.Error("upload: store failed", "error", err)
		http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"imageUrl": "/api/uploads/" + key,
	})
}

// Serve streams a stored image back. Reads require authentication like
// every other wishlist resource; key URLs are not shareable outside the
// app.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if auth.UserFrom(r.Context()) == nil {
		http.Error(w, `{"message":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	key := chi.URLParam(r, "*")
	// Object keys are user-id/uuid.ext; anything with traversal in it is
	// not ours.
	if key == "" || path.Clean(key) != key || strings.Contains(key, "..") {
		http.Error(w, `{"message":"Image not found"}`, http.StatusNotFound)
		return
	}

	data, contentType, err := h.files.Download(r.Context(), key)
	if err != nil {
		http.Error(w, `{"message":"Image not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
