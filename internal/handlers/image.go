package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/memoria-app/apiserver/internal/storage"
)

const (
	maxImageBytes  = 30 << 20
	formFieldImage = "image"
)

// ImageHandler stores uploaded pictures and serves them back, so profile and
// post image fields can point at URLs this server owns.
type ImageHandler struct {
	storage *storage.Storage
	baseURL string
}

// NewImageHandler constructs a handler with the provided storage backend.
func NewImageHandler(store *storage.Storage, baseURL string) *ImageHandler {
	return &ImageHandler{
		storage: store,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ImageRouter registers image routes on the given router.
func ImageRouter(r chi.Router, store *storage.Storage, baseURL string, auth *AuthHandler) {
	handler := NewImageHandler(store, baseURL)

	r.With(auth.RequireAuth).Post("/", handler.Upload)
	r.Get("/{key}", handler.Serve)
}

// Upload stores a multipart image and returns its public URL.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "uploaded file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	if err := h.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, UploadImageResponse{
		Key: key,
		URL: fmt.Sprintf("%s/%s", h.baseURL, key),
	})
}

// Serve streams a stored image back to the client.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, object); err != nil {
		// Headers are already out; nothing left to do but drop the conn.
		return
	}
}

type UploadImageResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
