package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/memoria-app/apiserver/internal/services"
	"github.com/memoria-app/apiserver/types"
)

// PostHandler provides HTTP handlers for posts and categories.
type PostHandler struct {
	postService     *services.PostService
	categoryService *services.CategoryService
}

// NewPostHandler constructs a handler with the provided services.
func NewPostHandler(postService *services.PostService, categoryService *services.CategoryService) *PostHandler {
	return &PostHandler{
		postService:     postService,
		categoryService: categoryService,
	}
}

// PostRouter registers all /posts routes on the given router.
func PostRouter(r chi.Router, postService *services.PostService, categoryService *services.CategoryService, auth *AuthHandler) {
	handler := NewPostHandler(postService, categoryService)

	r.Get("/", handler.List)
	r.Get("/popularPosts", handler.Popular)
	r.Get("/categories", handler.Categories)
	r.With(auth.RequireAuth).Post("/create", handler.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Get("/search", handler.Search)
		r.Get("/category", handler.ByCategory)
		r.Get("/userPosts", handler.UserPosts)
		r.Post("/commentPost", handler.Comment)
		r.With(auth.RequireAuth).Patch("/likePost", handler.Like)
		r.With(auth.OptionalAuth).Patch("/editPost", handler.Edit)
		r.With(auth.OptionalAuth).Delete("/deletePost", handler.Delete)
	})
}

// List returns all posts, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

// Popular returns the most-liked posts.
func (h *PostHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	posts, err := h.postService.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list popular posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Categories returns the category reference data.
func (h *PostHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: categories})
}

// Get returns a single post by id.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Create publishes a new post authored by the acting user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title and message are required")
		return
	}

	identity := identityFromContext(r.Context())
	post, err := h.postService.Create(r.Context(), identity, types.Post{
		Title:    req.Title,
		Message:  req.Message,
		Image:    strings.TrimSpace(req.Image),
		Category: strings.TrimSpace(req.Category),
		Date:     req.Date,
	})
	if err != nil {
		writeDomainError(w, err, "failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Comment appends a free-form comment record to a post.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var comment types.Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	post, err := h.postService.Comment(r.Context(), chi.URLParam(r, "id"), comment)
	if err != nil {
		writeDomainError(w, err, "failed to add comment")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Like toggles the acting user's like on a post.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	post, err := h.postService.Like(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to toggle like")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Edit updates a post's editable fields.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req types.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title and message are required")
		return
	}

	identity := identityFromContext(r.Context())
	post, err := h.postService.Edit(r.Context(), identity, chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	if err := h.postService.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, "failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "post deleted successfully"})
}

// Search matches posts whose title contains the path term.
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.SearchByTitle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// ByCategory matches posts whose category contains the path term.
func (h *PostHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.SearchByCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// UserPosts matches posts whose author name contains the path term.
func (h *PostHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.SearchByUsername(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type CreatePostRequest struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

// PostListResponse is the list response payload.
type PostListResponse struct {
	Posts []types.Post `json:"posts"`
}

// CategoryListResponse is the category list response payload.
type CategoryListResponse struct {
	Categories []types.Category `json:"categories"`
}
