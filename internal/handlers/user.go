package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/memoria-app/apiserver/internal/services"
)

// UserHandler provides HTTP handlers for profiles and follow relations.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers all /user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, auth *AuthHandler) {
	handler := NewUserHandler(userService)

	r.Post("/signup", auth.Signup)
	r.Post("/signin", auth.Signin)
	r.Post("/signinWithGoogle", auth.SigninWithGoogle)
	r.With(auth.RequireAuth).Post("/signout", auth.Signout)
	r.With(auth.RequireAuth).Get("/me", auth.Me)

	r.With(auth.RequireAuth).Patch("/follow", handler.Follow)
	r.With(auth.RequireAuth).Patch("/editImage", handler.EditImage)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Suggestions)
		r.Get("/profile", handler.Profile)
		r.With(auth.RequireAuth).Patch("/editDescription", handler.EditDescription)
	})
}

// Suggestions lists the users the requester has not followed yet. The path
// parameter is the requesting user's username.
func (h *UserHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	requester := chi.URLParam(r, "id")

	users, err := h.userService.Suggestions(r.Context(), requester)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list suggestions")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Profile returns the user named by the path parameter.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "id")

	user, err := h.userService.Profile(r.Context(), username)
	if err != nil {
		writeDomainError(w, err, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Follow toggles the acting user's follow on the target user.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.FollowedUserID = strings.TrimSpace(req.FollowedUserID)
	if req.FollowedUserID == "" {
		writeError(w, http.StatusBadRequest, "followed_user_id is required")
		return
	}

	identity := identityFromContext(r.Context())
	user, err := h.userService.Follow(r.Context(), identity, req.FollowedUserID)
	if err != nil {
		writeDomainError(w, err, "failed to toggle follow")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EditDescription updates the description of the profile named by the path
// parameter, owner only.
func (h *UserHandler) EditDescription(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "id")

	var req EditDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	identity := identityFromContext(r.Context())
	user, err := h.userService.EditDescription(r.Context(), identity, username, req.Description)
	if err != nil {
		writeDomainError(w, err, "failed to update description")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EditImage updates the profile image of the user named in the body, owner
// only.
func (h *UserHandler) EditImage(w http.ResponseWriter, r *http.Request) {
	var req EditImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Image = strings.TrimSpace(req.Image)
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	identity := identityFromContext(r.Context())
	user, err := h.userService.EditImage(r.Context(), identity, strings.TrimSpace(req.Username), req.Image)
	if err != nil {
		writeDomainError(w, err, "failed to update image")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type FollowRequest struct {
	FollowedUserID string `json:"followed_user_id"`
}

type EditDescriptionRequest struct {
	Description string `json:"description"`
}

type EditImageRequest struct {
	Username string `json:"username"`
	Image    string `json:"image"`
}
