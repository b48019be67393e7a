// Package users serves user profile endpoints and avatar storage.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emrekaya/fridgemate/backend/internal/api"
	"github.com/emrekaya/fridgemate/backend/internal/auth"
	"github.com/emrekaya/fridgemate/backend/internal/models"
	"github.com/emrekaya/fridgemate/backend/internal/store"
)

const maxAvatarBytes = 5 << 20 // 5 MiB

// UserStore defines the interface for user persistence.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	SetPhotoURL(ctx context.Context, userID, url string) error
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error)
}

// FileStore defines the interface for avatar storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds user HTTP handlers.
type Handler struct {
	users UserStore
	files FileStore
}

func NewHandler(users UserStore, files FileStore) *Handler {
	return &Handler{users: users, files: files}
}

func avatarKey(userID string) string { return fmt.Sprintf("avatars/%s", userID) }

func (h *Handler) writeUserErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		api.WriteError(w, r, api.NewError(http.StatusNotFound, "user not found", api.CodeUserNotFound))
		return
	}
	api.WriteError(w, r, err)
}

// List handles GET /users (admin only).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := h.users.GetUserByID(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeUserErr(w, r, err)
		return
	}
	if caller.Role != models.RoleAdmin {
		api.WriteError(w, r, api.NewError(http.StatusForbidden, "admin access required", api.CodeForbidden))
		return
	}

	page := api.ParsePage(r)
	items, total, err := h.users.ListUsers(r.Context(), page.Limit, page.Offset())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.ItemsResponse[models.User]{
		Items: items,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

// Get handles GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeUserErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, api.Validation("invalid request body"))
		return
	}
	if req.DisplayName != nil && *req.DisplayName == "" {
		api.WriteError(w, r, api.Validation("displayName must not be empty"))
		return
	}
	if req.DietPreference != nil && !models.ValidDiet(*req.DietPreference) {
		api.WriteError(w, r, api.Validation("invalid dietPreference"))
		return
	}
	if req.Age != nil && *req.Age < 0 {
		api.WriteError(w, r, api.Validation("age must not be negative"))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), auth.UserID(r.Context()), &req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			api.WriteError(w, r, api.NewError(http.StatusConflict, "username already taken", api.CodeUsernameTaken))
			return
		}
		h.writeUserErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}

// UploadPhoto handles POST /users/me/photo (multipart field "photo").
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		api.WriteError(w, r, api.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		api.WriteError(w, r, api.Validation("photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if err := h.files.Upload(r.Context(), avatarKey(userID), data, contentType); err != nil {
		api.WriteError(w, r, err)
		return
	}

	url := fmt.Sprintf("/users/%s/photo", userID)
	if err := h.users.SetPhotoURL(r.Context(), userID, url); err != nil {
		h.writeUserErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

// DeletePhoto handles DELETE /users/me/photo, removing the stored avatar
// and clearing the profile's photo URL.
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.files.Remove(r.Context(), avatarKey(userID)); err != nil {
		api.WriteError(w, r, err)
		return
	}
	if err := h.users.SetPhotoURL(r.Context(), userID, ""); err != nil {
		h.writeUserErr(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Photo handles GET /users/{id}/photo, streaming the avatar from storage.
func (h *Handler) Photo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ct, err := h.files.Download(r.Context(), avatarKey(id))
	if err != nil {
		api.WriteError(w, r, api.NewError(http.StatusNotFound, "photo not available", api.CodeUserNotFound))
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}
