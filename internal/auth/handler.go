package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/emrekaya/fridgemate/backend/internal/api"
	"github.com/emrekaya/fridgemate/backend/internal/models"
	"github.com/emrekaya/fridgemate/backend/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPw, displayName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SessionManager defines the interface for refresh-token sessions.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions SessionManager
	jwts     *JWTManager
}

func NewHandler(users UserStore, sessions SessionManager, jwts *JWTManager) *Handler {
	return &Handler{users: users, sessions: sessions, jwts: jwts}
}

func (h *Handler) issueTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	access, err := h.jwts.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := h.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Register creates a new user and returns a token pair.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, api.Validation("invalid request body"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		api.WriteError(w, r, api.Validation("email, password, and displayName are required"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, string(hashed), req.DisplayName)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			api.WriteError(w, r, api.NewError(http.StatusConflict, "email already registered", api.CodeEmailTaken))
			return
		}
		api.WriteError(w, r, err)
		return
	}

	resp, err := h.issueTokens(r.Context(), user)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, resp)
}

// Login authenticates a user and returns a token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, api.Validation("invalid request body"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, r, api.NewError(http.StatusUnauthorized, "invalid credentials", api.CodeBadCredentials))
			return
		}
		api.WriteError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		api.WriteError(w, r, api.NewError(http.StatusUnauthorized, "invalid credentials", api.CodeBadCredentials))
		return
	}

	resp, err := h.issueTokens(r.Context(), user)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

// Refresh rotates a refresh session and returns a fresh token pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		api.WriteError(w, r, api.Validation("refreshToken is required"))
		return
	}

	userID, err := h.sessions.Get(r.Context(), req.RefreshToken)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	if userID == "" {
		api.WriteError(w, r, api.NewError(http.StatusUnauthorized, "invalid refresh token", api.CodeBadRefresh))
		return
	}

	// Rotate: the presented token is single-use.
	if err := h.sessions.Delete(r.Context(), req.RefreshToken); err != nil {
		api.WriteError(w, r, err)
		return
	}

	access, err := h.jwts.Generate(userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	refresh, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, models.TokenResponse{AccessToken: access, RefreshToken: refresh})
}

// Logout deletes the presented refresh session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		h.sessions.Delete(r.Context(), req.RefreshToken)
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), UserID(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, r, api.NewError(http.StatusNotFound, "user not found", api.CodeUserNotFound))
			return
		}
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}
