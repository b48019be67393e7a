package fridge

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/emrekaya/fridgemate/backend/internal/api"
	"github.com/emrekaya/fridgemate/backend/internal/auth"
	"github.com/emrekaya/fridgemate/backend/internal/models"
)

// Handler holds fridge HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /fridges.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, api.Validation("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		api.WriteError(w, r, api.Validation("name is required"))
		return
	}

	resp, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), req.Name)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, resp)
}

// Join handles POST /fridges/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinFridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, r, api.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.InviteCode) == "" {
		api.WriteError(w, r, api.Validation("inviteCode is required"))
		return
	}

	resp, err := h.svc.JoinByInviteCode(r.Context(), auth.UserID(r.Context()), req.InviteCode)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

// Leave handles POST /fridges/leave.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LeaveCurrentFridge(r.Context(), auth.UserID(r.Context())); err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me handles GET /fridges/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	fridge, err := h.svc.GetMyFridge(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, fridge)
}

// Members handles GET /fridges/me/members.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	page := api.ParsePage(r)
	items, total, err := h.svc.GetMyFridgeMembers(r.Context(), auth.UserID(r.Context()), page)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.ItemsResponse[models.MemberProfile]{
		Items: items,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}
