// Package fridge implements the fridge membership workflow: create a
// fridge, join by invite code, leave, and query current membership. It
// keeps the two sides of the denormalized state — the user's active fridge
// pointer and the fridge's member list — consistent on every mutation.
package fridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/emrekaya/fridgemate/backend/internal/api"
	"github.com/emrekaya/fridgemate/backend/internal/models"
	"github.com/emrekaya/fridgemate/backend/internal/store"
)

// UserStore is the slice of user persistence the workflow needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetActiveFridge(ctx context.Context, userID string, fridgeID *string) error
	GetProfiles(ctx context.Context, ids []string) (map[string]models.MemberProfile, error)
}

// FridgeStore is the slice of fridge persistence the workflow needs.
type FridgeStore interface {
	Insert(ctx context.Context, fridge *models.Fridge) (string, error)
	FindByID(ctx context.Context, id string) (*models.Fridge, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Fridge, error)
	AddMember(ctx context.Context, fridgeID, userID string) (bool, error)
	RemoveMember(ctx context.Context, fridgeID, userID string) error
}

// Service coordinates fridge mutations across the two stores.
type Service struct {
	users          UserStore
	fridges        FridgeStore
	inviteAttempts int
}

func NewService(users UserStore, fridges FridgeStore, inviteAttempts int) *Service {
	if inviteAttempts < 1 {
		inviteAttempts = 1
	}
	return &Service{users: users, fridges: fridges, inviteAttempts: inviteAttempts}
}

func errUserNotFound() *api.Error {
	return api.NewError(http.StatusNotFound, "user not found", api.CodeUserNotFound)
}

func (s *Service) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errUserNotFound()
		}
		return nil, err
	}
	return user, nil
}

// detach removes the user from their current fridge, if any. A dangling
// pointer (fridge already gone) is tolerated; the pointer is overwritten by
// the caller right after.
func (s *Service) detach(ctx context.Context, user *models.User) error {
	if user.ActiveFridgeID == nil {
		return nil
	}
	err := s.fridges.RemoveMember(ctx, *user.ActiveFridgeID, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Create makes a new fridge with the caller as its sole member and points
// the caller's active fridge at it. A caller already in a fridge is
// detached from it first. The invite code is regenerated on unique-index
// collisions, bounded by the configured attempt count.
func (s *Service) Create(ctx context.Context, userID, name string) (*models.CreateFridgeResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var fridgeID, code string
	for attempt := 0; ; attempt++ {
		code = NewInviteCode()
		fridgeID, err = s.fridges.Insert(ctx, &models.Fridge{
			Name:       name,
			InviteCode: code,
			Members:    []models.FridgeMember{{UserID: userID, JoinedAt: time.Now().UTC()}},
		})
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		if attempt+1 >= s.inviteAttempts {
			return nil, api.NewError(http.StatusInternalServerError,
				"could not generate a unique invite code", api.CodeCodeExhausted)
		}
		slog.Warn("invite code collision, regenerating", "attempt", attempt+1)
	}

	// Detach only after the new fridge exists so a failed insert leaves the
	// caller's old membership untouched.
	if err := s.detach(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.SetActiveFridge(ctx, userID, &fridgeID); err != nil {
		return nil, err
	}

	slog.Info("fridge created", "fridge_id", fridgeID, "user_id", userID)
	return &models.CreateFridgeResponse{FridgeID: fridgeID, InviteCode: code}, nil
}

// JoinByInviteCode adds the caller to the fridge matching code. A caller
// already in a different fridge is detached from it first; joining a fridge
// the caller is already in is a conflict.
func (s *Service) JoinByInviteCode(ctx context.Context, userID, code string) (*models.JoinFridgeResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fridge, err := s.fridges.FindByInviteCode(ctx, NormalizeInviteCode(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, api.NewError(http.StatusNotFound, "invalid invite code", api.CodeInviteNotFound)
		}
		return nil, err
	}

	fridgeID := fridge.ID.Hex()
	if fridge.HasMember(userID) {
		return nil, api.NewError(http.StatusConflict, "user already in this fridge", api.CodeAlreadyMember)
	}

	added, err := s.fridges.AddMember(ctx, fridgeID, userID)
	if err != nil {
		return nil, err
	}
	if !added {
		// Lost a race with a concurrent join by the same user.
		return nil, api.NewError(http.StatusConflict, "user already in this fridge", api.CodeAlreadyMember)
	}

	// Detach only after the new membership exists so a failed add leaves the
	// caller's old membership untouched.
	if err := s.detach(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.SetActiveFridge(ctx, userID, &fridgeID); err != nil {
		return nil, err
	}

	slog.Info("fridge joined", "fridge_id", fridgeID, "user_id", userID)
	return &models.JoinFridgeResponse{FridgeID: fridgeID}, nil
}

// LeaveCurrentFridge removes the caller from their active fridge and clears
// the pointer. The fridge is kept even when it becomes empty.
func (s *Service) LeaveCurrentFridge(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.ActiveFridgeID == nil {
		return api.NewError(http.StatusBadRequest, "user is not in a fridge", api.CodeNoActiveFridge)
	}

	fridgeID := *user.ActiveFridgeID
	if _, err := s.fridges.FindByID(ctx, fridgeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return api.NewError(http.StatusNotFound, "fridge not found", api.CodeFridgeNotFound)
		}
		return err
	}

	if err := s.fridges.RemoveMember(ctx, fridgeID, userID); err != nil {
		return err
	}
	if err := s.users.SetActiveFridge(ctx, userID, nil); err != nil {
		return err
	}

	slog.Info("fridge left", "fridge_id", fridgeID, "user_id", userID)
	return nil
}

// GetMyFridge returns the caller's active fridge.
func (s *Service) GetMyFridge(ctx context.Context, userID string) (*models.Fridge, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ActiveFridgeID == nil {
		return nil, api.NewError(http.StatusNotFound, "user has no active fridge", api.CodeNoActiveFridge)
	}

	fridge, err := s.fridges.FindByID(ctx, *user.ActiveFridgeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, api.NewError(http.StatusNotFound, "fridge not found", api.CodeFridgeNotFound)
		}
		return nil, err
	}
	return fridge, nil
}

// GetMyFridgeMembers resolves the member list of the caller's active fridge
// to profile projections, in join order, windowed by page.
func (s *Service) GetMyFridgeMembers(ctx context.Context, userID string, page api.Page) ([]models.MemberProfile, int, error) {
	fridge, err := s.GetMyFridge(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(fridge.Members))
	for i, m := range fridge.Members {
		ids[i] = m.UserID
	}

	profiles, err := s.users.GetProfiles(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	// Preserve the stored member order; skip ids with no user record.
	ordered := make([]models.MemberProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return api.Slice(ordered, page), len(ordered), nil
}
