package fridge

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/emrekaya/fridgemate/backend/internal/models"
	"github.com/emrekaya/fridgemate/backend/internal/store"
)

// memUserStore is an in-memory UserStore for tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore(users ...*models.User) *memUserStore {
	s := &memUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) SetActiveFridge(_ context.Context, userID string, fridgeID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	if fridgeID == nil {
		u.ActiveFridgeID = nil
		return nil
	}
	id := *fridgeID
	u.ActiveFridgeID = &id
	return nil
}

func (s *memUserStore) GetProfiles(_ context.Context, ids []string) (map[string]models.MemberProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.MemberProfile, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = models.MemberProfile{UserID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
		}
	}
	return out, nil
}

// memFridgeStore is an in-memory FridgeStore. failDups makes the next N
// inserts fail with ErrDuplicate to exercise the invite-code retry loop.
type memFridgeStore struct {
	mu       sync.Mutex
	byID     map[string]*models.Fridge
	byCode   map[string]string
	failDups int
}

func newMemFridgeStore() *memFridgeStore {
	return &memFridgeStore{
		byID:   make(map[string]*models.Fridge),
		byCode: make(map[string]string),
	}
}

func (s *memFridgeStore) Insert(_ context.Context, f *models.Fridge) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDups > 0 {
		s.failDups--
		return "", store.ErrDuplicate
	}
	if _, exists := s.byCode[f.InviteCode]; exists {
		return "", store.ErrDuplicate
	}
	f.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	id := f.ID.Hex()
	cp := *f
	cp.Members = append([]models.FridgeMember(nil), f.Members...)
	s.byID[id] = &cp
	s.byCode[f.InviteCode] = id
	return id, nil
}

func (s *memFridgeStore) get(id string) (*models.Fridge, bool) {
	f, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	cp := *f
	cp.Members = append([]models.FridgeMember(nil), f.Members...)
	return &cp, true
}

func (s *memFridgeStore) FindByID(_ context.Context, id string) (*models.Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return f, nil
}

func (s *memFridgeStore) FindByInviteCode(_ context.Context, code string) (*models.Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	f, _ := s.get(id)
	return f, nil
}

func (s *memFridgeStore) AddMember(_ context.Context, fridgeID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[fridgeID]
	if !ok {
		return false, nil
	}
	if f.HasMember(userID) {
		return false, nil
	}
	now := time.Now().UTC()
	f.Members = append(f.Members, models.FridgeMember{UserID: userID, JoinedAt: now})
	f.UpdatedAt = now
	return true, nil
}

func (s *memFridgeStore) RemoveMember(_ context.Context, fridgeID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[fridgeID]
	if !ok {
		return store.ErrNotFound
	}
	kept := f.Members[:0]
	for _, m := range f.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.Members = kept
	f.UpdatedAt = time.Now().UTC()
	return nil
}
