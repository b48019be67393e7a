package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FridgeMember is one membership entry in a fridge's member list.
// Entries are kept in insertion (join) order.
type FridgeMember struct {
	UserID   string    `json:"userId"   bson:"user_id"`
	JoinedAt time.Time `json:"joinedAt" bson:"joined_at"`
}

// Fridge is a shared household fridge stored in MongoDB.
type Fridge struct {
	ID         primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Name       string             `json:"name"       bson:"name"`
	InviteCode string             `json:"inviteCode" bson:"invite_code"`
	Members    []FridgeMember     `json:"members"    bson:"members"`
	CreatedAt  time.Time          `json:"createdAt"  bson:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt"  bson:"updated_at"`
}

// HasMember reports whether userID is in the member list.
func (f *Fridge) HasMember(userID string) bool {
	for _, m := range f.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CreateFridgeRequest is the JSON body for POST /fridges.
type CreateFridgeRequest struct {
	Name string `json:"name"`
}

// JoinFridgeRequest is the JSON body for POST /fridges/join.
type JoinFridgeRequest struct {
	InviteCode string `json:"inviteCode"`
}

// CreateFridgeResponse is returned by POST /fridges.
type CreateFridgeResponse struct {
	FridgeID   string `json:"fridgeId"`
	InviteCode string `json:"inviteCode"`
}

// JoinFridgeResponse is returned by POST /fridges/join.
type JoinFridgeResponse struct {
	FridgeID string `json:"fridgeId"`
}
