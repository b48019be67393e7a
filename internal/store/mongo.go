package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emrekaya/fridgemate/backend/internal/models"
)

// FridgeStore handles fridge documents in MongoDB.
type FridgeStore struct {
	col *mongo.Collection
}

func NewFridgeStore(db *mongo.Database) *FridgeStore {
	return &FridgeStore{col: db.Collection("fridges")}
}

// EnsureIndexes creates the unique invite_code index. Called at startup;
// idempotent.
func (s *FridgeStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "invite_code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("fridges indexes: %w", err)
	}
	return nil
}

// Insert stores a new fridge and returns its hex id. A unique-index
// rejection of the invite code surfaces as ErrDuplicate.
func (s *FridgeStore) Insert(ctx context.Context, fridge *models.Fridge) (string, error) {
	now := time.Now().UTC()
	fridge.CreatedAt = now
	fridge.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, fridge)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (s *FridgeStore) FindByID(ctx context.Context, id string) (*models.Fridge, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var f models.Fridge
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *FridgeStore) FindByInviteCode(ctx context.Context, code string) (*models.Fridge, error) {
	var f models.Fridge
	if err := s.col.FindOne(ctx, bson.M{"invite_code": code}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// AddMember appends a membership entry in a single conditional update: the
// filter requires the user not to be a member already, so concurrent joins
// cannot produce duplicate entries. Returns false when the guard rejected
// the write (already a member).
func (s *FridgeStore) AddMember(ctx context.Context, fridgeID, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(fridgeID)
	if err != nil {
		return false, ErrNotFound
	}
	now := time.Now().UTC()
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid, "members.user_id": bson.M{"$ne": userID}},
		bson.M{
			"$push": bson.M{"members": bson.M{"user_id": userID, "joined_at": now}},
			"$set":  bson.M{"updated_at": now},
		})
	if err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	if res.MatchedCount == 0 {
		// Fridge missing or guard rejected; the caller has already
		// verified the fridge exists, so this is a membership conflict.
		return false, nil
	}
	return true, nil
}

// RemoveMember pulls the user's membership entry. Removing a user who is
// not a member is a no-op.
func (s *FridgeStore) RemoveMember(ctx context.Context, fridgeID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(fridgeID)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$pull": bson.M{"members": bson.M{"user_id": userID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}
