package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"creditguard-bot/models"
)

// AddGroup authorizes a chat until now+days. Re-authorizing an existing
// group refreshes its expiration and provider (upsert, never a conflict).
func (s *Store) AddGroup(ctx context.Context, chatID string, days int, provider string) (time.Time, error) {
	expiration := time.Now().AddDate(0, 0, days)

	_, err := s.groups.UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$set": bson.M{
			"expiration": expiration,
			"provider":   provider,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return time.Time{}, err
	}
	return expiration, nil
}

// RemoveGroup drops the chat's authorization. Reports whether a record
// was actually deleted.
func (s *Store) RemoveGroup(ctx context.Context, chatID string) (bool, error) {
	res, err := s.groups.DeleteOne(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// GroupAuthorized reports whether an authorization record exists. Expiry
// is the sweep's job; a stale record counts until the sweep removes it.
func (s *Store) GroupAuthorized(ctx context.Context, chatID string) (bool, error) {
	count, err := s.groups.CountDocuments(ctx, bson.M{"chat_id": chatID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetGroup returns the group record, or ErrNotFound. Absence and a found
// record are never conflated.
func (s *Store) GetGroup(ctx context.Context, chatID string) (*models.Group, error) {
	var group models.Group
	err := s.groups.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}
