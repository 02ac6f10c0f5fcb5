package store

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"creditguard-bot/models"
)

// KeyPrefix tags every generated key code.
const KeyPrefix = "key-aktz"

const keyCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const keyCodeLength = 8

// GenerateKey mints a one-time key valid for the given number of days.
// A code collision is retried once with a fresh code; a second collision
// propagates the duplicate-key error as-is.
func (s *Store) GenerateKey(ctx context.Context, days int) (string, time.Time, error) {
	expiration := time.Now().AddDate(0, 0, days)

	code := newKeyCode()
	_, err := s.keys.InsertOne(ctx, models.Key{Code: code, Expiration: expiration})
	if mongo.IsDuplicateKeyError(err) {
		code = newKeyCode()
		_, err = s.keys.InsertOne(ctx, models.Key{Code: code, Expiration: expiration})
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return code, expiration, nil
}

// RedeemKey consumes the key and grants its expiration window to the user
// as a Premium membership. The key is claimed with a single atomic
// find-and-delete, so two concurrent redemptions of the same code cannot
// both succeed: the loser sees ErrNotFound.
func (s *Store) RedeemKey(ctx context.Context, code, userID string) (time.Time, error) {
	var key models.Key
	err := s.keys.FindOneAndDelete(ctx, bson.M{"bot_key": code}).Decode(&key)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"membership": models.MembershipPremium,
			"antispam":   models.AntispamPremium,
			"expiration": key.Expiration,
		}},
	)
	if err == nil && res.MatchedCount == 0 {
		err = ErrNotFound
	}
	if err != nil {
		// The key was already claimed; put it back so it is not burned
		// on an unknown user. Best effort only.
		if _, insErr := s.keys.InsertOne(ctx, key); insErr != nil {
			log.Printf("⚠️ Could not restore unredeemed key %s: %v", code, insErr)
		}
		return time.Time{}, err
	}
	return key.Expiration, nil
}

func newKeyCode() string {
	buf := make([]byte, keyCodeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = keyCodeAlphabet[int(b)%len(keyCodeAlphabet)]
	}
	return KeyPrefix + string(buf)
}
