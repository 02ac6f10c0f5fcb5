// Package store owns the users, bot_keys and groups collections. No other
// package writes to them directly.
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

// Collection names.
const (
	UsersCollection  = "users"
	KeysCollection   = "bot_keys"
	GroupsCollection = "groups"
)

var (
	// ErrNotFound means the operation target does not exist. Callers
	// check for it with errors.Is; it is never a storage fault.
	ErrNotFound = errors.New("store: not found")

	// ErrProtectedField rejects writes to identity or registration
	// fields through the generic field setter.
	ErrProtectedField = errors.New("store: protected field")
)

type Store struct {
	users  *mongo.Collection
	keys   *mongo.Collection
	groups *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		users:  db.Collection(UsersCollection),
		keys:   db.Collection(KeysCollection),
		groups: db.Collection(GroupsCollection),
	}
}

// Init creates the unique indexes each collection relies on. Duplicate
// inserts fail loudly at the storage layer instead of being papered over.
func (s *Store) Init(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	if _, err := s.users.Indexes().CreateOne(ctx, unique("user_id")); err != nil {
		return err
	}
	if _, err := s.keys.Indexes().CreateOne(ctx, unique("bot_key")); err != nil {
		return err
	}
	if _, err := s.groups.Indexes().CreateOne(ctx, unique("chat_id")); err != nil {
		return err
	}
	return nil
}

// EnsureOwner upserts the bootstrap identity. Safe to call on every
// start: the role fields are re-asserted, while anything the owner
// spends or customizes (credits, nick, username) is only seeded on the
// first insert and survives restarts untouched.
func (s *Store) EnsureOwner(ctx context.Context, ownerID string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": ownerID},
		bson.M{
			"$set": bson.M{
				"rank":       models.RankAdmin,
				"state":      models.StateFree,
				"membership": models.MembershipPremium,
				"expiration": nil,
				"antispam":   models.AntispamPremium,
			},
			"$setOnInsert": bson.M{
				"user_id":    ownerID,
				"username":   "owner",
				"nick":       "owner",
				"credits":    300,
				"registered": time.Now(),
				"checks":     0,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// AllChatIDs returns every known identity, users and groups combined, for
// broadcast-style fan-out.
func (s *Store) AllChatIDs(ctx context.Context) ([]string, error) {
	ids, err := collectIDs(ctx, s.users, "user_id")
	if err != nil {
		return nil, err
	}
	groupIDs, err := collectIDs(ctx, s.groups, "chat_id")
	if err != nil {
		return nil, err
	}
	return append(ids, groupIDs...), nil
}

// AllUserIDs returns the identities of every registered user.
func (s *Store) AllUserIDs(ctx context.Context) ([]string, error) {
	return collectIDs(ctx, s.users, "user_id")
}

func collectIDs(ctx context.Context, coll *mongo.Collection, field string) ([]string, error) {
	cursor, err := coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{field: 1, "_id": 0}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if id, ok := doc[field].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, cursor.Err()
}
