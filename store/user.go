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

// RegisterUser inserts a fresh free-tier record for the user. Calling it
// for an existing user is a no-op: $setOnInsert never touches a matched
// document.
func (s *Store) RegisterUser(ctx context.Context, userID, username string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"user_id":    userID,
			"username":   username,
			"nick":       models.DefaultNick,
			"rank":       models.RankUser,
			"state":      models.StateFree,
			"membership": models.MembershipFree,
			"expiration": nil,
			"antispam":   models.AntispamFree,
			"credits":    0,
			"registered": time.Now(),
			"checks":     0,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// GrantPremium promotes an existing user to Premium for the given number
// of days and returns the new expiration. ErrNotFound if the user is not
// registered.
func (s *Store) GrantPremium(ctx context.Context, userID string, days, credits int) (time.Time, error) {
	expiration := time.Now().AddDate(0, 0, days)

	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"membership": models.MembershipPremium,
			"antispam":   models.AntispamPremium,
			"credits":    credits,
			"expiration": expiration,
		}},
	)
	if err != nil {
		return time.Time{}, err
	}
	if res.MatchedCount == 0 {
		return time.Time{}, ErrNotFound
	}
	return expiration, nil
}

// RevokePremium resets a Premium user back to the free tier. Reports
// whether anything changed; a free user is left untouched.
func (s *Store) RevokePremium(ctx context.Context, userID string) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID, "membership": models.MembershipPremium},
		bson.M{"$set": bson.M{
			"membership": models.MembershipFree,
			"rank":       models.RankUser,
			"antispam":   models.AntispamFree,
			"expiration": nil,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetBanned flips the user's state and unconditionally drops them to the
// free tier with zero credits, whatever they were before.
func (s *Store) SetBanned(ctx context.Context, userID string, ban bool) (bool, error) {
	state := models.StateFree
	if ban {
		state = models.StateBanned
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"rank":       models.RankUser,
			"state":      state,
			"membership": models.MembershipFree,
			"antispam":   models.AntispamFree,
			"credits":    0,
			"expiration": nil,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// DecrementCredits takes credits away without ever going below zero. The
// guard runs server-side so concurrent decrements cannot lose updates:
// the full amount is taken only when the balance covers it, otherwise the
// balance is clamped to zero.
func (s *Store) DecrementCredits(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return nil
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID, "credits": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"credits": -amount}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Balance below amount: drain whatever is left.
	_, err = s.users.UpdateOne(ctx,
		bson.M{"user_id": userID, "credits": bson.M{"$gt": 0}},
		bson.M{"$set": bson.M{"credits": 0}},
	)
	return err
}

// IncrementChecks bumps the cumulative check counter.
func (s *Store) IncrementChecks(ctx context.Context, userID string, amount int) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$inc": bson.M{"checks": amount}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// Fields the generic setter refuses to touch.
var protectedFields = map[string]bool{
	"_id":        true,
	"user_id":    true,
	"registered": true,
}

// SetField updates a single user field. Identity and registration are
// protected; writing them returns ErrProtectedField instead of faulting.
func (s *Store) SetField(ctx context.Context, userID, field string, value interface{}) (bool, error) {
	if protectedFields[field] {
		return false, ErrProtectedField
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *Store) SetNick(ctx context.Context, userID, nick string) (bool, error) {
	return s.SetField(ctx, userID, "nick", nick)
}

func (s *Store) SetAntispam(ctx context.Context, userID string, threshold int) (bool, error) {
	return s.SetField(ctx, userID, "antispam", threshold)
}

func (s *Store) PromoteToSeller(ctx context.Context, userID string) (bool, error) {
	return s.SetField(ctx, userID, "rank", models.RankSeller)
}

func (s *Store) PromoteToAdmin(ctx context.Context, userID string) (bool, error) {
	return s.SetField(ctx, userID, "rank", models.RankAdmin)
}

// GetUser returns the full user record, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) IsPremium(ctx context.Context, userID string) (bool, error) {
	return s.userMatches(ctx, userID, func(u *models.User) bool { return u.IsPremium() })
}

func (s *Store) IsBanned(ctx context.Context, userID string) (bool, error) {
	return s.userMatches(ctx, userID, func(u *models.User) bool { return u.IsBanned() })
}

func (s *Store) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.userMatches(ctx, userID, func(u *models.User) bool { return u.HasRank(models.RankAdmin) })
}

func (s *Store) IsSeller(ctx context.Context, userID string) (bool, error) {
	return s.userMatches(ctx, userID, func(u *models.User) bool { return u.HasRank(models.RankSeller) })
}

func (s *Store) HasCredits(ctx context.Context, userID string) (bool, error) {
	return s.userMatches(ctx, userID, func(u *models.User) bool { return u.Credits > 0 })
}

// userMatches evaluates a predicate against the stored record. A missing
// user simply doesn't match; absence is not an error here.
func (s *Store) userMatches(ctx context.Context, userID string, pred func(*models.User) bool) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pred(user), nil
}
