package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"creditguard-bot/models"
)

// SweepReport counts what a sweep cleaned up.
type SweepReport struct {
	DemotedUsers  int64
	DeletedKeys   int64
	DeletedGroups int64
}

// SweepExpired keeps expirations honest: lapsed Premium users drop to the
// free tier, unredeemed keys and stale group authorizations disappear.
// Each of the three passes is independent; the sweep is idempotent and
// safe to run both inline per message and from a background ticker.
func (s *Store) SweepExpired(ctx context.Context) (SweepReport, error) {
	now := time.Now()
	var report SweepReport

	res, err := s.users.UpdateMany(ctx,
		bson.M{
			"expiration": bson.M{"$lt": now},
			"membership": models.MembershipPremium,
		},
		bson.M{"$set": bson.M{
			"membership": models.MembershipFree,
			"rank":       models.RankUser,
			"antispam":   models.AntispamFree,
			"expiration": nil,
		}},
	)
	if err != nil {
		return report, err
	}
	report.DemotedUsers = res.ModifiedCount

	del, err := s.keys.DeleteMany(ctx, bson.M{"expiration": bson.M{"$lt": now}})
	if err != nil {
		return report, err
	}
	report.DeletedKeys = del.DeletedCount

	del, err = s.groups.DeleteMany(ctx, bson.M{"expiration": bson.M{"$lt": now}})
	if err != nil {
		return report, err
	}
	report.DeletedGroups = del.DeletedCount

	return report, nil
}
