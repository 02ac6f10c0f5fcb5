package models

import "time"

// Key is a one-time redeemable token granting Premium for a fixed window.
// It is deleted when redeemed or when the sweep finds it expired.
type Key struct {
	Code       string    `bson:"bot_key"`
	Expiration time.Time `bson:"expiration"`
}
