package models

import (
	"strings"
	"time"
)

// Rank values. Comparisons are case-insensitive everywhere.
const (
	RankUser   = "user"
	RankSeller = "seller"
	RankAdmin  = "admin"
)

// Membership tiers.
const (
	MembershipFree    = "free user"
	MembershipPremium = "Premium"
)

// Account states.
const (
	StateFree   = "free"
	StateBanned = "ban"
)

// Antispam thresholds per tier.
const (
	AntispamPremium = 40
	AntispamFree    = 60
)

// DefaultNick is the placeholder nick for freshly registered users.
const DefaultNick = "¿?"

type User struct {
	UserID     string     `bson:"user_id"`
	Username   string     `bson:"username"`
	Nick       string     `bson:"nick"`
	Rank       string     `bson:"rank"`
	State      string     `bson:"state"`
	Membership string     `bson:"membership"`
	Expiration *time.Time `bson:"expiration,omitempty"`
	Antispam   int        `bson:"antispam"`
	Credits    int        `bson:"credits"`
	Registered time.Time  `bson:"registered"`
	Checks     int        `bson:"checks"`
}

func (u *User) IsPremium() bool {
	return strings.EqualFold(u.Membership, MembershipPremium)
}

func (u *User) IsBanned() bool {
	return strings.EqualFold(u.State, StateBanned)
}

func (u *User) HasRank(rank string) bool {
	return strings.EqualFold(u.Rank, rank)
}

// Expired reports whether a Premium membership has lapsed. Expiration is
// only meaningful while the user is Premium; a nil expiration never lapses.
func (u *User) Expired(now time.Time) bool {
	return u.IsPremium() && u.Expiration != nil && u.Expiration.Before(now)
}
