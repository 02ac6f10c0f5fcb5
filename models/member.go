package models

// ChatMember is the slice of platform roster data moderation needs.
type ChatMember struct {
	ID       int64
	Username string
	IsAdmin  bool
}
