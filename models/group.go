package models

import "time"

// Group is a chat granted bot privileges until Expiration. Provider is
// whoever authorized it.
type Group struct {
	ChatID     string    `bson:"chat_id"`
	Expiration time.Time `bson:"expiration"`
	Provider   string    `bson:"provider"`
}
