// Package platform wraps the chat platform calls the core consumes.
// No policy lives here.
package platform

import (
	"context"
	"strconv"

	"gopkg.in/telebot.v3"

	"creditguard-bot/models"
	"creditguard-bot/store"
)

type Chat struct {
	bot          *telebot.Bot
	store        *store.Store
	logChannelID int64
}

func NewChat(bot *telebot.Bot, st *store.Store, logChannelID int64) *Chat {
	return &Chat{bot: bot, store: st, logChannelID: logChannelID}
}

// Members resolves the chat roster. The Bot API cannot enumerate group
// members, so the roster is every identity the store knows, filtered by
// actual membership in the chat. Anyone who ever passed the gate is in
// the store, which covers everyone who can be banned for speaking.
func (c *Chat) Members(chatID int64) ([]models.ChatMember, error) {
	ids, err := c.store.AllUserIDs(context.Background())
	if err != nil {
		return nil, err
	}

	chat := &telebot.Chat{ID: chatID}
	var members []models.ChatMember
	for _, id := range ids {
		userID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		member, err := c.bot.ChatMemberOf(chat, &telebot.User{ID: userID})
		if err != nil {
			// Not in the chat, or never seen by Telegram: not ours to ban.
			continue
		}
		switch member.Role {
		case telebot.Left, telebot.Kicked:
			continue
		}
		var username string
		if member.User != nil {
			username = member.User.Username
		}
		members = append(members, models.ChatMember{
			ID:       userID,
			Username: username,
			IsAdmin:  member.Role == telebot.Administrator || member.Role == telebot.Creator,
		})
	}
	return members, nil
}

// Ban removes the member from the chat. Permission faults propagate to
// the caller untouched.
func (c *Chat) Ban(chatID, userID int64) error {
	return c.bot.Ban(&telebot.Chat{ID: chatID}, &telebot.ChatMember{
		User: &telebot.User{ID: userID},
	})
}

// SendLog posts one line to the log channel.
func (c *Chat) SendLog(text string) error {
	_, err := c.bot.Send(telebot.ChatID(c.logChannelID), text, telebot.ModeHTML)
	return err
}
