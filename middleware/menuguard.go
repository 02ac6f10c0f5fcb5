package middleware

import (
	"gopkg.in/telebot.v3"
)

// MenuGuard keeps users out of each other's inline menus: a callback on a
// menu that was sent in reply to someone else's message is answered with
// an alert and never reaches the handler.
func MenuGuard(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || cb.Message == nil || cb.Message.ReplyTo == nil {
			return next(c)
		}
		owner := cb.Message.ReplyTo.Sender
		if owner == nil || owner.ID == cb.Sender.ID {
			return next(c)
		}
		return c.Respond(&telebot.CallbackResponse{
			Text:      "Usa tu menu! ⚠️",
			ShowAlert: true,
		})
	}
}
