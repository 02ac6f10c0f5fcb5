// Package handlers implements the bot's command surface. Every handler
// runs behind the gate, so senders are registered and not banned by the
// time a command reaches here.
package handlers

import (
	"context"
	"strconv"

	"gopkg.in/telebot.v3"

	"creditguard-bot/policy"
	"creditguard-bot/store"
)

type Handler struct {
	Store  *store.Store
	Policy *policy.Policy

	menu *telebot.ReplyMarkup
}

func New(st *store.Store, pol *policy.Policy) *Handler {
	return &Handler{Store: st, Policy: pol}
}

// Register wires every command onto the bot.
func (h *Handler) Register(bot *telebot.Bot) {
	h.menu = &telebot.ReplyMarkup{}
	meBtn := h.menu.Data("📊 Mi cuenta", "me")
	h.menu.Inline(h.menu.Row(meBtn))
	bot.Handle(&meBtn, h.Me)

	// Prefixed texts other than "/" commands have no endpoint of their
	// own; an OnText handler makes sure they still pass the gate.
	bot.Handle(telebot.OnText, func(c telebot.Context) error { return nil })

	bot.Handle("/start", h.Start)
	bot.Handle("/me", h.Me)
	bot.Handle("/claim", h.Claim)
	bot.Handle("/setnick", h.SetNick)

	bot.Handle("/key", h.GenKey)
	bot.Handle("/premium", h.Premium)
	bot.Handle("/revoke", h.Revoke)
	bot.Handle("/ban", h.Ban)
	bot.Handle("/unban", h.Unban)
	bot.Handle("/credits", h.TakeCredits)
	bot.Handle("/checks", h.BumpChecks)

	bot.Handle("/seller", h.PromoteSeller)
	bot.Handle("/admin", h.PromoteAdmin)
	bot.Handle("/setantispam", h.SetAntispam)
	bot.Handle("/broadcast", h.Broadcast)

	bot.Handle("/addgroup", h.AddGroup)
	bot.Handle("/delgroup", h.DelGroup)

	bot.SetCommands([]telebot.Command{
		{Text: "start", Description: "Registrarse"},
		{Text: "me", Description: "Estado de tu cuenta"},
		{Text: "claim", Description: "Canjear una key premium"},
	})
}

func senderID(c telebot.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

// requirePrivileged sends a refusal and returns false unless the sender
// is a seller or admin.
func (h *Handler) requirePrivileged(ctx context.Context, c telebot.Context) (bool, error) {
	privileged, err := h.Policy.IsPrivileged(ctx, senderID(c))
	if err != nil {
		return false, err
	}
	if !privileged {
		return false, c.Send("❌ No tienes permiso para usar este comando.")
	}
	return true, nil
}

// requireAdmin is the stricter rail for rank changes and broadcasts.
func (h *Handler) requireAdmin(ctx context.Context, c telebot.Context) (bool, error) {
	admin, err := h.Store.IsAdmin(ctx, senderID(c))
	if err != nil {
		return false, err
	}
	if !admin {
		return false, c.Send("❌ Solo administradores pueden usar este comando.")
	}
	return true, nil
}
