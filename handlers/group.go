package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"creditguard-bot/utils"
)

// AddGroup authorizes the current chat for a number of days. Running it
// again refreshes the window; there is no duplicate error to handle.
func (h *Handler) AddGroup(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}
	if c.Chat() == nil || c.Chat().Type == telebot.ChatPrivate {
		return c.Send("⚠️ Este comando solo funciona dentro de un grupo.")
	}

	days, err := strconv.Atoi(strings.TrimSpace(c.Message().Payload))
	if err != nil || days <= 0 {
		return c.Send("⚠️ Uso: <code>/addgroup 30</code> (días)", telebot.ModeHTML)
	}

	chatID := strconv.FormatInt(c.Chat().ID, 10)
	expiration, err := h.Store.AddGroup(ctx, chatID, days, c.Sender().Username)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf(
		"✅ Grupo autorizado hasta <code>%s</code>.",
		utils.FormatTime(expiration),
	), telebot.ModeHTML)
}

func (h *Handler) DelGroup(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}
	if c.Chat() == nil || c.Chat().Type == telebot.ChatPrivate {
		return c.Send("⚠️ Este comando solo funciona dentro de un grupo.")
	}

	chatID := strconv.FormatInt(c.Chat().ID, 10)
	removed, err := h.Store.RemoveGroup(ctx, chatID)
	if err != nil {
		return err
	}
	if !removed {
		return c.Send("⚠️ Este grupo no estaba autorizado.")
	}
	return c.Send("✅ Autorización del grupo eliminada.")
}
