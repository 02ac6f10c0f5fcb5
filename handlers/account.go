package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"creditguard-bot/store"
	"creditguard-bot/utils"
)

func (h *Handler) Start(c telebot.Context) error {
	user := c.Sender()

	welcome := fmt.Sprintf(
		"%s, %s! 👋\n\n"+
			"Bienvenido a <b>CreditGuard</b>.\n"+
			"Tu cuenta ya está registrada. Usa /me para ver tu estado "+
			"y /claim &lt;key&gt; para activar una membresía Premium.",
		utils.Greeting(), user.FirstName,
	)
	return c.Send(welcome, h.menu, telebot.ModeHTML)
}

func (h *Handler) Me(c telebot.Context) error {
	ctx := context.Background()

	info, err := h.Store.GetUser(ctx, senderID(c))
	if errors.Is(err, store.ErrNotFound) {
		return c.Send("❌ No estás registrado. Envía /start primero.")
	}
	if err != nil {
		return err
	}

	expiration := "—"
	if info.Expiration != nil {
		expiration = utils.FormatTime(*info.Expiration)
	}
	msg := fmt.Sprintf(
		"👤 <b>Tu cuenta</b>\n\n"+
			"🆔 ID: <code>%s</code>\n"+
			"📛 Nick: %s\n"+
			"🎖 Rango: %s\n"+
			"💎 Membresía: <b>%s</b>\n"+
			"⏳ Expira: %s\n"+
			"💰 Créditos: %d\n"+
			"🔍 Checks: %d",
		info.UserID, info.Nick, info.Rank, info.Membership,
		expiration, info.Credits, info.Checks,
	)
	if c.Callback() != nil {
		return c.Edit(msg, telebot.ModeHTML)
	}
	return c.Send(msg, telebot.ModeHTML)
}

func (h *Handler) Claim(c telebot.Context) error {
	code := strings.TrimSpace(c.Message().Payload)
	if code == "" {
		return c.Send("⚠️ Uso: <code>/claim key-aktzXXXXXXXX</code>", telebot.ModeHTML)
	}

	ctx := context.Background()
	expiration, err := h.Store.RedeemKey(ctx, code, senderID(c))
	if errors.Is(err, store.ErrNotFound) {
		return c.Send("❌ Key inválida o ya canjeada.")
	}
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf(
		"✨ <b>Premium activado!</b>\n⏳ Válido hasta: <code>%s</code>",
		utils.FormatTime(expiration),
	), telebot.ModeHTML)
}

func (h *Handler) SetNick(c telebot.Context) error {
	nick := strings.TrimSpace(c.Message().Payload)
	if nick == "" {
		return c.Send("⚠️ Uso: <code>/setnick MiNick</code>", telebot.ModeHTML)
	}

	changed, err := h.Store.SetNick(context.Background(), senderID(c), nick)
	if err != nil {
		return err
	}
	if !changed {
		return c.Send("⚠️ Nada que cambiar.")
	}
	return c.Send(fmt.Sprintf("✅ Nick actualizado a <b>%s</b>", nick), telebot.ModeHTML)
}
