package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"creditguard-bot/store"
	"creditguard-bot/utils"
)

func (h *Handler) GenKey(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}

	days, err := strconv.Atoi(strings.TrimSpace(c.Message().Payload))
	if err != nil || days <= 0 {
		return c.Send("⚠️ Uso: <code>/key 7</code> (días de validez)", telebot.ModeHTML)
	}

	code, expiration, err := h.Store.GenerateKey(ctx, days)
	if err != nil {
		return err
	}
	log.Printf("🔑 Key generated by %s (%d days)", senderID(c), days)

	return c.Send(fmt.Sprintf(
		"🔑 <b>Key generada</b>\n\n<code>%s</code>\n⏳ Expira: <code>%s</code>",
		code, utils.FormatTime(expiration),
	), telebot.ModeHTML)
}

func (h *Handler) Premium(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}

	args := strings.Fields(c.Message().Payload)
	if len(args) != 3 {
		return c.Send("⚠️ Uso: <code>/premium id días créditos</code>", telebot.ModeHTML)
	}
	days, err1 := strconv.Atoi(args[1])
	credits, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || days <= 0 || credits < 0 {
		return c.Send("⚠️ Días y créditos deben ser números válidos.")
	}

	expiration, err := h.Store.GrantPremium(ctx, args[0], days, credits)
	if errors.Is(err, store.ErrNotFound) {
		return c.Send("❌ Usuario no registrado.")
	}
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf(
		"✅ Premium para <code>%s</code> hasta <code>%s</code> con %d créditos.",
		args[0], utils.FormatTime(expiration), credits,
	), telebot.ModeHTML)
}

func (h *Handler) Revoke(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}

	userID := strings.TrimSpace(c.Message().Payload)
	if userID == "" {
		return c.Send("⚠️ Uso: <code>/revoke id</code>", telebot.ModeHTML)
	}

	changed, err := h.Store.RevokePremium(ctx, userID)
	if err != nil {
		return err
	}
	if !changed {
		return c.Send("⚠️ Ese usuario no tiene Premium.")
	}
	return c.Send(fmt.Sprintf("✅ Premium revocado a <code>%s</code>.", userID), telebot.ModeHTML)
}

func (h *Handler) Ban(c telebot.Context) error {
	return h.setBanned(c, true)
}

func (h *Handler) Unban(c telebot.Context) error {
	return h.setBanned(c, false)
}

func (h *Handler) setBanned(c telebot.Context, ban bool) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}

	userID := strings.TrimSpace(c.Message().Payload)
	if userID == "" {
		return c.Send("⚠️ Indica el id del usuario.")
	}

	changed, err := h.Store.SetBanned(ctx, userID, ban)
	if err != nil {
		return err
	}
	if !changed {
		return c.Send("❌ Usuario no registrado.")
	}
	if ban {
		log.Printf("🚫 User %s banned by %s", userID, senderID(c))
		return c.Send(fmt.Sprintf("🚫 Usuario <code>%s</code> baneado.", userID), telebot.ModeHTML)
	}
	log.Printf("🔓 User %s unbanned by %s", userID, senderID(c))
	return c.Send(fmt.Sprintf("🔓 Usuario <code>%s</code> desbaneado.", userID), telebot.ModeHTML)
}

func (h *Handler) TakeCredits(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}

	args := strings.Fields(c.Message().Payload)
	if len(args) != 2 {
		return c.Send("⚠️ Uso: <code>/credits id cantidad</code>", telebot.ModeHTML)
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return c.Send("⚠️ Cantidad inválida.")
	}

	if err := h.Store.DecrementCredits(ctx, args[0], amount); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("✅ %d créditos descontados a <code>%s</code>.", amount, args[0]), telebot.ModeHTML)
}

func (h *Handler) BumpChecks(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requirePrivileged(ctx, c); !ok {
		return err
	}

	userID := strings.TrimSpace(c.Message().Payload)
	if userID == "" {
		return c.Send("⚠️ Indica el id del usuario.")
	}

	if _, err := h.Store.IncrementChecks(ctx, userID, 1); err != nil {
		return err
	}
	info, err := h.Store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Send("❌ Usuario no registrado.")
	}
	if err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("🔍 <code>%s</code> lleva %d checks.", userID, info.Checks), telebot.ModeHTML)
}

func (h *Handler) PromoteSeller(c telebot.Context) error {
	return h.promote(c, "seller")
}

func (h *Handler) PromoteAdmin(c telebot.Context) error {
	return h.promote(c, "admin")
}

func (h *Handler) promote(c telebot.Context, rank string) error {
	ctx := context.Background()
	if ok, err := h.requireAdmin(ctx, c); !ok {
		return err
	}

	userID := strings.TrimSpace(c.Message().Payload)
	if userID == "" {
		return c.Send("⚠️ Indica el id del usuario.")
	}

	var changed bool
	var err error
	if rank == "admin" {
		changed, err = h.Store.PromoteToAdmin(ctx, userID)
	} else {
		changed, err = h.Store.PromoteToSeller(ctx, userID)
	}
	if err != nil {
		return err
	}
	if !changed {
		return c.Send("⚠️ Nada que cambiar.")
	}
	return c.Send(fmt.Sprintf("✅ <code>%s</code> ahora es %s.", userID, rank), telebot.ModeHTML)
}

func (h *Handler) SetAntispam(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requireAdmin(ctx, c); !ok {
		return err
	}

	args := strings.Fields(c.Message().Payload)
	if len(args) != 2 {
		return c.Send("⚠️ Uso: <code>/setantispam id umbral</code>", telebot.ModeHTML)
	}
	threshold, err := strconv.Atoi(args[1])
	if err != nil {
		return c.Send("⚠️ Umbral inválido.")
	}

	changed, err := h.Store.SetAntispam(ctx, args[0], threshold)
	if err != nil {
		return err
	}
	if !changed {
		return c.Send("⚠️ Nada que cambiar.")
	}
	return c.Send(fmt.Sprintf("✅ Antispam de <code>%s</code> ahora es %d.", args[0], threshold), telebot.ModeHTML)
}

func (h *Handler) Broadcast(c telebot.Context) error {
	ctx := context.Background()
	if ok, err := h.requireAdmin(ctx, c); !ok {
		return err
	}

	text := strings.TrimSpace(c.Message().Payload)
	if text == "" {
		return c.Send("⚠️ Uso: <code>/broadcast mensaje</code>", telebot.ModeHTML)
	}

	ids, err := h.Store.AllChatIDs(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, id := range ids {
		chatID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		if _, err := c.Bot().Send(telebot.ChatID(chatID), text, telebot.ModeHTML); err != nil {
			log.Printf("⚠️ Broadcast to %s failed: %v", id, err)
			continue
		}
		sent++
	}
	return c.Send(fmt.Sprintf("📣 Mensaje enviado a %d chats.", sent))
}
