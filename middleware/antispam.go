package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v3"
)

// FloodControl enforces a delay between commands per user, with an
// escalating warning counter and a temporary mute after repeated abuse.
// State lives in Redis so restarts and multiple instances share it.
type FloodControl struct {
	rdb      *redis.Client
	ownerID  int64
	prefixes string

	cooldown     time.Duration
	maxWarnings  int
	muteDuration time.Duration
}

func NewFloodControl(rdb *redis.Client, ownerID, prefixes string) *FloodControl {
	id, _ := strconv.ParseInt(ownerID, 10, 64)
	return &FloodControl{
		rdb:          rdb,
		ownerID:      id,
		prefixes:     prefixes,
		cooldown:     2 * time.Second,
		maxWarnings:  5,
		muteDuration: 5 * time.Minute,
	}
}

// Middleware drops or warns command spammers before the gate sees them.
// Any Redis failure fails open: moderation should not take the bot down.
func (f *FloodControl) Middleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if c.Sender() == nil || c.Callback() != nil {
			return next(c)
		}
		userID := c.Sender().ID
		if userID == f.ownerID {
			return next(c)
		}

		// Only commands are throttled. Ordinary chatter passes through
		// untouched so the bot never answers it.
		msg := c.Message()
		if msg == nil || msg.Text == "" {
			return next(c)
		}
		first, _ := utf8.DecodeRuneInString(msg.Text)
		if !strings.ContainsRune(f.prefixes, first) {
			return next(c)
		}

		ctx := context.Background()

		muted, err := f.isMuted(ctx, userID)
		if err != nil {
			log.Printf("⚠️ Flood control unavailable: %v", err)
			return next(c)
		}
		if muted {
			return nil
		}

		ok, err := f.allow(ctx, userID)
		if err != nil {
			log.Printf("⚠️ Flood control unavailable: %v", err)
			return next(c)
		}
		if ok {
			f.resetWarnings(ctx, userID)
			return next(c)
		}

		warnings, err := f.addWarning(ctx, userID)
		if err != nil {
			log.Printf("⚠️ Flood control unavailable: %v", err)
			return next(c)
		}
		if warnings >= int64(f.maxWarnings) {
			if err := f.mute(ctx, userID); err != nil {
				log.Printf("⚠️ Could not mute user %d: %v", userID, err)
			} else {
				log.Printf("🚫 User %d muted for %s (flood)", userID, f.muteDuration)
			}
			return c.Send("🚫 <b>Demasiados comandos.</b> Espera 5 minutos antes de volver a escribir.", telebot.ModeHTML)
		}

		return c.Send(fmt.Sprintf(
			"⏰ Espera <b>%d segundos</b> entre comandos. Aviso %d/%d.",
			int(f.cooldown.Seconds()), warnings, f.maxWarnings,
		), telebot.ModeHTML)
	}
}

// allow claims the per-user cooldown slot. SetNX makes the claim atomic
// across concurrent messages from the same user.
func (f *FloodControl) allow(ctx context.Context, userID int64) (bool, error) {
	return f.rdb.SetNX(ctx, floodKey("last", userID), time.Now().Unix(), f.cooldown).Result()
}

func (f *FloodControl) addWarning(ctx context.Context, userID int64) (int64, error) {
	key := floodKey("warn", userID)
	warnings, err := f.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	f.rdb.Expire(ctx, key, 10*time.Minute)
	return warnings, nil
}

func (f *FloodControl) resetWarnings(ctx context.Context, userID int64) {
	if err := f.rdb.Del(ctx, floodKey("warn", userID)).Err(); err != nil {
		log.Printf("⚠️ Could not reset warnings for %d: %v", userID, err)
	}
}

func (f *FloodControl) mute(ctx context.Context, userID int64) error {
	if err := f.rdb.Set(ctx, floodKey("mute", userID), "1", f.muteDuration).Err(); err != nil {
		return err
	}
	return f.rdb.Del(ctx, floodKey("warn", userID)).Err()
}

func (f *FloodControl) isMuted(ctx context.Context, userID int64) (bool, error) {
	n, err := f.rdb.Exists(ctx, floodKey("mute", userID)).Result()
	return n > 0, err
}

func floodKey(kind string, userID int64) string {
	return fmt.Sprintf("flood:%s:%d", kind, userID)
}
