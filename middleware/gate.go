package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/telebot.v3"

	"creditguard-bot/models"
	"creditguard-bot/store"
)

// Records is the store surface the gate consumes.
type Records interface {
	SweepExpired(ctx context.Context) (store.SweepReport, error)
	IsBanned(ctx context.Context, userID string) (bool, error)
	RegisterUser(ctx context.Context, userID, username string) error
	IsPremium(ctx context.Context, userID string) (bool, error)
	HasCredits(ctx context.Context, userID string) (bool, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Privileges is the policy predicate the gate consults per member.
type Privileges interface {
	IsPrivileged(ctx context.Context, userID string) (bool, error)
}

// ChatOps are the platform side effects. The bot wiring implements them;
// the gate only calls.
type ChatOps interface {
	Members(chatID int64) ([]models.ChatMember, error)
	Ban(chatID, userID int64) error
	SendLog(text string) error
}

// Gate decides, per incoming text message, whether to register the
// sender, ban non-compliant members of the moderated chat, or drop the
// message outright. Steps run in order and short-circuit.
type Gate struct {
	Records Records
	Policy  Privileges
	Chat    ChatOps

	ModeratedChatID int64
	Prefixes        string
}

func (g *Gate) Middleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		// Callback queries have their own guard; the gate only judges
		// text messages.
		if c.Callback() != nil {
			return next(c)
		}

		msg := c.Message()
		if msg == nil || c.Sender() == nil || msg.Text == "" {
			return nil
		}
		first, _ := utf8.DecodeRuneInString(msg.Text)
		if !strings.ContainsRune(g.Prefixes, first) {
			return nil
		}

		ctx := context.Background()

		if c.Chat() != nil && c.Chat().ID == g.ModeratedChatID {
			if err := g.sweepModeratedChat(ctx); err != nil {
				return err
			}
		}

		if _, err := g.Records.SweepExpired(ctx); err != nil {
			return err
		}

		senderID := strconv.FormatInt(c.Sender().ID, 10)
		banned, err := g.Records.IsBanned(ctx, senderID)
		if err != nil {
			return err
		}
		if banned {
			// Banned senders get no feedback at all.
			return nil
		}

		if err := g.Records.RegisterUser(ctx, senderID, c.Sender().Username); err != nil {
			return err
		}
		return next(c)
	}
}

// sweepModeratedChat bans every member of the moderated chat who is not
// an admin, not privileged, not Premium and out of credits. Sequential on
// purpose: log lines stay ordered and no member is banned twice.
func (g *Gate) sweepModeratedChat(ctx context.Context) error {
	members, err := g.Chat.Members(g.ModeratedChatID)
	if err != nil {
		return err
	}

	for _, member := range members {
		if member.IsAdmin {
			continue
		}
		userID := strconv.FormatInt(member.ID, 10)

		privileged, err := g.Policy.IsPrivileged(ctx, userID)
		if err != nil {
			return err
		}
		if privileged {
			continue
		}
		premium, err := g.Records.IsPremium(ctx, userID)
		if err != nil {
			return err
		}
		if premium {
			continue
		}
		hasCredits, err := g.Records.HasCredits(ctx, userID)
		if err != nil {
			return err
		}
		if hasCredits {
			continue
		}

		if err := g.Chat.Ban(g.ModeratedChatID, member.ID); err != nil {
			return err
		}

		username := member.Username
		if info, err := g.Records.GetUser(ctx, userID); err == nil && info.Username != "" {
			username = info.Username
		}
		if err := g.Chat.SendLog(fmt.Sprintf("<b>User eliminado: @%s</b>", username)); err != nil {
			return err
		}
	}
	return nil
}
