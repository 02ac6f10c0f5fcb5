package middleware

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"creditguard-bot/models"
	"creditguard-bot/store"
)

type fakeRecords struct {
	banned     map[string]bool
	premium    map[string]bool
	credits    map[string]int
	users      map[string]*models.User
	sweeps     int
	registered []string
}

func (f *fakeRecords) SweepExpired(context.Context) (store.SweepReport, error) {
	f.sweeps++
	return store.SweepReport{}, nil
}
func (f *fakeRecords) IsBanned(_ context.Context, id string) (bool, error) {
	return f.banned[id], nil
}
func (f *fakeRecords) RegisterUser(_ context.Context, id, username string) error {
	f.registered = append(f.registered, id)
	return nil
}
func (f *fakeRecords) IsPremium(_ context.Context, id string) (bool, error) {
	return f.premium[id], nil
}
func (f *fakeRecords) HasCredits(_ context.Context, id string) (bool, error) {
	return f.credits[id] > 0, nil
}
func (f *fakeRecords) GetUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

type fakePrivileges struct {
	privileged map[string]bool
}

func (f *fakePrivileges) IsPrivileged(_ context.Context, id string) (bool, error) {
	return f.privileged[id], nil
}

type fakeChat struct {
	members []models.ChatMember
	bans    []int64
	logs    []string
}

func (f *fakeChat) Members(int64) ([]models.ChatMember, error) { return f.members, nil }
func (f *fakeChat) Ban(_, userID int64) error {
	f.bans = append(f.bans, userID)
	return nil
}
func (f *fakeChat) SendLog(text string) error {
	f.logs = append(f.logs, text)
	return nil
}

// fakeContext stubs just the telebot surface the gate touches.
type fakeContext struct {
	telebot.Context
	sender   *telebot.User
	chat     *telebot.Chat
	message  *telebot.Message
	callback *telebot.Callback
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Chat() *telebot.Chat         { return f.chat }
func (f *fakeContext) Message() *telebot.Message   { return f.message }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }

func textContext(senderID, chatID int64, text string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: senderID, Username: "sender"},
		chat:    &telebot.Chat{ID: chatID},
		message: &telebot.Message{Text: text},
	}
}

func newGate(records *fakeRecords, priv *fakePrivileges, chat *fakeChat) *Gate {
	return &Gate{
		Records:         records,
		Policy:          priv,
		Chat:            chat,
		ModeratedChatID: -100,
		Prefixes:        "/!.$#",
	}
}

func run(t *testing.T, g *Gate, c telebot.Context) (passed bool) {
	t.Helper()
	handler := g.Middleware(func(telebot.Context) error {
		passed = true
		return nil
	})
	require.NoError(t, handler(c))
	return passed
}

func TestGateDropsNonCommands(t *testing.T) {
	records := &fakeRecords{}
	g := newGate(records, &fakePrivileges{}, &fakeChat{})

	for _, text := range []string{"", "hola", "just chatting"} {
		passed := run(t, g, textContext(1, 500, text))
		assert.False(t, passed, "text %q should not pass", text)
	}
	assert.Zero(t, records.sweeps, "dropped messages must not reach the sweep")
	assert.Empty(t, records.registered)
}

func TestGateDropsMissingSender(t *testing.T) {
	records := &fakeRecords{}
	g := newGate(records, &fakePrivileges{}, &fakeChat{})

	passed := run(t, g, &fakeContext{message: &telebot.Message{Text: "/start"}})
	assert.False(t, passed)
}

func TestGateRecognizesEveryPrefix(t *testing.T) {
	for _, text := range []string{"/cmd", "!cmd", ".cmd", "$cmd", "#cmd"} {
		records := &fakeRecords{}
		g := newGate(records, &fakePrivileges{}, &fakeChat{})

		passed := run(t, g, textContext(1, 500, text))
		assert.True(t, passed, "text %q should pass", text)
		assert.Equal(t, 1, records.sweeps)
	}
}

func TestGateSilentlyDropsBannedSenders(t *testing.T) {
	records := &fakeRecords{banned: map[string]bool{"7": true}}
	g := newGate(records, &fakePrivileges{}, &fakeChat{})

	passed := run(t, g, textContext(7, 500, "/start"))
	assert.False(t, passed)
	assert.Equal(t, 1, records.sweeps, "sweep runs before the ban check")
	assert.Empty(t, records.registered, "banned senders are not re-registered")
}

func TestGateRegistersAndPasses(t *testing.T) {
	records := &fakeRecords{}
	g := newGate(records, &fakePrivileges{}, &fakeChat{})

	passed := run(t, g, textContext(42, 500, "/start"))
	assert.True(t, passed)
	assert.Equal(t, []string{"42"}, records.registered)
}

func TestGatePassesCallbacksUntouched(t *testing.T) {
	records := &fakeRecords{}
	g := newGate(records, &fakePrivileges{}, &fakeChat{})

	passed := run(t, g, &fakeContext{callback: &telebot.Callback{}})
	assert.True(t, passed)
	assert.Zero(t, records.sweeps)
}

// The moderated-chat sweep: A has no credits, B has some, C is a chat
// admin. Only A gets banned, with exactly one log line naming them.
func TestModeratedChatSweep(t *testing.T) {
	records := &fakeRecords{
		credits: map[string]int{"2": 5},
		users: map[string]*models.User{
			"1": {UserID: "1", Username: "alice"},
			"2": {UserID: "2", Username: "bob"},
		},
	}
	chat := &fakeChat{members: []models.ChatMember{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol", IsAdmin: true},
	}}
	g := newGate(records, &fakePrivileges{}, chat)

	// Sender is premium so their own message survives the gate.
	records.premium = map[string]bool{"9": true}
	passed := run(t, g, textContext(9, -100, "/check"))

	assert.True(t, passed)
	assert.Equal(t, []int64{1}, chat.bans)
	require.Len(t, chat.logs, 1)
	assert.True(t, strings.Contains(chat.logs[0], "alice"), "log %q should name alice", chat.logs[0])
}

func TestModeratedChatSparesPrivilegedAndPremium(t *testing.T) {
	records := &fakeRecords{
		premium: map[string]bool{"2": true, "9": true},
	}
	chat := &fakeChat{members: []models.ChatMember{
		{ID: 1, Username: "seller"},
		{ID: 2, Username: "vip"},
	}}
	priv := &fakePrivileges{privileged: map[string]bool{"1": true}}
	g := newGate(records, priv, chat)

	run(t, g, textContext(9, -100, "/check"))
	assert.Empty(t, chat.bans)
	assert.Empty(t, chat.logs)
}

func TestOutsideModeratedChatNoSweepOfMembers(t *testing.T) {
	records := &fakeRecords{}
	chat := &fakeChat{members: []models.ChatMember{{ID: 1, Username: "alice"}}}
	g := newGate(records, &fakePrivileges{}, chat)

	run(t, g, textContext(9, 500, "/check"))
	assert.Empty(t, chat.bans)
}
