package middleware

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

// Flood control talks to a real Redis. Set REDIS_TEST_ADDR to enable.
func testFloodControl(t *testing.T) (*FloodControl, context.Context) {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())
	t.Cleanup(func() { rdb.Close() })

	f := NewFloodControl(rdb, "999", "/!.$#")
	f.cooldown = 200 * time.Millisecond
	return f, ctx
}

// The command check runs before any Redis call; the nil client here would
// panic if plain chatter ever reached the throttle.
func TestFloodControlIgnoresPlainChat(t *testing.T) {
	f := NewFloodControl(nil, "999", "/!.$#")

	for _, text := range []string{"hola", "que tal", "me gusta /start"} {
		passed := false
		next := func(c telebot.Context) error {
			passed = true
			return nil
		}
		err := f.Middleware(next)(textContext(7, 100, text))
		require.NoError(t, err)
		assert.True(t, passed, "plain text %q must pass through untouched", text)
	}
}

func TestFloodControlSkipsOwner(t *testing.T) {
	f := NewFloodControl(nil, "999", "/!.$#")

	passed := false
	next := func(c telebot.Context) error {
		passed = true
		return nil
	}
	err := f.Middleware(next)(textContext(999, 100, "/me"))
	require.NoError(t, err)
	assert.True(t, passed, "the owner is never throttled")
}

func TestFloodControlThrottlesCommands(t *testing.T) {
	f, ctx := testFloodControl(t)

	next := func(c telebot.Context) error { return nil }
	require.NoError(t, f.Middleware(next)(textContext(8, 100, "/start")))

	ok, err := f.allow(ctx, 8)
	require.NoError(t, err)
	assert.False(t, ok, "the command claimed the cooldown slot")
}

func TestFloodControlCooldown(t *testing.T) {
	f, ctx := testFloodControl(t)

	ok, err := f.allow(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok, "first command is always allowed")

	ok, err = f.allow(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "second command inside the cooldown is flood")

	time.Sleep(f.cooldown + 50*time.Millisecond)

	ok, err = f.allow(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok, "cooldown expired")
}

func TestFloodControlEscalation(t *testing.T) {
	f, ctx := testFloodControl(t)

	for i := int64(1); i < 5; i++ {
		warnings, err := f.addWarning(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, i, warnings)
	}

	require.NoError(t, f.mute(ctx, 2))

	muted, err := f.isMuted(ctx, 2)
	require.NoError(t, err)
	assert.True(t, muted)

	// Muting clears the warning counter.
	warnings, err := f.addWarning(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), warnings)
}

func TestFloodControlResetWarnings(t *testing.T) {
	f, ctx := testFloodControl(t)

	_, err := f.addWarning(ctx, 3)
	require.NoError(t, err)

	f.resetWarnings(ctx, 3)

	warnings, err := f.addWarning(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), warnings)
}
