package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type cbContext struct {
	fakeContext
	responded *telebot.CallbackResponse
}

func (c *cbContext) Respond(resp ...*telebot.CallbackResponse) error {
	if len(resp) > 0 {
		c.responded = resp[0]
	} else {
		c.responded = &telebot.CallbackResponse{}
	}
	return nil
}

func menuCallback(pressedBy, menuOwner int64) *cbContext {
	return &cbContext{
		fakeContext: fakeContext{
			callback: &telebot.Callback{
				Sender: &telebot.User{ID: pressedBy},
				Message: &telebot.Message{
					ReplyTo: &telebot.Message{
						Sender: &telebot.User{ID: menuOwner},
					},
				},
			},
		},
	}
}

func TestMenuGuardBlocksForeignMenus(t *testing.T) {
	c := menuCallback(2, 1)

	passed := false
	err := MenuGuard(func(telebot.Context) error {
		passed = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.False(t, passed)
	require.NotNil(t, c.responded)
	assert.True(t, c.responded.ShowAlert)
}

func TestMenuGuardAllowsOwnMenu(t *testing.T) {
	c := menuCallback(1, 1)

	passed := false
	err := MenuGuard(func(telebot.Context) error {
		passed = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, passed)
	assert.Nil(t, c.responded)
}

func TestMenuGuardIgnoresPlainMessages(t *testing.T) {
	c := &cbContext{fakeContext: fakeContext{
		sender:  &telebot.User{ID: 1},
		message: &telebot.Message{Text: "/start"},
	}}

	passed := false
	err := MenuGuard(func(telebot.Context) error {
		passed = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, passed)
}
