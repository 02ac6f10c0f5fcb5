package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccessors struct {
	premium    map[string]bool
	admins     map[string]bool
	sellers    map[string]bool
	authorized map[string]bool
	err        error
}

func (f *fakeAccessors) IsPremium(_ context.Context, id string) (bool, error) {
	return f.premium[id], f.err
}
func (f *fakeAccessors) IsAdmin(_ context.Context, id string) (bool, error) {
	return f.admins[id], f.err
}
func (f *fakeAccessors) IsSeller(_ context.Context, id string) (bool, error) {
	return f.sellers[id], f.err
}
func (f *fakeAccessors) GroupAuthorized(_ context.Context, id string) (bool, error) {
	return f.authorized[id], f.err
}

func TestIsAuthorized(t *testing.T) {
	ctx := context.Background()
	p := New(&fakeAccessors{
		premium:    map[string]bool{"10": true},
		authorized: map[string]bool{"-100": true},
	})

	tests := []struct {
		name string
		user string
		chat string
		want bool
	}{
		{"premium user in plain chat", "10", "-200", true},
		{"free user in authorized chat", "20", "-100", true},
		{"premium user in authorized chat", "10", "-100", true},
		{"free user in plain chat", "20", "-200", false},
		{"unknown user", "99", "-200", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.IsAuthorized(ctx, tt.user, tt.chat)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPrivileged(t *testing.T) {
	ctx := context.Background()
	p := New(&fakeAccessors{
		admins:  map[string]bool{"1": true},
		sellers: map[string]bool{"2": true},
	})

	for _, tt := range []struct {
		user string
		want bool
	}{
		{"1", true},
		{"2", true},
		{"3", false},
	} {
		got, err := p.IsPrivileged(ctx, tt.user)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "user %s", tt.user)
	}
}

func TestAccessorErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("store down")
	p := New(&fakeAccessors{err: boom})

	_, err := p.IsAuthorized(ctx, "1", "-1")
	assert.ErrorIs(t, err, boom)

	_, err = p.IsPrivileged(ctx, "1")
	assert.ErrorIs(t, err, boom)
}
