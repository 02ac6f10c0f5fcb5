// Package policy holds the pure membership predicates. It reads through
// the store's accessors and never mutates anything.
package policy

import "context"

// Accessors is the slice of the record store the predicates consume.
type Accessors interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	IsSeller(ctx context.Context, userID string) (bool, error)
	GroupAuthorized(ctx context.Context, chatID string) (bool, error)
}

type Policy struct {
	store Accessors
}

func New(store Accessors) *Policy {
	return &Policy{store: store}
}

// IsAuthorized reports whether the message may use paid features: either
// the sender is Premium or the chat itself holds an authorization.
func (p *Policy) IsAuthorized(ctx context.Context, userID, chatID string) (bool, error) {
	premium, err := p.store.IsPremium(ctx, userID)
	if err != nil {
		return false, err
	}
	if premium {
		return true, nil
	}
	return p.store.GroupAuthorized(ctx, chatID)
}

// IsPrivileged reports whether the user holds a staff rank.
func (p *Policy) IsPrivileged(ctx context.Context, userID string) (bool, error) {
	admin, err := p.store.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return p.store.IsSeller(ctx, userID)
}
