// Package auth resolves the owner identity that scopes remote documents.
//
// [Authenticator] is the only thing the storage layer needs: it yields the signed-in [User] or
// nothing. [Anonymous] signs in against the document server once and keeps the credentials in the
// local cache; [Static] returns a configured owner id.
package auth

import (
	"context"
)

// User is the authenticated owner.
type User struct {
	UID string `json:"uid"`
}

// Authenticator ensures there is a signed-in user.
//
// A nil user with a nil error means the session is unauthenticated.
type Authenticator interface {
	EnsureAuthenticated(ctx context.Context) (*User, error)
}

// Static always yields the same owner. An empty UID yields no user.
type Static struct {
	UID string
}

func (s Static) EnsureAuthenticated(context.Context) (*User, error) {
	if s.UID == "" {
		return nil, nil
	}
	return &User{UID: s.UID}, nil
}

// AuthenticatorFunc adapts a function to [Authenticator].
type AuthenticatorFunc func(ctx context.Context) (*User, error)

func (f AuthenticatorFunc) EnsureAuthenticated(ctx context.Context) (*User, error) {
	return f(ctx)
}
