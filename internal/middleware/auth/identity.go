// Package auth verifies caller tokens and decides whether a caller may read
// or mutate the catalog.
package auth

import (
	"context"
	"errors"
	"strings"

	"movietracker/internal/shared"
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrNotAdmin     = errors.New("administrator access required")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier turns a raw bearer token into a verified identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (shared.Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id shared.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (shared.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(shared.Identity)
	if !ok || id.Anonymous() {
		return shared.Identity{}, false
	}
	return id, true
}

// Gate answers the two questions the catalog asks: is anyone signed in, and is
// it the administrator.
type Gate struct {
	adminEmail string
}

func NewGate(adminEmail string) *Gate {
	return &Gate{adminEmail: strings.TrimSpace(adminEmail)}
}

// IsAdmin compares emails case-insensitively. An unset admin email matches no one.
func (g *Gate) IsAdmin(id shared.Identity) bool {
	if g.adminEmail == "" || id.Anonymous() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(id.Email), g.adminEmail)
}

func (g *Gate) RequireSignedIn(ctx context.Context) (shared.Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return shared.Identity{}, ErrNotSignedIn
	}
	return id, nil
}

func (g *Gate) RequireAdmin(ctx context.Context) (shared.Identity, error) {
	id, err := g.RequireSignedIn(ctx)
	if err != nil {
		return id, err
	}
	if !g.IsAdmin(id) {
		return id, ErrNotAdmin
	}
	return id, nil
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []Verifier

func (c ChainVerifier) Verify(ctx context.Context, token string) (shared.Identity, error) {
	if len(c) == 0 {
		return shared.Identity{}, ErrInvalidToken
	}
	var errs []error
	for _, v := range c {
		id, err := v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	return shared.Identity{}, errors.Join(append([]error{ErrInvalidToken}, errs...)...)
}
