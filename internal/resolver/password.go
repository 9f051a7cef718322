package resolver

import (
	"context"
	"fmt"

	"github.com/flizi/authcenter/internal/store/core"
)

// Password looks an account up by its user id for the username/password
// login path. The record is returned with its password hash; comparing the
// hash against a supplied plaintext happens at the caller, never here.
type Password struct {
	Store core.Store
}

// ResolveUsername returns the account whose id equals username.
func (p *Password) ResolveUsername(ctx context.Context, username string) (*core.User, error) {
	u, err := p.Store.FindByUserID(ctx, username)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find by user id: %w", err)
	}
	return u, nil
}
