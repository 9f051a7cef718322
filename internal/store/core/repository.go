package core

import "context"

// Store is the credential store the resolvers run against. Insert and the
// Update* calls are individually atomic; nothing guarantees atomicity across
// a lookup-then-insert sequence, so callers must treat ErrConflict from
// Insert as retryable (re-read and use the now-existing record).
type Store interface {
	// FindByUserID returns the account with the given id.
	// Returns ErrNotFound if absent.
	FindByUserID(ctx context.Context, userID string) (*User, error)

	// FindByColumn returns the account whose column (ColumnPhone,
	// ColumnWxUnionID or ColumnGithubID) equals value.
	// Returns ErrNotFound if absent, ErrInvalid for unknown columns.
	FindByColumn(ctx context.Context, column, value string) (*User, error)

	// Insert persists a new account and assigns User.ID.
	// Returns ErrConflict on a unique-constraint violation.
	Insert(ctx context.Context, u *User) error

	UpdateWxOpenID(ctx context.Context, userID, openID string) error
	UpdateWxUnionID(ctx context.Context, userID, unionID string) error
	UpdatePhone(ctx context.Context, userID, phone string) error

	// UpdatePassword replaces the password hash of the account owning phone.
	UpdatePassword(ctx context.Context, phone, passwordHash string) error

	// LatestSmsCode returns the most recently issued code for phone.
	// Returns ErrNotFound if none was ever issued.
	LatestSmsCode(ctx context.Context, phone string) (*SmsCode, error)
}
