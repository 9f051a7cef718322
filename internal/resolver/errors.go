package resolver

import (
	"errors"

	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/store/core"
)

var (
	// ErrNotFound means no account matches the presented identifier.
	ErrNotFound = errors.New("identity not found")

	// ErrInvalidCredential means the credential itself is bad: malformed
	// SMS input, wrong code, expired code.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrConflict means a concurrent resolution won an insert race and the
	// retry could not recover the winner's record.
	ErrConflict = errors.New("store conflict")
)

// Declined reports whether err is a resolver-local failure that must
// collapse to "no identity" at the facade, indistinguishable from the other
// declined causes so callers cannot enumerate which identifiers exist.
// Provider-unreachable and unresolved store conflicts are not declined;
// they propagate as faults.
func Declined(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, provider.ErrRejected) ||
		errors.Is(err, core.ErrNotFound)
}
