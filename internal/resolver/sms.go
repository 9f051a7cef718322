package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/store/core"
)

// DefaultCodeWindow is how long an SMS code stays valid after issuance.
const DefaultCodeWindow = 60 * time.Second

// SMS resolves a "phone:code" credential against the latest issued code for
// that phone. It never creates accounts; signup owns that path.
type SMS struct {
	Store  core.Store
	Window time.Duration

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// Resolve verifies the code and returns the account owning the phone.
func (s *SMS) Resolve(ctx context.Context, credential, _ string) (*core.User, error) {
	log := logger.From(ctx).With(logger.Component("resolver.sms"))

	phone, code, ok := strings.Cut(credential, ":")
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrInvalidCredential)
	}

	sms, err := s.Store.LatestSmsCode(ctx, phone)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, fmt.Errorf("%w: no code issued", ErrInvalidCredential)
		}
		return nil, fmt.Errorf("latest sms code: %w", err)
	}

	if sms.Code != code {
		log.Info("sms code mismatch", logger.Phone(phone))
		return nil, fmt.Errorf("%w: code mismatch", ErrInvalidCredential)
	}
	if s.now().Sub(sms.CreateTime) > s.window() {
		log.Info("sms code expired", logger.Phone(phone))
		return nil, fmt.Errorf("%w: code expired", ErrInvalidCredential)
	}

	u, err := s.Store.FindByColumn(ctx, core.ColumnPhone, phone)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find by phone: %w", err)
	}
	return u, nil
}

func (s *SMS) window() time.Duration {
	if s.Window > 0 {
		return s.Window
	}
	return DefaultCodeWindow
}

func (s *SMS) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
