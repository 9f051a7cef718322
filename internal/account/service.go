// Package account covers the account-lifecycle operations next to login:
// phone signup and attaching additional identifiers (phone, WeChat) to an
// already-authenticated account.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/resolver"
	"github.com/flizi/authcenter/internal/security/password"
	"github.com/flizi/authcenter/internal/store/core"
)

var (
	// ErrInvalidCode means the SMS code is missing, wrong or expired.
	ErrInvalidCode = errors.New("invalid sms code")

	// ErrWeakPassword means the password fails the minimum-length check.
	ErrWeakPassword = errors.New("password too short")

	// ErrPhoneTaken means the phone already belongs to another account.
	ErrPhoneTaken = errors.New("phone already bound")

	// ErrMissingUnionID means the WeChat exchange yielded no union id, so
	// there is nothing stable to bind.
	ErrMissingUnionID = errors.New("wechat exchange without unionid")
)

// MinPasswordLen is the signup minimum.
const MinPasswordLen = 6

// Service implements signup and bind.
type Service struct {
	Store  core.Store
	WxMP   provider.Exchanger
	WxOpen provider.Exchanger

	Window time.Duration
	Now    func() time.Time
}

// Signup registers a phone with a password after SMS verification. If the
// phone already has an account, its password is reset instead; the signup
// form doubles as password recovery upstream.
func (s *Service) Signup(ctx context.Context, phone, code, plain string) (string, error) {
	log := logger.From(ctx).With(logger.Component("account.signup"))

	if len(plain) < MinPasswordLen {
		return "", ErrWeakPassword
	}
	if err := s.verifyCode(ctx, phone, code); err != nil {
		return "", err
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Store.FindByColumn(ctx, core.ColumnPhone, phone)
	if err != nil {
		if !core.IsNotFound(err) {
			return "", fmt.Errorf("find by phone: %w", err)
		}
		created := &core.User{Phone: phone, Password: hash}
		if err := s.Store.Insert(ctx, created); err != nil {
			if core.IsConflict(err) {
				// Concurrent signup for the same phone; treat like the
				// existing-account branch.
				if existing, rerr := s.Store.FindByColumn(ctx, core.ColumnPhone, phone); rerr == nil {
					if uerr := s.Store.UpdatePassword(ctx, phone, hash); uerr != nil {
						return "", fmt.Errorf("update password: %w", uerr)
					}
					return existing.ID, nil
				}
			}
			return "", fmt.Errorf("insert user: %w", err)
		}
		log.Info("account created by signup", logger.UserID(created.ID), logger.Phone(phone))
		return created.ID, nil
	}

	if err := s.Store.UpdatePassword(ctx, phone, hash); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}
	log.Info("password reset by signup", logger.UserID(u.ID), logger.Phone(phone))
	return u.ID, nil
}

// BindPhone attaches a phone to an existing account after SMS verification.
// Fails if any account already owns the phone.
func (s *Service) BindPhone(ctx context.Context, userID, phone, code string) error {
	if _, err := s.Store.FindByColumn(ctx, core.ColumnPhone, phone); err == nil {
		return ErrPhoneTaken
	} else if !core.IsNotFound(err) {
		return fmt.Errorf("find by phone: %w", err)
	}

	if err := s.verifyCode(ctx, phone, code); err != nil {
		return err
	}
	if err := s.Store.UpdatePhone(ctx, userID, phone); err != nil {
		if core.IsConflict(err) {
			return ErrPhoneTaken
		}
		return fmt.Errorf("update phone: %w", err)
	}
	logger.From(ctx).Info("phone bound",
		logger.Component("account.bind"), logger.UserID(userID), logger.Phone(phone))
	return nil
}

// BindWechatMP attaches the WeChat identifiers from an Official Account
// code to an existing account.
func (s *Service) BindWechatMP(ctx context.Context, userID, code string) error {
	tok, err := s.WxMP.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("wechat mp exchange: %w", err)
	}
	if tok.UnionID == "" {
		return ErrMissingUnionID
	}
	if err := s.Store.UpdateWxOpenID(ctx, userID, tok.OpenID); err != nil {
		return fmt.Errorf("update openid: %w", err)
	}
	if err := s.Store.UpdateWxUnionID(ctx, userID, tok.UnionID); err != nil {
		if core.IsConflict(err) {
			return fmt.Errorf("%w: unionid already bound elsewhere", core.ErrConflict)
		}
		return fmt.Errorf("update unionid: %w", err)
	}
	logger.From(ctx).Info("wechat mp bound",
		logger.Component("account.bind"), logger.UserID(userID))
	return nil
}

// BindWechatOpen attaches the union id from an Open Platform code to an
// existing account.
func (s *Service) BindWechatOpen(ctx context.Context, userID, code string) error {
	tok, err := s.WxOpen.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("wechat open exchange: %w", err)
	}
	if tok.UnionID == "" {
		return ErrMissingUnionID
	}
	if err := s.Store.UpdateWxUnionID(ctx, userID, tok.UnionID); err != nil {
		if core.IsConflict(err) {
			return fmt.Errorf("%w: unionid already bound elsewhere", core.ErrConflict)
		}
		return fmt.Errorf("update unionid: %w", err)
	}
	logger.From(ctx).Info("wechat open bound",
		logger.Component("account.bind"), logger.UserID(userID))
	return nil
}

func (s *Service) verifyCode(ctx context.Context, phone, code string) error {
	sms, err := s.Store.LatestSmsCode(ctx, phone)
	if err != nil {
		if core.IsNotFound(err) {
			return ErrInvalidCode
		}
		return fmt.Errorf("latest sms code: %w", err)
	}
	if sms.Code != code || s.now().Sub(sms.CreateTime) > s.window() {
		return ErrInvalidCode
	}
	return nil
}

func (s *Service) window() time.Duration {
	if s.Window > 0 {
		return s.Window
	}
	return resolver.DefaultCodeWindow
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
