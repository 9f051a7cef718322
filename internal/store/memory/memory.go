// Package memory is the in-process credential store used in dev and tests.
// Uniqueness of phone / wx_unionid / github_id is enforced the same way the
// SQL backends do it, so the conflict-retry path is exercised here too.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/flizi/authcenter/internal/store/core"
)

type Store struct {
	mu   sync.RWMutex
	byID map[string]core.User
	// unique indexes: non-empty identifier value -> user id
	byColumn map[string]map[string]string

	sms *gocache.Cache
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID: map[string]core.User{},
		byColumn: map[string]map[string]string{
			core.ColumnPhone:     {},
			core.ColumnWxUnionID: {},
			core.ColumnGithubID:  {},
		},
		// Codes linger well past the verification window; freshness is the
		// resolver's check, eviction here is just housekeeping.
		sms: gocache.New(24*time.Hour, 10*time.Minute),
	}
}

func (s *Store) FindByUserID(_ context.Context, userID string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindByColumn(_ context.Context, column, value string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byColumn[column]
	if !ok {
		return nil, fmt.Errorf("%w: column %q", core.ErrInvalid, column)
	}
	if value == "" {
		return nil, core.ErrNotFound
	}
	id, ok := idx[value]
	if !ok {
		return nil, core.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *Store) Insert(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for column, value := range map[string]string{
		core.ColumnPhone:     u.Phone,
		core.ColumnWxUnionID: u.WxUnionID,
		core.ColumnGithubID:  u.GithubID,
	} {
		if value == "" {
			continue
		}
		if _, taken := s.byColumn[column][value]; taken {
			return fmt.Errorf("%w: duplicate %s", core.ErrConflict, column)
		}
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	s.byID[u.ID] = *u
	s.index(u)
	return nil
}

func (s *Store) UpdateWxOpenID(_ context.Context, userID, openID string) error {
	return s.update(userID, func(u *core.User) error {
		u.WxOpenID = openID
		return nil
	})
}

func (s *Store) UpdateWxUnionID(_ context.Context, userID, unionID string) error {
	return s.update(userID, func(u *core.User) error {
		if err := s.checkUnique(core.ColumnWxUnionID, unionID, userID); err != nil {
			return err
		}
		s.unindex(core.ColumnWxUnionID, u.WxUnionID)
		u.WxUnionID = unionID
		return nil
	})
}

func (s *Store) UpdatePhone(_ context.Context, userID, phone string) error {
	return s.update(userID, func(u *core.User) error {
		if err := s.checkUnique(core.ColumnPhone, phone, userID); err != nil {
			return err
		}
		s.unindex(core.ColumnPhone, u.Phone)
		u.Phone = phone
		return nil
	})
}

func (s *Store) UpdatePassword(_ context.Context, phone, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byColumn[core.ColumnPhone][phone]
	if !ok {
		return core.ErrNotFound
	}
	u := s.byID[id]
	u.Password = passwordHash
	s.byID[id] = u
	return nil
}

func (s *Store) LatestSmsCode(_ context.Context, phone string) (*core.SmsCode, error) {
	v, ok := s.sms.Get(phone)
	if !ok {
		return nil, core.ErrNotFound
	}
	code := v.(core.SmsCode)
	return &code, nil
}

// PutSmsCode records an issued code. In production the SMS sender owns this
// write; the store only exposes it for dev seeding and tests.
func (s *Store) PutSmsCode(code core.SmsCode) {
	s.sms.Set(code.Phone, code, gocache.DefaultExpiration)
}

func (s *Store) update(userID string, fn func(*core.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return core.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	s.byID[userID] = u
	s.index(&u)
	return nil
}

func (s *Store) checkUnique(column, value, selfID string) error {
	if value == "" {
		return nil
	}
	if owner, taken := s.byColumn[column][value]; taken && owner != selfID {
		return fmt.Errorf("%w: duplicate %s", core.ErrConflict, column)
	}
	return nil
}

func (s *Store) index(u *core.User) {
	if u.Phone != "" {
		s.byColumn[core.ColumnPhone][u.Phone] = u.ID
	}
	if u.WxUnionID != "" {
		s.byColumn[core.ColumnWxUnionID][u.WxUnionID] = u.ID
	}
	if u.GithubID != "" {
		s.byColumn[core.ColumnGithubID][u.GithubID] = u.ID
	}
}

func (s *Store) unindex(column, value string) {
	if value != "" {
		delete(s.byColumn[column], value)
	}
}
