// Package pg is the Postgres credential store, backed by pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flizi/authcenter/internal/store/core"
)

// Config tunes the connection pool.
type Config struct {
	DSN             string
	MaxConns        int
	ConnMaxLifetime string
}

type Store struct {
	pool *pgxpool.Pool
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime != "" {
		d, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("conn_max_lifetime: %w", err)
		}
		pc.MaxConnLifetime = d
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

const userColumns = `user_id, password, COALESCE(phone,''), COALESCE(wx_openid,''), COALESCE(wx_unionid,''), COALESCE(github_id,''), created_at`

func (s *Store) FindByUserID(ctx context.Context, userID string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM user_account WHERE user_id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, q, userID))
}

func (s *Store) FindByColumn(ctx context.Context, column, value string) (*core.User, error) {
	// Whitelisted column names only; anything else never reaches the SQL.
	switch column {
	case core.ColumnPhone, core.ColumnWxUnionID, core.ColumnGithubID:
	default:
		return nil, fmt.Errorf("%w: column %q", core.ErrInvalid, column)
	}
	if value == "" {
		return nil, core.ErrNotFound
	}
	q := `SELECT ` + userColumns + ` FROM user_account WHERE ` + column + ` = $1`
	return s.scanUser(s.pool.QueryRow(ctx, q, value))
}

func (s *Store) Insert(ctx context.Context, u *core.User) error {
	const q = `
		INSERT INTO user_account (password, phone, wx_openid, wx_unionid, github_id, created_at)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NOW())
		RETURNING user_id, created_at
	`
	err := s.pool.QueryRow(ctx, q, u.Password, u.Phone, u.WxOpenID, u.WxUnionID, u.GithubID).
		Scan(&u.ID, &u.CreatedAt)
	return mapError(err)
}

func (s *Store) UpdateWxOpenID(ctx context.Context, userID, openID string) error {
	return s.exec(ctx, `UPDATE user_account SET wx_openid = NULLIF($2,'') WHERE user_id = $1`, userID, openID)
}

func (s *Store) UpdateWxUnionID(ctx context.Context, userID, unionID string) error {
	return s.exec(ctx, `UPDATE user_account SET wx_unionid = NULLIF($2,'') WHERE user_id = $1`, userID, unionID)
}

func (s *Store) UpdatePhone(ctx context.Context, userID, phone string) error {
	return s.exec(ctx, `UPDATE user_account SET phone = NULLIF($2,'') WHERE user_id = $1`, userID, phone)
}

func (s *Store) UpdatePassword(ctx context.Context, phone, passwordHash string) error {
	return s.exec(ctx, `UPDATE user_account SET password = $2 WHERE phone = $1`, phone, passwordHash)
}

func (s *Store) LatestSmsCode(ctx context.Context, phone string) (*core.SmsCode, error) {
	const q = `
		SELECT phone, code, create_time FROM sms_code
		WHERE phone = $1 ORDER BY create_time DESC LIMIT 1
	`
	var c core.SmsCode
	err := s.pool.QueryRow(ctx, q, phone).Scan(&c.Phone, &c.Code, &c.CreateTime)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *Store) scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Password, &u.Phone, &u.WxOpenID, &u.WxUnionID, &u.GithubID, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// mapError folds driver errors into the store taxonomy. 23505 is
// unique_violation.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", core.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
