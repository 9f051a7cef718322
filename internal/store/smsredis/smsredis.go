// Package smsredis reads SMS one-time codes from Redis instead of the SQL
// store. The external SMS sender drops each issued code at
// <prefix><phone> as a small JSON document with its issuance time; user
// records keep coming from the wrapped store.
package smsredis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/flizi/authcenter/internal/store/core"
)

type codeDoc struct {
	Code       string `json:"code"`
	CreateTime int64  `json:"create_time"` // unix millis
}

type Store struct {
	core.Store // user operations delegate to the wrapped backend

	client *rdb.Client
	prefix string
}

// Wrap layers Redis-backed SMS code reads over inner.
func Wrap(inner core.Store, client *rdb.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "sms:code:"
	}
	return &Store{Store: inner, client: client, prefix: prefix}
}

// NewClient builds the Redis client for the configured address.
func NewClient(addr string, db int) *rdb.Client {
	return rdb.NewClient(&rdb.Options{Addr: addr, DB: db})
}

func (s *Store) LatestSmsCode(ctx context.Context, phone string) (*core.SmsCode, error) {
	b, err := s.client.Get(ctx, s.prefix+phone).Bytes()
	if err != nil {
		if errors.Is(err, rdb.Nil) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var doc codeDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode sms code: %w", err)
	}
	return &core.SmsCode{
		Phone:      phone,
		Code:       doc.Code,
		CreateTime: time.UnixMilli(doc.CreateTime),
	}, nil
}
