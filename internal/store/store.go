// Package store opens the configured credential-store backend.
package store

import (
	"context"
	"fmt"

	"github.com/flizi/authcenter/internal/store/core"
	"github.com/flizi/authcenter/internal/store/memory"
	"github.com/flizi/authcenter/internal/store/pg"
)

// Config selects and tunes the backend.
type Config struct {
	Driver          string // "postgres" | "memory"
	DSN             string
	MaxConns        int
	ConnMaxLifetime string
}

// Close tears the backend down if it holds external resources, such as the
// Postgres pool. Backends without teardown are left alone.
func Close(st core.Store) {
	if c, ok := st.(interface{ Close() }); ok {
		c.Close()
	}
}

// Open returns a ready Store for the configured driver.
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return pg.Open(ctx, pg.Config{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
