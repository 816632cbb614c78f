// Package cache stores rendered list pages so repeated browsing does not hit
// the database. Entries are keyed under a generation number; bumping the
// generation orphans every entry at once.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const keyPrefix = "catalog:list"

// ListCache is safe for concurrent use. Callers read the generation once,
// before loading from the database, and pass it to both Get and Set; a page
// computed before an invalidation is then stored under the stale generation
// where nobody will read it.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	// Get reports a miss as (nil, false, nil).
	Get(ctx context.Context, generation int64, key string) ([]byte, bool, error)
	Set(ctx context.Context, generation int64, key string, value []byte) error
	// Invalidate drops every cached list page.
	Invalidate(ctx context.Context) error
	Close() error
}

type Options struct {
	Backend       string // none, memory, redis
	RedisURL      string
	RedisPassword string
	TTL           time.Duration
}

// New builds the configured backend.
func New(ctx context.Context, opts Options, logger *slog.Logger) (ListCache, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "none":
		return Nop{}, nil
	case "memory":
		logger.Info("List cache enabled", "backend", "memory", "ttl", opts.TTL)
		return NewMemory(opts.TTL), nil
	case "redis":
		c, err := NewRedis(ctx, opts.RedisURL, opts.RedisPassword, opts.TTL)
		if err != nil {
			return nil, err
		}
		logger.Info("List cache enabled", "backend", "redis", "ttl", opts.TTL)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

func entryKey(generation int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, generation, key)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Generation(context.Context) (int64, error)                { return 0, nil }
func (Nop) Get(context.Context, int64, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, int64, string, []byte) error         { return nil }
func (Nop) Invalidate(context.Context) error                         { return nil }
func (Nop) Close() error                                             { return nil }
