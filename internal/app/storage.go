package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/cache"
)

// OpenStorage builds the configured cache backend. The returned close
// function is never nil.
func OpenStorage(ctx context.Context, c CacheConfig) (cache.Storage, func() error, error) {
	noop := func() error { return nil }
	switch c.Backend {
	case BackendFile, "":
		log.Debug().Str("dir", c.Dir).Bool("strictPerms", c.StrictPerms).Msg("using file cache")
		return &cache.FileStorage{Dir: c.Dir, StrictPerms: c.StrictPerms}, noop, nil
	case BackendSQLite:
		s, err := cache.OpenSQLite(ctx, c.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		log.Debug().Str("path", c.SQLitePath).Msg("using sqlite cache")
		return s, s.Close, nil
	case BackendRedis:
		s := cache.NewRedisStorage(c.RedisAddr, c.RedisPass, c.RedisDB)
		s.Expiration = cache.RedisExpiration(c.TTL)
		log.Debug().Str("addr", c.RedisAddr).Int("db", c.RedisDB).Msg("using redis cache")
		return s, s.Close, nil
	case BackendMemory:
		return cache.NewMemoryStorage(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", c.Backend)
}
