// Package bootstrap builds the dispatch engine the same way for every binary.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/igrejaconecta/broadcaster/internal/dispatch"
	"github.com/igrejaconecta/broadcaster/internal/store"
	"github.com/igrejaconecta/broadcaster/internal/whatsapp"
	"github.com/igrejaconecta/broadcaster/pkg/config"
	"github.com/igrejaconecta/broadcaster/pkg/logx"
)

// Engine wires store, provider and claimer. Claims go through Redis when it is
// configured and through Postgres advisory locks otherwise, so every binary
// sharing the database sees the same claims. close releases the Redis client
// when one was opened.
func Engine(sqlDB *sql.DB, d config.DispatchConfig, wa config.WhatsAppConfig, rc config.RedisConfig) (*dispatch.Engine, func(), error) {
	st := store.New(sqlDB)

	provider := whatsapp.NewClient(whatsapp.Options{
		BaseURL:    wa.BaseURL,
		APIVersion: wa.APIVersion,
		Timeout:    wa.Timeout,
		RatePerSec: float64(wa.RatePerSec),
	})

	var claimer dispatch.Claimer = dispatch.NewPgClaimer(sqlDB)
	closeFn := func() {}
	if rc.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     rc.Address,
			Password: rc.Password,
			DB:       rc.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", rc.Address, err)
		}
		claimer = dispatch.NewRedisClaimer(rdb, d.ClaimTTL)
		closeFn = func() {
			if err := rdb.Close(); err != nil {
				logx.L().Warnw("redis_close_error", "error", err)
			}
		}
		logx.L().Infow("claimer_redis", "addr", rc.Address, "ttl", d.ClaimTTL.String())
	} else {
		logx.L().Infow("claimer_postgres")
	}

	e := dispatch.New(st, st, st, provider, claimer, dispatch.Options{
		Concurrency: d.Concurrency,
		PageSize:    d.PageSize,
	})
	return e, closeFn, nil
}
