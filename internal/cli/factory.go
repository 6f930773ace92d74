package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/internal/config"
	"github.com/aretw0/tela/pkg/adapters/memory"
	"github.com/aretw0/tela/pkg/adapters/redis"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// lockTTL bounds how long a crashed replica can hold a translation lock.
const lockTTL = 30 * time.Second

// Stack is a translator with the collaborators the servers expose.
type Stack struct {
	Translator *tela.Translator
	Registry   *prometheus.Registry
}

// NewStack builds a translator for long running commands: metrics on a
// private registry and a cache in Redis when configured, in memory
// otherwise.
func NewStack(file config.File, cfg domain.Config, logger *slog.Logger, observers ...domain.Observer) (*Stack, error) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := []tela.Option{
		tela.WithConfig(cfg),
		tela.WithLogger(logger),
		tela.WithMetrics(metrics),
		tela.WithObserver(fanOut(observers)),
	}
	if file.Cache.RedisAddr != "" {
		cache := redis.New(file.Cache.RedisAddr, file.Cache.RedisPassword, file.Cache.RedisDB, redis.WithTTL(file.Cache.TTL))
		opts = append(opts, tela.WithCache(cache), tela.WithLocker(cache.Locker(), lockTTL))
		logger.Info("using redis cache", "addr", file.Cache.RedisAddr)
	} else {
		opts = append(opts, tela.WithCache(memory.NewCache()), tela.WithLocker(memory.NewLocker(), lockTTL))
	}

	tr, err := tela.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Stack{Translator: tr, Registry: reg}, nil
}

func fanOut(observers []domain.Observer) domain.Observer {
	return func(e domain.Event) {
		for _, obs := range observers {
			if obs != nil {
				obs(e)
			}
		}
	}
}
