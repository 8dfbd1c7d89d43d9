package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"aloka/internal/metrics"
	"aloka/internal/pkg/logger"
)

const (
	generationKey = "aloka:studios:gen"
	listKeyPrefix = "aloka:studios:list:"

	defaultTTL       = 60 * time.Second
	defaultOpTimeout = 250 * time.Millisecond
	breakerName      = "studio-list-cache"
)

// ErrDisabled is returned by Noop so callers skip the cache entirely.
var ErrDisabled = errors.New("cache disabled")

// StudioList caches serialized studio list pages in Redis. Pages live under
// the current generation; Invalidate bumps it, orphaning every cached page
// at once and letting the TTL reclaim them.
type StudioList struct {
	client    *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	breaker   *gobreaker.CircuitBreaker[[]byte]
	log       zerolog.Logger
}

func NewStudioList(client *redis.Client, ttl time.Duration) *StudioList {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	log := logger.WithComponent("cache")

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a miss is an answer, not a failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.SetCircuitBreakerState(name, to.String())
		},
	}
	metrics.SetCircuitBreakerState(breakerName, gobreaker.StateClosed.String())

	return &StudioList{
		client:    client,
		ttl:       ttl,
		opTimeout: defaultOpTimeout,
		breaker:   gobreaker.NewCircuitBreaker[[]byte](settings),
		log:       log,
	}
}

// NewFromURL connects to the redis:// URL and verifies the connection.
func NewFromURL(ctx context.Context, rawURL string, ttl time.Duration) (*StudioList, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewStudioList(client, ttl), nil
}

func (c *StudioList) do(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.breaker.Execute(func() ([]byte, error) {
		return fn(ctx)
	})
}

func listKey(gen int64, key string) string {
	return listKeyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *StudioList) Generation(ctx context.Context) (int64, error) {
	raw, err := c.do(ctx, func(ctx context.Context) ([]byte, error) {
		return c.client.Get(ctx, generationKey).Bytes()
	})
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		metrics.RecordCacheLookup("error")
		c.log.Debug().Err(err).Msg("read cache generation")
		return 0, err
	}

	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cache generation %q: %w", raw, err)
	}
	return gen, nil
}

func (c *StudioList) Get(ctx context.Context, gen int64, key string) ([]byte, bool) {
	payload, err := c.do(ctx, func(ctx context.Context) ([]byte, error) {
		return c.client.Get(ctx, listKey(gen, key)).Bytes()
	})
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
		return nil, false
	case err != nil:
		metrics.RecordCacheLookup("error")
		c.log.Debug().Err(err).Msg("read cached studio list")
		return nil, false
	}
	metrics.RecordCacheLookup("hit")
	return payload, true
}

func (c *StudioList) Set(ctx context.Context, gen int64, key string, payload []byte) {
	_, err := c.do(ctx, func(ctx context.Context) ([]byte, error) {
		return nil, c.client.Set(ctx, listKey(gen, key), payload, c.ttl).Err()
	})
	if err != nil {
		c.log.Debug().Err(err).Msg("store studio list page")
	}
}

func (c *StudioList) Invalidate(ctx context.Context) {
	_, err := c.do(ctx, func(ctx context.Context) ([]byte, error) {
		return nil, c.client.Incr(ctx, generationKey).Err()
	})
	if err != nil {
		// pages under the old generation expire with their TTL
		c.log.Warn().Err(err).Msg("invalidate studio list cache")
	}
}

func (c *StudioList) Close() error {
	return c.client.Close()
}

// Noop is used when no Redis URL is configured.
type Noop struct{}

func (Noop) Generation(context.Context) (int64, error)         { return 0, ErrDisabled }
func (Noop) Get(context.Context, int64, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, int64, string, []byte)        {}
func (Noop) Invalidate(context.Context)                        {}
