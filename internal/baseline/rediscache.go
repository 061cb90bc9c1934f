package baseline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// RedisCache wraps a Store with an optional read-through cache keyed by
// resolved filename, for sharing baselines across parallel CI workers
// without every worker hitting the same network filesystem (spec.md §5:
// "read-mostly cache... population is lazy and idempotent"). It never
// becomes the source of truth — Put always writes through to the
// underlying Store first.
type RedisCache struct {
	client  *redis.Client
	backing Store
	ttl     time.Duration
	prefix  string
}

// NewRedisCache wraps backing with a Redis read-through cache.
func NewRedisCache(client *redis.Client, backing Store, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, backing: backing, ttl: ttl, prefix: "probatest:baseline:"}
}

func (r *RedisCache) key(filename string) string {
	return r.prefix + filename
}

// ListCandidates always defers to the backing store — the candidate list
// (filename set) is cheap to enumerate and must reflect concurrent writers
// immediately; only bodies are cached.
func (r *RedisCache) ListCandidates(ctx context.Context, useCaseID, method string) ([]Candidate, error) {
	return r.backing.ListCandidates(ctx, useCaseID, method)
}

func (r *RedisCache) Load(ctx context.Context, filename string) (*Baseline, error) {
	cached, err := r.client.Get(ctx, r.key(filename)).Bytes()
	if err == nil {
		b, parseErr := UnmarshalYAML(cached)
		if parseErr == nil {
			return b, nil
		}
		log.Warn().Str("filename", filename).Err(parseErr).Msg("discarding unparseable cached baseline")
	} else if err != redis.Nil {
		log.Warn().Str("filename", filename).Err(err).Msg("redis baseline cache read failed, falling back to backing store")
	}

	b, err := r.backing.Load(ctx, filename)
	if err != nil {
		return nil, err
	}

	data, marshalErr := MarshalYAML(b)
	if marshalErr == nil {
		if setErr := r.client.Set(ctx, r.key(filename), data, r.ttl).Err(); setErr != nil {
			log.Warn().Str("filename", filename).Err(setErr).Msg("failed to populate baseline cache")
		}
	}
	return b, nil
}

func (r *RedisCache) Put(ctx context.Context, b *Baseline) (string, error) {
	filename, err := r.backing.Put(ctx, b)
	if err != nil {
		return "", fmt.Errorf("write-through to backing store: %w", err)
	}
	data, err := MarshalYAML(b)
	if err == nil {
		if setErr := r.client.Set(ctx, r.key(filename), data, r.ttl).Err(); setErr != nil {
			log.Warn().Str("filename", filename).Err(setErr).Msg("failed to refresh baseline cache after write")
		}
	}
	return filename, nil
}
