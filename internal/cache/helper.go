package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	s, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// generationTTL outlives any fetch; an expired generation only makes an
// in-flight store fail its check.
const generationTTL = 10 * time.Minute

var errStaleFetch = errors.New("cache: key invalidated during fetch")

func generationKey(key string) string { return key + ":gen" }

// Aside tries Redis first; on a miss it calls fetch, which must populate
// dest, and stores the result with ttl. Redis failures fall through to fetch.
//
// The store is skipped when Invalidate ran for key while fetch was in
// flight, so a reader that loaded rows before a concurrent write cannot
// put the old value back.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, rdb, key, dest)
	if err == nil && found {
		return nil
	}

	var gen string
	cacheable := rdb != nil && err == nil
	if cacheable {
		gen, err = rdb.Get(ctx, generationKey(key)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			cacheable = false
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if cacheable {
		// Best effort.
		_ = storeIfCurrent(ctx, rdb, key, gen, dest, ttl)
	}
	return nil
}

func storeIfCurrent(ctx context.Context, rdb *redis.Client, key, gen string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	gk := generationKey(key)
	return rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFetch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, gk)
}
