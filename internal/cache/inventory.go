package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ReactionsKeyPrefix    = "reactions:%s"
	UserEmailKeyPrefix    = "user:email:%s"
	RevokedTokenKeyPrefix = "session:revoked:%s"
	PostEventsPrefix      = "events:post:%s"
)

const (
	ReactionsTTL = 2 * time.Minute
	UserTTL      = 5 * time.Minute
)

// ReactionsKey holds the like/dislike counts of one content item.
func ReactionsKey(slug string) string {
	return fmt.Sprintf(ReactionsKeyPrefix, slug)
}

func UserEmailKey(email string) string {
	return fmt.Sprintf(UserEmailKeyPrefix, strings.ToLower(email))
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

// PostEventsChannel is the pub/sub channel for live events on one item.
func PostEventsChannel(slug string) string {
	return fmt.Sprintf(PostEventsPrefix, slug)
}

// Invalidate deletes keys and bumps their generations so that Aside calls
// already fetching do not store what they read. A nil client is ignored.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	_, _ = rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(key))
			pipe.Expire(ctx, generationKey(key), generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
}

func InvalidateReactions(ctx context.Context, rdb *redis.Client, slug string) {
	Invalidate(ctx, rdb, ReactionsKey(slug))
}

func InvalidateUser(ctx context.Context, rdb *redis.Client, email string) {
	Invalidate(ctx, rdb, UserEmailKey(email))
}
