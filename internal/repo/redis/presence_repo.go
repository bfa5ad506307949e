package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
)

const (
	presenceConnPrefix = "presence:conn:"
	presenceUserPrefix = "presence:user:"
)

// PresenceRepo stores one hash per live connection with TTL equal to the
// heartbeat timeout, plus a per-user set of connection ids. A connection
// that stops heartbeating disappears when its TTL lapses; the user set
// is pruned lazily on read.
type PresenceRepo struct {
	client *goredis.Client
}

func NewPresenceRepo(client *goredis.Client) *PresenceRepo {
	return &PresenceRepo{client: client}
}

func (r *PresenceRepo) Add(ctx context.Context, entry model.PresenceEntry, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if entry.UserID <= 0 || strings.TrimSpace(entry.ConnectionID) == "" || ttl <= 0 {
		return fmt.Errorf("invalid presence entry payload")
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, connKey(entry.ConnectionID), map[string]interface{}{
		"user_id":      entry.UserID,
		"connected_at": entry.ConnectedAt.Unix(),
	})
	pipe.Expire(ctx, connKey(entry.ConnectionID), ttl)
	pipe.SAdd(ctx, userConnsKey(entry.UserID), entry.ConnectionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add presence entry: %w", err)
	}

	return nil
}

// Touch refreshes the connection TTL. Returns the owning user and false
// when the connection has already expired or was removed.
func (r *PresenceRepo) Touch(ctx context.Context, connectionID string, ttl time.Duration) (int64, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(connectionID) == "" || ttl <= 0 {
		return 0, false, fmt.Errorf("invalid presence touch payload")
	}

	value, err := r.client.HGet(ctx, connKey(connectionID), "user_id").Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get presence entry owner: %w", err)
	}

	userID, parseErr := strconv.ParseInt(value, 10, 64)
	if parseErr != nil || userID <= 0 {
		return 0, false, fmt.Errorf("malformed presence entry owner %q", value)
	}

	ok, err := r.client.Expire(ctx, connKey(connectionID), ttl).Result()
	if err != nil {
		return 0, false, fmt.Errorf("refresh presence ttl: %w", err)
	}
	if !ok {
		return 0, false, nil
	}

	return userID, true, nil
}

// Remove deletes the connection record. Returns the owning user when the
// record was still present.
func (r *PresenceRepo) Remove(ctx context.Context, connectionID string) (int64, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(connectionID) == "" {
		return 0, false, fmt.Errorf("connection id is required")
	}

	value, err := r.client.HGet(ctx, connKey(connectionID), "user_id").Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get presence entry owner: %w", err)
	}

	userID, parseErr := strconv.ParseInt(value, 10, 64)
	if parseErr != nil || userID <= 0 {
		return 0, false, fmt.Errorf("malformed presence entry owner %q", value)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, connKey(connectionID))
	pipe.SRem(ctx, userConnsKey(userID), connectionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("remove presence entry: %w", err)
	}

	return userID, true, nil
}

// ConnectionsFor lists live connection ids. Set members whose hash has
// expired are pruned on the way out.
func (r *PresenceRepo) ConnectionsFor(ctx context.Context, userID int64) ([]string, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	members, err := r.client.SMembers(ctx, userConnsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user connections: %w", err)
	}

	live := make([]string, 0, len(members))
	for _, connID := range members {
		exists, err := r.client.Exists(ctx, connKey(connID)).Result()
		if err != nil {
			return nil, fmt.Errorf("check connection liveness: %w", err)
		}
		if exists == 0 {
			if err := r.client.SRem(ctx, userConnsKey(userID), connID).Err(); err != nil {
				return nil, fmt.Errorf("prune dead connection: %w", err)
			}
			continue
		}
		live = append(live, connID)
	}

	return live, nil
}

func connKey(connectionID string) string {
	return presenceConnPrefix + connectionID
}

func userConnsKey(userID int64) string {
	return presenceUserPrefix + strconv.FormatInt(userID, 10)
}
