package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// busyTTL bounds how long a busy flag can stay set if a handler dies
// mid-event; the cooperative guard self-heals instead of wedging the user.
const busyTTL = 30 * time.Second

// RedisStore persists sessions in Redis so conversation state survives
// process restarts. The busy flag uses SETNX, which makes TryAcquire
// atomic even though the rest of the store is plain GET/SET.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

var _ Store = (*RedisStore)(nil)

func stateKey(userID int64) string   { return fmt.Sprintf("session:%d:state", userID) }
func scratchKey(userID int64) string { return fmt.Sprintf("session:%d:scratch", userID) }
func busyKey(userID int64) string    { return fmt.Sprintf("session:%d:busy", userID) }

func (r *RedisStore) State(ctx context.Context, userID int64) (string, error) {
	state, err := r.rdb.Get(ctx, stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return StateMainMenu, nil
	}
	if err != nil {
		return "", err
	}
	return state, nil
}

func (r *RedisStore) SetState(ctx context.Context, userID int64, state string) error {
	return r.rdb.Set(ctx, stateKey(userID), state, 0).Err()
}

func (r *RedisStore) Scratch(ctx context.Context, userID int64) (Scratch, error) {
	raw, err := r.rdb.Get(ctx, scratchKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Scratch{}, nil
	}
	if err != nil {
		return Scratch{}, err
	}
	var s Scratch
	if err := json.Unmarshal(raw, &s); err != nil {
		return Scratch{}, err
	}
	return s, nil
}

func (r *RedisStore) SetScratch(ctx context.Context, userID int64, s Scratch) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, scratchKey(userID), raw, 0).Err()
}

func (r *RedisStore) ClearScratch(ctx context.Context, userID int64) error {
	return r.rdb.Del(ctx, scratchKey(userID)).Err()
}

func (r *RedisStore) TryAcquire(ctx context.Context, userID int64) (bool, error) {
	return r.rdb.SetNX(ctx, busyKey(userID), "1", busyTTL).Result()
}

func (r *RedisStore) Release(ctx context.Context, userID int64) error {
	return r.rdb.Del(ctx, busyKey(userID)).Err()
}

func (r *RedisStore) Reset(ctx context.Context, userID int64) error {
	if err := r.SetState(ctx, userID, StateMainMenu); err != nil {
		return err
	}
	return r.ClearScratch(ctx, userID)
}
