package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/giftelf/escrow-bot/internal/model"
)

const defaultSessionTTL = 24 * time.Hour

// RedisStore хранит сессии в Redis с ограниченным временем жизни.
// Используется, когда бот работает в нескольких экземплярах.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище сессий поверх указанного клиента Redis.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    defaultSessionTTL,
	}
}

// SetTTL задаёт время жизни сессий.
func (r *RedisStore) SetTTL(ttl time.Duration) {
	r.ttl = ttl
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// Get возвращает сессию пользователя или nil, если сессии нет.
func (r *RedisStore) Get(ctx context.Context, userID int64) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s model.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &s, nil
}

// Put сохраняет сессию пользователя с TTL хранилища.
func (r *RedisStore) Put(ctx context.Context, userID int64, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Delete удаляет сессию пользователя.
func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
