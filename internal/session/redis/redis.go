// Package redis — Redis-бэкенд снапшота сессии.
//
// Нужен при встраивании SDK в серверные воркеры (боты, интеграции),
// где несколько реплик делят одну служебную учётную запись AlphaChap
// и должны видеть актуальную пару токенов после ротации.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/session"
)

const defaultKey = "alphachap:session"

// Storage — снапшот сессии одной JSON-строкой под фиксированным ключом.
type Storage struct {
	rdb *redis.Client
	key string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если key пустой — используется "alphachap:session".
// Подключение проверяется сразу (fail-fast на старте).
func New(ctx context.Context, redisURL, key string) (*Storage, error) {
	const op = "session.redis.New"

	if key == "" {
		key = defaultKey
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{rdb: rdb, key: key}, nil
}

// Load читает снапшот; отсутствие ключа или нечитаемый JSON — ErrNotFound.
func (s *Storage) Load(ctx context.Context) (*session.Snapshot, error) {
	const op = "session.redis.Load"

	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, session.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%s: %w", op, session.ErrNotFound)
	}

	return &snap, nil
}

// Save заменяет снапшот без TTL: временем жизни сессии управляет
// сервер через отзыв refresh-токена.
func (s *Storage) Save(ctx context.Context, snap *session.Snapshot) error {
	const op = "session.redis.Save"

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Clear удаляет ключ; отсутствие ключа не является ошибкой.
func (s *Storage) Clear(ctx context.Context) error {
	const op = "session.redis.Clear"

	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *Storage) Close() error {
	return s.rdb.Close()
}
