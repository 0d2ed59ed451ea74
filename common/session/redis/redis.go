package redis

import (
	"context"
	"time"

	"shenanigigs/common/session"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func New(opts session.Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisURL,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ttl := opts.DefaultTTL
	if ttl == 0 {
		ttl = session.DefaultOptions().DefaultTTL
	}
	return &Store{client: client, defaultTTL: ttl}
}

func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := session.Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *Store) Get(ctx context.Context, key string, value interface{}) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return session.ErrNotFound
	}
	if err != nil {
		return err
	}
	return session.Decode(val, value)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
