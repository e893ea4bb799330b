package cache

import (
	"context"
	"encoding/json"
	"time"

	"quiz-arena/internal/models"

	"github.com/go-redis/redis/v8"
)

type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

// NewRedisCacheWithClient wraps an existing client (tests use miniredis here).
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func (c *RedisCache) SetGame(game *models.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	key := "game:" + game.Slug
	return c.client.Set(c.ctx, key, data, 24*time.Hour).Err()
}

func (c *RedisCache) GetGame(slug string) (*models.Game, error) {
	key := "game:" + slug
	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var game models.Game
	err = json.Unmarshal(data, &game)
	return &game, err
}

func (c *RedisCache) DeleteGame(slug string) error {
	return c.client.Del(c.ctx, "game:"+slug).Err()
}
