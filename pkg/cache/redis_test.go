package cache

import (
	"testing"

	"quiz-arena/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewRedisCacheWithClient(client)
}

func TestGameRoundTrip(t *testing.T) {
	c := newTestCache(t)

	game := &models.Game{
		Name:             "General Knowledge",
		Slug:             "general-knowledge",
		TimeLimitMinutes: 6,
		EasyCount:        10,
		MediumCount:      6,
		HardCount:        5,
		Stats:            models.ZeroStats(),
		IsActive:         true,
	}
	if err := c.SetGame(game); err != nil {
		t.Fatalf("SetGame failed: %v", err)
	}

	got, err := c.GetGame("general-knowledge")
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if got.Name != game.Name || got.QuestionCount() != 21 {
		t.Fatalf("cached game mismatch: %+v", got)
	}
	if got.Stats.CompletionRate != "0%" {
		t.Fatalf("stats lost in round trip: %+v", got.Stats)
	}
}

func TestGetGameMiss(t *testing.T) {
	c := newTestCache(t)
	if _, err := c.GetGame("nope"); err == nil {
		t.Fatalf("expected miss error for unknown slug")
	}
}

func TestDeleteGame(t *testing.T) {
	c := newTestCache(t)
	game := &models.Game{Slug: "speed-round", Name: "Speed Round"}
	if err := c.SetGame(game); err != nil {
		t.Fatalf("SetGame failed: %v", err)
	}
	if err := c.DeleteGame("speed-round"); err != nil {
		t.Fatalf("DeleteGame failed: %v", err)
	}
	if _, err := c.GetGame("speed-round"); err == nil {
		t.Fatalf("expected miss after delete")
	}
}
