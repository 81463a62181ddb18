package cache

import (
	"context"
	"errors"
	"testing"
)

func TestNilClientAlwaysMisses(t *testing.T) {
	var c *RedisClient
	ctx := context.Background()

	if err := c.Set(ctx, OptionsKey, []string{"Canada"}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Set on nil client = %v, want ErrDisabled", err)
	}

	var dest []string
	if c.Get(ctx, OptionsKey, &dest) {
		t.Error("Get on nil client should miss")
	}
	if err := c.Delete(ctx, OptionsKey); !errors.Is(err, ErrDisabled) {
		t.Errorf("Delete on nil client = %v, want ErrDisabled", err)
	}

	c.Invalidate(ctx)
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client = %v", err)
	}
}

func TestUnreachableServerDisablesCache(t *testing.T) {
	// port 1 is never a Redis server
	if c := NewRedisClient("127.0.0.1", "1", "", 0); c != nil {
		t.Error("expected nil client for an unreachable server")
	}
}
