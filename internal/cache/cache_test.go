// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, limitKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	client, err := ConnectValkey(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1", "1", ""); err == nil {
		t.Error("expected error for unreachable Valkey")
	}
}

func TestLimiterAllow(t *testing.T) {
	client := testValkeyClient(t)
	l := NewLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := range 3 {
		ok, err := l.Allow(ctx, "login:10.0.0.1")
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := l.Allow(ctx, "login:10.0.0.1")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("fourth request should be refused")
	}

	// Other keys have their own budget.
	if ok, _ := l.Allow(ctx, "login:10.0.0.2"); !ok {
		t.Error("different key should be allowed")
	}

	ttl, err := client.TTL(ctx, limitKeyPrefix+"login:10.0.0.1").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl: got %v, want (0, 1m]", ttl)
	}
}

func TestLimiterReset(t *testing.T) {
	l := NewLimiter(testValkeyClient(t), 1, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("second request should be refused")
	}
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("request after reset should be allowed")
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l := NewLimiter(testValkeyClient(t), 1, time.Second)
	ctx := context.Background()

	l.Allow(ctx, "short")
	if ok, _ := l.Allow(ctx, "short"); ok {
		t.Fatal("second request should be refused")
	}
	time.Sleep(1100 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "short"); !ok {
		t.Error("request in a new window should be allowed")
	}
}
