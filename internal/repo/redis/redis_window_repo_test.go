package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
)

func newRepo(t *testing.T) *RedisWindowRepo {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	return NewRedisWindowRepo(client)
}

func TestRedisWindowRepo_RoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000)

	window, err := repo.Window(ctx, "user:1")
	if err != nil || len(window) != 0 {
		t.Fatalf("empty window: %v %v", window, err)
	}

	in := []time.Time{base, base.Add(time.Second), base.Add(2 * time.Second)}
	if err := repo.Put(ctx, "user:1", in, time.Minute); err != nil {
		t.Fatalf("put %v", err)
	}

	window, err = repo.Window(ctx, "user:1")
	if err != nil {
		t.Fatalf("window %v", err)
	}
	if len(window) != 3 {
		t.Fatalf("want 3 entries, got %d", len(window))
	}
	for i := range in {
		if !window[i].Equal(in[i]) {
			t.Fatalf("entry %d: want %v got %v", i, in[i], window[i])
		}
	}
}

func TestRedisWindowRepo_PutReplaces(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000)

	if err := repo.Put(ctx, "user:1", []time.Time{base, base.Add(time.Second)}, time.Minute); err != nil {
		t.Fatalf("put %v", err)
	}
	if err := repo.Put(ctx, "user:1", []time.Time{base.Add(2 * time.Second)}, time.Minute); err != nil {
		t.Fatalf("put %v", err)
	}

	window, err := repo.Window(ctx, "user:1")
	if err != nil || len(window) != 1 {
		t.Fatalf("want 1 entry, got %v %v", window, err)
	}
	if !window[0].Equal(base.Add(2 * time.Second)) {
		t.Fatalf("unexpected entry %v", window[0])
	}
}

func TestRedisWindowRepo_IdentitiesIsolated(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000)

	if err := repo.Put(ctx, "user:1", []time.Time{base}, time.Minute); err != nil {
		t.Fatalf("put %v", err)
	}
	window, err := repo.Window(ctx, "user:2")
	if err != nil || len(window) != 0 {
		t.Fatalf("user:2 should be empty, got %v %v", window, err)
	}
}
