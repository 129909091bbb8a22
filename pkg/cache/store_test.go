package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
)

type snapshot struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func newTestStore(t *testing.T) (*Store[snapshot], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(&Config{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore[snapshot](client, "catalog:item", time.Minute, logger.NewNop()), mr
}

func TestStoreRoundTripAndKeys(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	s.Set(ctx, "1", &snapshot{ID: 1, Name: "Pikachu", Price: 9.99}, 0)
	if !mr.Exists("catalog:item:1") {
		t.Fatalf("key not namespaced: %v", mr.Keys())
	}
	if ttl := mr.TTL("catalog:item:1"); ttl != time.Minute {
		t.Fatalf("default ttl %v", ttl)
	}

	got, ok := s.Get(ctx, "1")
	if !ok || got.Name != "Pikachu" || got.Price != 9.99 {
		t.Fatalf("unexpected hit %+v %v", got, ok)
	}

	s.Remove(ctx, "1")
	if _, ok := s.Get(ctx, "1"); ok {
		t.Fatalf("expected miss after remove")
	}
}

func TestStoreExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "2", &snapshot{ID: 2}, 10*time.Second)
	mr.FastForward(11 * time.Second)
	if _, ok := s.Get(ctx, "2"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestStoreFailsOpen(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	s.Set(ctx, "3", &snapshot{ID: 3}, 0)

	mr.Close()

	if _, ok := s.Get(ctx, "3"); ok {
		t.Fatalf("expected miss with redis down")
	}
	s.Set(ctx, "3", &snapshot{ID: 3}, 0)
	s.Remove(ctx, "3")
}

func TestStoreCorruptEntryIsMiss(t *testing.T) {
	s, mr := newTestStore(t)
	if err := mr.Set("catalog:item:4", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := s.Get(context.Background(), "4"); ok {
		t.Fatalf("expected miss on corrupt entry")
	}
}
