package redisstore

import (
	"context"
	"os"
	"testing"
)

// Integration test against a live Redis; set TH_REDIS_TEST_ADDR to run it.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TH_REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("TH_REDIS_TEST_ADDR not set")
	}

	s := New(addr, "", 0)
	defer s.Close()
	ctx := context.Background()
	key := "th:test:round-trip"

	if err := s.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, key, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok || string(v) != `{"a":1}` {
		t.Fatalf("get: ok=%v err=%v v=%s", ok, err, v)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Fatal("key survived delete")
	}
}
