package zipcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

type fakeClient struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestCache_SetThenGet(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	cache := New(client, time.Hour, nil)
	place := &zipcode.Place{ZipCode: "94105", City: "San Francisco", State: "CA", StateName: "California"}

	cache.Set(context.Background(), place)

	if _, ok := client.values["zip:v1:94105"]; !ok {
		t.Fatalf("expected versioned key, got %v", client.values)
	}
	if client.ttls["zip:v1:94105"] != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", client.ttls["zip:v1:94105"])
	}

	got, ok := cache.Get(context.Background(), "94105")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if *got != *place {
		t.Fatalf("unexpected place: %+v", got)
	}
}

func TestCache_Miss(t *testing.T) {
	t.Parallel()

	cache := New(newFakeClient(), 0, nil)
	if _, ok := cache.Get(context.Background(), "10001"); ok {
		t.Fatalf("expected miss")
	}
	if cache.ttl != defaultTTL {
		t.Fatalf("expected default ttl, got %s", cache.ttl)
	}
}

func TestCache_FailuresAreMisses(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.err = errors.New("connection refused")
	cache := New(client, time.Minute, nil)

	cache.Set(context.Background(), &zipcode.Place{ZipCode: "94105", City: "San Francisco", State: "CA"})
	if _, ok := cache.Get(context.Background(), "94105"); ok {
		t.Fatalf("expected miss on redis failure")
	}
}

func TestCache_CorruptEntry(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.values["zip:v1:94105"] = "{"
	cache := New(client, time.Minute, nil)

	if _, ok := cache.Get(context.Background(), "94105"); ok {
		t.Fatalf("expected miss for corrupt entry")
	}
}

func TestCache_SetIgnoresEmpty(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	cache := New(client, time.Minute, nil)
	cache.Set(context.Background(), nil)
	cache.Set(context.Background(), &zipcode.Place{})

	if len(client.values) != 0 {
		t.Fatalf("expected nothing cached, got %v", client.values)
	}
}
