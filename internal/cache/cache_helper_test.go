package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "test:"), mr
}

func TestCacheHelperRoundTrip(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	stored := payload{Name: "gopher", Count: 3}
	if err := helper.Set(ctx, "k", stored, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatal("value stored without prefix")
	}

	var loaded payload
	if err := helper.Get(ctx, "k", &loaded); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded != stored {
		t.Errorf("Get = %+v, want %+v", loaded, stored)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var dest payload
	err := helper.Get(context.Background(), "absent", &dest)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss", err)
	}
}

func TestCacheHelperExpiry(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "k", payload{Name: "x"}, time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	var dest payload
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "k", payload{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var dest payload
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after delete = %v, want ErrCacheMiss", err)
	}

	// Deleting an absent key is fine.
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestNilClientDisablesCaching(t *testing.T) {
	helper := NewCacheHelper(nil, "x:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", payload{}, time.Minute); err != nil {
		t.Errorf("Set with nil client failed: %v", err)
	}
	var dest payload
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get with nil client = %v, want ErrCacheMiss", err)
	}
	if err := NewCacheManager(nil).HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck with nil client failed: %v", err)
	}
}
