package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "tutor:"), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type profile struct {
		UserID string `json:"user_id"`
		Rate   int64  `json:"rate"`
	}

	want := profile{UserID: "tutor-1", Rate: 250000}
	if err := helper.Set(ctx, "id:tutor-1", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got profile
	if err := helper.Get(ctx, "id:tutor-1", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper, _ := newTestHelper(t)

	var dest map[string]string
	err := helper.Get(context.Background(), "id:missing", &dest)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "id:a", "x", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := helper.Set(ctx, "id:b", "y", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := helper.Delete(ctx, "id:a", "id:b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "id:a", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"list:page:1", "list:page:2", "id:tutor-1"} {
		if err := helper.Set(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "list:page:1", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("list entry survived invalidation: %v", err)
	}
	if err := helper.Get(ctx, "id:tutor-1", &dest); err != nil {
		t.Errorf("unrelated entry was invalidated: %v", err)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "tutor:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:x", "v", time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v", err)
	}
	var dest string
	if err := helper.Get(ctx, "id:x", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]string{"name": "Ada"}, nil
	}

	var first map[string]string
	if err := helper.CacheOrExecute(ctx, "id:tutor-2", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if calls != 1 || first["name"] != "Ada" {
		t.Errorf("first call: calls=%d value=%v", calls, first)
	}
}

func TestInvalidateTutorCacheEvictsProfileAndListPages(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cm := NewCacheManager(client)
	ctx := context.Background()

	if err := cm.Tutor.Set(ctx, "id:tutor-1", "profile", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cm.Tutor.Set(ctx, "list:9f86d081", "page", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	InvalidateTutorCache(ctx, cm, "tutor-1")

	var dest string
	if err := cm.Tutor.Get(ctx, "id:tutor-1", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("profile entry survived invalidation: %v", err)
	}
	if err := cm.Tutor.Get(ctx, "list:9f86d081", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("listing page survived invalidation: %v", err)
	}
}
