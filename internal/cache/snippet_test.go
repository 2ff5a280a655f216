package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/testutil"
)

func TestListKeys(t *testing.T) {
	t.Parallel()

	if got := listKey("u1", 3); got != "snippets:user:u1:v3" {
		t.Errorf("listKey() = %q", got)
	}
	if got := versionKey("u1"); got != "snippets:user:u1:ver" {
		t.Errorf("versionKey() = %q", got)
	}
}

func TestNewWithClient_DefaultTTL(t *testing.T) {
	t.Parallel()

	c := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	t.Cleanup(func() { c.Close() })
	if c.ttl != DefaultListTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultListTTL)
	}
}

func TestIntegrationListRoundTrip(t *testing.T) {
	url := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	owner := xid.New().String()
	_, version, err := c.GetList(ctx, owner)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetList() on empty cache = %v, want ErrCacheMiss", err)
	}
	if version != 0 {
		t.Fatalf("version on empty cache = %d, want 0", version)
	}

	want := []model.Snippet{{ID: "a", Title: "T", Content: "x", UserID: owner, Language: model.StringPtr("go")}}
	if err := c.SetList(ctx, owner, version, want); err != nil {
		t.Fatalf("SetList() error = %v", err)
	}

	got, _, err := c.GetList(ctx, owner)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || got[0].LanguageOrEmpty() != "go" {
		t.Errorf("GetList() = %+v", got)
	}

	if err := c.InvalidateList(ctx, owner); err != nil {
		t.Fatalf("InvalidateList() error = %v", err)
	}
	if _, _, err := c.GetList(ctx, owner); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetList() after invalidate = %v, want ErrCacheMiss", err)
	}
}

func TestIntegrationLateFillIsNotServed(t *testing.T) {
	url := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	owner := xid.New().String()
	_, readAt, err := c.GetList(ctx, owner)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetList() = %v, want ErrCacheMiss", err)
	}

	// A mutation commits and invalidates while the fill is still reading.
	if err := c.InvalidateList(ctx, owner); err != nil {
		t.Fatalf("InvalidateList() error = %v", err)
	}
	if err := c.SetList(ctx, owner, readAt, []model.Snippet{}); err != nil {
		t.Fatalf("SetList() error = %v", err)
	}

	_, version, err := c.GetList(ctx, owner)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetList() after late fill = %v, want ErrCacheMiss", err)
	}
	if version != readAt+1 {
		t.Errorf("version = %d, want %d", version, readAt+1)
	}
}
