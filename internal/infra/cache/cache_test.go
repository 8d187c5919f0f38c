package cache_test

import (
	"testing"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/cache"
)

func TestSetAndGet(t *testing.T) {
	c := cache.New[[]domain.Region](5 * time.Minute)

	c.Set("provinces", []domain.Region{{ID: "32", Name: "JAWA BARAT"}})
	got, ok := c.Get("provinces")
	if !ok {
		t.Fatal("expected cached value")
	}
	if len(got) != 1 || got[0].Name != "JAWA BARAT" {
		t.Errorf("got %+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	c := cache.New[string](10 * time.Millisecond)

	c.Set("key", "value")
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("expected expired entry to be a miss")
	}
}

func TestDelete(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("key", 42)
	c.Delete("key")
	if _, ok := c.Get("key"); ok {
		t.Error("expected deleted key to be a miss")
	}
}

func TestSetOverwrites(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("key", 1)
	c.Set("key", 2)
	got, ok := c.Get("key")
	if !ok || got != 2 {
		t.Errorf("Get() = %d, %v, want 2, true", got, ok)
	}
}

func TestSetWithTTLOverridesDefault(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.SetWithTTL("short", "value", 10*time.Millisecond)
	c.Set("long", "value")
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected short-TTL entry to expire")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("expected default-TTL entry to survive")
	}
}

func TestStopIsIdempotentAndKeepsCacheUsable(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("key", 7)
	c.Stop()
	c.Stop()

	got, ok := c.Get("key")
	if !ok || got != 7 {
		t.Errorf("Get() after Stop = %d, %v, want 7, true", got, ok)
	}
}
