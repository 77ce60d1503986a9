package cache_test

import (
	"testing"
	"time"

	"github.com/danmelak/shopcart/internal/cache"
)

func TestCacheSetGet(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("k", 42)

	v, ok := c.Get("k")

	if !ok {
		t.Fatalf("expected a hit")
	}
	if v.(int) != 42 {
		t.Fatalf("got %v, want 42", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected a miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New(10 * time.Millisecond)

	c.Set("k", "v")

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCacheClear(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected clear to drop all entries")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected clear to drop all entries")
	}
}

func TestCacheDelete(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected delete to drop the entry")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected other entries to survive")
	}
}

func TestCacheKeys(t *testing.T) {
	if cache.AllProductsKey() == cache.NewestProductsKey(8) {
		t.Fatalf("list keys must not collide")
	}
	if cache.NewestProductsKey(8) == cache.NewestProductsKey(4) {
		t.Fatalf("window size must be part of the key")
	}
	if cache.CategoryProductsKey("women", 4) == cache.CategoryProductsKey("men", 4) {
		t.Fatalf("category must be part of the key")
	}
}
