package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *PageCache {
	t.Helper()
	c := New(ttl)
	t.Cleanup(c.Stop)
	return c
}

func TestPageCache_SetAndGet(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("/dashboard/invoices", []byte("rendered page"))

	body, ok := c.Get("/dashboard/invoices")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(body) != "rendered page" {
		t.Errorf("body = %q, want %q", body, "rendered page")
	}
}

func TestPageCache_Get_Miss(t *testing.T) {
	c := newTestCache(t, time.Minute)

	if _, ok := c.Get("/dashboard/invoices"); ok {
		t.Error("expected cache miss for unknown path")
	}
}

// 期限切れエントリがヒットしないことを検証
func TestPageCache_Get_Expired(t *testing.T) {
	c := newTestCache(t, time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("/dashboard", []byte("stale"))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("/dashboard"); ok {
		t.Error("expected miss for expired entry")
	}
}

// Invalidateが対象パスと従属パス（クエリ付き・サブパス）を破棄し、
// 無関係なパスを残すことを検証
func TestPageCache_Invalidate_RemovesPathAndDependents(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("/dashboard/invoices", []byte("list"))
	c.Set("/dashboard/invoices?page=2", []byte("page2"))
	c.Set("/dashboard/invoices?query=acme", []byte("filtered"))
	c.Set("/dashboard/invoices/abc/edit", []byte("edit form"))
	c.Set("/dashboard/customers", []byte("customers"))

	c.Invalidate("/dashboard/invoices")

	for _, path := range []string{
		"/dashboard/invoices",
		"/dashboard/invoices?page=2",
		"/dashboard/invoices?query=acme",
		"/dashboard/invoices/abc/edit",
	} {
		if _, ok := c.Get(path); ok {
			t.Errorf("expected %s to be invalidated", path)
		}
	}

	if _, ok := c.Get("/dashboard/customers"); !ok {
		t.Error("unrelated path should survive invalidation")
	}
}

// 前方一致の誤破棄がないことを検証（/dashboard/invoices-archive は残る）
func TestPageCache_Invalidate_DoesNotMatchSiblingPrefix(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set("/dashboard/invoices-archive", []byte("archive"))
	c.Invalidate("/dashboard/invoices")

	if _, ok := c.Get("/dashboard/invoices-archive"); !ok {
		t.Error("sibling path sharing a prefix should not be invalidated")
	}
}

func TestPageCache_RemoveExpired(t *testing.T) {
	c := newTestCache(t, time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("/a", []byte("a"))
	c.Set("/b", []byte("b"))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Set("/c", []byte("c"))
	c.removeExpired()

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 (only the fresh entry)", c.Len())
	}
	if _, ok := c.Get("/c"); !ok {
		t.Error("fresh entry should survive cleanup")
	}
}
