// Package cache はレンダリング済みページのパスキーキャッシュを提供する。
// ミューテーション成功後にInvalidateを呼ぶことで、次のリクエストで
// データ取得とレンダリングが再実行される。
package cache

import (
	"strings"
	"sync"
	"time"
)

// entry はキャッシュされた1レンダリング結果。
type entry struct {
	body      []byte
	expiresAt time.Time
}

// PageCache はパス（クエリ文字列含む）をキーとするTTL付きレンダーキャッシュ。
// 全メソッドは複数ゴルーチンから安全に呼び出せる。
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once

	// テストから時刻を差し替えるためのフック
	now func() time.Time
}

// New は指定TTLのPageCacheを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func New(ttl time.Duration) *PageCache {
	c := &PageCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go c.cleanupLoop()

	return c
}

// Get は指定パスのキャッシュ済みレンダリングを返す。
// 未キャッシュまたは期限切れの場合は nil, false を返す。
func (c *PageCache) Get(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[path]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.body, true
}

// Set は指定パスのレンダリング結果をキャッシュする。
func (c *PageCache) Set(path string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = entry{
		body:      body,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate は指定パスとその従属パスのキャッシュを破棄する。
// 従属パスとは、クエリ文字列付きのバリアント（path?...）および
// 配下のサブパス（path/...）を指す。
// ミューテーションがコミットされた後にのみ呼び出すこと。
func (c *PageCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if key == path ||
			strings.HasPrefix(key, path+"?") ||
			strings.HasPrefix(key, path+"/") {
			delete(c.entries, key)
		}
	}
}

// Len は現在のエントリ数を返す（期限切れ含む）。
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop はクリーンアップループを停止する。
func (c *PageCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// cleanupLoop は期限切れエントリを定期的に削除する。
func (c *PageCache) cleanupLoop() {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

// removeExpired は期限切れエントリを削除する。
func (c *PageCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
