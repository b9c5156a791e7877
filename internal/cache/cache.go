// Package cache remembers recently verified identities keyed by certificate
// public-key fingerprint, so a returning client skips the profile round trip.
// Caching lives at the service layer only; the verifier core performs a
// fresh, independent verification per call.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache stores verified identity URIs with expiration time.
type Cache struct {
	items           sync.Map
	counter         atomic.Uint32
	defaultDuration time.Duration
}

// An entry is a verified identity URI with expiration time.
type entry struct {
	webid   string
	expires int64
}

// New creates a cache whose entries expire after the given duration by
// default.
func New(defaultDuration time.Duration) *Cache {

	if defaultDuration <= 0 {
		defaultDuration = 10 * time.Minute
	}

	return &Cache{
		defaultDuration: defaultDuration,
	}
}

// Put records that the key with the given fingerprint verified as webid.
// A duration of 0 uses the cache default; negative durations never expire.
func (cache *Cache) Put(fingerprint, webid string, duration time.Duration) {
	var expires int64

	if duration == 0 {
		duration = cache.defaultDuration
	}

	if duration > 0 {
		expires = time.Now().Add(duration).UnixNano()
	}

	cache.items.Store(fingerprint, entry{
		webid:   webid,
		expires: expires,
	})

	count := cache.counter.Add(1)

	if count >= 100 {
		cache.DeleteExpired()
		cache.counter.Store(0)
	}
}

// Lookup returns the identity URI previously verified for this fingerprint.
func (cache *Cache) Lookup(fingerprint string) (string, bool) {
	obj, exists := cache.items.Load(fingerprint)

	if !exists {
		return "", false
	}

	e := obj.(entry)

	if e.expires > 0 && time.Now().UnixNano() > e.expires {
		cache.items.Delete(fingerprint)
		return "", false
	}

	return e.webid, true
}

// DeleteExpired removes every entry past its expiration.
func (cache *Cache) DeleteExpired() {
	now := time.Now().UnixNano()

	cache.items.Range(func(key, value any) bool {
		e := value.(entry)

		if e.expires > 0 && now > e.expires {
			cache.items.Delete(key)
		}

		return true
	})
}

// Delete removes the fingerprint and its identity from the cache.
func (cache *Cache) Delete(fingerprint string) {
	cache.items.Delete(fingerprint)
}
