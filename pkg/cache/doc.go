// Package cache provides a generic, thread-safe LRU (Least Recently Used) cache
// with a fixed capacity.
//
// The webhook key fetcher uses it to hold public keys by key id, but nothing in
// the package is specific to that use.
//
// # Usage
//
//	keys := cache.NewLRUCache[string, string](256)
//
//	keys.Put("kid-1", pemBody)
//	pem, ok := keys.Get("kid-1") // marks kid-1 as most recently used
//
//	// Acquire-or-insert: fn only runs on a miss and failed results are not stored.
//	pem, cached, err := keys.GetOrAdd("kid-2", func() (string, error) {
//		return fetchFromRegistry(ctx, "kid-2")
//	})
//
// # Semantics
//
// Entries are immutable. Put on an existing key installs a fresh entry at the
// front of the recency list instead of rewriting the old one, so a reader that
// obtained a value never observes a half-updated entry.
//
// When the cache holds capacity entries and a new key is added, the least
// recently used entry is evicted. Get, Put and a GetOrAdd hit all count as a
// use. An optional eviction callback (SetEvictCallback) runs for every evicted
// or cleared entry.
//
// All operations are O(1) except Keys and Clear, and all are safe for
// concurrent use.
package cache
