// Package cache holds the read-through cache for learners' mastered-word
// projections.
//
// A Coordinator reads through a Store and is invalidated after every
// mastery write. Stores are MemoryStore (in-process, TTL) and FallbackStore,
// which prefers a shared primary such as redis and degrades to memory when the
// primary is slow or down. Cache failures are logged and never reach callers.
package cache
