// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package auth

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Revocation registry configuration.
const (
	// revocationShards is the number of lock shards. Power of two so the
	// hash can be masked instead of modded.
	revocationShards = 32

	// DefaultPruneInterval is how often expired entries are swept.
	DefaultPruneInterval = 5 * time.Minute
)

// TokenRevoker records tokens that must no longer verify as valid.
//
// Invalidate followed by IsInvalidated for the same token ID is
// linearizable: once Invalidate returns, every subsequent lookup observes
// the revocation.
type TokenRevoker interface {
	// Invalidate marks a token ID as revoked until expiresAt, after which
	// the entry may be pruned.
	Invalidate(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsInvalidated reports whether the token ID has been revoked.
	IsInvalidated(ctx context.Context, tokenID string) (bool, error)
}

// revocationShard is one lock-striped slice of the registry.
type revocationShard struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// MemoryRevocationRegistry is a process-wide TokenRevoker backed by a
// sharded map. A background loop prunes entries whose expiry has passed
// to bound memory.
type MemoryRevocationRegistry struct {
	shards [revocationShards]*revocationShard
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// MemoryRevocationRegistryOption customizes a MemoryRevocationRegistry.
type MemoryRevocationRegistryOption func(*MemoryRevocationRegistry)

// WithRevocationClock overrides the clock source. Used in tests.
func WithRevocationClock(now func() time.Time) MemoryRevocationRegistryOption {
	return func(r *MemoryRevocationRegistry) {
		r.now = now
	}
}

// NewMemoryRevocationRegistry creates a registry and starts its prune
// loop with the given interval (DefaultPruneInterval if zero). Call Close
// to stop the loop.
func NewMemoryRevocationRegistry(pruneInterval time.Duration, opts ...MemoryRevocationRegistryOption) *MemoryRevocationRegistry {
	if pruneInterval <= 0 {
		pruneInterval = DefaultPruneInterval
	}

	r := &MemoryRevocationRegistry{
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	for i := range r.shards {
		r.shards[i] = &revocationShard{entries: make(map[string]time.Time)}
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.pruneLoop(pruneInterval)

	return r
}

// Invalidate marks a token ID as revoked until expiresAt.
func (r *MemoryRevocationRegistry) Invalidate(_ context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return oops.Code("AUTH_REVOKE_FAILED").Errorf("token ID cannot be empty")
	}

	shard := r.shard(tokenID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Keep the later expiry if the token was already revoked.
	if existing, ok := shard.entries[tokenID]; !ok || expiresAt.After(existing) {
		shard.entries[tokenID] = expiresAt
	}
	return nil
}

// IsInvalidated reports whether the token ID has been revoked. Entries
// whose natural expiry has passed no longer count as revoked; the token
// fails verification on expiry anyway.
func (r *MemoryRevocationRegistry) IsInvalidated(_ context.Context, tokenID string) (bool, error) {
	shard := r.shard(tokenID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	expiresAt, ok := shard.entries[tokenID]
	if !ok {
		return false, nil
	}
	return r.now().Before(expiresAt), nil
}

// PruneExpired removes entries whose expiry has passed and returns the
// number removed.
func (r *MemoryRevocationRegistry) PruneExpired() int {
	now := r.now()
	pruned := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		for id, expiresAt := range shard.entries {
			if !now.Before(expiresAt) {
				delete(shard.entries, id)
				pruned++
			}
		}
		shard.mu.Unlock()
	}
	return pruned
}

// Close stops the prune loop. Safe to call more than once.
func (r *MemoryRevocationRegistry) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	<-r.done
}

// pruneLoop sweeps expired entries until Close is called.
func (r *MemoryRevocationRegistry) pruneLoop(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.PruneExpired()
		case <-r.stop:
			return
		}
	}
}

// shard selects the lock stripe for a token ID.
func (r *MemoryRevocationRegistry) shard(tokenID string) *revocationShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tokenID))
	return r.shards[h.Sum32()&(revocationShards-1)]
}

// Compile-time interface check.
var _ TokenRevoker = (*MemoryRevocationRegistry)(nil)
