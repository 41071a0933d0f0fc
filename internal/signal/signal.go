// Package signal implements per-entity invalidation signals. One signal
// exists per entity identifier; every cache entry that references the entity
// holds the same signal instance, so revoking it expires all of them at once.
package signal

import (
	"sync"
	"sync/atomic"

	"github.com/IgorHrabrov/openiddict-core/internal/shared/cachedtime"
)

// Signal is a revoke-once token shared by all cache entries referencing one
// entity. Revocation is observed by entries on their next lookup.
type Signal struct {
	id string

	revoked atomic.Bool
	once    sync.Once
	done    chan struct{}

	// refs counts committed cache entries holding this signal; acquiredAt is
	// renewed on every GetOrCreate. Both feed the janitor sweep.
	refs       atomic.Int64
	acquiredAt atomic.Int64
}

func newSignal(id string) *Signal {
	s := &Signal{id: id, done: make(chan struct{})}
	s.touch()
	return s
}

func (s *Signal) ID() string { return s.id }

// Revoke marks the signal revoked. Idempotent.
func (s *Signal) Revoke() {
	s.once.Do(func() {
		s.revoked.Store(true)
		close(s.done)
	})
}

func (s *Signal) Revoked() bool { return s.revoked.Load() }

// Done is closed once the signal is revoked.
func (s *Signal) Done() <-chan struct{} { return s.done }

func (s *Signal) Ref()   { s.refs.Add(1) }
func (s *Signal) Unref() { s.refs.Add(-1) }

func (s *Signal) Refs() int64       { return s.refs.Load() }
func (s *Signal) AcquiredAt() int64 { return s.acquiredAt.Load() }

func (s *Signal) touch() { s.acquiredAt.Store(cachedtime.UnixNano()) }
