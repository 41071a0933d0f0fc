package signal

import (
	"errors"
	"sync"
	"time"

	"github.com/IgorHrabrov/openiddict-core/internal/shared/cachedtime"
)

var ErrEmptyIdentifier = errors.New("signal identifier must not be empty")

// Registry owns one Signal per entity identifier. Construction is
// single-flight: the signal is built inside the critical section, so
// concurrent callers for the same identifier always observe one instance.
type Registry struct {
	mu      sync.RWMutex
	signals map[string]*Signal
}

func NewRegistry() *Registry {
	return &Registry{signals: make(map[string]*Signal)}
}

func (r *Registry) GetOrCreate(id string) (*Signal, error) {
	if id == "" {
		return nil, ErrEmptyIdentifier
	}

	r.mu.RLock()
	s, ok := r.signals[id]
	r.mu.RUnlock()
	if ok {
		s.touch()
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.signals[id]; ok {
		s.touch()
		return s, nil
	}
	s = newSignal(id)
	r.signals[id] = s
	return s, nil
}

// Cancel revokes the signal for id and forgets the mapping. Idempotent when
// the identifier is absent.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	s, ok := r.signals[id]
	if ok {
		delete(r.signals, id)
	}
	r.mu.Unlock()

	if ok {
		s.Revoke()
	}
}

func (r *Registry) Len() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.signals))
}

// Sweep reaps signals that no committed cache entry references and that were
// last acquired before the grace window. An in-flight miss path renews the
// acquisition stamp on GetOrCreate, so the grace window keeps uncommitted
// signals out of reach. Reaping an unreferenced signal is neutral: a later
// Remove simply constructs and revokes a fresh one.
func (r *Registry) Sweep(grace time.Duration) (reaped int64) {
	cutoff := cachedtime.UnixNano() - grace.Nanoseconds()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.signals {
		if s.Refs() <= 0 && s.AcquiredAt() < cutoff {
			delete(r.signals, id)
			reaped++
		}
	}
	return reaped
}

// Reset revokes every signal and empties the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	signals := r.signals
	r.signals = make(map[string]*Signal)
	r.mu.Unlock()

	for _, s := range signals {
		s.Revoke()
	}
}
