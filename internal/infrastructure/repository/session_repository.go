package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	domainRepo "github.com/sangkips/pharmacy-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
)

// ErrSessionNotFound is returned for unknown or evicted billing sessions
var ErrSessionNotFound = apperror.NewNotFoundError("Billing session")

type sessionEntry struct {
	mu       sync.Mutex
	form     *billing.Form
	lastSeen atomic.Int64
}

func (e *sessionEntry) touch() {
	e.lastSeen.Store(time.Now().UnixNano())
}

// MemorySessionRepository keeps billing sessions in process memory. Each
// session has its own lock; sessions idle for longer than the TTL are evicted.
type MemorySessionRepository struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*sessionEntry
	ttl         time.Duration
	cleanupTick time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemorySessionRepository creates the store and starts its cleanup loop
func NewMemorySessionRepository(ttl, cleanupInterval time.Duration) *MemorySessionRepository {
	r := &MemorySessionRepository{
		sessions:    make(map[uuid.UUID]*sessionEntry),
		ttl:         ttl,
		cleanupTick: cleanupInterval,
		stop:        make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go r.cleanupLoop()
	}

	return r
}

var _ domainRepo.SessionRepository = (*MemorySessionRepository)(nil)

func (r *MemorySessionRepository) Save(ctx context.Context, form *billing.Form) error {
	entry := &sessionEntry{form: form}
	entry.touch()

	r.mu.Lock()
	r.sessions[form.ID] = entry
	r.mu.Unlock()
	return nil
}

func (r *MemorySessionRepository) Lock(ctx context.Context, id uuid.UUID) (*billing.Form, func(), error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	entry.mu.Lock()
	entry.touch()

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			entry.touch()
			entry.mu.Unlock()
		})
	}
	return entry.form, unlock, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

func (r *MemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the cleanup loop
func (r *MemorySessionRepository) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// cleanupLoop periodically evicts idle sessions
func (r *MemorySessionRepository) cleanupLoop() {
	ticker := time.NewTicker(r.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup(time.Now())
		case <-r.stop:
			return
		}
	}
}

// cleanup removes sessions that haven't been used since now - ttl
func (r *MemorySessionRepository) cleanup(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.ttl).UnixNano()
	evicted := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Load() < cutoff {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}
