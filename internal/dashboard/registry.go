package dashboard

import (
	"context"
	"sync"
	"time"

	"appdash/internal/logging/types"
	"appdash/pkg/utils"
)

// Registry keeps one controller per dashboard session
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
	factory  func() *Controller
	logger   types.Logger
	now      func() time.Time
}

// NewRegistry creates an empty registry. factory builds the controller of
// each new session.
func NewRegistry(factory func() *Controller, logger types.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Controller),
		factory:  factory,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the controller of an existing session
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	return c, ok
}

// GetOrCreate returns the session's controller. An empty or unknown id starts
// a new session under a freshly generated id; callers never choose their own.
func (r *Registry) GetOrCreate(id string) (string, *Controller, bool) {
	if id != "" {
		if c, ok := r.Get(id); ok {
			return id, c, false
		}
	}

	id = utils.GenerateSessionID()
	c := r.factory()

	r.mu.Lock()
	r.sessions[id] = c
	r.mu.Unlock()

	r.logger.Debug("Dashboard session created", map[string]interface{}{
		"session_id": id,
	})
	return id, c, true
}

// Delete ends a session
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cleanup removes sessions idle for longer than maxAge and returns how many
// were removed.
func (r *Registry) Cleanup(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	removed := 0
	for id, c := range r.sessions {
		if c.LastUsed().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done
func (r *Registry) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := r.Cleanup(maxAge); removed > 0 {
					r.logger.Info("Expired dashboard sessions removed", map[string]interface{}{
						"removed":   removed,
						"remaining": r.Len(),
					})
				}
			}
		}
	}()
}
