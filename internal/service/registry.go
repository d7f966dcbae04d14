package service

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vcscsvcscs/ova-health/backend/internal/ai"
	"go.uber.org/zap"
)

// Registry keeps companion sessions in memory, evicting the least recently used
type Registry struct {
	sessions *lru.Cache[string, *Companion]
	invoker  ai.Invoker
	logger   *zap.Logger
}

// NewRegistry creates a registry holding at most size sessions
func NewRegistry(size int, invoker ai.Invoker, logger *zap.Logger) (*Registry, error) {
	r := &Registry{invoker: invoker, logger: logger}

	cache, err := lru.NewWithEvict(size, func(id string, _ *Companion) {
		r.logger.Info("session evicted", zap.String("session_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	r.sessions = cache

	return r, nil
}

// Create starts a new session
func (r *Registry) Create() *Companion {
	id := uuid.NewString()
	c := NewCompanion(id, r.invoker, r.logger)
	r.sessions.Add(id, c)
	r.logger.Info("session created", zap.String("session_id", id))
	return c
}

// Get returns the session with the given id
func (r *Registry) Get(id string) (*Companion, error) {
	c, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Delete ends a session
func (r *Registry) Delete(id string) bool {
	return r.sessions.Remove(id)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.sessions.Len()
}
