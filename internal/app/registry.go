package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/core"
	"github.com/novatrack/realtime/internal/domain"
)

// Registry is the flat connection table: connection id to live session.
// No business rules live here; the only failure mode is "not found".
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*core.Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*core.Conn)}
}

func (r *Registry) Register(c *core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
	log.Info().Str("module", "app.registry").Str("conn", string(c.ID)).Int64("user", int64(c.UserID)).Msg("registered connection")
}

func (r *Registry) Lookup(id domain.ConnID) (*core.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Unregister(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unregistered connection")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
