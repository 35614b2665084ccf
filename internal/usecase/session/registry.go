package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"citizen-ai/internal/infra/metrics"
	"citizen-ai/internal/usecase/navigation"
)

type entry struct {
	shell    *navigation.Shell
	lastSeen time.Time
}

// Registry хранит оболочки посетителей по идентификатору сессии.
type Registry struct {
	newShell func() *navigation.Shell
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry создаёт реестр. Сессии без обращений дольше ttl удаляются при очистке.
func NewRegistry(newShell func() *navigation.Shell, ttl time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		newShell: newShell,
		ttl:      ttl,
		log:      logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Acquire возвращает оболочку по id или создаёт новую сессию, если id неизвестен.
func (r *Registry) Acquire(id string) (string, *navigation.Shell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok && id != "" {
		e.lastSeen = r.now()
		return id, e.shell
	}
	id = uuid.NewString()
	e := &entry{shell: r.newShell(), lastSeen: r.now()}
	r.sessions[id] = e
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return id, e.shell
}

// Len возвращает количество активных сессий.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep закрывает просроченные сессии и возвращает их количество.
func (r *Registry) Sweep() int {
	deadline := r.now().Add(-r.ttl)
	var expired []*navigation.Shell
	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastSeen.Before(deadline) {
			expired = append(expired, e.shell)
			delete(r.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, shell := range expired {
		shell.Close()
	}
	return len(expired)
}

// Run периодически очищает просроченные сессии до отмены ctx, затем закрывает оставшиеся.
func (r *Registry) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Debug().Int("expired", n).Msg("session: просроченные сессии удалены")
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	metrics.ActiveSessions.Set(0)
	r.mu.Unlock()
	for _, e := range sessions {
		e.shell.Close()
	}
}
