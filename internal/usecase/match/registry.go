package match

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"margo/internal/domain/pyramid"
	errs "margo/internal/errors"
)

type entry struct {
	match    *Match
	lastSeen time.Time
}

// Registry keeps the matches in play in memory. Every lookup refreshes a
// match, so Evict only forgets matches nobody asked about.
type Registry struct {
	mu      sync.Mutex
	matches map[string]*entry
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewRegistry(log *zap.SugaredLogger) *Registry {
	return &Registry{
		matches: make(map[string]*entry),
		log:     log,
		now:     time.Now,
	}
}

func (r *Registry) Create(g pyramid.Geometry) *Match {
	m := New(g)

	r.mu.Lock()
	r.matches[m.ID()] = &entry{match: m, lastSeen: r.now()}
	r.mu.Unlock()

	r.log.Infof("match %s created on a size %d pyramid", m.ID(), g.Size)
	return m
}

func (r *Registry) Get(id string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.matches[id]
	if !ok {
		return nil, errs.ErrMatchNotFound
	}
	e.lastSeen = r.now()
	return e.match, nil
}

// Evict forgets every match last touched before cutoff and returns their ids.
func (r *Registry) Evict(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, e := range r.matches {
		if e.lastSeen.Before(cutoff) {
			delete(r.matches, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}
