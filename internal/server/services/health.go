package services

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthService reports whether the database is reachable and tells
// subscribers (the gRPC health server) when that changes.
type HealthService struct {
	db  pinger
	log logging.Logger

	mu        sync.Mutex
	listeners []func(serving bool)
	last      *bool
}

// NewHealthService constructs a HealthService over db.
func NewHealthService(db pinger, l logging.Logger) *HealthService {
	return &HealthService{db: db, log: l.With("module", "health")}
}

// Subscribe registers fn to be called with every status change.
func (s *HealthService) Subscribe(fn func(serving bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Check pings the database and returns the ping error, if any.
func (s *HealthService) Check(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	serving := err == nil

	s.mu.Lock()
	changed := s.last == nil || *s.last != serving
	s.last = &serving
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if changed {
		if serving {
			s.log.Info(ctx, "database reachable")
		} else {
			s.log.Error(ctx, "database unreachable", "error", err)
		}
		for _, fn := range listeners {
			fn(serving)
		}
	}
	return err
}
