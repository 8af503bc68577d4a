// Package storage provides SessionSink implementations: in-memory, a local
// SQLite store for guests, and an HTTP sink for signed-in users.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.SessionSink    = (*MemorySink)(nil)
	_ domain.SessionHistory = (*MemorySink)(nil)
)

// MemorySink keeps recorded sessions in memory. Safe for concurrent access.
type MemorySink struct {
	mu       sync.RWMutex
	sessions map[string]domain.CompletedSession
	order    []string
	log      *logger.Logger
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink(log *logger.Logger) *MemorySink {
	return &MemorySink{
		sessions: make(map[string]domain.CompletedSession),
		log:      log,
	}
}

// Record stores a session. Recording the same ID twice keeps the first.
func (s *MemorySink) Record(ctx context.Context, session domain.CompletedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		s.log.Debug("session %s already recorded", session.ID)
		return nil
	}
	s.log.Debug("recording session %s (mode=%s, %d min)", session.ID, session.Mode, session.DurationMinutes)
	s.sessions[session.ID] = session
	s.order = append(s.order, session.ID)
	return nil
}

// Load retrieves a session by ID.
func (s *MemorySink) Load(ctx context.Context, id string) (domain.CompletedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.CompletedSession{}, domain.ErrNotFound
	}
	return sess, nil
}

// List returns up to limit sessions, newest first. limit <= 0 means all.
func (s *MemorySink) List(ctx context.Context, limit int) ([]domain.CompletedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CompletedSession, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.sessions[s.order[i]])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Totals aggregates sessions that ended at or after since.
func (s *MemorySink) Totals(ctx context.Context, since time.Time) ([]domain.ModeTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMode := make(map[domain.TimerMode]*domain.ModeTotals)
	for _, sess := range s.sessions {
		if sess.EndTime.Before(since) {
			continue
		}
		t, ok := byMode[sess.Mode]
		if !ok {
			t = &domain.ModeTotals{Mode: sess.Mode}
			byMode[sess.Mode] = t
		}
		t.Count++
		t.Minutes += sess.DurationMinutes
	}

	out := make([]domain.ModeTotals, 0, len(byMode))
	for _, t := range byMode {
		out = append(out, *t)
	}
	sortTotals(out)
	return out, nil
}

func sortTotals(totals []domain.ModeTotals) {
	sort.Slice(totals, func(i, j int) bool { return totals[i].Mode < totals[j].Mode })
}
