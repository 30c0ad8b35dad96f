// Package autosave defers project persistence behind a trailing-edge
// debounce: each scheduled snapshot re-arms the quiet window, and only the
// last snapshot of a burst is written. At most one save is pending per
// project at any time.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"agency-budget-go/internal/domain/project"
	"agency-budget-go/pkg/logger"
)

type SaveFunc func(ctx context.Context, p project.Project) error

type Saver struct {
	interval time.Duration
	timeout  time.Duration
	save     SaveFunc
	log      logger.Logger

	mu          sync.Mutex
	pending     map[string]*entry
	saving      int
	lastSavedAt time.Time
	closed      bool
}

type entry struct {
	snapshot project.Project
	timer    *time.Timer
	seq      uint64
}

// Status backs the saving / saved-at indicator.
type Status struct {
	Saving      bool      `json:"saving"`
	Dirty       int       `json:"dirty"`
	LastSavedAt time.Time `json:"last_saved_at"`
}

const (
	DefaultInterval = 500 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

func New(interval, timeout time.Duration, save SaveFunc, log logger.Logger) *Saver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Saver{
		interval: interval,
		timeout:  timeout,
		save:     save,
		log:      log,
		pending:  make(map[string]*entry),
	}
}

// Schedule arms (or re-arms) the deferred save for this snapshot. A snapshot
// scheduled while a save for the same project is still pending supersedes it.
func (s *Saver) Schedule(p project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if existing, ok := s.pending[p.ID]; ok {
		existing.timer.Stop()
	}

	e := &entry{snapshot: p}
	if existing, ok := s.pending[p.ID]; ok {
		e.seq = existing.seq + 1
	}
	id, seq := p.ID, e.seq
	e.timer = time.AfterFunc(s.interval, func() {
		s.fire(id, seq)
	})
	s.pending[p.ID] = e
}

// Pending returns the not-yet-persisted snapshot for a project, if any.
func (s *Saver) Pending(id string) (project.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pending[id]; ok {
		return e.snapshot.Clone(), true
	}
	return project.Project{}, false
}

func (s *Saver) PendingAll() []project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]project.Project, 0, len(s.pending))
	for _, e := range s.pending {
		items = append(items, e.snapshot.Clone())
	}
	return items
}

// Cancel drops any pending save for the project without writing it.
func (s *Saver) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pending[id]; ok {
		e.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Saver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Saving:      s.saving > 0 || len(s.pending) > 0,
		Dirty:       len(s.pending),
		LastSavedAt: s.lastSavedAt,
	}
}

// Flush writes every pending snapshot immediately.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	snapshots := make([]project.Project, 0, len(s.pending))
	for id, e := range s.pending {
		e.timer.Stop()
		snapshots = append(snapshots, e.snapshot)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, snapshot := range snapshots {
		if err := s.save(ctx, snapshot); err != nil {
			errs = append(errs, err)
			continue
		}
		s.markSaved()
	}
	return errors.Join(errs...)
}

// Close flushes outstanding snapshots and refuses further scheduling.
func (s *Saver) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.Flush(ctx)
}

func (s *Saver) fire(id string, seq uint64) {
	s.mu.Lock()
	e, ok := s.pending[id]
	if !ok || e.seq != seq {
		// Superseded by a newer schedule or cancelled.
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	snapshot := e.snapshot
	s.saving++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	err := s.save(ctx, snapshot)

	s.mu.Lock()
	s.saving--
	s.mu.Unlock()

	if err != nil {
		// Save failures are non-blocking: the in-memory snapshot stays the
		// source of truth for the session.
		if s.log != nil {
			s.log.InternalError("autosave: save failed", err, "project_id", id)
		}
		return
	}
	s.markSaved()
}

func (s *Saver) markSaved() {
	s.mu.Lock()
	s.lastSavedAt = time.Now().UTC()
	s.mu.Unlock()
}
