// Package timeline collects autopilot progress into an in-memory timeline
// that can be inspected live and persisted through a Repository. A Store is
// constructed explicitly and injected into the engine as its event sink and
// status reporter.
package timeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/redgreen"
)

// EntryKind distinguishes structured events from status text.
type EntryKind string

const (
	EntryEvent  EntryKind = "event"
	EntryStatus EntryKind = "status"
)

// Entry is a single timeline record. IDs are UUID v7 so entries sort by
// creation time.
type Entry struct {
	ID      string         `json:"id"`
	Kind    EntryKind      `json:"kind"`
	Time    time.Time      `json:"time"`
	Type    string         `json:"type,omitempty"`
	Message string         `json:"message,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Timeline is a snapshot of a whole recorded run.
type Timeline struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Entries   []Entry   `json:"entries"`
}

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithRepository sets the repository for persisting the timeline.
func WithRepository(repo Repository) Option {
	return func(s *Store) {
		s.repo = repo
	}
}

// WithTimelineID sets a custom timeline ID.
// If not set, a UUID v7 is generated automatically.
func WithTimelineID(id string) Option {
	return func(s *Store) {
		s.id = id
	}
}

// Store accumulates timeline entries during a run. It implements both
// redgreen.EventSink and redgreen.StatusReporter.
type Store struct {
	id        string
	startedAt time.Time
	entries   []Entry
	repo      Repository
	mu        sync.Mutex
}

var (
	_ redgreen.EventSink      = (*Store)(nil)
	_ redgreen.StatusReporter = (*Store)(nil)
)

// New creates a new Store with the given options.
func New(opts ...Option) *Store {
	s := &Store{
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.Must(uuid.NewV7()).String()
	}
	return s
}

// ID returns the timeline ID.
func (s *Store) ID() string {
	return s.id
}

// AppendEvent records a structured engine event.
func (s *Store) AppendEvent(ctx context.Context, ev redgreen.Event) error {
	s.append(Entry{
		Kind:    EntryEvent,
		Type:    ev.Type,
		Message: ev.Message,
		Payload: ev.Payload,
		Meta:    ev.Meta,
	})
	return nil
}

// ReportStatus records a human-readable progress line.
func (s *Store) ReportStatus(ctx context.Context, text string) error {
	s.append(Entry{
		Kind:    EntryStatus,
		Message: text,
	})
	return nil
}

func (s *Store) append(entry Entry) {
	entry.ID = uuid.Must(uuid.NewV7()).String()
	entry.Time = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// Entries returns a copy of the recorded entries in append order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Snapshot returns the timeline recorded so far.
func (s *Store) Snapshot() *Timeline {
	return &Timeline{
		ID:        s.id,
		StartedAt: s.startedAt,
		Entries:   s.Entries(),
	}
}

// Flush persists the current timeline through the configured repository.
// It is a no-op without a repository.
func (s *Store) Flush(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(ctx, s.Snapshot())
}
