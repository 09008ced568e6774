// Package zettelstore orchestrates the in-memory note collection: it
// composes link-graph maintenance with remote persistence and coalesces
// rapid edits into debounced, cancellable persistence tasks.
package zettelstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halvard/ansuz/internal/linkgraph"
	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/parser"
)

// DefaultDebounce is the quiet period an update must survive before its
// persistence sequence runs.
const DefaultDebounce = 500 * time.Millisecond

// ErrNotFound is returned when an operation references an unknown note
// identity.
var ErrNotFound = errors.New("zettelstore: note not found")

// EventKind labels a collection change for observers.
type EventKind string

// Collection events. EventSynced fires after a persistence sequence or a
// full reload changed the committed collection as a whole.
const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventSynced  EventKind = "synced"
)

// EventFunc observes collection changes. note is the zero Note for
// EventSynced.
type EventFunc func(kind EventKind, note models.Note)

// Persister is the slice of the remote store the orchestrator needs.
type Persister interface {
	LoadAll(ctx context.Context) ([]models.Note, error)
	Upsert(ctx context.Context, n models.Note) error
	Delete(ctx context.Context, n models.Note) error
}

// pendingEdit is the cancellation handle for one scheduled debounce task.
type pendingEdit struct {
	cancel     context.CancelFunc
	done       chan struct{}
	superseded bool // guarded by Store.mu
	err        error
}

// Store owns the authoritative in-memory note collection. All reads and
// writes of the collection go through it; mutations operate on immutable
// snapshots and commit new ones, so concurrent readers never observe
// in-place edits. At most one in-flight persistence sequence exists per
// note identity: a newer edit cancels the pending one before it performs
// any remote-visible side effect.
type Store struct {
	remote   Persister
	logger   *slog.Logger
	debounce time.Duration
	onEvent  EventFunc

	mu      sync.Mutex
	notes   []models.Note
	pending map[uuid.UUID]*pendingEdit
}

// Option configures a Store.
type Option func(*Store)

// WithDebounce overrides the update quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithEventFunc registers the change observer.
func WithEventFunc(fn EventFunc) Option {
	return func(s *Store) { s.onEvent = fn }
}

// New creates an empty Store persisting through remote.
func New(remote Persister, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		remote:   remote,
		logger:   logger,
		debounce: DefaultDebounce,
		pending:  make(map[uuid.UUID]*pendingEdit),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notes returns a deep-copied snapshot of the current collection.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneAll(s.notes)
}

// Note returns the current state of one note by identity.
func (s *Store) Note(id uuid.UUID) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n.Clone(), nil
		}
	}
	return models.Note{}, ErrNotFound
}

// LoadAll replaces the in-memory collection with the remote snapshot and
// rebuilds backlinks, which are not part of the persisted record shape.
func (s *Store) LoadAll(ctx context.Context) error {
	notes, err := s.remote.LoadAll(ctx)
	if err != nil {
		return err
	}
	rebuilt := linkgraph.Rebuild(notes)

	s.mu.Lock()
	s.notes = rebuilt
	s.mu.Unlock()

	s.notify(EventSynced, models.Note{})
	return nil
}

// Create derives links and tags from the note's content, persists it
// immediately (creation is a discrete user action, no debounce), runs the
// link-graph pass, persists every other note whose cross-references
// changed, and commits the new collection.
//
// The local commit happens regardless of remote outcome; the first
// unrecoverable persistence error is returned after the sequence finishes.
func (s *Store) Create(ctx context.Context, n models.Note) error {
	n = prepare(n)

	var firstErr error
	if err := s.remote.Upsert(ctx, n); err != nil {
		firstErr = err
	}

	snapshot := s.Notes()
	recomputed := linkgraph.Recompute(snapshot, n)
	if err := s.persistChanged(ctx, snapshot, recomputed, n.ID); err != nil && firstErr == nil {
		firstErr = err
	}

	// Notes created before this one may already link to its Zettelkasten ID.
	for _, other := range recomputed {
		if other.ZettelID == "" {
			continue
		}
		for _, target := range other.Links {
			if target == n.ZettelID {
				n.Backlinks = append(n.Backlinks, other.ZettelID)
				break
			}
		}
	}

	s.mu.Lock()
	s.notes = append(recomputed, n.Clone())
	s.mu.Unlock()

	s.notify(EventCreated, n)
	return firstErr
}

// Update derives links and tags, applies the change to the in-memory
// collection immediately (optimistic, visible before persistence), cancels
// any pending debounce task for this identity, and schedules a new one.
// After a quiet period with no further edits the task recomputes backlinks,
// persists the edited note and the changed others, and commits.
//
// Update blocks until its own task completes. A call whose task was
// superseded by a newer edit returns nil: its effects were fully discarded
// before any remote I/O, which is the contract, not a failure.
func (s *Store) Update(ctx context.Context, n models.Note) error {
	n = prepare(n)

	taskCtx, cancel := context.WithCancel(ctx)
	edit := &pendingEdit{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	found := false
	for i := range s.notes {
		if s.notes[i].ID == n.ID {
			s.notes[i] = n.Clone()
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		cancel()
		return ErrNotFound
	}
	if prev, ok := s.pending[n.ID]; ok {
		prev.superseded = true
		prev.cancel()
	}
	s.pending[n.ID] = edit
	s.mu.Unlock()

	s.notify(EventUpdated, n)

	go s.runDebounced(taskCtx, edit, n)

	<-edit.done

	s.mu.Lock()
	superseded := edit.superseded
	err := edit.err
	if s.pending[n.ID] == edit {
		delete(s.pending, n.ID)
	}
	s.mu.Unlock()

	if superseded {
		return nil
	}
	return err
}

// runDebounced is the cancellable persistence task for one update. It
// performs no remote-visible side effect once cancelled.
func (s *Store) runDebounced(ctx context.Context, edit *pendingEdit, n models.Note) {
	defer close(edit.done)
	defer edit.cancel()

	timer := time.NewTimer(s.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		edit.err = ctx.Err()
		return
	case <-timer.C:
	}
	if ctx.Err() != nil {
		edit.err = ctx.Err()
		return
	}

	var firstErr error
	if err := s.remote.Upsert(ctx, n); err != nil {
		firstErr = err
	}

	snapshot := s.Notes()
	recomputed := linkgraph.Recompute(snapshot, n)
	if err := s.persistChanged(ctx, snapshot, recomputed, n.ID); err != nil && firstErr == nil {
		firstErr = err
	}

	s.mu.Lock()
	if edit.superseded {
		// A newer edit won while we were persisting; leave its state alone.
		s.mu.Unlock()
		return
	}
	// The snapshot already held this update's optimistic state, so the
	// recomputed collection carries both the new content and consistent
	// backlinks.
	s.notes = recomputed
	s.mu.Unlock()

	edit.err = firstErr
	s.notify(EventSynced, models.Note{})
}

// Delete removes the note remotely, strips its Zettelkasten ID from every
// other note's links and backlinks, persists the notes that changed, and
// commits the collection without the deleted note.
func (s *Store) Delete(ctx context.Context, n models.Note) error {
	s.mu.Lock()
	if prev, ok := s.pending[n.ID]; ok {
		prev.superseded = true
		prev.cancel()
		delete(s.pending, n.ID)
	}
	s.mu.Unlock()

	var firstErr error
	if err := s.remote.Delete(ctx, n); err != nil {
		firstErr = err
	}

	snapshot := s.Notes()
	cleaned := linkgraph.RemoveNote(snapshot, n)
	if err := s.persistChanged(ctx, snapshot, cleaned, n.ID); err != nil && firstErr == nil {
		firstErr = err
	}

	committed := make([]models.Note, 0, len(cleaned))
	for _, c := range cleaned {
		if c.ID != n.ID {
			committed = append(committed, c)
		}
	}

	s.mu.Lock()
	s.notes = committed
	s.mu.Unlock()

	s.notify(EventDeleted, n)
	return firstErr
}

// persistChanged upserts every note (except the primary one) whose Links
// or Backlinks differ between the old and new snapshots. Failures do not
// stop the sweep; the first error is returned.
func (s *Store) persistChanged(ctx context.Context, old, recomputed []models.Note, primary uuid.UUID) error {
	prev := make(map[uuid.UUID]models.Note, len(old))
	for _, n := range old {
		prev[n.ID] = n
	}

	var firstErr error
	for _, n := range recomputed {
		if n.ID == primary {
			continue
		}
		before, ok := prev[n.ID]
		if ok && equalStrings(before.Links, n.Links) && equalStrings(before.Backlinks, n.Backlinks) {
			continue
		}
		if err := s.remote.Upsert(ctx, n); err != nil {
			s.logger.Warn("backlink propagation persist failed",
				slog.String("id", n.ID.String()), slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) notify(kind EventKind, n models.Note) {
	if s.onEvent != nil {
		s.onEvent(kind, n)
	}
}

// prepare re-derives the content-dependent fields and fills in creation
// defaults. Links are always exactly the wikilink tokens of the current
// content; tags merge supplied tags with those extracted from title and
// content.
func prepare(n models.Note) models.Note {
	now := time.Now()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.ZettelID == "" {
		n.ZettelID = models.GenerateZettelID(now)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.Type == "" {
		n.Type = models.TypeFleeting
	}
	n.ModifiedAt = now
	n.Links = parser.ExtractLinks(n.Content)
	n.Tags = parser.DeriveTags(n.Title, n.Content, n.Tags)
	return n
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
