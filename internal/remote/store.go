package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halvard/ansuz/internal/models"
)

// Defaults for the retry and timeout policy, mirroring the persisted
// store's configuration surface.
const (
	DefaultMaxAttempts     = 3
	DefaultBackoffUnit     = time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultResourceTimeout = 60 * time.Second
)

// Store persists notes through a Provider with bounded exponential-backoff
// retry on transient failures. It owns no state of its own beyond
// configuration: the in-memory collection belongs to the orchestrator.
type Store struct {
	provider Provider
	logger   *slog.Logger

	maxAttempts     int
	backoffUnit     time.Duration
	requestTimeout  time.Duration
	resourceTimeout time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRetryPolicy overrides the attempt bound and backoff unit.
func WithRetryPolicy(maxAttempts int, backoffUnit time.Duration) StoreOption {
	return func(s *Store) {
		s.maxAttempts = maxAttempts
		s.backoffUnit = backoffUnit
	}
}

// WithTimeouts overrides the per-request and whole-operation timeouts.
func WithTimeouts(request, resource time.Duration) StoreOption {
	return func(s *Store) {
		s.requestTimeout = request
		s.resourceTimeout = resource
	}
}

// NewStore creates a Store over provider.
func NewStore(provider Provider, logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		provider:        provider,
		logger:          logger,
		maxAttempts:     DefaultMaxAttempts,
		backoffUnit:     DefaultBackoffUnit,
		requestTimeout:  DefaultRequestTimeout,
		resourceTimeout: DefaultResourceTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll returns every persisted note. Records that fail to decode are
// logged and skipped; a single corrupt record never aborts the load.
func (s *Store) LoadAll(ctx context.Context) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, s.resourceTimeout)
	defer cancel()

	var recs []Record
	err := s.retry(ctx, func(callCtx context.Context) error {
		var qerr error
		recs, qerr = s.provider.QueryAll(callCtx)
		return qerr
	})
	if err != nil {
		return nil, fmt.Errorf("remote: load all: %w", err)
	}

	notes := make([]models.Note, 0, len(recs))
	for _, rec := range recs {
		n, err := decodeNote(rec)
		if err != nil {
			s.logger.Warn("skipping undecodable record",
				slog.String("id", rec.ID), slog.String("error", err.Error()))
			continue
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Upsert persists a note: fetch-or-create the record by identity,
// overwrite the mutable fields, and save. The whole sequence runs under
// the retry policy.
func (s *Store) Upsert(ctx context.Context, n models.Note) error {
	ctx, cancel := context.WithTimeout(ctx, s.resourceTimeout)
	defer cancel()

	rec, err := encodeNote(n)
	if err != nil {
		return err
	}

	return s.retry(ctx, func(callCtx context.Context) error {
		existing, ferr := s.provider.Fetch(callCtx, rec.ID)
		switch {
		case ferr == nil:
			// Creation time is immutable once persisted.
			rec.CreatedAt = existing.CreatedAt
		case errors.Is(ferr, ErrNotFound):
			// New record.
		default:
			return ferr
		}
		return s.provider.Save(callCtx, rec)
	})
}

// Delete removes a note's record by identity.
func (s *Store) Delete(ctx context.Context, n models.Note) error {
	ctx, cancel := context.WithTimeout(ctx, s.resourceTimeout)
	defer cancel()

	return s.retry(ctx, func(callCtx context.Context) error {
		return s.provider.Delete(callCtx, n.ID.String())
	})
}

// retry runs fn up to maxAttempts times. Attempt k (k > 0) waits
// 2^k backoff units first. Only transient errors are retried; the last
// observed error propagates when attempts are exhausted.
func (s *Store) retry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<attempt) * s.backoffUnit
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := s.callWithRequestTimeout(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
		s.logger.Debug("transient remote failure",
			slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
	}
	return lastErr
}

func (s *Store) callWithRequestTimeout(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	return fn(callCtx)
}
