// Package remote persists notes to a remote record database with bounded
// retry on transient failure. The database itself is a black box behind
// the Provider interface; Store adds the note codec and the retry policy
// on top of it.
package remote

import (
	"context"
	"errors"
	"time"
)

// Failure classes surfaced by a Provider. The first three network/service
// errors and ErrConflict are transient: expected to resolve on retry.
// Everything else is fatal and propagates immediately.
var (
	ErrNotFound           = errors.New("remote: record not found")
	ErrConflict           = errors.New("remote: record changed on server")
	ErrNetworkUnavailable = errors.New("remote: network unavailable")
	ErrNetworkFailure     = errors.New("remote: network failure")
	ErrServiceUnavailable = errors.New("remote: service unavailable")
)

// IsTransient reports whether err belongs to the retryable failure class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNetworkUnavailable) ||
		errors.Is(err, ErrNetworkFailure) ||
		errors.Is(err, ErrServiceUnavailable)
}

// Record is the persisted note shape. Tags is never empty ("untagged"
// sentinel) and Metadata is an opaque serialized map that is never empty
// ("created" timestamp sentinel); both sentinels are applied by the Store,
// not by providers.
type Record struct {
	ID         string
	Title      string
	Content    string
	Tags       []string
	Metadata   []byte
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Provider is the remote database boundary.
type Provider interface {
	// QueryAll returns every persisted record.
	QueryAll(ctx context.Context) ([]Record, error)
	// Fetch returns the record with the given id, or ErrNotFound.
	Fetch(ctx context.Context, id string) (Record, error)
	// Save upserts a record, overwriting changed fields on conflict.
	Save(ctx context.Context, rec Record) error
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}
