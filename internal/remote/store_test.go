package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/halvard/ansuz/internal/models"
)

// fakeProvider scripts per-call failures and counts attempts.
type fakeProvider struct {
	queryErr error
	fetchErr error
	saveErr  error
	delErr   error

	// delFailLimit > 0 makes Delete fail with delErr only for the first
	// delFailLimit calls.
	delFailLimit int

	records []Record

	queryCalls int
	fetchCalls int
	saveCalls  int
	delCalls   int

	saved []Record
}

func (f *fakeProvider) QueryAll(ctx context.Context) ([]Record, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.records, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, id string) (Record, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return Record{}, f.fetchErr
	}
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (f *fakeProvider) Save(ctx context.Context, rec Record) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeProvider) Delete(ctx context.Context, id string) error {
	f.delCalls++
	if f.delErr != nil && (f.delFailLimit == 0 || f.delCalls <= f.delFailLimit) {
		return f.delErr
	}
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastStore(p Provider) *Store {
	return NewStore(p, discard(),
		WithRetryPolicy(DefaultMaxAttempts, time.Millisecond))
}

func TestRetry_TransientExhaustsAttempts(t *testing.T) {
	fp := &fakeProvider{queryErr: ErrNetworkFailure}
	s := fastStore(fp)

	_, err := s.LoadAll(context.Background())
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("err = %v, want the last transient error", err)
	}
	if fp.queryCalls != 3 {
		t.Errorf("attempts = %d, want exactly 3", fp.queryCalls)
	}
}

func TestRetry_PermanentFailsImmediately(t *testing.T) {
	permanent := errors.New("schema mismatch")
	fp := &fakeProvider{queryErr: permanent}
	s := fastStore(fp)

	_, err := s.LoadAll(context.Background())
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want the permanent error", err)
	}
	if fp.queryCalls != 1 {
		t.Errorf("attempts = %d, want exactly 1 for a permanent failure", fp.queryCalls)
	}
}

func TestRetry_SucceedsAfterTransientFailure(t *testing.T) {
	fp := &fakeProvider{delErr: ErrServiceUnavailable, delFailLimit: 1}
	s := NewStore(fp, discard(), WithRetryPolicy(3, time.Millisecond))

	n := models.NewNote("t", "")
	if err := s.Delete(context.Background(), n); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if fp.delCalls != 2 {
		t.Errorf("attempts = %d, want 2 (one failure, one success)", fp.delCalls)
	}
}

func TestRetry_ContextCancelStopsBackoff(t *testing.T) {
	fp := &fakeProvider{queryErr: ErrNetworkUnavailable}
	s := NewStore(fp, discard(), WithRetryPolicy(3, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.LoadAll(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry loop ignored cancellation")
	}
	if fp.queryCalls != 1 {
		t.Errorf("attempts = %d, want 1 before cancellation", fp.queryCalls)
	}
}

func TestUpsert_PreservesPersistedCreationTime(t *testing.T) {
	n := models.NewNote("t", "")
	origCreated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fp := &fakeProvider{records: []Record{{
		ID:        n.ID.String(),
		Tags:      []string{untaggedSentinel},
		Metadata:  []byte("{}"),
		CreatedAt: origCreated,
	}}}
	s := fastStore(fp)

	if err := s.Upsert(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	if len(fp.saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(fp.saved))
	}
	if !fp.saved[0].CreatedAt.Equal(origCreated) {
		t.Errorf("created = %v, want the persisted %v", fp.saved[0].CreatedAt, origCreated)
	}
}

func TestUpsert_CreatesWhenMissing(t *testing.T) {
	fp := &fakeProvider{}
	s := fastStore(fp)

	n := models.NewNote("t", "body")
	if err := s.Upsert(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	if len(fp.saved) != 1 || fp.saved[0].ID != n.ID.String() {
		t.Errorf("saved = %+v", fp.saved)
	}
}

func TestLoadAll_SkipsCorruptRecords(t *testing.T) {
	good, err := encodeNote(models.NewNote("keep", "body"))
	if err != nil {
		t.Fatal(err)
	}
	corrupt := Record{
		ID:       uuid.New().String(),
		Title:    "drop",
		Tags:     nil, // tags column failed to parse
		Metadata: []byte("{}"),
	}
	fp := &fakeProvider{records: []Record{corrupt, good}}
	s := fastStore(fp)

	notes, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "keep" {
		t.Errorf("notes = %+v, want only the decodable record", notes)
	}
}
