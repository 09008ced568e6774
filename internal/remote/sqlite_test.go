package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/halvard/ansuz/internal/remote"
	"github.com/halvard/ansuz/internal/testutil"
)

func record(title string) remote.Record {
	now := time.Now().UTC().Truncate(time.Second)
	return remote.Record{
		ID:         uuid.New().String(),
		Title:      title,
		Content:    "body of " + title,
		Tags:       []string{"untagged"},
		Metadata:   []byte(`{}`),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func TestSQLiteProvider_SaveFetch(t *testing.T) {
	p := testutil.TestProvider(t)
	ctx := context.Background()

	rec := record("one")
	if err := p.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := p.Fetch(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Title != rec.Title || got.Content != rec.Content {
		t.Errorf("got %+v, want %+v", got, rec)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "untagged" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestSQLiteProvider_SaveIsUpsert(t *testing.T) {
	p := testutil.TestProvider(t)
	ctx := context.Background()

	rec := record("v1")
	if err := p.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Title = "v2"
	rec.Tags = []string{"edited"}
	if err := p.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	all, err := p.QueryAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("rows = %d, want 1 after upsert", len(all))
	}
	if all[0].Title != "v2" || all[0].Tags[0] != "edited" {
		t.Errorf("row = %+v", all[0])
	}
}

func TestSQLiteProvider_FetchMissing(t *testing.T) {
	p := testutil.TestProvider(t)
	_, err := p.Fetch(context.Background(), uuid.New().String())
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteProvider_DeleteMissing(t *testing.T) {
	p := testutil.TestProvider(t)
	err := p.Delete(context.Background(), uuid.New().String())
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteProvider_Delete(t *testing.T) {
	p := testutil.TestProvider(t)
	ctx := context.Background()

	rec := record("doomed")
	if err := p.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := p.Fetch(ctx, rec.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("err after delete = %v, want ErrNotFound", err)
	}
}
