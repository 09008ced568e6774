package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/halvard/ansuz/internal/apperr"
	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/remote"
	"github.com/halvard/ansuz/internal/search"
	"github.com/halvard/ansuz/internal/tagindex"
	"github.com/halvard/ansuz/internal/zettelstore"
)

// Service bridges the HTTP surface and the orchestrator, and answers the
// read-side queries (search, tags, graph) against collection snapshots.
type Service struct {
	store *zettelstore.Store
}

// NewService creates a new API service.
func NewService(store *zettelstore.Store) *Service {
	return &Service{store: store}
}

// ListNotes returns the collection, optionally filtered by tag.
func (s *Service) ListNotes(_ context.Context, tag string) []models.Note {
	notes := s.store.Notes()
	if tag == "" {
		return notes
	}
	return tagindex.NotesByTag(tag, notes)
}

// GetNote returns one note by identity.
func (s *Service) GetNote(_ context.Context, id uuid.UUID) (models.Note, error) {
	n, err := s.store.Note(id)
	if errors.Is(err, zettelstore.ErrNotFound) {
		return models.Note{}, apperr.ErrNotFound
	}
	return n, err
}

// CreateNote creates and persists a new note.
func (s *Service) CreateNote(ctx context.Context, title, content string, tags []string, typ models.NoteType) (models.Note, error) {
	n := models.NewNote(title, content)
	n.Tags = tags
	if typ != "" {
		n.Type = typ
	}
	if err := s.store.Create(ctx, n); err != nil {
		return models.Note{}, translate(err)
	}
	// Re-read: the orchestrator derived links, tags, and backlinks.
	return s.store.Note(n.ID)
}

// UpdateNote applies an edit to an existing note. It blocks until the
// debounced persistence sequence finishes or is superseded by a newer edit.
func (s *Service) UpdateNote(ctx context.Context, id uuid.UUID, title, content string, tags []string, typ models.NoteType) (models.Note, error) {
	n, err := s.store.Note(id)
	if err != nil {
		if errors.Is(err, zettelstore.ErrNotFound) {
			return models.Note{}, apperr.ErrNotFound
		}
		return models.Note{}, err
	}
	n.Title = title
	n.Content = content
	n.Tags = tags
	if typ != "" {
		n.Type = typ
	}
	if err := s.store.Update(ctx, n); err != nil {
		return models.Note{}, translate(err)
	}
	return s.store.Note(id)
}

// DeleteNote removes a note and cleans up references to it.
func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.Note(id)
	if err != nil {
		if errors.Is(err, zettelstore.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return translate(s.store.Delete(ctx, n))
}

// translate maps persistence-layer errors onto the API taxonomy.
func translate(err error) error {
	if errors.Is(err, remote.ErrConflict) {
		return apperr.ErrConflict
	}
	return err
}

// Search returns ranked results, with similar-term suggestions when
// nothing matched.
func (s *Service) Search(_ context.Context, query string) ([]search.Result, []string) {
	notes := s.store.Notes()
	results := search.Search(query, notes)
	if len(results) > 0 {
		return results, nil
	}
	return nil, search.SimilarTerms(query, notes)
}

// Tags returns tag frequencies across the collection.
func (s *Service) Tags(_ context.Context) []tagindex.TagCount {
	return tagindex.AllTags(s.store.Notes())
}

// RelatedTags returns co-occurring tags for a tag.
func (s *Service) RelatedTags(_ context.Context, tag string) []tagindex.TagCount {
	return tagindex.RelatedTags(tag, s.store.Notes())
}

// Graph returns all nodes and links for graph visualization. Edges follow
// the Links field; targets without a matching note are omitted.
func (s *Service) Graph(_ context.Context) ([]GraphNode, []GraphLink) {
	notes := s.store.Notes()
	byZettelID := make(map[string]models.Note, len(notes))
	for _, n := range notes {
		if n.ZettelID != "" {
			byZettelID[n.ZettelID] = n
		}
	}

	nodes := make([]GraphNode, 0, len(notes))
	var links []GraphLink
	for _, n := range notes {
		nodes = append(nodes, GraphNode{ID: n.ID.String(), ZettelID: n.ZettelID, Title: n.Title})
		for _, target := range n.Links {
			if t, ok := byZettelID[target]; ok {
				links = append(links, GraphLink{Source: n.ID.String(), Target: t.ID.String()})
			}
		}
	}
	return nodes, links
}

// Sync pulls the current remote snapshot into the collection.
func (s *Service) Sync(ctx context.Context) error {
	return s.store.LoadAll(ctx)
}
