package api

import (
	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/search"
	"github.com/halvard/ansuz/internal/tagindex"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// SearchResponse wraps ranked search results. SimilarTerms is populated
// only when Results is empty.
type SearchResponse struct {
	Results      []search.Result `json:"results"`
	SimilarTerms []string        `json:"similar_terms,omitempty"`
}

// TagListResponse wraps tag frequency listings.
type TagListResponse struct {
	Tags []tagindex.TagCount `json:"tags"`
}

// GraphNode is a node in the knowledge graph.
type GraphNode struct {
	ID       string `json:"id"`
	ZettelID string `json:"zettel_id,omitempty"`
	Title    string `json:"title,omitempty"`
}

// GraphLink is a directed edge in the knowledge graph.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphResponse wraps the knowledge graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}
