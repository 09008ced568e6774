// Package models defines the domain types for Ansuz.
package models

import (
	"time"

	"github.com/google/uuid"
)

// NoteType classifies a note in the Zettelkasten method.
// The types carry no behavioral difference in the engine; they are stored
// and filterable only.
type NoteType string

// Note classifications.
const (
	TypeLiterature NoteType = "literature"
	TypePermanent  NoteType = "permanent"
	TypeFleeting   NoteType = "fleeting"
)

// Note is the central entity of the knowledge base.
//
// ID is the stable opaque identity, assigned at creation and never
// reassigned; identity equality is the sole equality definition for a note.
// ZettelID is the separate human-meaningful identifier (YYYYMMDDHHMM) used
// inside [[wikilink]] tokens in note content.
//
// Links is always re-derived from Content on save. Backlinks is derived
// data maintained by the linkgraph package and is never authored directly.
type Note struct {
	ID         uuid.UUID         `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Tags       []string          `json:"tags"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	ModifiedAt time.Time         `json:"modified_at"`

	ZettelID   string   `json:"zettel_id,omitempty"`
	Links      []string `json:"links,omitempty"`
	Backlinks  []string `json:"backlinks,omitempty"`
	References []string `json:"references,omitempty"`
	Type       NoteType `json:"type"`
}

// NewNote creates a fleeting note with a fresh identity, a Zettelkasten ID
// derived from now, and both timestamps set to now.
func NewNote(title, content string) Note {
	now := time.Now()
	return Note{
		ID:         uuid.New(),
		Title:      title,
		Content:    content,
		Tags:       []string{},
		Metadata:   map[string]string{},
		CreatedAt:  now,
		ModifiedAt: now,
		ZettelID:   GenerateZettelID(now),
		Type:       TypeFleeting,
	}
}

// GenerateZettelID renders t in the Zettelkasten timestamp format
// YYYYMMDDHHMM (e.g. 202503041712).
func GenerateZettelID(t time.Time) string {
	return t.Format("200601021504")
}

// NewLinkedNote derives a child note of typ that starts with a single link
// back to the parent's Zettelkasten ID.
func NewLinkedNote(parent Note, title, content string, typ NoteType) Note {
	n := NewNote(title, content)
	n.Type = typ
	if parent.ZettelID != "" {
		n.Links = []string{parent.ZettelID}
	}
	return n
}

// Clone returns a deep copy so that collection snapshots never share
// mutable slices or maps with live notes.
func (n Note) Clone() Note {
	c := n
	c.Tags = append([]string(nil), n.Tags...)
	c.Links = append([]string(nil), n.Links...)
	c.Backlinks = append([]string(nil), n.Backlinks...)
	c.References = append([]string(nil), n.References...)
	if n.Metadata != nil {
		c.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// CloneAll deep-copies a whole collection.
func CloneAll(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
