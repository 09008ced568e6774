package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/parser"
)

// The remote record carries only the fields in the persisted shape
// (title, content, tags, metadata blob, timestamps). Zettelkasten fields
// ride inside the metadata blob under reserved keys and are lifted back
// out on decode; links are re-derived from content and backlinks are
// rebuilt by the orchestrator after a full load.
const (
	metaKeyCreated    = "created"
	metaKeyZettelID   = "zettel_id"
	metaKeyNoteType   = "note_type"
	metaKeyReferences = "references"
)

const untaggedSentinel = "untagged"

// encodeNote renders a note as its persisted record.
func encodeNote(n models.Note) (Record, error) {
	meta := make(map[string]string, len(n.Metadata)+3)
	for k, v := range n.Metadata {
		meta[k] = v
	}
	if len(meta) == 0 {
		meta[metaKeyCreated] = n.CreatedAt.UTC().Format(time.RFC3339)
	}
	if n.ZettelID != "" {
		meta[metaKeyZettelID] = n.ZettelID
	}
	if n.Type != "" {
		meta[metaKeyNoteType] = string(n.Type)
	}
	if len(n.References) > 0 {
		refs, err := json.Marshal(n.References)
		if err != nil {
			return Record{}, fmt.Errorf("remote: marshal references: %w", err)
		}
		meta[metaKeyReferences] = string(refs)
	}

	blob, err := json.Marshal(meta)
	if err != nil {
		return Record{}, fmt.Errorf("remote: marshal metadata: %w", err)
	}

	tags := n.Tags
	if len(tags) == 0 {
		tags = []string{untaggedSentinel}
	}

	return Record{
		ID:         n.ID.String(),
		Title:      n.Title,
		Content:    n.Content,
		Tags:       tags,
		Metadata:   blob,
		CreatedAt:  n.CreatedAt,
		ModifiedAt: n.ModifiedAt,
	}, nil
}

// decodeNote parses a record back into a note. Any malformed field makes
// the whole record undecodable; callers skip such records rather than
// failing a batch load.
func decodeNote(rec Record) (models.Note, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return models.Note{}, fmt.Errorf("remote: record id %q: %w", rec.ID, err)
	}
	if len(rec.Tags) == 0 {
		return models.Note{}, fmt.Errorf("remote: record %s has no tags", rec.ID)
	}

	var meta map[string]string
	if err := json.Unmarshal(rec.Metadata, &meta); err != nil {
		return models.Note{}, fmt.Errorf("remote: record %s metadata: %w", rec.ID, err)
	}

	n := models.Note{
		ID:         id,
		Title:      rec.Title,
		Content:    rec.Content,
		Tags:       rec.Tags,
		Metadata:   meta,
		CreatedAt:  rec.CreatedAt,
		ModifiedAt: rec.ModifiedAt,
		Type:       models.TypeFleeting,
	}

	if v, ok := meta[metaKeyZettelID]; ok {
		n.ZettelID = v
		delete(meta, metaKeyZettelID)
	}
	if v, ok := meta[metaKeyNoteType]; ok {
		n.Type = models.NoteType(v)
		delete(meta, metaKeyNoteType)
	}
	if v, ok := meta[metaKeyReferences]; ok {
		if err := json.Unmarshal([]byte(v), &n.References); err != nil {
			return models.Note{}, fmt.Errorf("remote: record %s references: %w", rec.ID, err)
		}
		delete(meta, metaKeyReferences)
	}

	n.Links = parser.ExtractLinks(n.Content)
	return n, nil
}
