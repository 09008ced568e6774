// Package linkgraph maintains backlink consistency across a note collection.
//
// All functions are pure: they take a full collection snapshot plus one
// changed note and return a new collection. Re-running a pass with the same
// inputs is a no-op, and the inputs are never mutated.
package linkgraph

import "github.com/halvard/ansuz/internal/models"

// Recompute returns a collection in which every note's Backlinks reflect
// the links of updated.
//
// The pass retracts before it adds: first every backlink referencing
// updated's Zettelkasten ID is removed (covers link removal), then the ID is
// appended to the backlinks of every note whose Zettelkasten ID appears in
// updated.Links. A note that removed and re-added the same link therefore
// ends up with exactly one backlink occurrence.
func Recompute(notes []models.Note, updated models.Note) []models.Note {
	if updated.ZettelID == "" {
		return models.CloneAll(notes)
	}

	linked := make(map[string]struct{}, len(updated.Links))
	for _, id := range updated.Links {
		linked[id] = struct{}{}
	}

	out := make([]models.Note, len(notes))
	for i, n := range notes {
		c := n.Clone()
		c.Backlinks = remove(c.Backlinks, updated.ZettelID)
		if _, ok := linked[c.ZettelID]; ok && c.ZettelID != "" {
			c.Backlinks = append(c.Backlinks, updated.ZettelID)
		}
		out[i] = c
	}
	return out
}

// RemoveNote returns a collection in which no note's Links or Backlinks
// reference the deleted note's Zettelkasten ID. Deletion must not leave
// dangling references.
func RemoveNote(notes []models.Note, deleted models.Note) []models.Note {
	if deleted.ZettelID == "" {
		return models.CloneAll(notes)
	}

	out := make([]models.Note, len(notes))
	for i, n := range notes {
		c := n.Clone()
		c.Links = remove(c.Links, deleted.ZettelID)
		c.Backlinks = remove(c.Backlinks, deleted.ZettelID)
		out[i] = c
	}
	return out
}

// Rebuild recomputes every note's Backlinks from scratch out of the
// collection's Links. Used after a full load, where backlinks are not part
// of the persisted record shape.
func Rebuild(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	byZettelID := make(map[string]int, len(notes))
	for i, n := range notes {
		c := n.Clone()
		c.Backlinks = nil
		out[i] = c
		if c.ZettelID != "" {
			byZettelID[c.ZettelID] = i
		}
	}
	for _, src := range out {
		if src.ZettelID == "" {
			continue
		}
		seen := make(map[string]struct{}, len(src.Links))
		for _, target := range src.Links {
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			if i, ok := byZettelID[target]; ok {
				out[i].Backlinks = append(out[i].Backlinks, src.ZettelID)
			}
		}
	}
	return out
}

func remove(ids []string, id string) []string {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
