// Package tagindex computes tag statistics over a note collection.
package tagindex

import (
	"sort"
	"strings"

	"github.com/halvard/ansuz/internal/models"
)

// TagCount pairs a tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AllTags returns every tag in the collection with its frequency, sorted by
// count descending. Equal counts are ordered by first appearance in the
// collection walk, which keeps the result deterministic.
func AllTags(notes []models.Note) []TagCount {
	counts := make(map[string]int)
	var order []string
	for _, n := range notes {
		for _, t := range n.Tags {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	out := make([]TagCount, len(order))
	for i, t := range order {
		out[i] = TagCount{Tag: t, Count: counts[t]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// NotesByTag returns the notes carrying tag (exact string match), in
// collection order.
func NotesByTag(tag string, notes []models.Note) []models.Note {
	var out []models.Note
	for _, n := range notes {
		if hasTag(n, tag) {
			out = append(out, n)
		}
	}
	return out
}

// RelatedTags returns tags that co-occur with tag on the same notes,
// excluding tag itself, with co-occurrence counts sorted descending.
func RelatedTags(tag string, notes []models.Note) []TagCount {
	counts := make(map[string]int)
	var order []string
	for _, n := range NotesByTag(tag, notes) {
		for _, t := range n.Tags {
			if t == tag {
				continue
			}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	out := make([]TagCount, len(order))
	for i, t := range order {
		out[i] = TagCount{Tag: t, Count: counts[t]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Suggest returns the vocabulary tags that appear as a case-insensitive
// substring of any whitespace-split word in content.
func Suggest(content string, vocabulary []string) []string {
	words := strings.Fields(strings.ToLower(content))
	var out []string
	for _, tag := range vocabulary {
		lower := strings.ToLower(tag)
		for _, w := range words {
			if strings.Contains(w, lower) {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

func hasTag(n models.Note, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
