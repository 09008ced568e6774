// Package search scores notes against free-text queries and suggests
// similar terms when nothing matches.
package search

import (
	"sort"
	"strings"

	"github.com/halvard/ansuz/internal/models"
)

// Match weights. A title hit is a single strong signal counted once per
// note regardless of how many query terms matched it; content hits count
// per matching term and tag hits per matching tag.
const (
	titleWeight   = 1.0
	contentWeight = 0.5
	tagWeight     = 0.8
)

// contextRadius is the number of characters captured around a content
// match for display.
const contextRadius = 20

// MatchType labels where a match was found.
type MatchType string

// Match locations.
const (
	MatchTitle   MatchType = "title"
	MatchContent MatchType = "content"
	MatchTag     MatchType = "tag"
)

// Match is one hit inside a note.
type Match struct {
	Type      MatchType `json:"type"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}

// Result is a note with its accumulated matches and total relevance.
type Result struct {
	Note      models.Note `json:"note"`
	Matches   []Match     `json:"matches"`
	Relevance float64     `json:"relevance"`
}

// Search scores every note against query and returns the notes with at
// least one match, sorted by relevance descending. Ties keep collection
// order (stable sort).
func Search(query string, notes []models.Note) []Result {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var results []Result
	for _, n := range notes {
		var matches []Match
		lowerTitle := strings.ToLower(n.Title)
		lowerContent := strings.ToLower(n.Content)

		for _, term := range terms {
			if strings.Contains(lowerTitle, term) {
				matches = append(matches, Match{Type: MatchTitle, Text: n.Title, Relevance: titleWeight})
				break
			}
		}

		for _, term := range terms {
			if idx := strings.Index(lowerContent, term); idx >= 0 {
				matches = append(matches, Match{
					Type:      MatchContent,
					Text:      contextWindow(n.Content, idx, idx+len(term)),
					Relevance: contentWeight,
				})
			}
		}

		for _, tag := range n.Tags {
			lowerTag := strings.ToLower(tag)
			for _, term := range terms {
				if strings.Contains(lowerTag, term) {
					matches = append(matches, Match{Type: MatchTag, Text: tag, Relevance: tagWeight})
					break
				}
			}
		}

		if len(matches) == 0 {
			continue
		}
		total := 0.0
		for _, m := range matches {
			total += m.Relevance
		}
		results = append(results, Result{Note: n, Matches: matches, Relevance: total})
	}

	// Stable: equal relevance preserves collection order.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	return results
}

// SimilarTerms suggests replacement terms for a query that produced no
// results: words from note titles and tags within Levenshtein distance 1
// or 2 of any query term. Distance 0 is excluded since suggesting the
// identical term helps nobody. The result is de-duplicated, in discovery
// order.
func SimilarTerms(query string, notes []models.Note) []string {
	terms := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{})
	var out []string

	add := func(candidate string) {
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	for _, n := range notes {
		for _, word := range strings.Fields(strings.ToLower(n.Title)) {
			for _, term := range terms {
				if d := Levenshtein(term, word); d > 0 && d <= 2 {
					add(word)
					break
				}
			}
		}
		for _, tag := range n.Tags {
			for _, term := range terms {
				if d := Levenshtein(term, strings.ToLower(tag)); d > 0 && d <= 2 {
					add(tag)
					break
				}
			}
		}
	}
	return out
}

// contextWindow returns content around [start,end) padded by contextRadius
// characters on each side, clamped to the string bounds.
func contextWindow(content string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(content) {
		hi = len(content)
	}
	return content[lo:hi]
}
