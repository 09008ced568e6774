// Package parser extracts wikilinks and tags from note text.
package parser

import "regexp"

var (
	wikilinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	// Word characters plus hyphen, Unicode-aware so that #über-mich works.
	tagRe = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)
)

// ExtractLinks returns every [[...]] target in content, in order of
// appearance. Targets are Zettelkasten IDs; duplicates are preserved the
// way they occur in the text.
func ExtractLinks(content string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// ExtractTags returns every #tag token in content, in order of appearance.
func ExtractTags(content string) []string {
	matches := tagRe.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// DeriveTags collects tags from title and content and merges them with any
// externally supplied tags, de-duplicated by exact string equality while
// preserving insertion order (supplied tags first).
func DeriveTags(title, content string, supplied []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(supplied))
	add := func(tags []string) {
		for _, t := range tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	add(supplied)
	add(ExtractTags(content))
	add(ExtractTags(title))
	return out
}
