package search

import (
	"strings"
	"testing"

	"github.com/halvard/ansuz/internal/models"
)

func note(title, content string, tags ...string) models.Note {
	n := models.NewNote(title, content)
	n.Tags = tags
	return n
}

func TestSearch_TitleOutranksContent(t *testing.T) {
	notes := []models.Note{
		note("Graph Theory", "trees and graphs", "math"),
		note("Cooking", "graph paper recipes"),
	}
	results := Search("graph", notes)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Note.Title != "Graph Theory" {
		t.Errorf("top result = %q, want Graph Theory (title match ranks higher)", results[0].Note.Title)
	}
	// Title 1.0 + content 0.5 vs content 0.5.
	if results[0].Relevance != 1.5 {
		t.Errorf("relevance = %v, want 1.5", results[0].Relevance)
	}
	if results[1].Relevance != 0.5 {
		t.Errorf("relevance = %v, want 0.5", results[1].Relevance)
	}
}

func TestSearch_TitleCountedOncePerNote(t *testing.T) {
	notes := []models.Note{note("alpha beta", "")}
	results := Search("alpha beta", notes)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	// Both terms hit the title but the title signal counts once.
	if results[0].Relevance != 1.0 {
		t.Errorf("relevance = %v, want 1.0", results[0].Relevance)
	}
}

func TestSearch_ContentCountsPerTerm(t *testing.T) {
	notes := []models.Note{note("x", "alpha likes beta")}
	results := Search("alpha beta", notes)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Relevance != 1.0 { // 0.5 + 0.5
		t.Errorf("relevance = %v, want 1.0", results[0].Relevance)
	}
	if len(results[0].Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(results[0].Matches))
	}
}

func TestSearch_TagWeight(t *testing.T) {
	notes := []models.Note{note("x", "", "mathematics")}
	results := Search("math", notes)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Relevance != 0.8 {
		t.Errorf("relevance = %v, want 0.8", results[0].Relevance)
	}
	if results[0].Matches[0].Type != MatchTag {
		t.Errorf("match type = %q, want tag", results[0].Matches[0].Type)
	}
}

func TestSearch_NoMatchExcluded(t *testing.T) {
	notes := []models.Note{note("unrelated", "nothing here")}
	if results := Search("zettelkasten", notes); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearch_ContextWindow(t *testing.T) {
	content := strings.Repeat("x", 50) + "needle" + strings.Repeat("y", 50)
	notes := []models.Note{note("t", content)}
	results := Search("needle", notes)
	if len(results) != 1 {
		t.Fatal("expected one result")
	}
	var snippet string
	for _, m := range results[0].Matches {
		if m.Type == MatchContent {
			snippet = m.Text
		}
	}
	want := strings.Repeat("x", 20) + "needle" + strings.Repeat("y", 20)
	if snippet != want {
		t.Errorf("snippet = %q, want %q", snippet, want)
	}
}

func TestSearch_ContextWindowClamped(t *testing.T) {
	notes := []models.Note{note("t", "needle at start")}
	results := Search("needle", notes)
	var snippet string
	for _, m := range results[0].Matches {
		if m.Type == MatchContent {
			snippet = m.Text
		}
	}
	if !strings.HasPrefix(snippet, "needle") {
		t.Errorf("snippet = %q, should start at the string boundary", snippet)
	}
}

func TestSimilarTerms_WithinDistanceTwo(t *testing.T) {
	notes := []models.Note{
		note("graph theory", "", "math"),
		note("cooking", "", "maths"),
	}
	terms := SimilarTerms("grape", notes)
	if len(terms) != 1 || terms[0] != "graph" {
		t.Errorf("terms = %v, want [graph]", terms)
	}
}

func TestSimilarTerms_ExcludesExactMatch(t *testing.T) {
	notes := []models.Note{note("graph", "", "graphs")}
	terms := SimilarTerms("graph", notes)
	for _, term := range terms {
		if term == "graph" {
			t.Error("identical term must not be suggested")
		}
	}
	if len(terms) != 1 || terms[0] != "graphs" {
		t.Errorf("terms = %v, want [graphs]", terms)
	}
}

func TestSimilarTerms_Deduplicated(t *testing.T) {
	notes := []models.Note{
		note("graph one", ""),
		note("graph two", ""),
	}
	terms := SimilarTerms("grape", notes)
	if len(terms) != 1 {
		t.Errorf("terms = %v, want a single deduplicated entry", terms)
	}
}
