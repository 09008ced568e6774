package linkgraph

import (
	"testing"

	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/parser"
)

func note(zettelID, content string) models.Note {
	n := models.NewNote("note "+zettelID, content)
	n.ZettelID = zettelID
	n.Links = parser.ExtractLinks(content)
	return n
}

func findByZettel(t *testing.T, notes []models.Note, zettelID string) models.Note {
	t.Helper()
	for _, n := range notes {
		if n.ZettelID == zettelID {
			return n
		}
	}
	t.Fatalf("note %s not in collection", zettelID)
	return models.Note{}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestRecompute_AddsBacklink(t *testing.T) {
	a := note("202501010001", "no links")
	b := note("202501010002", "see [[202501010001]]")
	out := Recompute([]models.Note{a, b}, b)

	got := findByZettel(t, out, "202501010001")
	if !contains(got.Backlinks, "202501010002") {
		t.Errorf("backlinks = %v, want to contain 202501010002", got.Backlinks)
	}
}

func TestRecompute_RetractsRemovedLink(t *testing.T) {
	a := note("202501010001", "no links")
	a.Backlinks = []string{"202501010002"}
	b := note("202501010002", "link removed from content")
	out := Recompute([]models.Note{a, b}, b)

	got := findByZettel(t, out, "202501010001")
	if contains(got.Backlinks, "202501010002") {
		t.Errorf("backlinks = %v, stale entry should be retracted", got.Backlinks)
	}
}

func TestRecompute_RemoveThenReaddLeavesOne(t *testing.T) {
	a := note("202501010001", "no links")
	a.Backlinks = []string{"202501010002"}
	b := note("202501010002", "still [[202501010001]]")
	out := Recompute([]models.Note{a, b}, b)

	got := findByZettel(t, out, "202501010001")
	count := 0
	for _, id := range got.Backlinks {
		if id == "202501010002" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("backlink occurrences = %d, want exactly 1 (retract before add)", count)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	a := note("202501010001", "")
	b := note("202501010002", "[[202501010001]] and [[202501010003]]")
	c := note("202501010003", "")
	in := []models.Note{a, b, c}

	once := Recompute(in, b)
	twice := Recompute(once, b)

	for i := range once {
		if !equal(once[i].Backlinks, twice[i].Backlinks) {
			t.Errorf("note %s backlinks diverged: %v vs %v",
				once[i].ZettelID, once[i].Backlinks, twice[i].Backlinks)
		}
	}
}

func TestRecompute_Symmetry(t *testing.T) {
	a := note("202501010001", "[[202501010002]]")
	b := note("202501010002", "[[202501010001]]")
	c := note("202501010003", "[[202501010001]]")

	out := []models.Note{a, b, c}
	for _, n := range []models.Note{a, b, c} {
		out = Recompute(out, n)
	}

	// For all pairs: A.zettel in B.links => B.zettel in A.backlinks.
	for _, src := range out {
		for _, target := range src.Links {
			dst := findByZettel(t, out, target)
			if !contains(dst.Backlinks, src.ZettelID) {
				t.Errorf("%s links %s but backlink missing", src.ZettelID, target)
			}
		}
	}
	// No orphan backlinks.
	for _, n := range out {
		for _, bl := range n.Backlinks {
			src := findByZettel(t, out, bl)
			if !contains(src.Links, n.ZettelID) {
				t.Errorf("orphan backlink %s on %s", bl, n.ZettelID)
			}
		}
	}
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	a := note("202501010001", "")
	b := note("202501010002", "[[202501010001]]")
	in := []models.Note{a, b}

	_ = Recompute(in, b)
	if len(in[0].Backlinks) != 0 {
		t.Errorf("input snapshot mutated: %v", in[0].Backlinks)
	}
}

func TestRemoveNote_StripsAllReferences(t *testing.T) {
	x := note("202501010001", "")
	a := note("202501010002", "[[202501010001]]")
	a.Backlinks = []string{"202501010001"}
	b := note("202501010003", "[[202501010001]] [[202501010002]]")

	out := RemoveNote([]models.Note{x, a, b}, x)
	for _, n := range out {
		if contains(n.Links, x.ZettelID) || contains(n.Backlinks, x.ZettelID) {
			t.Errorf("note %s still references deleted %s", n.ZettelID, x.ZettelID)
		}
	}
	// Unrelated links survive.
	if !contains(findByZettel(t, out, "202501010003").Links, "202501010002") {
		t.Error("unrelated link was stripped")
	}
}

func TestRebuild_FromLinks(t *testing.T) {
	a := note("202501010001", "")
	b := note("202501010002", "[[202501010001]] [[202501010001]]")
	out := Rebuild([]models.Note{a, b})

	got := findByZettel(t, out, "202501010001")
	if len(got.Backlinks) != 1 || got.Backlinks[0] != "202501010002" {
		t.Errorf("backlinks = %v, want [202501010002] (duplicate links collapse)", got.Backlinks)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
