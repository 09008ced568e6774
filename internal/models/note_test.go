package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateZettelID_Format(t *testing.T) {
	ts := time.Date(2025, 3, 4, 17, 12, 33, 0, time.UTC)
	if got := GenerateZettelID(ts); got != "202503041712" {
		t.Errorf("GenerateZettelID = %q, want %q", got, "202503041712")
	}
}

func TestNewNote_Defaults(t *testing.T) {
	n := NewNote("Title", "Body")
	if n.ID == uuid.Nil {
		t.Error("expected a generated identity")
	}
	if n.Type != TypeFleeting {
		t.Errorf("type = %q, want fleeting", n.Type)
	}
	if n.ZettelID == "" {
		t.Error("expected a Zettelkasten ID")
	}
	if n.CreatedAt.IsZero() || !n.CreatedAt.Equal(n.ModifiedAt) {
		t.Error("expected both timestamps set at creation")
	}
}

func TestNewLinkedNote_BackwardLink(t *testing.T) {
	parent := NewNote("Parent", "")
	child := NewLinkedNote(parent, "Child", "body", TypePermanent)
	if len(child.Links) != 1 || child.Links[0] != parent.ZettelID {
		t.Errorf("child links = %v, want [%s]", child.Links, parent.ZettelID)
	}
	if child.Type != TypePermanent {
		t.Errorf("child type = %q, want permanent", child.Type)
	}
	if child.ID == parent.ID {
		t.Error("child must get its own identity")
	}
}

func TestClone_Independent(t *testing.T) {
	n := NewNote("Title", "Body")
	n.Tags = []string{"a"}
	n.Links = []string{"x"}
	n.Metadata["k"] = "v"

	c := n.Clone()
	c.Tags[0] = "changed"
	c.Links[0] = "changed"
	c.Metadata["k"] = "changed"

	if n.Tags[0] != "a" || n.Links[0] != "x" || n.Metadata["k"] != "v" {
		t.Error("Clone shares mutable state with the original")
	}
}
