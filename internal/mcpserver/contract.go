package mcpserver

// NoteFormatContract describes the note conventions that LLM consumers
// should follow when creating notes.
const NoteFormatContract = `# Ansuz Note Format Contract

Notes are plain-text records with a title and a body.

## Structure

- The **title** is a short human-readable name shown in lists and search.
- The **body** is free text. Two token kinds are interpreted:
  - ` + "`[[202503041712]]`" + ` — a wikilink to another note's Zettelkasten ID
    (12 digits, YYYYMMDDHHMM). The engine derives the link graph and
    backlinks from these tokens; never write backlinks by hand.
  - ` + "`#tag-name`" + ` — an inline tag (word characters and hyphens). Tags are
    extracted from title and body on every save.

## Rules

1. Reference other notes only through ` + "`[[zettel-id]]`" + ` tokens. Plain
   mentions of an ID are not links.
2. Tags are lowercase, kebab-case (e.g. ` + "`project-x`" + `, ` + "`meeting-notes`" + `).
3. A note with no tags is stored with the ` + "`untagged`" + ` sentinel; do not
   add that tag yourself.
4. Classification is one of ` + "`literature`" + `, ` + "`permanent`" + `, ` + "`fleeting`" + `
   (default ` + "`fleeting`" + `).

## Example

    Title: Graph theory overview
    Body:
      Trees and DAGs, see [[202503041712]] for the spanning-tree proof.
      #math #graph-theory
`
