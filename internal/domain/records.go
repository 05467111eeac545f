// Package domain holds the flat export records written to the lexicon
// database. Records are produced by the exporter pipeline from extraction
// results and inserted in bulk; the schema is append-only.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// InflectionSource says which template family an inflection value came from.
type InflectionSource string

const (
	SourceOverview InflectionSource = "overview"
	SourceFlexion  InflectionSource = "flexion"
)

func (s InflectionSource) String() string { return string(s) }

func (s InflectionSource) IsValid() bool {
	switch s {
	case SourceOverview, SourceFlexion:
		return true
	}
	return false
}

// Lexeme is one wiki page title together with its extraction status.
// One row per page, keyed by the normalized title.
type Lexeme struct {
	ID              uuid.UUID
	Title           string
	TitleNormalized string
	Status          string
	CreatedAt       time.Time
}

// WordFormRecord is one word-form section of a lexeme.
// Position is the document order of the section within the page.
type WordFormRecord struct {
	ID       uuid.UUID
	LexemeID uuid.UUID
	Heading  string
	Position int
	Status   string
}

// POSTag is one part-of-speech tag attached to a word form.
type POSTag struct {
	WordFormID uuid.UUID
	Tag        string
	Position   int
}

// InflectionValue is one name/value pair from an inflection table.
// TableIndex numbers the tables of a word form; Position numbers the
// pairs within one table, both in document order.
type InflectionValue struct {
	ID         uuid.UUID
	WordFormID uuid.UUID
	Source     InflectionSource
	TableIndex int
	Name       string
	Value      string
	Position   int
}
