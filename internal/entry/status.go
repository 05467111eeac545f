package entry

// Status records why an extraction step produced an empty or partial result.
// Corpus variance is never surfaced as an error: every anomaly a community-
// edited page can exhibit maps to one of these codes and the derivation
// degrades to an empty result.
type Status string

const (
	// StatusOK means no recorded failure at time of inspection.
	StatusOK Status = "OK"

	// Source retrieval.
	StatusNoContent      Status = "NO_CONTENT"
	StatusWrongNamespace Status = "WRONG_NAMESPACE"

	// Language section location.
	StatusNoSection        Status = "NO_SECTION"
	StatusAmbiguousSection Status = "AMBIGUOUS_SECTION"

	// Entry derivations.
	StatusNoWordForms Status = "NO_WORD_FORMS"

	// POS classification (word forms and flexion pages).
	StatusNoPOS       Status = "NO_POS"
	StatusMultiplePOS Status = "MULTIPLE_POS"

	// Flexion page template counts.
	StatusNoFlexionTemplates       Status = "NO_FLEXION_TEMPLATES"
	StatusMultipleFlexionTemplates Status = "MULTIPLE_FLEXION_TEMPLATES"
)

func (s Status) String() string { return string(s) }

// OK reports whether no failure has been recorded.
func (s Status) OK() bool { return s == StatusOK }
