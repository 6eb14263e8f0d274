package rhetoric

import (
	"fmt"
	"strings"
)

// Thesis holds the two strategy verbs and the purpose clause assembled in the
// thesis builder. Verbs arrive verbatim from collected annotations.
type Thesis struct {
	Verb1   string `json:"verb1"`
	Verb2   string `json:"verb2"`
	Purpose string `json:"purpose"`
}

// Valid reports whether the thesis may be saved: all three fields must be
// non-empty after trimming.
func (t Thesis) Valid() bool {
	return strings.TrimSpace(t.Verb1) != "" &&
		strings.TrimSpace(t.Verb2) != "" &&
		strings.TrimSpace(t.Purpose) != ""
}

// Sentence renders the templated thesis statement with both verbs inflected
// to gerunds.
func (t Thesis) Sentence(author string) string {
	return fmt.Sprintf("%s begins by %s, then shifts to %s in order to %s.",
		author,
		Gerund(t.Verb1),
		Gerund(t.Verb2),
		strings.TrimSpace(t.Purpose),
	)
}
