package rhetoric

import "strings"

// SentenceCount counts the sentences in s: substrings delimited by runs of
// '.', '!' or '?', counted only when non-whitespace after trimming.
func SentenceCount(s string) int {
	count := 0
	for _, piece := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(piece) != "" {
			count++
		}
	}
	return count
}

// CommentaryRatio is the required multiple of commentary sentences over
// evidence sentences before a paragraph may be completed.
const CommentaryRatio = 2

// RatioMet reports whether the commentary carries enough analysis for the
// quoted evidence: commentary sentences >= 2 x evidence sentences. With an
// empty evidence field both counts are zero and the gate trivially holds, but
// in practice evidence is always non-empty once a claim is set.
func RatioMet(evidence, commentary string) bool {
	return SentenceCount(commentary) >= CommentaryRatio*SentenceCount(evidence)
}
