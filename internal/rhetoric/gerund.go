package rhetoric

import "strings"

// Gerund inflects a third-person singular verb into its -ing form for display
// inside the thesis sentence. The suffix classes overlap (a verb ending
// "sses" also ends "es" and "s"), so the rules are checked in this exact
// priority order and the first match wins.
func Gerund(verb string) string {
	switch {
	case strings.HasSuffix(verb, "ies"):
		return verb[:len(verb)-3] + "ying" // Amplifies -> Amplifying
	case strings.HasSuffix(verb, "sses"), strings.HasSuffix(verb, "hes"):
		return verb[:len(verb)-2] + "ing" // Digresses -> Digressing
	case strings.HasSuffix(verb, "es"):
		return verb[:len(verb)-2] + "ing" // Juxtaposes -> Juxtaposing
	case strings.HasSuffix(verb, "s"):
		return verb[:len(verb)-1] + "ing" // Highlights -> Highlighting
	default:
		return verb + "ing"
	}
}
