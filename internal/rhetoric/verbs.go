// Package rhetoric holds the rhetorical-verb vocabulary and the small lexical
// rules built on it: gerund inflection, the thesis sentence template, and the
// commentary-to-evidence sentence ratio used to gate paragraph completion.
package rhetoric

// VerbCategory groups verbs by rhetorical function.
type VerbCategory struct {
	Category string   `json:"category"`
	Verbs    []string `json:"verbs"`
}

// Taxonomy is the static vocabulary consumed by annotation creation and the
// thesis/paragraph builders. Verbs are third-person singular so they read
// naturally as claims ("The author juxtaposes...").
var Taxonomy = []VerbCategory{
	{Category: "Comparison", Verbs: []string{
		"Juxtaposes", "Contrasts", "Parallels", "Likens", "Equates",
	}},
	{Category: "Emphasis", Verbs: []string{
		"Amplifies", "Highlights", "Underscores", "Repeats", "Stresses",
	}},
	{Category: "Tone/Emotion", Verbs: []string{
		"Evokes", "Dramatizes", "Laments", "Mocks", "Romanticizes",
	}},
	{Category: "Logic/Argument", Verbs: []string{
		"Concedes", "Refutes", "Qualifies", "Reasons", "Justifies",
	}},
	{Category: "Structure", Verbs: []string{
		"Shifts", "Digresses", "Frames", "Catalogs", "Bookends",
	}},
}

// CategoryOf returns the category a verb belongs to, or "Default" for verbs
// outside the taxonomy.
func CategoryOf(verb string) string {
	for _, category := range Taxonomy {
		for _, candidate := range category.Verbs {
			if candidate == verb {
				return category.Category
			}
		}
	}
	return "Default"
}

// Known reports whether the verb is part of the taxonomy.
func Known(verb string) bool {
	return CategoryOf(verb) != "Default"
}
