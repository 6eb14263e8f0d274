package rhetoric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGerund(t *testing.T) {
	cases := []struct {
		verb string
		want string
	}{
		{"Juxtaposes", "Juxtaposing"},
		{"Highlights", "Highlighting"},
		{"Amplifies", "Amplifying"},
		{"Digresses", "Digressing"},
		{"Shows", "Showing"},
		{"Frames", "Framing"},
		{"Catalogs", "Cataloging"},
		{"Evoke", "Evokeing"}, // outside the inflected forms, plain append
	}

	for _, tc := range cases {
		t.Run(tc.verb, func(t *testing.T) {
			require.Equal(t, tc.want, Gerund(tc.verb))
		})
	}
}

func TestCategoryOf(t *testing.T) {
	require.Equal(t, "Comparison", CategoryOf("Juxtaposes"))
	require.Equal(t, "Structure", CategoryOf("Digresses"))
	require.Equal(t, "Default", CategoryOf("Skateboards"))
	require.True(t, Known("Amplifies"))
	require.False(t, Known(""))
}

func TestThesisValid(t *testing.T) {
	require.False(t, Thesis{}.Valid())
	require.False(t, Thesis{Verb1: "Juxtaposes", Verb2: "  ", Purpose: "warn"}.Valid())
	require.False(t, Thesis{Verb1: "Juxtaposes", Verb2: "Amplifies"}.Valid())
	require.True(t, Thesis{Verb1: "Juxtaposes", Verb2: "Amplifies", Purpose: "warn the reader"}.Valid())
}

func TestThesisSentence(t *testing.T) {
	thesis := Thesis{Verb1: "Juxtaposes", Verb2: "Amplifies", Purpose: "expose the policy's cost"}
	require.Equal(t,
		"Swift begins by Juxtaposing, then shifts to Amplifying in order to expose the policy's cost.",
		thesis.Sentence("Swift"),
	)
}

func TestSentenceCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"One sentence.", 1},
		{"One. Two!", 2},
		{"One... still one piece? two", 3},
		{"!!!", 0},
		{"Ends without punctuation", 1},
		{"First. \n . Second?", 2},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, SentenceCount(tc.in), "input %q", tc.in)
	}
}

func TestRatioGateBoundary(t *testing.T) {
	evidence := "The ships hung in the sky."

	require.False(t, RatioMet(evidence, ""), "empty commentary stays gated")
	require.False(t, RatioMet(evidence, "This imagery surprises the reader."),
		"one commentary sentence against one evidence sentence stays gated")
	require.True(t, RatioMet(evidence, "This imagery surprises the reader. It undercuts expectations of gravity."),
		"two commentary sentences satisfy the 2:1 ratio")

	twoSentenceEvidence := "First quote. Second quote."
	require.False(t, RatioMet(twoSentenceEvidence, "One. Two. Three."))
	require.True(t, RatioMet(twoSentenceEvidence, "One. Two. Three. Four."))
}
