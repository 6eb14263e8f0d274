// Package selection models the in-progress text selection that precedes an
// annotation: word tokenization for touch mode, the two-tap state machine,
// and server-side validation of candidate offsets.
package selection

import (
	"errors"
	"unicode"
)

// Selection is a candidate span not yet committed as an annotation.
type Selection struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var (
	// ErrOutOfRange indicates offsets outside [0, len(content)] or an empty span.
	ErrOutOfRange = errors.New("selection offsets out of range")
	// ErrTextMismatch indicates the claimed text does not match the content slice.
	ErrTextMismatch = errors.New("selection text does not match content")
)

// Validate checks a pointer-mode candidate against the authoritative content:
// offsets must form a non-empty half-open interval inside the content and the
// claimed text must equal the slice it points at.
func Validate(content string, sel Selection) error {
	if sel.Start < 0 || sel.End > len(content) || sel.Start >= sel.End {
		return ErrOutOfRange
	}
	if sel.Text != content[sel.Start:sel.End] {
		return ErrTextMismatch
	}
	return nil
}

// Token is one whitespace-delimited word with its [Start, End) offsets into
// the original content.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Tokenize splits content into word tokens, preserving exact offsets.
// Whitespace runs are skipped; they separate tokens but are never part of one.
func Tokenize(content string) []Token {
	tokens := make([]Token, 0, len(content)/6)
	start := -1
	for i, r := range content {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, Token{Text: content[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: content[start:], Start: start, End: len(content)})
	}
	return tokens
}

// State enumerates the two-tap machine states.
type State int

const (
	// StateIdle means no tap has been recorded.
	StateIdle State = iota
	// StateStartPending means the first tap fixed a pending start offset.
	StateStartPending
)

// TwoTap implements the touch selection machine. The first tap records a
// pending start offset; a second tap at a later-or-equal word finalizes the
// selection as [firstStart, secondEnd). Tapping an earlier word moves the
// pending start instead of finalizing: tapping backwards resets, never swaps.
type TwoTap struct {
	content      string
	state        State
	pendingStart int
}

// NewTwoTap builds a machine over the assignment content.
func NewTwoTap(content string) *TwoTap {
	return &TwoTap{content: content}
}

// State reports the current machine state.
func (t *TwoTap) State() State {
	return t.state
}

// PendingStart returns the recorded start offset, or -1 when idle.
func (t *TwoTap) PendingStart() int {
	if t.state != StateStartPending {
		return -1
	}
	return t.pendingStart
}

// Tap feeds one word tap into the machine. It returns the finalized selection
// and true when the tap completes a selection; otherwise the machine stays in
// (or moves to) start-pending.
func (t *TwoTap) Tap(word Token) (Selection, bool) {
	switch t.state {
	case StateIdle:
		t.state = StateStartPending
		t.pendingStart = word.Start
		return Selection{}, false
	case StateStartPending:
		if word.Start < t.pendingStart {
			t.pendingStart = word.Start
			return Selection{}, false
		}
		sel := Selection{
			Text:  t.content[t.pendingStart:word.End],
			Start: t.pendingStart,
			End:   word.End,
		}
		t.Reset()
		return sel, true
	}
	return Selection{}, false
}

// Reset discards any pending tap. Starting a new selection while one is
// mid-creation goes through here: the old candidate is dropped, never stacked.
func (t *TwoTap) Reset() {
	t.state = StateIdle
	t.pendingStart = 0
}
