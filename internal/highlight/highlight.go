// Package highlight partitions annotated text into renderable segments.
//
// Both the student reader view and the teacher heatmap view are built on the
// same interval partition: collect every span boundary into a sorted list of
// cut points and classify the sub-interval between each consecutive pair.
package highlight

import "sort"

// Span is a half-open interval [Start, End) of character offsets into the
// assignment content, tagged with the owning annotation's identifier.
type Span struct {
	ID    uint
	Start int
	End   int
}

// Segment is one partition of the text. Segments returned by Partition cover
// [0, textLen) exactly once, in order, with no gaps or overlaps.
type Segment struct {
	Start     int
	End       int
	ActiveIDs []uint
}

// Text slices the segment out of the full content string.
func (s Segment) Text(content string) string {
	return content[s.Start:s.End]
}

// Count returns the number of spans covering the segment.
func (s Segment) Count() int {
	return len(s.ActiveIDs)
}

const (
	baseIntensity          = 0.2
	perAnnotationIncrement = 0.15
	intensityCap           = 0.6
)

// Intensity maps an overlap count to the rendered highlight opacity. Zero
// overlap renders as plain text, so the intensity is zero. The value is
// monotonically non-decreasing in count and capped for readability.
func Intensity(count int) float64 {
	if count <= 0 {
		return 0
	}
	intensity := baseIntensity + perAnnotationIncrement*float64(count)
	if intensity > intensityCap {
		return intensityCap
	}
	return intensity
}

// Partition splits [0, textLen) at every span boundary and records, for each
// resulting segment, the spans that fully contain it. Spans may overlap
// arbitrarily; degenerate spans (Start >= End) and spans outside the text
// contribute no interval. ActiveIDs preserve the input span order.
func Partition(textLen int, spans []Span) []Segment {
	if textLen < 0 {
		textLen = 0
	}

	cuts := map[int]struct{}{0: {}, textLen: {}}
	valid := make([]Span, 0, len(spans))
	for _, span := range spans {
		if span.Start >= span.End {
			continue
		}
		if span.End <= 0 || span.Start >= textLen {
			continue
		}
		if span.Start < 0 {
			span.Start = 0
		}
		if span.End > textLen {
			span.End = textLen
		}
		valid = append(valid, span)
		cuts[span.Start] = struct{}{}
		cuts[span.End] = struct{}{}
	}

	boundaries := make([]int, 0, len(cuts))
	for cut := range cuts {
		boundaries = append(boundaries, cut)
	}
	sort.Ints(boundaries)

	segments := make([]Segment, 0, len(boundaries))
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		segment := Segment{Start: start, End: end}
		for _, span := range valid {
			if span.Start <= start && span.End >= end {
				segment.ActiveIDs = append(segment.ActiveIDs, span.ID)
			}
		}
		segments = append(segments, segment)
	}

	if len(segments) == 0 {
		segments = append(segments, Segment{Start: 0, End: textLen})
	}

	return segments
}

// ActiveAt returns the identifiers of all spans covering the segment that
// contains pos, or nil when pos falls on plain text or out of range. This is
// the selection rule for clicks on a heatmap segment: the full set of active
// annotations is selected, not just one.
func ActiveAt(segments []Segment, pos int) []uint {
	for _, segment := range segments {
		if pos >= segment.Start && pos < segment.End {
			if len(segment.ActiveIDs) == 0 {
				return nil
			}
			ids := make([]uint, len(segment.ActiveIDs))
			copy(ids, segment.ActiveIDs)
			return ids
		}
	}
	return nil
}

// ReaderSegments renders the single-student view: spans sorted by start
// offset (input order breaks ties) and painted in that order, so the first
// span whose range contains a position wins display priority. Overlapping
// tails are clipped rather than re-emitted, keeping the partition exact.
func ReaderSegments(textLen int, spans []Span) []Segment {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	segments := make([]Segment, 0, 2*len(sorted)+1)
	cursor := 0
	for _, span := range sorted {
		if span.Start >= span.End || span.End <= cursor || span.Start >= textLen {
			continue
		}
		start := span.Start
		if start < cursor {
			start = cursor
		}
		end := span.End
		if end > textLen {
			end = textLen
		}
		if start > cursor {
			segments = append(segments, Segment{Start: cursor, End: start})
		}
		segments = append(segments, Segment{Start: start, End: end, ActiveIDs: []uint{span.ID}})
		cursor = end
	}
	if cursor < textLen {
		segments = append(segments, Segment{Start: cursor, End: textLen})
	}
	if len(segments) == 0 {
		segments = append(segments, Segment{Start: 0, End: textLen})
	}

	return segments
}
