package dto

// HeatmapSegment is one partition of the assignment text in the teacher
// review view. Intensity is the capped opacity derived from the number of
// covering annotations; zero-count segments render as plain text.
type HeatmapSegment struct {
	Start         int     `json:"start"`
	End           int     `json:"end"`
	Text          string  `json:"text"`
	Count         int     `json:"count"`
	Intensity     float64 `json:"intensity"`
	AnnotationIDs []uint  `json:"annotation_ids,omitempty"`
}

// HeatmapStudent names one student contributing annotations to the heatmap.
type HeatmapStudent struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
}

// HeatmapResponse is the aggregated teacher review document for one
// assignment: the partitioned text plus every student's annotations.
type HeatmapResponse struct {
	AssignmentID uint                 `json:"assignment_id"`
	Title        string               `json:"title"`
	Author       string               `json:"author,omitempty"`
	Segments     []HeatmapSegment     `json:"segments"`
	Annotations  []AnnotationResponse `json:"annotations"`
	Students     []HeatmapStudent     `json:"students"`
}

// SegmentDetailResponse answers a click on a heatmap segment: the full set of
// annotations active at the clicked position.
type SegmentDetailResponse struct {
	Position    int                  `json:"position"`
	Annotations []AnnotationResponse `json:"annotations"`
}
