package model

import "fmt"

// RelationType classifies a discourse relation between two segments
type RelationType string

const (
	RelationContrast      RelationType = "CONTRAST"       // 转折
	RelationAddition      RelationType = "ADDITION"       // 递进
	RelationCausality     RelationType = "CAUSALITY"      // 因果
	RelationReferenceBack RelationType = "REFERENCE_BACK" // 回溯引用
	RelationSummary       RelationType = "SUMMARY"        // 总结
	RelationExample       RelationType = "EXAMPLE"        // 举例
	RelationParallel      RelationType = "PARALLEL"       // 并列
	RelationUnknown       RelationType = "UNKNOWN"        // 未知
)

// Label returns the Chinese display name of the relation type
func (t RelationType) Label() string {
	switch t {
	case RelationContrast:
		return "转折"
	case RelationAddition:
		return "递进"
	case RelationCausality:
		return "因果"
	case RelationReferenceBack:
		return "回溯"
	case RelationSummary:
		return "总结"
	case RelationExample:
		return "举例"
	case RelationParallel:
		return "并列"
	default:
		return "未知"
	}
}

// ParagraphRelation is a directed, typed edge between two segments.
// Relations are append-only: once created they are never modified.
type ParagraphRelation struct {
	SourceID    string       `json:"source_id"`             // Segment the relation points from
	TargetID    string       `json:"target_id"`             // Segment the relation points to
	Type        RelationType `json:"relation_type"`         // Relation classification
	MarkerWords []string     `json:"marker_words"`          // Marker words that triggered the relation
	Confidence  float64      `json:"confidence"`            // Relation confidence (0-1)
	Description string       `json:"description,omitempty"` // Human-readable description
}

// Segment is one contiguous unit of transcribed speech
type Segment struct {
	ID              string              `json:"id"`               // Unique within a document
	StartTime       float64             `json:"start_time"`       // Seconds from start of recording
	EndTime         float64             `json:"end_time"`         // Seconds from start of recording
	AudioPath       string              `json:"audio_path"`       // Extracted audio slice (shared by sub-segments)
	Text            string              `json:"text"`             // Transcript text
	Markers         []string            `json:"markers"`          // Detected discourse markers
	Topics          []string            `json:"topics"`           // Topic labels
	ImportanceScore float64             `json:"importance_score"` // 0-1, default 0.5
	Relations       []ParagraphRelation `json:"relations"`        // Relations targeting this segment
	Confidence      float64             `json:"confidence"`       // Transcription confidence (0-1)
	IsCoreArgument  bool                `json:"is_core_argument"` // Flagged by holistic analysis
}

// NewSegment creates a segment with the default importance score
func NewSegment(id string, startTime, endTime float64, audioPath string) *Segment {
	return &Segment{
		ID:              id,
		StartTime:       startTime,
		EndTime:         endTime,
		AudioPath:       audioPath,
		Markers:         []string{},
		Topics:          []string{},
		ImportanceScore: 0.5,
		Relations:       []ParagraphRelation{},
	}
}

// Duration returns the segment length in seconds
func (s *Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// FormatTimestamp renders the segment interval as "MM:SS - MM:SS"
func (s *Segment) FormatTimestamp() string {
	return fmt.Sprintf("%02d:%02d - %02d:%02d",
		int(s.StartTime)/60, int(s.StartTime)%60,
		int(s.EndTime)/60, int(s.EndTime)%60)
}
