// Package logic holds the structuring collaborator contract and the
// reconstructor that assembles the final document from its output.
package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilyakh/lectograph/internal/model"
)

// SegmentPayload is the serialized form of one segment sent to the
// structuring collaborator.
type SegmentPayload struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
	Markers   []string `json:"markers"`
	Topics    []string `json:"topics"`
}

// PayloadFromSegments serializes a segment list for the holistic analysis call
func PayloadFromSegments(segments []*model.Segment) []SegmentPayload {
	payload := make([]SegmentPayload, 0, len(segments))
	for _, seg := range segments {
		payload = append(payload, SegmentPayload{
			ID:        seg.ID,
			Text:      seg.Text,
			Timestamp: seg.FormatTimestamp(),
			Markers:   seg.Markers,
			Topics:    seg.Topics,
		})
	}
	return payload
}

// ChainDescriptor is one logic chain in the analysis result. Importance is a
// pointer so an absent field can default without clobbering an explicit zero.
type ChainDescriptor struct {
	ChainID     string   `json:"chain_id"`
	ChainType   string   `json:"chain_type"`
	Segments    []string `json:"segments"`
	Description string   `json:"description"`
	Importance  *float64 `json:"importance,omitempty"`
}

// RelationDescriptor is one paragraph relation in the analysis result.
// Currently informational only; it is not merged into segment relations.
type RelationDescriptor struct {
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	RelationType string `json:"relation_type"`
	Description  string `json:"description"`
}

// Analysis is the holistic structuring result for a whole document
type Analysis struct {
	CoreArguments      []string             `json:"core_arguments"`
	SupportingPoints   []string             `json:"supporting_points"`
	LogicChains        []ChainDescriptor    `json:"logic_chains"`
	ParagraphRelations []RelationDescriptor `json:"paragraph_relations"`
	TopicTree          model.TopicTree      `json:"topic_tree"`

	// RawResponse carries the unparsed collaborator output when the
	// structured block could not be extracted. Debug data only.
	RawResponse string `json:"-"`
}

// EmptyAnalysis returns the all-empty fallback shape. Downstream code relies
// on this constructor instead of nil checks.
func EmptyAnalysis() *Analysis {
	return &Analysis{
		CoreArguments:      []string{},
		SupportingPoints:   []string{},
		LogicChains:        []ChainDescriptor{},
		ParagraphRelations: []RelationDescriptor{},
	}
}

// Structurer is the language-analysis collaborator contract
type Structurer interface {
	// Name returns the provider name
	Name() string

	// ExtractTopics returns topic labels (typically 3-5) for one text
	ExtractTopics(ctx context.Context, text string) ([]string, error)

	// AnalyzeParagraphs reasons over the whole segment set at once and
	// returns the holistic structure. Implementations must return the
	// empty shape, not an error, when the response cannot be parsed.
	AnalyzeParagraphs(ctx context.Context, segments []SegmentPayload) (*Analysis, error)
}

// NewStructurer creates a structuring client based on configuration
func NewStructurer(cfg model.LLMConfig) (Structurer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIStructurer(cfg)

	case "mock", "":
		return NewMockStructurer(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, mock)", cfg.Provider)
	}
}
