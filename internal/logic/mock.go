package logic

import (
	"context"

	"github.com/ilyakh/lectograph/internal/model"
)

// MockStructurer is a deterministic offline structuring client for tests and
// dry runs: the first segment becomes the core argument and the first three
// form one MAIN_ARGUMENT chain.
type MockStructurer struct{}

// NewMockStructurer creates a new mock structurer
func NewMockStructurer() *MockStructurer {
	return &MockStructurer{}
}

// Name returns the provider name
func (s *MockStructurer) Name() string {
	return "mock"
}

// ExtractTopics returns fixed topic labels
func (s *MockStructurer) ExtractTopics(ctx context.Context, text string) ([]string, error) {
	return []string{"哲学", "认识论", "现象学"}, nil
}

// AnalyzeParagraphs returns a canned analysis derived from the payload shape
func (s *MockStructurer) AnalyzeParagraphs(ctx context.Context, segments []SegmentPayload) (*Analysis, error) {
	analysis := EmptyAnalysis()

	if len(segments) > 0 {
		analysis.CoreArguments = []string{segments[0].ID}
	}
	for _, seg := range segments[min(1, len(segments)):min(3, len(segments))] {
		analysis.SupportingPoints = append(analysis.SupportingPoints, seg.ID)
	}

	var chainIDs []string
	for _, seg := range segments[:min(3, len(segments))] {
		chainIDs = append(chainIDs, seg.ID)
	}
	if len(chainIDs) > 0 {
		analysis.LogicChains = []ChainDescriptor{{
			ChainID:     "chain_1",
			ChainType:   "MAIN_ARGUMENT",
			Segments:    chainIDs,
			Description: "主要论述链路（模拟）",
		}}
	}

	analysis.TopicTree = model.TopicTree{
		MainTopic: "哲学讨论（模拟）",
		Subtopics: []model.TopicNode{
			{Name: "认识论"},
			{Name: "本体论"},
		},
	}
	return analysis, nil
}
