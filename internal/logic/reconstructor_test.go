package logic

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ilyakh/lectograph/internal/model"
)

// stubStructurer returns scripted responses for reconstructor tests
type stubStructurer struct {
	topics      map[string][]string
	topicsErr   error
	analysis    *Analysis
	analysisErr error
}

func (s *stubStructurer) Name() string { return "stub" }

func (s *stubStructurer) ExtractTopics(ctx context.Context, text string) ([]string, error) {
	if s.topicsErr != nil {
		return nil, s.topicsErr
	}
	return s.topics[text], nil
}

func (s *stubStructurer) AnalyzeParagraphs(ctx context.Context, segments []SegmentPayload) (*Analysis, error) {
	if s.analysisErr != nil {
		return nil, s.analysisErr
	}
	if s.analysis != nil {
		return s.analysis, nil
	}
	return EmptyAnalysis(), nil
}

func TestReconstructEmptyInput(t *testing.T) {
	r := NewReconstructor(&stubStructurer{}, 2, nil)

	doc := r.Reconstruct(context.Background(), nil)

	if doc.SegmentCount() != 0 {
		t.Errorf("SegmentCount() = %d, want 0", doc.SegmentCount())
	}
	if doc.TotalDuration() != 0 {
		t.Errorf("TotalDuration() = %v, want 0", doc.TotalDuration())
	}
	if len(doc.LogicChains) != 0 {
		t.Errorf("LogicChains = %v, want none", doc.LogicChains)
	}
	if doc.TopicTree.MainTopic != "文档主题" {
		t.Errorf("TopicTree.MainTopic = %q, want fallback root", doc.TopicTree.MainTopic)
	}
	if len(doc.TopicTree.Subtopics) != 0 {
		t.Errorf("TopicTree.Subtopics = %v, want none", doc.TopicTree.Subtopics)
	}
	if doc.Metadata["core_arguments_count"] != 0 || doc.Metadata["logic_chains_count"] != 0 {
		t.Errorf("Metadata = %v, want zero counts", doc.Metadata)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestReconstructTopicsAssigned(t *testing.T) {
	stub := &stubStructurer{topics: map[string][]string{
		"第一段内容": {"哲学", "导论"},
		"第二段内容": {"哲学"},
	}}
	r := NewReconstructor(stub, 2, nil)

	segments := []*model.Segment{
		model.NewSegment("s1", 0, 5, "x.wav"),
		model.NewSegment("s2", 5, 10, "x.wav"),
		model.NewSegment("s3", 10, 15, "x.wav"), // stays empty, no topic call
	}
	segments[0].Text = "第一段内容"
	segments[1].Text = "第二段内容"

	doc := r.Reconstruct(context.Background(), segments)

	if got := doc.SegmentByID("s1").Topics; len(got) != 2 || got[0] != "哲学" {
		t.Errorf("s1 topics = %v, want [哲学 导论]", got)
	}
	if got := doc.SegmentByID("s2").Topics; len(got) != 1 || got[0] != "哲学" {
		t.Errorf("s2 topics = %v, want [哲学]", got)
	}
	if got := doc.SegmentByID("s3").Topics; len(got) != 0 {
		t.Errorf("s3 topics = %v, want none for empty text", got)
	}
	if doc.Metadata["total_topics"] != 2 {
		t.Errorf("total_topics = %d, want 2", doc.Metadata["total_topics"])
	}
}

func TestReconstructManySegments(t *testing.T) {
	// Long recordings fan dozens of topic calls through the pool; the run
	// must complete with every segment labeled.
	topics := make(map[string][]string)
	segments := make([]*model.Segment, 30)
	for i := range segments {
		text := fmt.Sprintf("第%d段内容", i)
		topics[text] = []string{"哲学"}
		segments[i] = model.NewSegment(fmt.Sprintf("s%d", i), float64(i*5), float64(i*5+5), "x.wav")
		segments[i].Text = text
	}

	r := NewReconstructor(&stubStructurer{topics: topics}, 3, nil)
	doc := r.Reconstruct(context.Background(), segments)

	if doc.SegmentCount() != 30 {
		t.Fatalf("SegmentCount() = %d, want 30", doc.SegmentCount())
	}
	for i, seg := range doc.Segments {
		if len(seg.Topics) != 1 {
			t.Errorf("segment[%d] topics = %v, want one label", i, seg.Topics)
		}
	}
}

func TestReconstructTopicFailureDegrades(t *testing.T) {
	stub := &stubStructurer{topicsErr: errors.New("service down")}
	r := NewReconstructor(stub, 2, nil)

	seg := model.NewSegment("s1", 0, 5, "x.wav")
	seg.Text = "第一段内容"

	doc := r.Reconstruct(context.Background(), []*model.Segment{seg})

	if doc.SegmentCount() != 1 {
		t.Fatalf("SegmentCount() = %d, want 1", doc.SegmentCount())
	}
	if topics := doc.SegmentByID("s1").Topics; topics == nil || len(topics) != 0 {
		t.Errorf("topics after failure = %v, want empty list", topics)
	}
}

func TestReconstructAnalysisFailureDegrades(t *testing.T) {
	stub := &stubStructurer{analysisErr: errors.New("service down")}
	r := NewReconstructor(stub, 2, nil)

	seg := model.NewSegment("s1", 0, 5, "x.wav")
	seg.Text = "第一段内容"
	seg.ImportanceScore = 0.7

	doc := r.Reconstruct(context.Background(), []*model.Segment{seg})

	if doc.SegmentCount() != 1 {
		t.Fatalf("SegmentCount() = %d, want 1", doc.SegmentCount())
	}
	if len(doc.LogicChains) != 0 {
		t.Errorf("LogicChains = %v, want none after analysis failure", doc.LogicChains)
	}
	if doc.SegmentByID("s1").IsCoreArgument {
		t.Error("segment marked core without analysis output")
	}
	if doc.SegmentByID("s1").ImportanceScore != 0.7 {
		t.Error("importance modified despite analysis failure")
	}
}

func TestReconstructCoreArguments(t *testing.T) {
	stub := &stubStructurer{analysis: &Analysis{
		CoreArguments: []string{"s1", "s2"},
		LogicChains:   []ChainDescriptor{},
	}}
	r := NewReconstructor(stub, 2, nil)

	low := model.NewSegment("s1", 0, 5, "x.wav")
	low.Text = "低分核心论点"
	low.ImportanceScore = 0.5

	high := model.NewSegment("s2", 5, 10, "x.wav")
	high.Text = "高分核心论点"
	high.ImportanceScore = 0.95

	other := model.NewSegment("s3", 10, 15, "x.wav")
	other.Text = "普通段落"

	doc := r.Reconstruct(context.Background(), []*model.Segment{low, high, other})

	if !low.IsCoreArgument || !high.IsCoreArgument {
		t.Error("named segments not flagged as core arguments")
	}
	if other.IsCoreArgument {
		t.Error("unnamed segment flagged as core argument")
	}
	if low.ImportanceScore != 0.9 {
		t.Errorf("low core importance = %v, want raised to 0.9", low.ImportanceScore)
	}
	if high.ImportanceScore != 0.95 {
		t.Errorf("high core importance = %v, existing score must not be lowered", high.ImportanceScore)
	}
	if got := len(doc.CoreArguments()); got != 2 {
		t.Errorf("CoreArguments() = %d segments, want 2", got)
	}
	if doc.Metadata["core_arguments_count"] != 2 {
		t.Errorf("core_arguments_count = %d, want 2", doc.Metadata["core_arguments_count"])
	}
}

func TestBuildChainsDefaults(t *testing.T) {
	zero := 0.0
	analysis := &Analysis{LogicChains: []ChainDescriptor{
		{ChainID: "c1"},
		{ChainID: "c2", ChainType: "CAUSAL_CHAIN", Segments: []string{"s1"}, Importance: &zero},
	}}

	chains := buildChains(analysis)
	if len(chains) != 2 {
		t.Fatalf("buildChains() = %d chains, want 2", len(chains))
	}

	if chains[0].ChainType != "UNKNOWN" {
		t.Errorf("missing chain type = %q, want UNKNOWN", chains[0].ChainType)
	}
	if chains[0].Segments == nil || len(chains[0].Segments) != 0 {
		t.Errorf("missing segments = %v, want empty list", chains[0].Segments)
	}
	if chains[0].Importance != 0.5 {
		t.Errorf("absent importance = %v, want default 0.5", chains[0].Importance)
	}

	// An explicit zero is preserved, not defaulted
	if chains[1].Importance != 0 {
		t.Errorf("explicit zero importance = %v, want 0", chains[1].Importance)
	}
	if chains[1].ChainType != "CAUSAL_CHAIN" {
		t.Errorf("chain type = %q, want CAUSAL_CHAIN", chains[1].ChainType)
	}
}

func TestReconstructTopicTreeFallback(t *testing.T) {
	stub := &stubStructurer{topics: map[string][]string{
		"甲段": {"认识论"},
		"乙段": {"本体论"},
		"丙段": {"认识论"},
	}}
	r := NewReconstructor(stub, 1, nil)

	segments := []*model.Segment{
		model.NewSegment("s1", 0, 5, "x.wav"),
		model.NewSegment("s2", 5, 10, "x.wav"),
		model.NewSegment("s3", 10, 15, "x.wav"),
	}
	segments[0].Text = "甲段"
	segments[1].Text = "乙段"
	segments[2].Text = "丙段"

	doc := r.Reconstruct(context.Background(), segments)

	tree := doc.TopicTree
	if tree.MainTopic != "文档主题" {
		t.Fatalf("MainTopic = %q, want fallback root", tree.MainTopic)
	}
	if len(tree.Subtopics) != 2 {
		t.Fatalf("Subtopics = %v, want 2 first-seen topic groups", tree.Subtopics)
	}
	if tree.Subtopics[0].Name != "认识论" || tree.Subtopics[1].Name != "本体论" {
		t.Errorf("subtopic order = [%q, %q], want first-seen order", tree.Subtopics[0].Name, tree.Subtopics[1].Name)
	}
	if got := tree.Subtopics[0].Segments; len(got) != 2 || got[0] != "s1" || got[1] != "s3" {
		t.Errorf("认识论 segments = %v, want [s1 s3]", got)
	}
}

func TestReconstructSuppliedTreeWins(t *testing.T) {
	supplied := model.TopicTree{
		MainTopic: "现象学导论",
		Subtopics: []model.TopicNode{{Name: "意向性", Segments: []string{"s1"}}},
	}
	stub := &stubStructurer{
		topics:   map[string][]string{"甲段": {"别的主题"}},
		analysis: &Analysis{TopicTree: supplied},
	}
	r := NewReconstructor(stub, 1, nil)

	seg := model.NewSegment("s1", 0, 5, "x.wav")
	seg.Text = "甲段"

	doc := r.Reconstruct(context.Background(), []*model.Segment{seg})

	if doc.TopicTree.MainTopic != "现象学导论" {
		t.Errorf("MainTopic = %q, supplied tree should be used verbatim", doc.TopicTree.MainTopic)
	}
	if len(doc.TopicTree.Subtopics) != 1 || doc.TopicTree.Subtopics[0].Name != "意向性" {
		t.Errorf("Subtopics = %v, want supplied subtree", doc.TopicTree.Subtopics)
	}
}

func TestMockStructurer(t *testing.T) {
	s := NewMockStructurer()

	topics, err := s.ExtractTopics(context.Background(), "任意文本")
	if err != nil || len(topics) == 0 {
		t.Errorf("ExtractTopics() = (%v, %v), want canned topics", topics, err)
	}

	payload := []SegmentPayload{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	analysis, err := s.AnalyzeParagraphs(context.Background(), payload)
	if err != nil {
		t.Fatalf("AnalyzeParagraphs() error = %v", err)
	}
	if len(analysis.CoreArguments) != 1 || analysis.CoreArguments[0] != "a" {
		t.Errorf("CoreArguments = %v, want [a]", analysis.CoreArguments)
	}
	if len(analysis.LogicChains) != 1 || len(analysis.LogicChains[0].Segments) != 3 {
		t.Errorf("LogicChains = %v, want one three-segment chain", analysis.LogicChains)
	}
	if analysis.TopicTree.IsEmpty() {
		t.Error("mock analysis should carry a topic tree")
	}

	// Degenerate payloads must not panic
	if _, err := s.AnalyzeParagraphs(context.Background(), nil); err != nil {
		t.Errorf("AnalyzeParagraphs(nil) error = %v", err)
	}
	if _, err := s.AnalyzeParagraphs(context.Background(), payload[:1]); err != nil {
		t.Errorf("AnalyzeParagraphs(single) error = %v", err)
	}
}

func TestPayloadFromSegments(t *testing.T) {
	seg := model.NewSegment("s1", 65, 125, "x.wav")
	seg.Text = "内容"
	seg.Markers = []string{"但是"}
	seg.Topics = []string{"哲学"}

	payload := PayloadFromSegments([]*model.Segment{seg})
	if len(payload) != 1 {
		t.Fatalf("PayloadFromSegments() = %d entries, want 1", len(payload))
	}
	if payload[0].ID != "s1" || payload[0].Text != "内容" {
		t.Errorf("payload = %+v", payload[0])
	}
	if payload[0].Timestamp != "01:05 - 02:05" {
		t.Errorf("Timestamp = %q, want %q", payload[0].Timestamp, "01:05 - 02:05")
	}
}
