package logic

import (
	"context"
	"time"

	"github.com/ilyakh/lectograph/internal/model"
	"github.com/ilyakh/lectograph/internal/worker"
)

// limiterService is the rate-limiter bucket shared by all structuring calls
const limiterService = "llm"

// fallbackRootTopic names the synthesized topic-tree root when the
// collaborator supplies no tree
const fallbackRootTopic = "文档主题"

// Reconstructor orchestrates topic extraction and holistic structuring, then
// assembles the final document. External failures never abort it: a failed
// topic call leaves that segment without topics, a failed structuring call
// degrades to the empty analysis shape.
type Reconstructor struct {
	structurer   Structurer
	topicWorkers int
	limiter      *worker.Limiter

	// Progress, when set, receives stage announcements
	Progress func(msg string)
}

// NewReconstructor creates a reconstructor. The limiter may be nil.
func NewReconstructor(structurer Structurer, topicWorkers int, limiter *worker.Limiter) *Reconstructor {
	if topicWorkers <= 0 {
		topicWorkers = 5
	}
	return &Reconstructor{
		structurer:   structurer,
		topicWorkers: topicWorkers,
		limiter:      limiter,
	}
}

// Reconstruct runs the strictly ordered structuring steps and returns the
// assembled document. The caller sets the document's source file afterwards.
func (r *Reconstructor) Reconstruct(ctx context.Context, segments []*model.Segment) *model.Document {
	r.progress("正在提取段落主题...")
	r.extractTopics(ctx, segments)

	r.progress("正在分析逻辑结构...")
	analysis, err := r.structurer.AnalyzeParagraphs(ctx, PayloadFromSegments(segments))
	if err != nil || analysis == nil {
		analysis = EmptyAnalysis()
	}

	r.progress("正在构建逻辑链...")
	chains := buildChains(analysis)

	markCoreArguments(segments, analysis.CoreArguments)

	tree := buildTopicTree(segments, analysis.TopicTree)

	return &model.Document{
		Segments:    segments,
		LogicChains: chains,
		TopicTree:   tree,
		Metadata: map[string]int{
			"core_arguments_count": len(analysis.CoreArguments),
			"logic_chains_count":   len(chains),
			"total_topics":         countDistinctTopics(segments),
		},
		CreatedAt: time.Now(),
	}
}

// extractTopics labels every segment with non-empty text through the worker
// pool. A failed call leaves that segment's topics empty.
func (r *Reconstructor) extractTopics(ctx context.Context, segments []*model.Segment) {
	pool := worker.NewPool(r.topicWorkers)
	pool.Start()

	submitted := 0
	for i, seg := range segments {
		if seg.Text == "" {
			continue
		}
		pool.Submit(&topicJob{reconstructor: r, ctx: ctx, index: i, text: seg.Text})
		submitted++
	}
	if submitted == 0 {
		pool.Shutdown()
		return
	}

	for _, res := range pool.Wait() {
		tr := res.(*topicResult)
		if tr.err != nil || tr.topics == nil {
			segments[tr.index].Topics = []string{}
			continue
		}
		segments[tr.index].Topics = tr.topics
	}
}

// topicJob extracts topics for one segment
type topicJob struct {
	reconstructor *Reconstructor
	ctx           context.Context
	index         int
	text          string
}

func (j *topicJob) Execute(_ context.Context) worker.Result {
	res := &topicResult{index: j.index}

	if j.reconstructor.limiter != nil {
		if err := j.reconstructor.limiter.Wait(j.ctx, limiterService); err != nil {
			res.err = err
			return res
		}
	}

	res.topics, res.err = j.reconstructor.structurer.ExtractTopics(j.ctx, j.text)
	return res
}

type topicResult struct {
	index  int
	topics []string
	err    error
}

func (r *topicResult) GetError() error { return r.err }
func (r *topicResult) GetIndex() int   { return r.index }

// buildChains converts chain descriptors into logic chains, defaulting
// missing fields.
func buildChains(analysis *Analysis) []model.LogicChain {
	chains := make([]model.LogicChain, 0, len(analysis.LogicChains))
	for _, desc := range analysis.LogicChains {
		chainType := desc.ChainType
		if chainType == "" {
			chainType = "UNKNOWN"
		}
		segments := desc.Segments
		if segments == nil {
			segments = []string{}
		}
		importance := 0.5
		if desc.Importance != nil {
			importance = *desc.Importance
		}
		chains = append(chains, model.LogicChain{
			ChainID:     desc.ChainID,
			ChainType:   chainType,
			Segments:    segments,
			Description: desc.Description,
			Importance:  importance,
		})
	}
	return chains
}

// markCoreArguments flags the named segments and raises their importance to
// at least 0.9; a higher existing score is never lowered.
func markCoreArguments(segments []*model.Segment, coreIDs []string) {
	core := make(map[string]bool, len(coreIDs))
	for _, id := range coreIDs {
		core[id] = true
	}

	for _, seg := range segments {
		if !core[seg.ID] {
			continue
		}
		seg.IsCoreArgument = true
		if seg.ImportanceScore < 0.9 {
			seg.ImportanceScore = 0.9
		}
	}
}

// buildTopicTree uses the collaborator's tree verbatim when present, and
// otherwise groups segment ids by topic label in first-seen order under a
// generic root.
func buildTopicTree(segments []*model.Segment, supplied model.TopicTree) model.TopicTree {
	if !supplied.IsEmpty() {
		return supplied
	}

	var order []string
	grouped := make(map[string][]string)
	for _, seg := range segments {
		for _, topic := range seg.Topics {
			if _, seen := grouped[topic]; !seen {
				order = append(order, topic)
			}
			grouped[topic] = append(grouped[topic], seg.ID)
		}
	}

	tree := model.TopicTree{MainTopic: fallbackRootTopic, Subtopics: []model.TopicNode{}}
	for _, topic := range order {
		tree.Subtopics = append(tree.Subtopics, model.TopicNode{
			Name:     topic,
			Segments: grouped[topic],
		})
	}
	return tree
}

func countDistinctTopics(segments []*model.Segment) int {
	seen := make(map[string]bool)
	for _, seg := range segments {
		for _, topic := range seg.Topics {
			seen[topic] = true
		}
	}
	return len(seen)
}

func (r *Reconstructor) progress(msg string) {
	if r.Progress != nil {
		r.Progress(msg)
	}
}
