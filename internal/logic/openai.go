package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ilyakh/lectograph/internal/model"
)

const analysisSystemPrompt = `你是一个哲学文本分析专家，擅长分析论述的逻辑结构。
请仔细分析给定的段落，识别它们之间的逻辑关系。`

// OpenAIStructurer implements the Structurer interface over the OpenAI chat
// completions API.
type OpenAIStructurer struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAIStructurer creates a new OpenAI structuring client
func NewOpenAIStructurer(cfg model.LLMConfig) (*OpenAIStructurer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIStructurer{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     mdl,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// Name returns the provider name
func (s *OpenAIStructurer) Name() string {
	return "openai"
}

// ExtractTopics asks the model for 3-5 key topic labels
func (s *OpenAIStructurer) ExtractTopics(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(`请分析以下文本的主题，提取3-5个关键主题词：

%s

请以JSON数组格式输出，例如：["主题1", "主题2", "主题3"]
`, text)

	response, err := s.complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	var topics []string
	if err := json.Unmarshal([]byte(ExtractJSONArray(response)), &topics); err != nil {
		// Unparseable response degrades to no topics, not to a failure
		return []string{}, nil
	}
	return topics, nil
}

// AnalyzeParagraphs sends the whole segment set in one request and extracts
// the embedded JSON analysis from the response. A response that cannot be
// parsed yields the empty shape with the raw text attached as debug data.
func (s *OpenAIStructurer) AnalyzeParagraphs(ctx context.Context, segments []SegmentPayload) (*Analysis, error) {
	response, err := s.complete(ctx, analysisSystemPrompt, buildAnalysisPrompt(segments))
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(ExtractJSONObject(response)), &analysis); err != nil {
		fallback := EmptyAnalysis()
		fallback.RawResponse = response
		return fallback, nil
	}
	return &analysis, nil
}

func (s *OpenAIStructurer) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := s.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: 0.3, // Lower temperature for more focused, structured output
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildAnalysisPrompt(segments []SegmentPayload) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[段落%d] ID: %s\n时间: %s\n标记词: %s\n内容: %s",
			i+1, seg.ID, seg.Timestamp, strings.Join(seg.Markers, ", "), seg.Text)
	}

	return fmt.Sprintf(`请分析以下段落的逻辑关系：

%s

请以JSON格式输出分析结果，包括：
1. core_arguments: 核心论点列表（段落ID）
2. supporting_points: 支撑论据列表（段落ID）
3. logic_chains: 逻辑链路（每条链路包含相关段落ID和关系类型）
4. paragraph_relations: 段落间的具体关系（source_id, target_id, relation_type, description）
5. topic_tree: 主题树结构

输出格式示例：
{
  "core_arguments": ["seg_1", "seg_5"],
  "supporting_points": ["seg_2", "seg_3"],
  "logic_chains": [
    {
      "chain_id": "chain_1",
      "chain_type": "MAIN_ARGUMENT",
      "segments": ["seg_1", "seg_2", "seg_3"],
      "description": "关于XX的核心论述"
    }
  ],
  "paragraph_relations": [
    {
      "source_id": "seg_1",
      "target_id": "seg_2",
      "relation_type": "CAUSALITY",
      "description": "因果关系：A导致B"
    }
  ],
  "topic_tree": {
    "main_topic": "核心主题",
    "subtopics": [...]
  }
}
`, b.String())
}
