package stt

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ilyakh/lectograph/internal/model"
)

// OpenAIClient implements the Client interface using the OpenAI audio
// transcription API (Whisper family).
type OpenAIClient struct {
	client   *openai.Client
	model    string
	language string
	timeout  time.Duration
}

// NewOpenAIClient creates a new OpenAI transcription client
func NewOpenAIClient(cfg model.STTConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = openai.Whisper1
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    mdl,
		language: cfg.Language,
		timeout:  timeout,
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Transcribe sends the audio slice to the transcription API
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Language: c.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := c.client.CreateTranscription(ctxWithTimeout, req)
	if err != nil {
		return Result{}, fmt.Errorf("OpenAI transcription error: %w", err)
	}

	// Derive a 0-1 confidence from the per-segment average
	// log-probabilities; without segment data the API gives no signal,
	// so a moderate default applies.
	confidence := 0.8
	if len(resp.Segments) > 0 {
		var sum float64
		for _, s := range resp.Segments {
			sum += s.AvgLogprob
		}
		confidence = math.Exp(sum / float64(len(resp.Segments)))
		if confidence > 1 {
			confidence = 1
		}
	}

	return Result{
		Text:       resp.Text,
		Confidence: confidence,
		Metadata: map[string]string{
			"provider": "openai",
			"model":    c.model,
			"language": resp.Language,
			"segments": strconv.Itoa(len(resp.Segments)),
		},
	}, nil
}
