package stt

import "context"

// MockClient is a deterministic offline transcription client for tests and
// dry runs. Every slice transcribes to the same canned text.
type MockClient struct{}

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Name returns the provider name
func (c *MockClient) Name() string {
	return "mock"
}

// Transcribe returns a fixed transcript with high confidence
func (c *MockClient) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	return Result{
		Text:       "这是一段模拟的转录文本，用于测试系统功能。",
		Confidence: 0.90,
		Metadata:   map[string]string{"provider": "mock", "audio_path": audioPath},
	}, nil
}
