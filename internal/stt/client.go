// Package stt defines the transcription collaborator contract and its
// implementations. The pipeline only depends on the Client interface; the
// concrete provider is selected at construction time.
package stt

import "context"

// Result is the outcome of transcribing one audio slice
type Result struct {
	Text       string            `json:"text"`
	Confidence float64           `json:"confidence"` // 0-1
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Client converts an audio slice into text. Implementations must be safe to
// invoke concurrently up to the pipeline's configured concurrency bound.
type Client interface {
	// Name returns the provider name
	Name() string

	// Transcribe converts the audio file at audioPath into text
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}
