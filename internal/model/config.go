package model

import "time"

// Config holds the full pipeline configuration
type Config struct {
	Segmenter   SegmenterConfig   `yaml:"segmenter"`
	STT         STTConfig         `yaml:"stt"`
	LLM         LLMConfig         `yaml:"llm"`
	Markers     MarkersConfig     `yaml:"markers"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// SegmenterConfig controls silence-based audio segmentation
type SegmenterConfig struct {
	PauseThreshold     float64 `yaml:"pause_threshold"`      // Min silence length closing a segment (seconds)
	MinSegmentDuration float64 `yaml:"min_segment_duration"` // Shorter ranges are merged forward (seconds)
	MaxSegmentDuration float64 `yaml:"max_segment_duration"` // Longer ranges are split (seconds)
	SilenceThreshold   float64 `yaml:"silence_threshold"`    // dBFS below which audio counts as silence
	OutputDir          string  `yaml:"output_dir"`           // Directory for extracted audio slices
}

// STTConfig selects and configures the speech-to-text collaborator
type STTConfig struct {
	Provider string `yaml:"provider"` // "openai", "mock"
	Model    string `yaml:"model"`    // Provider-specific model name
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Language string `yaml:"language"` // Hint passed to the provider
	Timeout  int    `yaml:"timeout"`  // Seconds per transcription call
}

// LLMConfig selects and configures the language-analysis collaborator
type LLMConfig struct {
	Provider  string  `yaml:"provider"` // "openai", "mock"
	Model     string  `yaml:"model"`
	APIKey    string  `yaml:"api_key,omitempty"`
	BaseURL   string  `yaml:"base_url,omitempty"`
	Timeout   int     `yaml:"timeout"`    // Seconds per analysis call
	MaxTokens int     `yaml:"max_tokens"` // Response length cap
	RateLimit float64 `yaml:"rate_limit"` // Requests per second to the provider
}

// MarkersConfig points at an optional lexicon override file that merges
// extra marker words into the built-in per-type lists
type MarkersConfig struct {
	OverridePath string `yaml:"override_path,omitempty"`
}

// CacheConfig controls transcription result caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // Disk cache directory
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds concurrent external calls
type ConcurrencyConfig struct {
	TranscriptionWorkers int `yaml:"transcription_workers"` // In-flight STT calls
	TopicWorkers         int `yaml:"topic_workers"`         // In-flight topic-extraction calls
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Segmenter: SegmenterConfig{
			PauseThreshold:     1.5,
			MinSegmentDuration: 0.5,
			MaxSegmentDuration: 30.0,
			SilenceThreshold:   -40,
			OutputDir:          "data/audio_segments",
		},
		STT: STTConfig{
			Provider: "mock",
			Language: "zh",
			Timeout:  60,
		},
		LLM: LLMConfig{
			Provider:  "mock",
			Timeout:   60,
			MaxTokens: 2000,
			RateLimit: 2,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "data/stt_cache",
			TTL:     7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			TranscriptionWorkers: 5,
			TopicWorkers:         5,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
