package stt

import (
	"fmt"
	"strings"

	"github.com/ilyakh/lectograph/internal/model"
)

// NewClient creates an STT client based on configuration
func NewClient(cfg model.STTConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClient(cfg)

	case "mock", "":
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown STT provider: %s (supported: openai, mock)", cfg.Provider)
	}
}
