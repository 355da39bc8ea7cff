package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ilyakh/lectograph/internal/model"
	"github.com/ilyakh/lectograph/internal/worker"
)

// scriptedClient returns the path as the transcript, failing for paths that
// contain "bad".
type scriptedClient struct{}

func (c *scriptedClient) Name() string { return "scripted" }

func (c *scriptedClient) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if strings.Contains(audioPath, "bad") {
		return Result{}, errors.New("transcription failed")
	}
	return Result{Text: "transcript:" + audioPath, Confidence: 0.9}, nil
}

func TestTranscribeAllPreservesOrder(t *testing.T) {
	b := NewBatchTranscriber(&scriptedClient{}, 4, nil)

	paths := make([]string, 20)
	for i := range paths {
		paths[i] = fmt.Sprintf("seg_%02d.wav", i)
	}

	results := b.TranscribeAll(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("TranscribeAll() = %d results, want %d", len(results), len(paths))
	}

	for i, res := range results {
		want := "transcript:" + paths[i]
		if res.Text != want {
			t.Errorf("results[%d].Text = %q, want %q", i, res.Text, want)
		}
	}
}

func TestTranscribeAllLargeBatch(t *testing.T) {
	// A few minutes of speech yields dozens of slices; the batch must
	// complete well past the worker pool's channel buffering.
	b := NewBatchTranscriber(&scriptedClient{}, 5, nil)

	paths := make([]string, 60)
	for i := range paths {
		paths[i] = fmt.Sprintf("seg_%02d.wav", i)
	}

	results := b.TranscribeAll(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("TranscribeAll() = %d results, want %d", len(results), len(paths))
	}
	for i, res := range results {
		want := "transcript:" + paths[i]
		if res.Text != want {
			t.Errorf("results[%d].Text = %q, want %q", i, res.Text, want)
		}
	}
}

func TestTranscribeAllFailureSubstitution(t *testing.T) {
	b := NewBatchTranscriber(&scriptedClient{}, 2, nil)

	paths := []string{"seg_00.wav", "seg_bad.wav", "seg_02.wav"}
	results := b.TranscribeAll(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("TranscribeAll() = %d results, want 3", len(results))
	}

	// The failed slice becomes an empty zero-confidence result; its
	// neighbours are unaffected.
	if results[1].Text != "" || results[1].Confidence != 0 {
		t.Errorf("failed slice result = %+v, want zero value", results[1])
	}
	if results[0].Text != "transcript:seg_00.wav" {
		t.Errorf("results[0].Text = %q", results[0].Text)
	}
	if results[2].Text != "transcript:seg_02.wav" {
		t.Errorf("results[2].Text = %q", results[2].Text)
	}
}

func TestTranscribeAllEmpty(t *testing.T) {
	b := NewBatchTranscriber(&scriptedClient{}, 2, nil)

	if results := b.TranscribeAll(context.Background(), nil); len(results) != 0 {
		t.Errorf("TranscribeAll(nil) = %v, want empty", results)
	}
}

func TestTranscribeAllProgress(t *testing.T) {
	b := NewBatchTranscriber(&scriptedClient{}, 3, nil)

	var mu sync.Mutex
	var calls []int
	b.Progress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 5 {
			t.Errorf("Progress total = %d, want 5", total)
		}
		calls = append(calls, done)
	}

	paths := []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav"}
	b.TranscribeAll(context.Background(), paths)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 5 {
		t.Fatalf("Progress called %d times, want 5", len(calls))
	}
	seen := make(map[int]bool)
	for _, done := range calls {
		seen[done] = true
	}
	for i := 1; i <= 5; i++ {
		if !seen[i] {
			t.Errorf("Progress never reported done=%d", i)
		}
	}
}

func TestTranscribeAllWithLimiter(t *testing.T) {
	limiter := worker.NewLimiter(1000, 10)
	b := NewBatchTranscriber(&scriptedClient{}, 2, limiter)

	results := b.TranscribeAll(context.Background(), []string{"a.wav", "b.wav"})
	for i, res := range results {
		if res.Text == "" {
			t.Errorf("results[%d] empty with permissive limiter", i)
		}
	}
}

func TestNewClientSelection(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"mock", "mock", false},
		{"", "mock", false},
		{"MOCK", "mock", false},
		{"unknown-provider", "", true},
	}

	for _, tt := range tests {
		t.Run("provider "+tt.provider, func(t *testing.T) {
			client, err := NewClient(model.STTConfig{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Error("NewClient() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if client.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", client.Name(), tt.wantName)
			}
		})
	}
}

func TestMockClientDeterministic(t *testing.T) {
	c := NewMockClient()

	first, err := c.Transcribe(context.Background(), "a.wav")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	second, _ := c.Transcribe(context.Background(), "b.wav")

	if first.Text == "" || first.Text != second.Text {
		t.Errorf("mock transcripts differ: %q vs %q", first.Text, second.Text)
	}
	if first.Confidence != 0.90 {
		t.Errorf("mock confidence = %v, want 0.90", first.Confidence)
	}
}
