// Package pipeline wires the processing stages into a single sequential run:
// segmentation, transcription, semantic analysis, structuring, assembly.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ilyakh/lectograph/internal/cache"
	"github.com/ilyakh/lectograph/internal/logic"
	"github.com/ilyakh/lectograph/internal/model"
	"github.com/ilyakh/lectograph/internal/segment"
	"github.com/ilyakh/lectograph/internal/semantic"
	"github.com/ilyakh/lectograph/internal/stt"
	"github.com/ilyakh/lectograph/internal/worker"
)

// Pipeline orchestrates the complete processing run. No stage begins before
// the previous stage's full output is available.
type Pipeline struct {
	segmenter     *segment.Segmenter
	transcriber   *stt.BatchTranscriber
	analyzer      *semantic.Analyzer
	reconstructor *logic.Reconstructor
	config        *model.Config
}

// NewPipeline creates a pipeline from the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	sttClient, err := stt.NewClient(cfg.STT)
	if err != nil {
		return nil, fmt.Errorf("create STT client: %w", err)
	}
	if cfg.Cache.Enabled {
		layered := cache.NewLayeredCache(30*time.Minute, cfg.Cache.Dir, cfg.Cache.TTL)
		sttClient = stt.NewCachedClient(sttClient, layered, cfg.Cache.TTL)
	}

	structurer, err := logic.NewStructurer(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	limiter := worker.NewLimiter(10, 5)
	if cfg.LLM.RateLimit > 0 {
		limiter.SetServiceRate("llm", cfg.LLM.RateLimit, 2)
	}

	lexicon := semantic.DefaultLexicon()
	if cfg.Markers.OverridePath != "" {
		custom, err := semantic.LoadOverride(cfg.Markers.OverridePath)
		if err != nil {
			return nil, err
		}
		lexicon.Merge(custom)
	}

	transcriber := stt.NewBatchTranscriber(sttClient, cfg.Concurrency.TranscriptionWorkers, limiter)
	reconstructor := logic.NewReconstructor(structurer, cfg.Concurrency.TopicWorkers, limiter)

	if cfg.Output.Verbose {
		transcriber.Progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "  transcribed %d/%d segments\n", done, total)
		}
		reconstructor.Progress = func(msg string) {
			fmt.Fprintf(os.Stderr, "%s\n", msg)
		}
	}

	return &Pipeline{
		segmenter:     segment.NewSegmenter(cfg.Segmenter),
		transcriber:   transcriber,
		analyzer:      semantic.NewAnalyzer(lexicon),
		reconstructor: reconstructor,
		config:        cfg,
	}, nil
}

// ProcessFile runs one media file through the full pipeline. Segmentation
// failures (unsupported format, extraction error) abort the run; later
// per-segment failures degrade to empty fields instead.
func (p *Pipeline) ProcessFile(ctx context.Context, inputFile string) (*model.Document, error) {
	segments, err := p.segmenter.Process(ctx, inputFile)
	if err != nil {
		return nil, fmt.Errorf("segment audio: %w", err)
	}
	p.verbosef("✓ Segmented into %d speech units\n", len(segments))

	paths := make([]string, len(segments))
	for i, seg := range segments {
		paths[i] = seg.AudioPath
	}
	results := p.transcriber.TranscribeAll(ctx, paths)
	for i, res := range results {
		segments[i].Text = res.Text
		segments[i].Confidence = res.Confidence
	}
	p.verbosef("✓ Transcribed %d segments\n", len(results))

	refined := p.analyzer.Process(segments)
	p.verbosef("✓ Semantic analysis produced %d segments\n", len(refined))

	doc := p.reconstructor.Reconstruct(ctx, refined)
	doc.SourceFile = inputFile
	p.verbosef("✓ Assembled document: %d core arguments, %d chains\n",
		len(doc.CoreArguments()), len(doc.LogicChains))

	return doc, nil
}

func (p *Pipeline) verbosef(format string, a ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, a...)
	}
}
