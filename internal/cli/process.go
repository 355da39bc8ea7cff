package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilyakh/lectograph/internal/model"
	"github.com/ilyakh/lectograph/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	audioDir     string
	sttProvider  string
	sttModel     string
	llmProvider  string
	llmModel     string
	language     string
	pauseThresh  float64
	minDuration  float64
	maxDuration  float64
	silenceDB    float64
	workers      int
	noCache      bool
	markersFile  string
	procTimeout  time.Duration
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <media-file>",
	Short: "Process one recording into a structured document",
	Long: `Process runs the full pipeline over a single recording:
- Extract and segment the audio track on silence boundaries
- Transcribe each speech unit (bounded concurrency)
- Re-split segments at discourse markers and infer relations
- Reconstruct the logical structure via the language-analysis service
- Write the structured document as JSON (and optionally Markdown)

Example:
  lectograph process lecture.mp4
  lectograph process talk.wav --json talk.json --md talk.md
  lectograph process talk.wav --stt openai --llm openai --llm-model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	// Output flags
	processCmd.Flags().StringVar(&outJSON, "json", "document.json", "output JSON path")
	processCmd.Flags().StringVar(&outMD, "md", "", "output Markdown outline path (optional)")
	processCmd.Flags().StringVar(&audioDir, "audio-dir", "data/audio_segments", "directory for extracted audio slices")

	// Provider flags
	processCmd.Flags().StringVar(&sttProvider, "stt", "mock", "STT provider (openai, mock)")
	processCmd.Flags().StringVar(&sttModel, "stt-model", "", "STT model name (provider-specific)")
	processCmd.Flags().StringVar(&llmProvider, "llm", "mock", "LLM provider (openai, mock)")
	processCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider-specific)")
	processCmd.Flags().StringVar(&language, "language", "zh", "language hint for transcription")

	// Segmenter flags
	processCmd.Flags().Float64Var(&pauseThresh, "pause-threshold", 1.5, "silence length closing a segment (seconds)")
	processCmd.Flags().Float64Var(&minDuration, "min-duration", 0.5, "minimum segment duration (seconds)")
	processCmd.Flags().Float64Var(&maxDuration, "max-duration", 30, "maximum segment duration (seconds)")
	processCmd.Flags().Float64Var(&silenceDB, "silence-threshold", -40, "silence amplitude threshold (dBFS)")

	// Pipeline flags
	processCmd.Flags().IntVar(&workers, "concurrency", 5, "max in-flight external calls")
	processCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the transcription result cache")
	processCmd.Flags().StringVar(&markersFile, "markers", "", "YAML file with extra marker words per relation type")
	processCmd.Flags().DurationVar(&procTimeout, "timeout", 2*time.Hour, "overall processing timeout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	inputFile := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), procTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing: %s\n", inputFile)
		fmt.Fprintf(os.Stderr, "STT: %s  LLM: %s\n\n", cfg.STT.Provider, cfg.LLM.Provider)
	}

	doc, err := p.ProcessFile(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	renderer := pipeline.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(doc, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(doc, outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(doc)
	return nil
}

// buildConfig assembles the pipeline configuration from flags and environment
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.Segmenter.PauseThreshold = pauseThresh
	cfg.Segmenter.MinSegmentDuration = minDuration
	cfg.Segmenter.MaxSegmentDuration = maxDuration
	cfg.Segmenter.SilenceThreshold = silenceDB
	cfg.Segmenter.OutputDir = audioDir

	cfg.STT.Provider = sttProvider
	cfg.STT.Model = sttModel
	cfg.STT.Language = language
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	cfg.Cache.Enabled = !noCache
	cfg.Markers.OverridePath = markersFile
	cfg.Concurrency.TranscriptionWorkers = workers
	cfg.Concurrency.TopicWorkers = workers
	cfg.Output.Verbose = verbose

	// API keys come from the environment, never from flags
	if strings.EqualFold(sttProvider, "openai") {
		cfg.STT.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.STT.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if strings.EqualFold(llmProvider, "openai") {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}
