package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilyakh/lectograph/internal/model"
	"github.com/ilyakh/lectograph/internal/pipeline"
	"github.com/ilyakh/lectograph/internal/worker"
)

var (
	batchWorkers int
	outputDir    string
	batchTimeout time.Duration
)

var mediaExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".flv": true,
	".wav": true, ".mp3": true, ".flac": true, ".m4a": true,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Process every recording in a directory",
	Long: `Batch processes every supported media file in a directory:
- Recordings run in parallel with a configurable worker count
- Each recording uses concurrent transcription internally
- One JSON document is written per recording

Example:
  lectograph batch ./recordings
  lectograph batch ./recordings --workers 2 --output-dir ./documents`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 2, "number of recordings processed in parallel")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./lectograph-documents", "output directory for documents")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 12*time.Hour, "total timeout for batch processing")

	// Provider selection, shared with the process command
	batchCmd.Flags().StringVar(&sttProvider, "stt", "mock", "STT provider (openai, mock)")
	batchCmd.Flags().StringVar(&sttModel, "stt-model", "", "STT model name (provider-specific)")
	batchCmd.Flags().StringVar(&llmProvider, "llm", "mock", "LLM provider (openai, mock)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider-specific)")
	batchCmd.Flags().StringVar(&language, "language", "zh", "language hint for transcription")
	batchCmd.Flags().IntVar(&workers, "concurrency", 5, "max in-flight external calls per recording")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the transcription result cache")
	batchCmd.Flags().StringVar(&markersFile, "markers", "", "YAML file with extra marker words per relation type")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	files, err := collectMediaFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported media files in %s", dir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	pool := worker.NewPool(batchWorkers)
	pool.Start()

	for i, file := range files {
		// One slice directory per recording keeps ids from colliding
		jobCfg := *cfg
		jobCfg.Segmenter.OutputDir = filepath.Join(outputDir,
			strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))+"_segments")

		p, err := pipeline.NewPipeline(&jobCfg)
		if err != nil {
			return err
		}
		pool.Submit(&processJob{ctx: ctx, index: i, file: file, pipeline: p})
	}

	failed := 0
	renderer := pipeline.NewRenderer()
	for _, res := range pool.Wait() {
		pr := res.(*processResult)
		if pr.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", pr.file, pr.err)
			continue
		}

		base := strings.TrimSuffix(filepath.Base(pr.file), filepath.Ext(pr.file))
		outPath := filepath.Join(outputDir, base+".json")
		if err := renderer.RenderJSON(pr.doc, outPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", pr.file, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s → %s\n", pr.file, outPath)
	}

	fmt.Printf("Processed %d recordings, %d failed\n", len(files), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(files))
	}
	return nil
}

func collectMediaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// processJob runs one recording through its own pipeline
type processJob struct {
	ctx      context.Context
	index    int
	file     string
	pipeline *pipeline.Pipeline
}

func (j *processJob) Execute(_ context.Context) worker.Result {
	doc, err := j.pipeline.ProcessFile(j.ctx, j.file)
	return &processResult{index: j.index, file: j.file, doc: doc, err: err}
}

type processResult struct {
	index int
	file  string
	doc   *model.Document
	err   error
}

func (r *processResult) GetError() error { return r.err }
func (r *processResult) GetIndex() int   { return r.index }
