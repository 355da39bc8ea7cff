package segment

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ilyakh/lectograph/internal/media"
	"github.com/ilyakh/lectograph/internal/model"
)

// UnsupportedFormatError reports an input file extension the segmenter
// cannot handle.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported media format: %q", e.Ext)
}

var (
	videoExts = map[string]bool{
		".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".flv": true,
	}
	// Compressed audio goes through the same ffmpeg path as video to get
	// 16 kHz mono PCM; .wav is decoded natively.
	audioExts = map[string]bool{
		".wav": true, ".mp3": true, ".flac": true, ".m4a": true,
	}
)

// Range is a half-open [StartMs, EndMs) span of audio
type Range struct {
	StartMs int
	EndMs   int
}

// DurationMs returns the range length in milliseconds
func (r Range) DurationMs() int { return r.EndMs - r.StartMs }

// Segmenter turns one media file into an ordered list of speech-unit
// segments with extracted audio slices.
type Segmenter struct {
	cfg model.SegmenterConfig
}

// NewSegmenter creates a segmenter with the given configuration. Zero-valued
// fields fall back to the defaults.
func NewSegmenter(cfg model.SegmenterConfig) *Segmenter {
	def := model.DefaultConfig().Segmenter
	if cfg.PauseThreshold <= 0 {
		cfg.PauseThreshold = def.PauseThreshold
	}
	if cfg.MinSegmentDuration <= 0 {
		cfg.MinSegmentDuration = def.MinSegmentDuration
	}
	if cfg.MaxSegmentDuration <= 0 {
		cfg.MaxSegmentDuration = def.MaxSegmentDuration
	}
	if cfg.SilenceThreshold == 0 {
		cfg.SilenceThreshold = def.SilenceThreshold
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	return &Segmenter{cfg: cfg}
}

// Process converts a video or audio file into segments. Video and compressed
// audio are first converted to 16 kHz mono PCM via ffmpeg; a conversion
// failure or an unrecognized extension aborts the whole operation.
func (s *Segmenter) Process(ctx context.Context, inputFile string) ([]*model.Segment, error) {
	ext := strings.ToLower(filepath.Ext(inputFile))

	if !videoExts[ext] && !audioExts[ext] {
		return nil, &UnsupportedFormatError{Ext: ext}
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	audioPath := inputFile
	if ext != ".wav" {
		converted, err := media.ExtractAudio(ctx, inputFile, s.cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		audioPath = converted
	}

	audio, err := media.ReadWAV(audioPath)
	if err != nil {
		return nil, fmt.Errorf("load audio: %w", err)
	}

	return s.segmentAudio(audio)
}

// segmentAudio runs detection, merge and split passes over the decoded
// buffer and persists one slice per final range.
func (s *Segmenter) segmentAudio(audio *media.Audio) ([]*model.Segment, error) {
	minSilenceMs := int(s.cfg.PauseThreshold * 1000)
	minMs := int(s.cfg.MinSegmentDuration * 1000)
	maxMs := int(s.cfg.MaxSegmentDuration * 1000)

	ranges := DetectNonSilent(audio, minSilenceMs, s.cfg.SilenceThreshold)
	ranges = MergeShortRanges(ranges, minMs)
	ranges = SplitLongRanges(ranges, maxMs)

	segments := make([]*model.Segment, 0, len(ranges))
	for _, r := range ranges {
		id := newSegmentID()
		slicePath := filepath.Join(s.cfg.OutputDir, id+".wav")
		if err := media.WriteWAV(slicePath, audio.Slice(r.StartMs, r.EndMs)); err != nil {
			return nil, fmt.Errorf("persist slice %s: %w", id, err)
		}
		seg := model.NewSegment(id, float64(r.StartMs)/1000.0, float64(r.EndMs)/1000.0, slicePath)
		segments = append(segments, seg)
	}
	return segments, nil
}

// detection window; pydub uses 10 ms steps for silence scanning
const windowMs = 10

// DetectNonSilent scans the buffer in 10 ms windows and returns the ordered,
// non-overlapping ranges louder than silenceThreshDB. Quiet gaps shorter than
// minSilenceLenMs do not close a range.
func DetectNonSilent(audio *media.Audio, minSilenceLenMs int, silenceThreshDB float64) []Range {
	total := audio.DurationMs()
	if total == 0 {
		return nil
	}
	if minSilenceLenMs < windowMs {
		minSilenceLenMs = windowMs
	}

	winSamples := audio.SampleRate * windowMs / 1000
	var ranges []Range

	inSpeech := false
	speechStart := 0
	silentRun := 0 // consecutive silent ms while in speech

	for startMs := 0; startMs < total; startMs += windowMs {
		off := startMs * audio.SampleRate / 1000
		end := off + winSamples
		if end > len(audio.Samples) {
			end = len(audio.Samples)
		}
		silent := media.RMSDBFS(audio.Samples[off:end]) < silenceThreshDB

		switch {
		case !inSpeech && !silent:
			inSpeech = true
			speechStart = startMs
			silentRun = 0
		case inSpeech && silent:
			silentRun += windowMs
			if silentRun >= minSilenceLenMs {
				ranges = append(ranges, Range{StartMs: speechStart, EndMs: startMs + windowMs - silentRun})
				inSpeech = false
			}
		case inSpeech && !silent:
			silentRun = 0
		}
	}

	if inSpeech {
		ranges = append(ranges, Range{StartMs: speechStart, EndMs: total - silentRun})
	}
	return ranges
}

// MergeShortRanges scans left to right and keeps extending the accumulated
// range while it is still shorter than minDurationMs. The final accumulated
// range is always emitted, even if still short.
func MergeShortRanges(ranges []Range, minDurationMs int) []Range {
	if len(ranges) == 0 {
		return nil
	}

	merged := make([]Range, 0, len(ranges))
	cur := ranges[0]
	for _, r := range ranges[1:] {
		if cur.DurationMs() < minDurationMs {
			cur.EndMs = r.EndMs
		} else {
			merged = append(merged, cur)
			cur = r
		}
	}
	merged = append(merged, cur)
	return merged
}

// SplitLongRanges divides every range longer than maxDurationMs into
// ceil(duration/max) equal-width sub-ranges that exactly tile the original.
func SplitLongRanges(ranges []Range, maxDurationMs int) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		d := r.DurationMs()
		if d <= maxDurationMs {
			out = append(out, r)
			continue
		}

		n := int(math.Ceil(float64(d) / float64(maxDurationMs)))
		width := float64(d) / float64(n)

		prev := r.StartMs
		for i := 1; i <= n; i++ {
			end := r.StartMs + int(float64(i)*width)
			if i == n {
				end = r.EndMs
			}
			out = append(out, Range{StartMs: prev, EndMs: end})
			prev = end
		}
	}
	return out
}

func newSegmentID() string {
	return "seg_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
