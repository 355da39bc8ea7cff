package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExtractionError reports a failed ffmpeg run together with the tool's
// diagnostic output.
type ExtractionError struct {
	Input  string
	Stderr string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extract audio from %s: %v", e.Input, e.Err)
	if e.Stderr != "" {
		msg += ": " + lastLine(e.Stderr)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// ExtractAudio converts a media file to mono 16 kHz 16-bit PCM WAV using
// ffmpeg. The output is written to outDir named after the input file.
func ExtractAudio(ctx context.Context, inputPath, outDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(outDir, base+".wav")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-vn",                 // drop video
		"-acodec", "pcm_s16le", // 16-bit PCM
		"-ar", "16000", // 16 kHz
		"-ac", "1", // mono
		"-y", // overwrite
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ExtractionError{
			Input:  inputPath,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return outPath, nil
}
