package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Audio is a decoded mono PCM buffer
type Audio struct {
	SampleRate int
	Samples    []int16
}

// DurationMs returns the buffer length in integer milliseconds
func (a *Audio) DurationMs() int {
	if a.SampleRate == 0 {
		return 0
	}
	return len(a.Samples) * 1000 / a.SampleRate
}

// Slice returns the samples covering [startMs, endMs). Bounds are clamped to
// the buffer; the slice aliases the original sample data.
func (a *Audio) Slice(startMs, endMs int) *Audio {
	start := startMs * a.SampleRate / 1000
	end := endMs * a.SampleRate / 1000
	if start < 0 {
		start = 0
	}
	if end > len(a.Samples) {
		end = len(a.Samples)
	}
	if start > end {
		start = end
	}
	return &Audio{SampleRate: a.SampleRate, Samples: a.Samples[start:end]}
}

// RMSDBFS returns the RMS level of the samples in dBFS relative to int16
// full scale. Empty or all-zero input maps to -96 dB (digital noise floor).
func RMSDBFS(samples []int16) float64 {
	if len(samples) == 0 {
		return -96.0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms < 1 {
		return -96.0
	}
	return 20 * math.Log10(rms/32768.0)
}

// ReadWAV decodes a 16-bit PCM WAV file. Stereo input is downmixed to mono by
// averaging channels.
func ReadWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeWAV(f)
}

// DecodeWAV decodes 16-bit PCM WAV data from r
func DecodeWAV(r io.Reader) (*Audio, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a WAV file")
	}

	var (
		sampleRate int
		channels   int
		bitDepth   int
		data       []byte
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(buf[0:2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported WAV encoding %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(buf[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(buf[14:16]))
		case "data":
			data = make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
		default:
			// Skip LIST, fact and other metadata chunks. Chunks are
			// word-aligned; odd sizes carry a pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip %s chunk: %w", id, err)
			}
		}

		if id == "data" && size%2 == 1 {
			_, _ = io.CopyN(io.Discard, r, 1)
		}
	}

	if sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if bitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (want 16)", bitDepth)
	}
	if data == nil {
		return nil, fmt.Errorf("missing data chunk")
	}

	frames := len(data) / (2 * channels)
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var acc int
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			acc += int(int16(binary.LittleEndian.Uint16(data[off : off+2])))
		}
		samples[i] = int16(acc / channels)
	}

	return &Audio{SampleRate: sampleRate, Samples: samples}, nil
}

// WriteWAV encodes the buffer as a 16-bit PCM mono WAV file
func WriteWAV(path string, audio *Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	if err := EncodeWAV(f, audio); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// EncodeWAV writes the buffer to w as 16-bit PCM mono WAV
func EncodeWAV(w io.Writer, audio *Audio) error {
	dataSize := uint32(len(audio.Samples) * 2)

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataSize)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], 1) // mono
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(audio.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(audio.SampleRate*2))
	binary.LittleEndian.PutUint16(hdr[32:34], 2)
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataSize)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	buf := make([]byte, len(audio.Samples)*2)
	for i, s := range audio.Samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
