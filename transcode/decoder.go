// Package transcode decodes audio files into mono float64 PCM for analysis.
package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-voz/algorithms/filters"
	"github.com/RyanBlaney/sonido-voz/logging"
)

var ErrInvalidWAV = errors.New("transcode: not a valid WAV file")

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"`           // Mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"` // Hz
	Channels   int           `json:"channels"`    // Channel count of the source before downmix
	BitDepth   int           `json:"bit_depth"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source,omitempty"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	MaxDuration time.Duration `json:"max_duration"` // 0 means no limit
	RemoveDC    bool          `json:"remove_dc"`    // High-pass the mono signal at filters.DefaultDCCutoffHz
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		MaxDuration: 0,
	}
}

// Decoder reads PCM WAV files and downmixes them to mono
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "wav_decoder"}),
	}
}

// DecodeFile opens and decodes a WAV file
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("transcode: open %q: %w", filename, err)
	}
	defer f.Close()

	data, err := d.DecodeReader(f)
	if err != nil {
		return nil, fmt.Errorf("transcode: decode %q: %w", filename, err)
	}
	data.Source = filename

	d.logger.Debug("decoded audio file", logging.Fields{
		"file":        filename,
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"bit_depth":   data.BitDepth,
		"duration":    data.Duration.String(),
	})

	return data, nil
}

// DecodeReader decodes a WAV stream
func (d *Decoder) DecodeReader(r io.ReadSeeker) (*AudioData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: missing format chunk", ErrInvalidWAV)
	}

	pcm := toMono(buf)
	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(buf.Format.SampleRate))
		if limit < len(pcm) {
			pcm = pcm[:limit]
		}
	}
	if d.config.RemoveDC {
		pcm = filters.NewDCBlocker(buf.Format.SampleRate, filters.DefaultDCCutoffHz).ProcessBuffer(pcm)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   buf.SourceBitDepth,
		Duration:   time.Duration(float64(len(pcm)) / float64(buf.Format.SampleRate) * float64(time.Second)),
	}, nil
}

// toMono averages interleaved channels and scales integer samples to [-1, 1].
// 8-bit WAV is unsigned and is re-centred first.
func toMono(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}

	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		offset = scale
	}

	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		pcm[i] = sum / float64(channels)
	}
	return pcm
}
