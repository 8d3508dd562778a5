package main

import (
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
)

// analyserSize matches the 2048-point capture analyser of a browser
const analyserSize = 2048

// fileSource plays a decoded recording as a capture device. Each call to
// TimeDomain advances by one tick of audio; FrequencyDomain describes the
// block last returned by TimeDomain.
type fileSource struct {
	mu         sync.Mutex
	pcm        []float64
	sampleRate int
	hop        int
	pos        int
	block      []float64
	fft        *spectral.FFT
}

func newFileSource(pcm []float64, sampleRate int, tick time.Duration) *fileSource {
	return &fileSource{
		pcm:        pcm,
		sampleRate: sampleRate,
		hop:        max(int(tick.Seconds()*float64(sampleRate)), 1),
		fft:        spectral.NewFFT(),
	}
}

func (s *fileSource) SampleRate() int {
	return s.sampleRate
}

// Blocks returns how many full blocks are left from the current position.
// Ticks must be counted up front: the reader advances pos on its own
// goroutine.
func (s *fileSource) Blocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := len(s.pcm) - s.pos
	if remaining < analyserSize {
		return 0
	}
	return (remaining-analyserSize)/s.hop + 1
}

func (s *fileSource) TimeDomain() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	block := make([]float64, analyserSize)
	if s.pos < len(s.pcm) {
		copy(block, s.pcm[s.pos:])
	}
	s.block = block
	s.pos += s.hop

	return block
}

// FrequencyDomain returns 20*log10(|X|/N) of the Hamming-windowed block
func (s *fileSource) FrequencyDomain() []float64 {
	s.mu.Lock()
	block := s.block
	s.mu.Unlock()

	if block == nil {
		block = make([]float64, analyserSize)
	}

	magnitudes := s.fft.MagnitudeSpectrum(windowing.ApplyHamming(block))
	db := make([]float64, len(magnitudes))
	for i, mag := range magnitudes {
		db[i] = common.AmplitudeToDB(mag/analyserSize, common.Epsilon)
	}
	return db
}
