package spectral

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
)

// FFT is the single Fourier transform used by every analyzer in this module.
// Buffers are expected to have a power-of-two length; callers zero-pad
// (see PadToPowerOfTwo). go-dsp runs its radix-2 decimation-in-time path for
// those lengths.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Forward computes the forward transform of (re, im) in place.
// Lengths 0 and 1 are a no-op, as are mismatched slices.
func (f *FFT) Forward(re, im []float64) {
	n := len(re)
	if n <= 1 || len(im) != n {
		return
	}

	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(re[i], im[i])
	}

	y := fft.FFT(x)
	for i, v := range y {
		re[i] = real(v)
		im[i] = imag(v)
	}
}

// Inverse computes the inverse transform of (re, im) in place as
// conjugate -> forward -> conjugate and scale by 1/N.
func (f *FFT) Inverse(re, im []float64) {
	n := len(re)
	if n <= 1 || len(im) != n {
		return
	}

	for i := range im {
		im[i] = -im[i]
	}

	f.Forward(re, im)

	scale := 1.0 / float64(n)
	for i := range re {
		re[i] *= scale
		im[i] = -im[i] * scale
	}
}

// Compute transforms a real signal and returns its complex spectrum
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	re := make([]float64, len(x))
	im := make([]float64, len(x))
	copy(re, x)
	f.Forward(re, im)

	out := make([]complex128, len(x))
	for i := range out {
		out[i] = complex(re[i], im[i])
	}
	return out
}

// MagnitudeSpectrum zero-pads frame to the next power of two N and returns
// the first N/2 magnitudes. Bin i maps to i*sampleRate/N Hz.
func (f *FFT) MagnitudeSpectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}

	spectrum := f.Compute(PadToPowerOfTwo(frame))
	half := len(spectrum) / 2
	if half == 0 {
		return []float64{math.Abs(real(spectrum[0]))}
	}

	magnitudes := make([]float64, half)
	for i := range half {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}
	return magnitudes
}

// FullMagnitudeSpectrum is like MagnitudeSpectrum but keeps all N bins,
// including the mirrored upper half. The cepstrum needs the symmetric form.
func (f *FFT) FullMagnitudeSpectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}

	spectrum := f.Compute(PadToPowerOfTwo(frame))
	magnitudes := make([]float64, len(spectrum))
	for i, v := range spectrum {
		magnitudes[i] = cmplx.Abs(v)
	}
	return magnitudes
}

// PadToPowerOfTwo returns frame unchanged when its length is already a power
// of two, otherwise a zero-padded copy.
func PadToPowerOfTwo(frame []float64) []float64 {
	if common.IsPowerOfTwo(len(frame)) {
		return frame
	}

	padded := make([]float64, common.NextPowerOfTwo(len(frame)))
	copy(padded, frame)
	return padded
}

// BinFrequency returns the centre frequency of bin i in a half spectrum of
// numBins bins (transform length 2*numBins).
func BinFrequency(i, numBins, sampleRate int) float64 {
	if numBins == 0 {
		return 0
	}
	return float64(i) * float64(sampleRate) / float64(2*numBins)
}

// FrequencyToBin is the inverse of BinFrequency, truncated toward zero.
func FrequencyToBin(freq float64, numBins, sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}
	return int(math.Floor(freq * float64(2*numBins) / float64(sampleRate)))
}
