package speech

// Formant is a vocal-tract resonance picked from the LPC envelope
type Formant struct {
	Frequency   float64 `json:"frequency_hz"`
	AmplitudeDB float64 `json:"amplitude_db"`
}

// PickFormants returns the strict local maxima of envelope (sampled evenly
// from 0 Hz to Nyquist) whose frequency exceeds minFreq, ascending by
// frequency.
func PickFormants(envelope []float64, sampleRate int, minFreq float64) []Formant {
	formants := make([]Formant, 0, 6)
	numPoints := len(envelope)
	if numPoints < 3 {
		return formants
	}

	nyquist := float64(sampleRate) / 2
	for i := 1; i < numPoints-1; i++ {
		if envelope[i] > envelope[i-1] && envelope[i] > envelope[i+1] {
			freq := float64(i) / float64(numPoints-1) * nyquist
			if freq > minFreq {
				formants = append(formants, Formant{
					Frequency:   freq,
					AmplitudeDB: envelope[i],
				})
			}
		}
	}

	return formants
}

// Vowel is a coarse cardinal-vowel guess from F1/F2
type Vowel string

const (
	VowelNone Vowel = ""
	VowelI    Vowel = "i"
	VowelA    Vowel = "a"
	VowelU    Vowel = "u"
	VowelO    Vowel = "o"
)

// EstimateVowel maps the first two formants onto the corner vowels.
// Missing formants (0) give VowelNone.
func EstimateVowel(f1, f2 float64) Vowel {
	if f1 <= 0 || f2 <= 0 {
		return VowelNone
	}

	switch {
	case f1 < 550 && f2 > 1900:
		return VowelI
	case f1 > 600 && f2 > 1200 && f2 < 1800:
		return VowelA
	case f1 < 500 && f2 < 1200:
		return VowelU
	case f1 > 500 && f1 < 800 && f2 < 1200:
		return VowelO
	default:
		return VowelNone
	}
}

// VowelFromFormants applies EstimateVowel to the two lowest formants
func VowelFromFormants(formants []Formant) Vowel {
	if len(formants) < 2 {
		return VowelNone
	}
	return EstimateVowel(formants[0].Frequency, formants[1].Frequency)
}
