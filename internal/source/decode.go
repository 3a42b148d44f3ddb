package source

import "math"

// DecodePCM16 converts little-endian 16-bit PCM bytes into normalized float32
// samples. A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		raw := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float32(raw) / 32768
	}
	return samples
}

// RMSGate is a minimal speech gate: a chunk counts as speech when its
// root-mean-square amplitude exceeds the threshold.
type RMSGate struct {
	Threshold float64
}

func (g RMSGate) IsSpeech(samples []float32) bool {
	if len(samples) == 0 {
		return false
	}

	var sum float64
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}

	rms := math.Sqrt(sum / float64(len(samples)))
	return rms > g.Threshold
}
