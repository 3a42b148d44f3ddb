package annotation

// SlidingWindow describes how waveform buffer rows map to wall-clock time.
// Duration is the span of a single frame in seconds, Step the hop between
// consecutive frames, and Start the time of the first frame.
type SlidingWindow struct {
	Duration float64 `json:"duration"`
	Step     float64 `json:"step"`
	Start    float64 `json:"start"`
}

// WaveformFeature is a dense (frames, channels) buffer of audio samples
// together with the sliding window that anchors it in time.
type WaveformFeature struct {
	Data   [][]float32
	Window SlidingWindow
}

// Frames returns the number of rows in the buffer.
func (w WaveformFeature) Frames() int {
	return len(w.Data)
}

// Flatten returns the buffer as a single row-major float32 slice, the layout
// the recognizer expects. No resampling is performed; the caller guarantees
// the chunk is already at the recognizer's sample rate.
func (w WaveformFeature) Flatten() []float32 {
	if len(w.Data) == 0 {
		return nil
	}
	out := make([]float32, 0, len(w.Data)*len(w.Data[0]))
	for _, row := range w.Data {
		out = append(out, row...)
	}
	return out
}
