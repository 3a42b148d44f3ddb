package annotation

import (
	"errors"
	"fmt"
)

// DefaultCollar is the gap threshold, in seconds, below which two
// same-speaker regions are considered one contiguous utterance.
const DefaultCollar = 0.05

var (
	// ErrEmptyInput is returned when a merge is attempted with no chunks.
	ErrEmptyInput = errors.New("annotation: no chunks to merge")

	// ErrSampleRateMismatch is returned when chunks being merged do not share
	// sliding-window duration and step.
	ErrSampleRateMismatch = errors.New("annotation: sliding window mismatch across chunks")
)

// Chunk pairs one diarization annotation with its aligned waveform.
type Chunk struct {
	Annotation *TimeAnnotation
	Waveform   WaveformFeature
}

// Concat merges an ordered sequence of diarization chunks into a single
// annotation/waveform pair. Interval sets are unioned per speaker, a support
// pass collapses same-speaker regions separated by at most collar seconds,
// and waveform buffers are concatenated along the time axis in input order.
//
// The output window reuses the first chunk's duration, step and start, so
// absolute offsets for later chunks are the caller's responsibility to track.
// Inputs are not mutated.
func Concat(chunks []Chunk, collar float64) (*TimeAnnotation, WaveformFeature, error) {
	if len(chunks) == 0 {
		return nil, WaveformFeature{}, ErrEmptyInput
	}

	first := chunks[0].Waveform.Window
	merged := NewTimeAnnotation(chunks[0].Annotation.URI)

	frames := 0
	for i, chunk := range chunks {
		w := chunk.Waveform.Window
		if w.Duration != first.Duration || w.Step != first.Step {
			return nil, WaveformFeature{}, fmt.Errorf(
				"chunk %d window (duration=%g step=%g) differs from first (duration=%g step=%g): %w",
				i, w.Duration, w.Step, first.Duration, first.Step, ErrSampleRateMismatch)
		}
		merged.Update(chunk.Annotation)
		frames += chunk.Waveform.Frames()
	}

	data := make([][]float32, 0, frames)
	for _, chunk := range chunks {
		data = append(data, chunk.Waveform.Data...)
	}

	out := WaveformFeature{
		Data: data,
		Window: SlidingWindow{
			Duration: first.Duration,
			Step:     first.Step,
			Start:    first.Start,
		},
	}
	return merged.Support(collar), out, nil
}
