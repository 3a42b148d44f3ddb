package diarize

import (
	"context"

	"github.com/leonablue2016/real-speech-to-text/internal/annotation"
	"github.com/leonablue2016/real-speech-to-text/internal/source"
)

// Diarizer turns one audio chunk into a speaker-labeled time annotation plus
// the aligned waveform feature for that chunk. Offset is the chunk's position
// in the stream, in seconds; implementations shift their output by it so that
// segment times and the waveform window refer to the whole stream.
type Diarizer interface {
	Diarize(ctx context.Context, uri string, chunk source.Chunk, offset float64) (*annotation.TimeAnnotation, annotation.WaveformFeature, error)
	Close() error
}
