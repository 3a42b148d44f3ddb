package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/annotation"
)

// Session is the per-stream accumulation state: the diarized chunks received
// so far and the cumulative audio offset. It lives from stream start until
// cleanup at stream end. All mutation goes through the mutex, so appends and
// merges are serialized.
type Session struct {
	ID  uuid.UUID
	URI string

	sampleRate int
	collar     float64

	mutex  sync.Mutex
	chunks []annotation.Chunk
	offset float64
}

func New(uri string, sampleRate int, collar float64) *Session {
	return &Session{
		ID:         uuid.New(),
		URI:        uri,
		sampleRate: sampleRate,
		collar:     collar,
	}
}

// Offset returns the stream position, in seconds, where the next chunk's
// audio begins.
func (s *Session) Offset() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.offset
}

// Append records one diarized chunk pair and advances the stream offset by
// the chunk's audio duration.
func (s *Session) Append(ann *annotation.TimeAnnotation, wav annotation.WaveformFeature) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.chunks = append(s.chunks, annotation.Chunk{Annotation: ann, Waveform: wav})
	s.offset += float64(wav.Frames()) / float64(s.sampleRate)

	log.Debug().
		Str("uri", s.URI).
		Int("chunks", len(s.chunks)).
		Float64("offset", s.offset).
		Msg("Appended diarized chunk to session")
}

// ChunkCount reports how many diarized chunks have been accumulated.
func (s *Session) ChunkCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.chunks)
}

// Merge fuses the accumulated chunks into one annotation/waveform pair. The
// annotation is collapsed with the session collar; the inputs stay untouched
// so Merge may be called repeatedly as the stream grows.
func (s *Session) Merge() (*annotation.TimeAnnotation, annotation.WaveformFeature, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return annotation.Concat(s.chunks, s.collar)
}
