package source

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Chunk is one materialized audio chunk delivered by a source. Samples are
// mono float32 in [-1, 1].
type Chunk struct {
	ID         uuid.UUID
	Samples    []float32
	SampleRate int
	ReceivedAt time.Time
}

// Source is something that accepts pushed audio chunks and exposes a
// subscribable stream of them, tagged with a stream identity and sample rate.
type Source interface {
	URI() string
	SampleRate() int
	Chunks() <-chan Chunk
	Close()
}

// PushSource buffers pushed chunks on a bounded channel that downstream
// consumers drain. When the buffer is full, new chunks are dropped with a
// warning rather than blocking the producer.
type PushSource struct {
	uri        string
	sampleRate int

	chunkChan chan Chunk
	closed    bool
	mutex     sync.Mutex
}

func NewPushSource(uri string, sampleRate, buffer int) *PushSource {
	return &PushSource{
		uri:        uri,
		sampleRate: sampleRate,
		chunkChan:  make(chan Chunk, buffer),
	}
}

func (s *PushSource) URI() string     { return s.uri }
func (s *PushSource) SampleRate() int { return s.sampleRate }

// Push delivers one chunk into the stream. Pushes after Close are ignored.
func (s *PushSource) Push(samples []float32) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	chunk := Chunk{
		ID:         uuid.New(),
		Samples:    samples,
		SampleRate: s.sampleRate,
		ReceivedAt: time.Now(),
	}

	select {
	case s.chunkChan <- chunk:
		log.Debug().
			Str("uri", s.uri).
			Str("chunk_id", chunk.ID.String()).
			Int("samples", len(samples)).
			Msg("Chunk received in stream")
	default:
		log.Warn().
			Str("uri", s.uri).
			Msg("Chunk buffer full, dropping chunk")
	}
}

func (s *PushSource) Chunks() <-chan Chunk {
	return s.chunkChan
}

// Close ends the stream. Safe to call more than once.
func (s *PushSource) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.chunkChan)

	log.Debug().Str("uri", s.uri).Msg("Audio source closed")
}
