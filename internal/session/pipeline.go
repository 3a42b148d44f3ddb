package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/annotation"
	"github.com/leonablue2016/real-speech-to-text/internal/diarize"
	"github.com/leonablue2016/real-speech-to-text/internal/source"
	"github.com/leonablue2016/real-speech-to-text/internal/store"
	"github.com/leonablue2016/real-speech-to-text/internal/stt"
	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

// Outcome is the finished product of a stream: the canonical transcript
// document plus the ordered speaker-attributed turns.
type Outcome struct {
	Turns    []transcript.AttributedTurn `json:"turns"`
	Document transcript.Document         `json:"document"`
}

// Pipeline drives one stream end to end: it drains the chunk source, diarizes
// each chunk, accumulates the pairs in the session, and on finalization merges
// them into a single recognition batch.
type Pipeline struct {
	Session *Session

	src      source.Source
	diarizer diarize.Diarizer
	mapping  transcript.SpeakerMapping
	tempPath string

	mergedMux sync.Mutex
	merged    *annotation.TimeAnnotation
}

func NewPipeline(src source.Source, diarizer diarize.Diarizer, mapping transcript.SpeakerMapping, collar float64, tempPath string) *Pipeline {
	return &Pipeline{
		Session:  New(src.URI(), src.SampleRate(), collar),
		src:      src,
		diarizer: diarizer,
		mapping:  mapping,
		tempPath: tempPath,
	}
}

// Run consumes the source until its chunk stream closes or ctx is cancelled.
// Chunks that fail diarization are dropped with a logged error; the stream
// keeps going.
func (p *Pipeline) Run(ctx context.Context) {
	defer log.Debug().Str("uri", p.Session.URI).Msg("Chunk processing stopped")

	for {
		select {
		case chunk, ok := <-p.src.Chunks():
			if !ok {
				return
			}

			ann, wav, err := p.diarizer.Diarize(ctx, p.Session.URI, chunk, p.Session.Offset())
			if err != nil {
				log.Error().
					Err(err).
					Str("uri", p.Session.URI).
					Str("chunk_id", chunk.ID.String()).
					Msg("Failed to diarize chunk")
				continue
			}
			p.Session.Append(ann, wav)

		case <-ctx.Done():
			return
		}
	}
}

// Finalize merges everything accumulated so far and returns the recognition
// batch for the whole stream. The merged annotation is retained for the later
// Complete call. The merged audio is also persisted as a WAV artifact; persist
// failures are logged and do not affect the batch.
func (p *Pipeline) Finalize() (stt.Batch, error) {
	merged, wav, err := p.Session.Merge()
	if err != nil {
		return stt.Batch{}, fmt.Errorf("failed to merge session chunks: %w", err)
	}

	p.mergedMux.Lock()
	p.merged = merged
	p.mergedMux.Unlock()

	samples := wav.Flatten()

	if p.tempPath != "" {
		path := filepath.Join(p.tempPath, p.Session.URI, "batch.wav")
		if err := store.SaveBatch(samples, path, p.src.SampleRate()); err != nil {
			log.Warn().
				Err(err).
				Str("uri", p.Session.URI).
				Str("path", path).
				Msg("Failed to persist merged batch")
		}
	}

	log.Info().
		Str("uri", p.Session.URI).
		Int("chunks", p.Session.ChunkCount()).
		Int("samples", len(samples)).
		Msg("Finalized session batch")

	return stt.Batch{URI: p.Session.URI, Samples: samples}, nil
}

// Complete aligns a finished transcript document against the merged
// annotation and resolves speaker display names.
func (p *Pipeline) Complete(doc transcript.Document) Outcome {
	p.mergedMux.Lock()
	merged := p.merged
	p.mergedMux.Unlock()

	var turns []transcript.SpeakerTurn
	if merged != nil {
		turns = transcript.Align(merged, doc.Segments)
	}

	return Outcome{
		Turns:    p.mapping.Turns(turns),
		Document: doc,
	}
}

// Cleanup removes the session's temp artifacts. Never fails.
func (p *Pipeline) Cleanup() {
	if p.tempPath == "" {
		return
	}
	store.CleanupSession(filepath.Join(p.tempPath, p.Session.URI, "batch.wav"))
}
