package stt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

// Recognizer is a speech-to-text backend consuming a flat float32 sample
// buffer at its expected sample rate.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32) ([]transcript.RecognizedSegment, transcript.Info, error)
	Close() error
}

// Batch is one recognition job: the flattened audio of a stream's merged
// chunks.
type Batch struct {
	URI     string
	Samples []float32
}

// Result pairs a finished transcript document with its stream identity.
type Result struct {
	URI      string
	Document transcript.Document
}

// RecognizerPool fans recognition jobs out to a fixed set of workers.
type RecognizerPool struct {
	recognizer Recognizer
	workers    int
	batchChan  chan Batch
	resultChan chan Result
	stopChan   chan struct{}
	wg         sync.WaitGroup
	started    bool
	mutex      sync.Mutex
}

func NewRecognizerPool(recognizer Recognizer, workers int) *RecognizerPool {
	return &RecognizerPool{
		recognizer: recognizer,
		workers:    workers,
		batchChan:  make(chan Batch, workers*2),
		resultChan: make(chan Result, workers*2),
		stopChan:   make(chan struct{}),
	}
}

func (p *RecognizerPool) Start(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return fmt.Errorf("pool already started")
	}

	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	log.Info().Int("workers", p.workers).Msg("Started recognition worker pool")
	return nil
}

func (p *RecognizerPool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	log.Debug().Int("worker_id", workerID).Msg("Recognition worker started")
	defer log.Debug().Int("worker_id", workerID).Msg("Recognition worker stopped")

	for {
		select {
		case batch, ok := <-p.batchChan:
			if !ok {
				return
			}

			segments, info, err := p.recognizer.Transcribe(ctx, batch.Samples)
			if err != nil {
				log.Error().
					Err(err).
					Str("uri", batch.URI).
					Int("worker_id", workerID).
					Msg("Failed to transcribe batch")
				continue
			}

			result := Result{
				URI:      batch.URI,
				Document: transcript.FormatDocument(segments, info),
			}

			select {
			case p.resultChan <- result:
				log.Debug().
					Str("uri", batch.URI).
					Int("segments", len(segments)).
					Int("worker_id", workerID).
					Msg("Transcribed batch")
			case <-ctx.Done():
				return
			case <-p.stopChan:
				return
			}

		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		}
	}
}

// Process queues a batch for recognition, failing immediately when the queue
// is full rather than blocking ingestion. Queuing against a stopped pool is an
// error, not a panic: streams can outlive the pool during shutdown.
func (p *RecognizerPool) Process(batch Batch) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return fmt.Errorf("recognizer pool not running")
	}

	select {
	case p.batchChan <- batch:
		return nil
	default:
		return fmt.Errorf("batch queue full, dropping batch")
	}
}

func (p *RecognizerPool) Results() <-chan Result {
	return p.resultChan
}

func (p *RecognizerPool) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return
	}

	close(p.stopChan)
	close(p.batchChan)

	p.wg.Wait()
	close(p.resultChan)

	p.started = false
	log.Info().Msg("Stopped recognition worker pool")
}
