package stt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

type echoRecognizer struct {
	err error
}

func (r *echoRecognizer) Transcribe(_ context.Context, samples []float32) ([]transcript.RecognizedSegment, transcript.Info, error) {
	if r.err != nil {
		return nil, transcript.Info{}, r.err
	}
	return []transcript.RecognizedSegment{
		{ID: 0, Text: " ok", End: float64(len(samples)) / 16000},
	}, transcript.Info{Language: "en"}, nil
}

func (r *echoRecognizer) Close() error { return nil }

func TestRecognizerPoolProcessesBatches(t *testing.T) {
	pool := NewRecognizerPool(&echoRecognizer{}, 2)
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Process(Batch{URI: "a", Samples: make([]float32, 16000)}))
	require.NoError(t, pool.Process(Batch{URI: "b", Samples: make([]float32, 8000)}))

	got := map[string]transcript.Document{}
	for i := 0; i < 2; i++ {
		select {
		case result := <-pool.Results():
			got[result.URI] = result.Document
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for results")
		}
	}
	pool.Stop()

	require.Len(t, got, 2)
	assert.Equal(t, "en", got["a"].Language)
	assert.Equal(t, " ok", got["a"].Text)
	require.Len(t, got["b"].Segments, 1)
	assert.Equal(t, 0.5, got["b"].Segments[0].End)
}

func TestRecognizerPoolSkipsFailedBatches(t *testing.T) {
	pool := NewRecognizerPool(&echoRecognizer{err: errors.New("backend down")}, 1)
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Process(Batch{URI: "a", Samples: make([]float32, 16)}))
	pool.Stop()

	_, ok := <-pool.Results()
	assert.False(t, ok)
}

func TestRecognizerPoolProcessAfterStop(t *testing.T) {
	pool := NewRecognizerPool(&echoRecognizer{}, 1)
	require.NoError(t, pool.Start(context.Background()))
	pool.Stop()

	// Streams can outlive the pool during shutdown; queuing must fail
	// cleanly instead of panicking on the closed channel.
	err := pool.Process(Batch{URI: "late", Samples: make([]float32, 16)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestRecognizerPoolProcessBeforeStart(t *testing.T) {
	pool := NewRecognizerPool(&echoRecognizer{}, 1)
	require.Error(t, pool.Process(Batch{URI: "early"}))
}

func TestRecognizerPoolDoubleStart(t *testing.T) {
	pool := NewRecognizerPool(&echoRecognizer{}, 1)
	require.NoError(t, pool.Start(context.Background()))
	require.Error(t, pool.Start(context.Background()))
	pool.Stop()
}
