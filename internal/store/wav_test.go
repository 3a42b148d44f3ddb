package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wav "github.com/youpy/go-wav"
)

func TestSaveBatchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "batch.wav")

	samples := []float32{0, 0.5, -0.5, 1.0, -1.0}
	require.NoError(t, SaveBatch(samples, path, 16000))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := wav.NewReader(file)
	format, err := reader.Format()
	require.NoError(t, err)
	assert.Equal(t, uint32(16000), format.SampleRate)
	assert.Equal(t, uint16(1), format.NumChannels)
	assert.Equal(t, uint16(16), format.BitsPerSample)

	decoded, err := reader.ReadSamples(uint32(len(samples)))
	require.NoError(t, err)
	require.Len(t, decoded, len(samples))
	assert.Equal(t, 0, decoded[0].Values[0])
	assert.InDelta(t, 16383, decoded[1].Values[0], 1)
	assert.InDelta(t, -16383, decoded[2].Values[0], 1)
}

func TestSaveBatchOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.wav")

	require.NoError(t, SaveBatch([]float32{0.1, 0.2, 0.3}, path, 16000))
	require.NoError(t, SaveBatch([]float32{0.4}, path, 16000))

	info, err := os.Stat(path)
	require.NoError(t, err)
	// Header (44 bytes) plus one 16-bit sample.
	assert.Equal(t, int64(46), info.Size())
}

func TestCleanupSession(t *testing.T) {
	dir := t.TempDir()
	sessionDir := filepath.Join(dir, "session")
	path := filepath.Join(sessionDir, "batch.wav")
	require.NoError(t, SaveBatch([]float32{0.1}, path, 16000))

	CleanupSession(path)
	_, err := os.Stat(sessionDir)
	assert.True(t, os.IsNotExist(err))

	// Cleaning an already-removed session is a no-op.
	CleanupSession(path)
}
