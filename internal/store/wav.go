package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	wav "github.com/youpy/go-wav"
)

const bitsPerSample = 16

// EncodeWAV renders mono float32 samples as a 16-bit PCM wave file in memory.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, uint32(len(samples)), 1, uint32(sampleRate), bitsPerSample)

	pcm := make([]wav.Sample, len(samples))
	for i, sample := range samples {
		pcm[i].Values[0] = int(clampSample(sample) * 32767)
	}

	if err := writer.WriteSamples(pcm); err != nil {
		return nil, fmt.Errorf("failed to encode wav samples: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveBatch writes a batch of mono float32 samples as a 16-bit PCM wave file
// at path, creating parent directories as needed. Existing files are
// overwritten. The artifact is for debugging/archival only and is not required
// for transcript correctness.
func SaveBatch(samples []float32, path string, sampleRate int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create batch directory: %w", err)
		}
	}

	data, err := EncodeWAV(samples, sampleRate)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write wav file: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("samples", len(samples)).
		Int("sample_rate", sampleRate).
		Msg("Saved batch to wav file")

	return nil
}

// CleanupSession deletes the parent directory of path recursively. Failures
// are logged as warnings only; cleanup never fails the caller.
func CleanupSession(path string) {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Info().
			Str("dir", dir).
			Msg("Temporary folder does not exist")
		return
	}

	if err := os.RemoveAll(dir); err != nil {
		log.Warn().
			Str("dir", dir).
			Err(err).
			Msg("Error deleting temporary folder")
		return
	}

	log.Info().
		Str("dir", dir).
		Msg("Temporary folder deleted successfully")
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
