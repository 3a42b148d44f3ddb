package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

// FileStore archives finished transcripts on disk, one file per stream.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) (*FileStore, error) {
	documentDir := filepath.Join(baseDir, "documents")
	turnsDir := filepath.Join(baseDir, "turns")

	if err := os.MkdirAll(documentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.MkdirAll(turnsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create turns directory: %w", err)
	}

	return &FileStore{baseDir: baseDir}, nil
}

// SaveDocument writes the canonical transcript document for a stream as JSON.
func (s *FileStore) SaveDocument(uri string, doc transcript.Document) (string, error) {
	path := filepath.Join(s.baseDir, "documents", fmt.Sprintf("%s.json", uri))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	log.Info().
		Str("uri", uri).
		Str("file", path).
		Int("segments", len(doc.Segments)).
		Msg("Saved transcript document")

	return path, nil
}

// SaveTurns writes the speaker-attributed turns for a stream as JSONL.
func (s *FileStore) SaveTurns(uri string, turns []transcript.AttributedTurn) (string, error) {
	path := filepath.Join(s.baseDir, "turns", fmt.Sprintf("%s.jsonl", uri))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create turns file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, turn := range turns {
		if err := encoder.Encode(turn); err != nil {
			return "", fmt.Errorf("failed to encode turn: %w", err)
		}
	}

	log.Info().
		Str("uri", uri).
		Str("file", path).
		Int("turns", len(turns)).
		Msg("Saved speaker turns")

	return path, nil
}

// LoadTurns reads back the speaker turns archived for a stream.
func (s *FileStore) LoadTurns(uri string) ([]transcript.AttributedTurn, error) {
	path := filepath.Join(s.baseDir, "turns", fmt.Sprintf("%s.jsonl", uri))

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open turns file: %w", err)
	}
	defer file.Close()

	var turns []transcript.AttributedTurn
	decoder := json.NewDecoder(file)
	for decoder.More() {
		var turn transcript.AttributedTurn
		if err := decoder.Decode(&turn); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
