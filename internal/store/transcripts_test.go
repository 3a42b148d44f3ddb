package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc := transcript.Document{
		Language: "en",
		Text:     " hi there",
		Segments: []transcript.RecognizedSegment{{ID: 0, Text: " hi there"}},
	}
	path, err := fs.SaveDocument("stream-1", doc)
	require.NoError(t, err)
	assert.FileExists(t, path)

	turns := []transcript.AttributedTurn{
		{Speaker: "Alice", Text: "hi there", Start: 0, End: 1.5},
		{Speaker: float64(1), Text: "yo", Start: 1.5, End: 2},
	}
	_, err = fs.SaveTurns("stream-1", turns)
	require.NoError(t, err)

	loaded, err := fs.LoadTurns("stream-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Alice", loaded[0].Speaker)
	assert.Equal(t, "hi there", loaded[0].Text)
	// Unmapped ids come back as JSON numbers.
	assert.Equal(t, float64(1), loaded[1].Speaker)
}

func TestLoadTurnsMissing(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.LoadTurns("nope")
	require.Error(t, err)
}
