package transcript

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExtractSpeakerID reads the trailing two characters of a diarization label
// such as "SPEAKER_07" as a base-10 speaker id. Malformed or too-short labels
// yield -1 with a logged warning; this is a recoverable fallback, never fatal.
func ExtractSpeakerID(label string) int {
	if len(label) < 2 {
		log.Warn().
			Str("label", label).
			Msg("Couldn't extract speaker id from label")
		return -1
	}

	id, err := strconv.Atoi(label[len(label)-2:])
	if err != nil {
		log.Warn().
			Str("label", label).
			Err(err).
			Msg("Couldn't extract speaker id from label")
		return -1
	}
	return id
}

// Turns resolves speaker ids to display names, preserving input order. Ids
// without a mapping pass through unchanged as integers.
func (m SpeakerMapping) Turns(turns []SpeakerTurn) []AttributedTurn {
	out := make([]AttributedTurn, 0, len(turns))
	for _, turn := range turns {
		var speaker any = turn.Speaker
		if name, ok := m[turn.Speaker]; ok {
			speaker = name
		}
		out = append(out, AttributedTurn{
			Speaker: speaker,
			Text:    turn.Text,
			Start:   turn.Start,
			End:     turn.End,
		})
	}
	return out
}

// FormatDocument assembles recognizer output into the canonical transcript
// document. Text is the ordered concatenation of every segment's text with no
// separator inserted; segment texts already carry their own whitespace.
func FormatDocument(segments []RecognizedSegment, info Info) Document {
	var text strings.Builder
	out := make([]RecognizedSegment, len(segments))
	for i, segment := range segments {
		text.WriteString(segment.Text)
		out[i] = segment
		out[i].Words = make([]Word, len(segment.Words))
		for j, word := range segment.Words {
			out[i].Words[j] = word
			// Recognizer words carry no token ids; serialize an explicit null.
			out[i].Words[j].Tokens = nil
		}
	}
	return Document{
		Language: info.Language,
		Text:     text.String(),
		Segments: out,
	}
}

// NormalizeModelSizeName maps a human-entered model-size token such as
// "large-v1" to its enum-style key, "LARGE_V1".
func NormalizeModelSizeName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
