package transcript

// Word is a single recognized word with timing and confidence. The recognizer
// does not emit token ids at word granularity, so Tokens always serializes as
// null.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
	Tokens      []int   `json:"tokens"`
}

// RecognizedSegment is one transcription unit as produced by the recognizer.
type RecognizedSegment struct {
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	ID               int     `json:"id"`
	Words            []Word  `json:"words"`
}

// Info carries recognizer metadata for a transcription run.
type Info struct {
	Language string `json:"language"`
}

// Document is the canonical transcript representation: the detected language,
// the full text, and every segment with word-level detail.
type Document struct {
	Language string              `json:"language"`
	Text     string              `json:"text"`
	Segments []RecognizedSegment `json:"segments"`
}

// SpeakerTurn is one contiguous attributed utterance by a single speaker.
type SpeakerTurn struct {
	Speaker int     `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// AttributedTurn is a SpeakerTurn with the speaker id resolved to a display
// name where a mapping exists. Speaker is either a string (mapped) or the raw
// int id (unmapped).
type AttributedTurn struct {
	Speaker any     `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// SpeakerMapping maps integer speaker ids to human-readable display names.
type SpeakerMapping map[int]string
