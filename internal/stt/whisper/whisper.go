package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/store"
	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 300 * time.Second

	// DefaultSampleRate is what whisper models expect; streams at another
	// rate must declare it so the uploaded WAV is labeled correctly.
	DefaultSampleRate = 16000
)

// Recognizer transcribes audio through a whisper-server HTTP endpoint
// exposing the OpenAI-compatible verbose_json transcription API.
type Recognizer struct {
	baseURL    string
	model      string
	modelSize  string
	sampleRate int
	client     *http.Client
}

func NewRecognizer(baseURL, model string, sampleRate int, timeout time.Duration) *Recognizer {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Recognizer{
		baseURL:    baseURL,
		model:      model,
		modelSize:  transcript.NormalizeModelSizeName(model),
		sampleRate: sampleRate,
		client:     &http.Client{Timeout: timeout},
	}
}

func (r *Recognizer) Transcribe(ctx context.Context, samples []float32) ([]transcript.RecognizedSegment, transcript.Info, error) {
	if len(samples) == 0 {
		return nil, transcript.Info{}, nil
	}

	audio, err := store.EncodeWAV(samples, r.sampleRate)
	if err != nil {
		return nil, transcript.Info{}, fmt.Errorf("failed to encode batch: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "batch.wav")
	if err != nil {
		return nil, transcript.Info{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, transcript.Info{}, fmt.Errorf("failed to write audio data: %w", err)
	}
	_ = writer.WriteField("model", r.model)
	_ = writer.WriteField("response_format", "verbose_json")
	_ = writer.WriteField("timestamp_granularities[]", "word")
	writer.Close()

	url := r.baseURL + "/v1/audio/transcriptions"

	log.Debug().
		Str("url", url).
		Str("model", r.model).
		Str("model_size", r.modelSize).
		Int("samples", len(samples)).
		Msg("Making whisper-server request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, transcript.Info{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, transcript.Info{}, fmt.Errorf("whisper-server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transcript.Info{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Int("status_code", resp.StatusCode).
			Str("response_body", string(body)).
			Msg("whisper-server error response")
		return nil, transcript.Info{}, fmt.Errorf("whisper-server error %d: %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, transcript.Info{}, fmt.Errorf("failed to decode response: %w", err)
	}

	segments := make([]transcript.RecognizedSegment, len(result.Segments))
	for i, seg := range result.Segments {
		words := make([]transcript.Word, len(seg.Words))
		for j, word := range seg.Words {
			words[j] = transcript.Word{
				Word:        word.Word,
				Start:       word.Start,
				End:         word.End,
				Probability: word.Probability,
			}
		}
		segments[i] = transcript.RecognizedSegment{
			Seek:             seg.Seek,
			Start:            seg.Start,
			End:              seg.End,
			Text:             seg.Text,
			Tokens:           seg.Tokens,
			Temperature:      seg.Temperature,
			AvgLogprob:       seg.AvgLogprob,
			CompressionRatio: seg.CompressionRatio,
			NoSpeechProb:     seg.NoSpeechProb,
			ID:               seg.ID,
			Words:            words,
		}
	}

	log.Debug().
		Str("language", result.Language).
		Int("segments", len(segments)).
		Msg("whisper-server transcription completed")

	return segments, transcript.Info{Language: result.Language}, nil
}

func (r *Recognizer) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// --- whisper-server API types ---

type whisperResponse struct {
	Language string           `json:"language"`
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID               int           `json:"id"`
	Seek             int           `json:"seek"`
	Start            float64       `json:"start"`
	End              float64       `json:"end"`
	Text             string        `json:"text"`
	Tokens           []int         `json:"tokens"`
	Temperature      float64       `json:"temperature"`
	AvgLogprob       float64       `json:"avg_logprob"`
	CompressionRatio float64       `json:"compression_ratio"`
	NoSpeechProb     float64       `json:"no_speech_prob"`
	Words            []whisperWord `json:"words"`
}

type whisperWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}
