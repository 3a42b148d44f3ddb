package pyannote

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

	"github.com/leonablue2016/real-speech-to-text/internal/annotation"
	"github.com/leonablue2016/real-speech-to-text/internal/source"
	"github.com/leonablue2016/real-speech-to-text/internal/store"
)

const (
	defaultBaseURL = "http://localhost:8388"
	defaultTimeout = 300 * time.Second
)

// Diarizer sends audio chunks to a pyannote HTTP sidecar and converts its
// segment list into a time annotation plus the aligned waveform feature.
type Diarizer struct {
	baseURL string
	client  *http.Client
}

func NewDiarizer(baseURL string, timeout time.Duration) *Diarizer {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Diarizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// IsAvailable checks whether the sidecar is reachable.
func (d *Diarizer) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Diarize uploads the chunk as a WAV file and returns its annotation, with
// segment times and the waveform window shifted by offset seconds.
func (d *Diarizer) Diarize(ctx context.Context, uri string, chunk source.Chunk, offset float64) (*annotation.TimeAnnotation, annotation.WaveformFeature, error) {
	audio, err := store.EncodeWAV(chunk.Samples, chunk.SampleRate)
	if err != nil {
		return nil, annotation.WaveformFeature{}, fmt.Errorf("failed to encode chunk: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", "chunk.wav")
	if err != nil {
		return nil, annotation.WaveformFeature{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, annotation.WaveformFeature{}, fmt.Errorf("failed to write audio data: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/diarize", &buf)
	if err != nil {
		return nil, annotation.WaveformFeature{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, annotation.WaveformFeature{}, fmt.Errorf("diarization request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Warn().
			Int("status_code", resp.StatusCode).
			Str("response_body", string(body)).
			Msg("Diarization sidecar error response")
		return nil, annotation.WaveformFeature{}, fmt.Errorf("diarization error %d: %s", resp.StatusCode, string(body))
	}

	var result diarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, annotation.WaveformFeature{}, fmt.Errorf("failed to decode diarization response: %w", err)
	}

	ann := annotation.NewTimeAnnotation(uri)
	for _, segment := range result.Segments {
		ann.Add(segment.Speaker, annotation.Interval{
			Start: segment.Start + offset,
			End:   segment.End + offset,
		})
	}

	log.Debug().
		Str("uri", uri).
		Str("chunk_id", chunk.ID.String()).
		Int("segments", len(result.Segments)).
		Float64("offset", offset).
		Msg("Diarized chunk")

	return ann, chunkWaveform(chunk, offset), nil
}

func (d *Diarizer) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// chunkWaveform wraps the chunk's samples as a mono (frames, 1) feature whose
// sliding window maps each row to one sample period starting at offset.
func chunkWaveform(chunk source.Chunk, offset float64) annotation.WaveformFeature {
	data := make([][]float32, len(chunk.Samples))
	for i, sample := range chunk.Samples {
		data[i] = []float32{sample}
	}
	period := 1.0 / float64(chunk.SampleRate)
	return annotation.WaveformFeature{
		Data: data,
		Window: annotation.SlidingWindow{
			Duration: period,
			Step:     period,
			Start:    offset,
		},
	}
}

type diarizeResponse struct {
	Segments []diarizeSegment `json:"segments"`
}

type diarizeSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}
