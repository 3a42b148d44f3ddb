package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/transcript"
)

type Config struct {
	// Ingest
	ListenAddr   string
	SourceBuffer int

	// Audio
	SampleRate         int
	SpeechRMSThreshold float64

	// Merging
	Collar float64

	// Diarizer sidecar
	DiarizerURL string

	// Recognizer
	RecognizerURL     string
	WhisperModel      string
	RecognizerWorkers int

	// Output
	SpeakerMapping transcript.SpeakerMapping
	TempFilePath   string
	DataDir        string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file found, using environment variables only")
	}

	cfg := &Config{
		ListenAddr:   getEnvOrDefault("LISTEN_ADDR", ":8080"),
		SourceBuffer: getIntEnvOrDefault("SOURCE_BUFFER", 16),

		SampleRate:         getIntEnvOrDefault("SAMPLE_RATE", 16000),
		SpeechRMSThreshold: getFloatEnvOrDefault("SPEECH_RMS_THRESHOLD", 0),

		Collar: getFloatEnvOrDefault("COLLAR", 0.05),

		DiarizerURL: getEnvOrDefault("DIARIZER_URL", "http://localhost:8388"),

		RecognizerURL:     getEnvOrDefault("RECOGNIZER_URL", "http://localhost:8000"),
		WhisperModel:      getEnvOrDefault("WHISPER_MODEL", "large-v1"),
		RecognizerWorkers: getIntEnvOrDefault("RECOGNIZER_WORKERS", 2),

		TempFilePath: getEnvOrDefault("TEMP_FILE_PATH", "./temp/batches"),
		DataDir:      getEnvOrDefault("DATA_DIR", "./data"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	mapping, err := parseSpeakerMapping(os.Getenv("SPEAKER_MAPPING"))
	if err != nil {
		return nil, err
	}
	cfg.SpeakerMapping = mapping

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive")
	}
	if c.Collar < 0 {
		return fmt.Errorf("COLLAR must not be negative")
	}
	if c.SourceBuffer <= 0 {
		return fmt.Errorf("SOURCE_BUFFER must be positive")
	}
	if c.RecognizerWorkers <= 0 {
		return fmt.Errorf("RECOGNIZER_WORKERS must be positive")
	}
	return nil
}

// parseSpeakerMapping reads a "0=Alice,1=Bob" style mapping from speaker ids
// to display names.
func parseSpeakerMapping(value string) (transcript.SpeakerMapping, error) {
	mapping := make(transcript.SpeakerMapping)
	if value == "" {
		return mapping, nil
	}

	for _, pair := range strings.Split(value, ",") {
		key, name, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" {
			return nil, fmt.Errorf("SPEAKER_MAPPING entry %q must be id=name", pair)
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("SPEAKER_MAPPING entry %q has a non-numeric id", pair)
		}
		mapping[id] = name
	}
	return mapping, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
