package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/config"
	"github.com/leonablue2016/real-speech-to-text/internal/diarize/pyannote"
	"github.com/leonablue2016/real-speech-to-text/internal/server"
	"github.com/leonablue2016/real-speech-to-text/internal/stt/whisper"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logging
	setupLogging(cfg.LogLevel)

	log.Info().Msg("Starting real-speech-to-text ingest service")

	diarizer := pyannote.NewDiarizer(cfg.DiarizerURL, 0)
	recognizer := whisper.NewRecognizer(cfg.RecognizerURL, cfg.WhisperModel, cfg.SampleRate, 0)

	srv, err := server.New(cfg, diarizer, recognizer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	// Wait for shutdown signal
	log.Info().Msg("Service is running. Press Ctrl+C to exit.")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("Shutting down...")

	done := make(chan error, 1)
	go func() {
		done <- srv.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("Error during shutdown")
		} else {
			log.Info().Msg("Service stopped gracefully")
		}
	case <-time.After(30 * time.Second):
		log.Warn().Msg("Shutdown timeout exceeded, forcing exit")
	}

	_ = diarizer.Close()
	_ = recognizer.Close()
}

func setupLogging(level string) {
	// Setup zerolog
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	// Set log level
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Str("level", level).Msg("Logging configured")
}
