package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/leonablue2016/real-speech-to-text/internal/config"
	"github.com/leonablue2016/real-speech-to-text/internal/diarize"
	"github.com/leonablue2016/real-speech-to-text/internal/session"
	"github.com/leonablue2016/real-speech-to-text/internal/source"
	"github.com/leonablue2016/real-speech-to-text/internal/store"
	"github.com/leonablue2016/real-speech-to-text/internal/stt"
)

// resultTimeout bounds how long a stream waits for its final transcription
// after the client disconnects.
const resultTimeout = 5 * time.Minute

// Server accepts websocket audio streams, runs each through a diarization
// pipeline, and replies with the speaker-attributed transcript when the
// stream ends.
type Server struct {
	cfg      *config.Config
	diarizer diarize.Diarizer
	pool     *stt.RecognizerPool
	archive  *store.FileStore
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	gate     source.RMSGate

	// Per-stream channels the result dispatcher delivers into.
	pending map[string]chan stt.Result
	mutex   sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg *config.Config, diarizer diarize.Diarizer, recognizer stt.Recognizer) (*Server, error) {
	archive, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:      cfg,
		diarizer: diarizer,
		archive:  archive,
		pool:     stt.NewRecognizerPool(recognizer, cfg.RecognizerWorkers),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		gate:    source.RMSGate{Threshold: cfg.SpeechRMSThreshold},
		pending: make(map[string]chan stt.Result),
		ctx:     ctx,
		cancel:  cancel,
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ws/{stream}", s.handleStream)
	router.HandleFunc("/ws", s.handleStream)

	s.httpSrv = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	return s, nil
}

func (s *Server) Start() error {
	if err := s.pool.Start(s.ctx); err != nil {
		return fmt.Errorf("failed to start recognizer pool: %w", err)
	}
	go s.dispatchResults()

	go func() {
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("Ingest server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Ingest server failed")
		}
	}()
	return nil
}

func (s *Server) Stop() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down ingest server: %w", err)
	}

	s.pool.Stop()
	log.Info().Msg("Ingest server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// dispatchResults routes finished transcriptions from the shared pool back to
// the stream that queued them.
func (s *Server) dispatchResults() {
	for result := range s.pool.Results() {
		s.mutex.Lock()
		ch, ok := s.pending[result.URI]
		s.mutex.Unlock()

		if !ok {
			log.Warn().Str("uri", result.URI).Msg("Dropping result for unknown stream")
			continue
		}
		ch <- result
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	uri := mux.Vars(r)["stream"]
	if uri == "" {
		uri = uuid.New().String()
	}

	// A stream identity may be active on one connection at a time; a second
	// registration would shadow the first's result channel.
	resultChan := make(chan stt.Result, 1)
	s.mutex.Lock()
	if _, exists := s.pending[uri]; exists {
		s.mutex.Unlock()
		log.Warn().Str("uri", uri).Str("remote", r.RemoteAddr).Msg("Rejected duplicate stream id")
		http.Error(w, "stream id already active", http.StatusConflict)
		return
	}
	s.pending[uri] = resultChan
	s.mutex.Unlock()
	defer func() {
		s.mutex.Lock()
		delete(s.pending, uri)
		s.mutex.Unlock()
	}()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("uri", uri).Str("remote", r.RemoteAddr).Msg("Stream connected")

	src := source.NewPushSource(uri, s.cfg.SampleRate, s.cfg.SourceBuffer)
	pipeline := session.NewPipeline(src, s.diarizer, s.cfg.SpeakerMapping, s.cfg.Collar, s.cfg.TempFilePath)
	defer pipeline.Cleanup()

	runDone := make(chan struct{})
	go func() {
		pipeline.Run(s.ctx)
		close(runDone)
	}()

	s.readFrames(conn, src)
	src.Close()
	<-runDone

	batch, err := pipeline.Finalize()
	if err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("Nothing to transcribe for stream")
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	if err := s.pool.Process(batch); err != nil {
		log.Error().Err(err).Str("uri", uri).Msg("Failed to queue batch for recognition")
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	select {
	case result := <-resultChan:
		outcome := pipeline.Complete(result.Document)
		s.archiveOutcome(uri, outcome)
		if err := conn.WriteJSON(outcome); err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("Failed to send transcript to client")
		}
	case <-time.After(resultTimeout):
		log.Error().Str("uri", uri).Msg("Timed out waiting for transcription result")
		_ = conn.WriteJSON(map[string]string{"error": "transcription timed out"})
	case <-s.ctx.Done():
	}
}

// archiveOutcome persists the finished transcript. Archival failures are
// boundary I/O: logged as warnings, never surfaced to the client.
func (s *Server) archiveOutcome(uri string, outcome session.Outcome) {
	if _, err := s.archive.SaveDocument(uri, outcome.Document); err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("Failed to archive transcript document")
	}
	if _, err := s.archive.SaveTurns(uri, outcome.Turns); err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("Failed to archive speaker turns")
	}
}

// readFrames pushes binary PCM frames from the websocket into the source
// until the client sends a "stop" text message or disconnects. Frames the
// speech gate rejects are skipped.
func (s *Server) readFrames(conn *websocket.Conn, src *source.PushSource) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("uri", src.URI()).Msg("Stream read error")
			}
			return
		}
		if msgType == websocket.TextMessage && string(data) == "stop" {
			log.Debug().Str("uri", src.URI()).Msg("Client ended stream")
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		samples := source.DecodePCM16(data)
		if len(samples) == 0 {
			continue
		}
		if s.gate.Threshold > 0 && !s.gate.IsSpeech(samples) {
			log.Debug().Str("uri", src.URI()).Msg("Speech gate rejected silent frame")
			continue
		}
		src.Push(samples)
	}
}
