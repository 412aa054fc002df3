// Package server exposes the voice assistant over HTTP. One endpoint does
// the work: POST /api/chat accepts a recorded utterance and answers with
// synthesized speech. Health and metrics endpoints ride along.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tailored-agentic-units/voicedesk/fault"
	"github.com/tailored-agentic-units/voicedesk/kernel"
	"go.uber.org/zap"
)

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 25 << 20

// Headers returned alongside the audio reply.
const (
	HeaderSessionID     = "X-Session-ID"
	HeaderTranscription = "X-Transcription"
)

// Handler is the request pipeline behind the chat endpoint. *kernel.Kernel
// satisfies it.
type Handler interface {
	HandleRequest(ctx context.Context, rawAudio []byte, sessionID string) (*kernel.Reply, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer sets the metrics registry served at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// Server routes HTTP traffic to the kernel.
type Server struct {
	handler  Handler
	logger   *zap.Logger
	gatherer prometheus.Gatherer
}

// New creates a Server around the given request handler.
func New(handler Handler, opts ...Option) *Server {
	s := &Server{
		handler:  handler,
		logger:   zap.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the server's HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, fault.Wrap(fault.KindInput, fault.CodeDecodeError, "request is not valid multipart form data", err))
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, fault.New(fault.KindInput, fault.CodeEmptyAudio, "request is missing the audio file field"))
		return
	}
	defer file.Close()

	rawAudio, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, fault.Wrap(fault.KindInput, fault.CodeDecodeError, "could not read uploaded audio", err))
		return
	}

	sessionID := r.FormValue("session_id")

	reply, err := s.handler.HandleRequest(r.Context(), rawAudio, sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set(HeaderSessionID, reply.SessionID)
	w.Header().Set(HeaderTranscription, headerSafe(reply.Transcript))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(reply.Audio); err != nil {
		s.logger.Warn("failed to write audio reply",
			zap.String("session_id", reply.SessionID),
			zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// errorBody is the JSON envelope for failed requests.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("code", fault.CodeOf(err)), zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.String("code", fault.CodeOf(err)), zap.Error(err))
	}

	var body errorBody
	body.Error.Code = fault.CodeOf(err)
	body.Error.Message = fault.MessageOf(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps the fault taxonomy to HTTP status codes. Callers' mistakes
// are 400s, upstream trouble is 502 or 504, everything else is 500.
func statusFor(err error) int {
	switch fault.KindOf(err) {
	case fault.KindInput:
		return http.StatusBadRequest
	case fault.KindAdapter:
		return http.StatusBadGateway
	case fault.KindProvider:
		if fault.CodeOf(err) == fault.CodeProviderTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// headerSafe folds the transcript onto one line so it can travel in a
// response header.
func headerSafe(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.ReplaceAll(text, "\n", " ")
}
