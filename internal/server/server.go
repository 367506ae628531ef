// Package server exposes the assistant over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"home-ai/internal/application"
	"home-ai/internal/device"
	"home-ai/internal/tools"
)

type Server struct {
	addr       string
	assistant  *application.Assistant
	registry   *device.Registry
	dispatcher *tools.Dispatcher
	store      application.RequestStore
	logger     *slog.Logger
	limiter    *rateLimiter
	httpServer *http.Server
}

func New(
	addr string,
	assistant *application.Assistant,
	registry *device.Registry,
	dispatcher *tools.Dispatcher,
	store application.RequestStore,
	logger *slog.Logger,
) *Server {
	s := &Server{
		addr:       addr,
		assistant:  assistant,
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
		limiter:    newRateLimiter(30, time.Minute),
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.buildRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// Health stays outside the rate limit so probes never get throttled.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Post("/api/chat", s.handleChat)
		r.Get("/api/devices", s.handleDeviceStates)
		r.Post("/api/devices/{type}", s.handleDeviceCommand)
		r.Get("/api/requests", s.handleRecentRequests)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type chatRequest struct {
	Text  string `json:"text,omitempty"`
	Audio string `json:"audio,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

type chatResponse struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
	Audio     string `json:"audio,omitempty"`
	Commands  any    `json:"commands_executed"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input, err := toChatInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.assistant.Handle(r.Context(), input)
	if err != nil {
		s.writeAssistantError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toChatResponse(reply))
}

func toChatInput(req chatRequest) (application.ChatInput, error) {
	input := application.ChatInput{Text: req.Text, Mode: req.Mode}
	if req.Audio != "" {
		audio, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			return application.ChatInput{}, fmt.Errorf("invalid base64 audio: %w", err)
		}
		input.Audio = audio
		if input.Mode == "" {
			input.Mode = application.ModeAudio
		}
	}
	return input, nil
}

func toChatResponse(reply *application.ChatReply) chatResponse {
	resp := chatResponse{
		RequestID: reply.RequestID,
		Text:      reply.Text,
		Commands:  reply.Commands,
	}
	if len(reply.Audio) > 0 {
		resp.Audio = base64.StdEncoding.EncodeToString(reply.Audio)
	}
	return resp
}

func (s *Server) writeAssistantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrMissingInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request cancelled")
	default:
		// Provider failures and exhausted conversations both read as a bad
		// upstream from the caller's point of view.
		s.logger.Error("chat failed",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handleDeviceStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.States())
}

// handleDeviceCommand dispatches one device command directly, bypassing the
// model. The body carries the same argument map a tool call would.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	deviceType := chi.URLParam(r, "type")

	var args map[string]any
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		if !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		args = map[string]any{}
	}

	toolName := "control_" + deviceType
	if deviceType == "status" {
		toolName = tools.StatusToolName
	}

	envelope := s.dispatcher.Dispatch(toolName, args)
	status := http.StatusOK
	if !envelope.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, envelope)
}

func (s *Server) handleRecentRequests(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	records, err := s.store.RecentRequests(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing requests", "error", err)
		writeError(w, http.StatusInternalServerError, "listing requests failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
