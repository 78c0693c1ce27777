// Package server exposes the reply generation service over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/ai"
	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/persona"
	"github.com/sagkhr23/linkdin-auto-reply/internal/utils"
)

const (
	// DefaultListen is the loopback address the extension side expects.
	DefaultListen = "127.0.0.1:8000"

	ReasonRecruiter = "recruiter_message"
	ReasonSkipped   = "non_recruiter_or_unclear"

	maxBodyBytes = 1 << 20
	maxLogLength = 200
)

// Server answers POST /generate_reply with a drafted reply.
type Server struct {
	generator ai.Generator
	persona   *persona.Persona
	logger    *zap.Logger
}

// New creates the service.
func New(generator ai.Generator, p *persona.Persona, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{generator: generator, persona: p, logger: logger}
}

// Handler returns the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+generation.Endpoint, s.handleGenerateReply)
	return withCORS(mux)
}

func (s *Server) handleGenerateReply(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Info("rejecting malformed request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	prompt := BuildPrompt(s.persona, req)
	s.logger.Debug("generating reply",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("message_preview", utils.TruncateForLog(req.Message, maxLogLength)),
	)

	text, err := s.generator.GenerateContent(r.Context(), prompt)
	if err != nil {
		s.logger.Warn("generation failed", zap.Error(err))
		status := http.StatusBadGateway
		if r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "generation failed")
		return
	}

	reply := strings.TrimSpace(text)
	reason := ReasonRecruiter
	if reply == generation.SkipSentinel {
		reason = ReasonSkipped
	}

	s.logger.Info("reply generated",
		zap.String("reason", reason),
		zap.Int("reply_length", utf8.RuneCountInString(reply)),
	)

	writeJSON(w, http.StatusOK, generation.Reply{Reply: reply, Reason: reason})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}
