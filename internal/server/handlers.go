package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gridsphere/kesan/apimodels"
)

const internalErrorMessage = "An internal error occurred while processing your question."

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	// Availability is checked before the payload: a degraded service
	// answers 503 no matter what the caller sent.
	if s.agent == nil {
		writeError(w, http.StatusServiceUnavailable, "AI agent is not available.")
		return
	}

	var req apimodels.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	defer r.Body.Close()

	if err := s.validate.Struct(req); err != nil {
		slog.Debug("rejected ask request", "error", err)
		writeError(w, http.StatusBadRequest, "Both question and deviceId are required.")
		return
	}

	answer, err := s.agent.Ask(r.Context(), *req.DeviceID, req.Question)
	if err != nil {
		slog.Error("ask request failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, apimodels.AskResponse{Answer: answer})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apimodels.ErrorResponse{Error: message})
}
