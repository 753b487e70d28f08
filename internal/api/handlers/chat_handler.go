package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/core"
	"docchat/internal/session"
)

type ChatHandler struct {
	registry *session.Registry
	log      *zap.Logger
}

func NewChatHandler(registry *session.Registry, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{registry: registry, log: log}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// Chat answers one question against a session's document. A question
// against a still-processing session fails immediately rather than waiting;
// a transient generation failure is returned for this request only and
// leaves the session Ready.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	sess, err := h.registry.Get(req.SessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	answer, err := sess.Answer(r.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSessionNotReady):
			writeError(w, http.StatusConflict, "document is still processing")
		default:
			h.log.Warn("chat failed",
				zap.String("session_id", req.SessionID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
