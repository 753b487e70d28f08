package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docchat/internal/session"
)

type StatusHandler struct {
	registry *session.Registry
}

func NewStatusHandler(registry *session.Registry) *StatusHandler {
	return &StatusHandler{registry: registry}
}

type statusResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Status reports processing|ready|error for a session. Sessions are
// registered synchronously at upload time, so an unknown id can only be one
// that never existed.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	sess, err := h.registry.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	state := sess.State()
	resp := statusResponse{SessionID: sess.ID, Status: string(state)}
	if state == session.StateError {
		resp.Error = sess.ErrMessage()
	}
	writeJSON(w, http.StatusOK, resp)
}
