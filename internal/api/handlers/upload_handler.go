package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"docchat/internal/core"
	"docchat/internal/ingest"
	"docchat/internal/session"
)

var pdfMagic = []byte("%PDF-")

type UploadHandler struct {
	store    core.ObjectStore
	registry *session.Registry
	ingestor *ingest.Ingestor
	log      *zap.Logger
}

func NewUploadHandler(store core.ObjectStore, registry *session.Registry, ingestor *ingest.Ingestor, log *zap.Logger) *UploadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadHandler{store: store, registry: registry, ingestor: ingestor, log: log}
}

// Upload accepts a PDF, stores it, creates a session and schedules
// background processing. The response returns immediately with status
// "processing". Rejections happen before any session exists, so an invalid
// payload never leaves an orphan session behind.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusUnsupportedMediaType, "only PDF files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read file: %v", err))
		return
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		writeError(w, http.StatusUnsupportedMediaType, "file is not a PDF")
		return
	}

	key := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), filepath.Base(header.Filename))
	if _, err := h.store.Put(r.Context(), key, data, "application/pdf"); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}

	sess := h.registry.Create()
	h.ingestor.Enqueue(ingest.Job{SessionID: sess.ID, Key: key})
	h.log.Info("upload accepted",
		zap.String("session_id", sess.ID), zap.String("file", header.Filename))

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"status":     string(session.StateProcessing),
	})
}
