package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"loan-qualifier/domain"
	"loan-qualifier/service"
)

const (
	maxBodyBytes = 1 << 20

	defaultDecisionsLimit = 20
	maxDecisionsLimit     = 100
)

type QualificationHandler struct {
	service *service.QualificationService
	logger  *slog.Logger
}

func NewQualificationHandler(service *service.QualificationService, logger *slog.Logger) *QualificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QualificationHandler{service: service, logger: logger}
}

// Qualify handles POST /api/qualify.
func (h *QualificationHandler) Qualify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Un cuerpo vacío se trata como {}
	var raw domain.RawApplication
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			h.logger.Debug("error decoding request body", "error", err)
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.service.Qualify(raw)
	if err != nil {
		reqID := middleware.GetReqID(r.Context())
		switch {
		case domain.IsValidationError(err):
			h.logger.Info("application rejected", "request_id", reqID, "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
		case domain.IsScoringError(err):
			h.logger.Error("scoring failed", "request_id", reqID, "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("qualification failed", "request_id", reqID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Metadata handles GET /api/metadata.
func (h *QualificationHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Metadata())
}

// RecentDecisions handles GET /api/decisions/recent?limit=N.
func (h *QualificationHandler) RecentDecisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultDecisionsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxDecisionsLimit)
	}

	list, err := h.service.RecentDecisions(limit)
	if err != nil {
		h.logger.Error("error listing decisions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"decisions": list})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
