package daemon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reelchain/internal/logging"
	"reelchain/internal/puzzle"
	"reelchain/internal/services"
)

type handlers struct {
	svc    PuzzleService
	logger *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Generate(r.Context())
	if err != nil {
		if ext, ok := services.AsExternal(err); ok && ext.ErrorKind() == services.KindExternalService {
			h.writeError(w, http.StatusBadGateway, ext.Message)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Unable to generate puzzle")
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.List(r.Context())
	if err != nil {
		h.logFailure(r, "list puzzles failed", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to list puzzles")
		return
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *handlers) latest(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Latest(r.Context())
	if err != nil {
		h.logFailure(r, "load latest puzzle failed", err)
		if errors.Is(err, puzzle.ErrInvalidPuzzle) {
			h.writeError(w, http.StatusInternalServerError, "Stored puzzle is invalid")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Unable to load latest puzzle")
		return
	}
	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid puzzle id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, p)
	case errors.Is(err, services.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Puzzle not found")
	case errors.Is(err, services.ErrValidation):
		h.writeError(w, http.StatusBadRequest, "Invalid puzzle id")
	case errors.Is(err, puzzle.ErrInvalidPuzzle):
		h.logFailure(r, "stored puzzle is invalid", err)
		h.writeError(w, http.StatusInternalServerError, "Stored puzzle is invalid")
	default:
		h.logFailure(r, "load puzzle failed", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load puzzle")
	}
}

func (h *handlers) logFailure(r *http.Request, msg string, err error) {
	logging.ErrorWithContext(logging.WithContext(r.Context(), h.logger), msg, "api_request_failed",
		logging.Error(err),
		logging.String("path", r.URL.Path),
	)
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (h *handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}
