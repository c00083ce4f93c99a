package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claritycouncil/council/internal/council"
	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/store"
)

// Discuss handles POST /api/council/discuss, the stateful consultation
// entry point. Completed sessions are copied to the archive when one is
// configured.
func (h *Handler) Discuss(w http.ResponseWriter, r *http.Request) {
	var req council.DiscussRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, CodeValidation, "invalid request body", err.Error())
		return
	}

	resp, err := h.ctrl.Discuss(r.Context(), req)
	if err != nil {
		var verr *council.ValidationError
		if errors.As(err, &verr) {
			Error(w, http.StatusBadRequest, CodeValidation, verr.Msg, nil)
			return
		}
		slog.Error("Discuss failed", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to advance session", nil)
		return
	}

	if h.archive != nil && resp.Status == domain.StatusCompleted {
		if _, err := h.archive.Save(r.Context(), resp.CurrentState); err != nil {
			// Archiving is best effort; the live session already holds
			// the authoritative state.
			slog.Error("Archive session failed", "session_id", resp.SessionID, "error", err)
		}
	}

	JSON(w, http.StatusOK, resp)
}

// GetSession handles GET /api/council/sessions/{sessionID}. The live store
// is checked before the archive.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.mgr.GetSession(r.Context(), sessionID)
	if err != nil {
		slog.Error("Get session failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to load session", nil)
		return
	}
	if session == nil && h.archive != nil {
		session, err = h.archive.Get(r.Context(), sessionID)
		if err != nil && err != store.ErrNotFound {
			slog.Error("Get archived session failed", "session_id", sessionID, "error", err)
			Error(w, http.StatusInternalServerError, CodeInternal, "failed to load session", nil)
			return
		}
	}
	if session == nil {
		Error(w, http.StatusNotFound, CodeNotFound, "session not found", nil)
		return
	}

	JSON(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /api/council/sessions/{sessionID}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.mgr.DeleteSession(r.Context(), sessionID); err != nil {
		if err == store.ErrNotFound {
			Error(w, http.StatusNotFound, CodeNotFound, "session not found", nil)
			return
		}
		slog.Error("Delete session failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to delete session", nil)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"sessionId": sessionID, "status": "deleted"})
}

// ListSessions handles GET /api/council/sessions, listing archived sessions
// filtered by status (default completed).
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		JSON(w, http.StatusOK, map[string]any{"sessions": []any{}})
		return
	}

	status := domain.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.StatusCompleted
	}
	if !status.Valid() {
		Error(w, http.StatusBadRequest, CodeValidation, "unknown status filter", string(status))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, CodeValidation, "limit must be a positive integer", raw)
			return
		}
		limit = n
	}

	sessions, err := h.archive.ListByStatus(r.Context(), status, limit)
	if err != nil {
		slog.Error("List sessions failed", "status", status, "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to list sessions", nil)
		return
	}

	JSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}
