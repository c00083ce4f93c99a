package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/claritycouncil/council/internal/persona"
)

// ListPersonas handles GET /api/council/personas, returning the active
// catalog with any overrides applied.
func (h *Handler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{"personas": h.catalog.All()})
}

type definePersonasRequest struct {
	Overrides map[string]persona.Override `json:"overrides"`
}

// DefinePersonas handles POST /api/council/personas: validates the supplied
// overrides, persists them to the workspace, and applies them to the live
// catalog. The file watcher picks up external edits the same way.
func (h *Handler) DefinePersonas(w http.ResponseWriter, r *http.Request) {
	var req definePersonasRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, CodeValidation, "invalid request body", err.Error())
		return
	}
	if len(req.Overrides) == 0 {
		Error(w, http.StatusBadRequest, CodeValidation, "overrides must not be empty", nil)
		return
	}

	var problems []string
	for name, o := range req.Overrides {
		problems = append(problems, persona.ValidateOverride(name, o)...)
	}
	if len(problems) > 0 {
		Error(w, http.StatusBadRequest, CodeValidation, "invalid persona overrides", problems)
		return
	}

	file := &persona.OverridesFile{
		LastModified: time.Now().UTC(),
		Overrides:    req.Overrides,
	}
	if err := persona.SaveOverrides(h.workspaceDir, file); err != nil {
		slog.Error("Save persona overrides failed", "error", err)
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to save overrides", nil)
		return
	}
	h.catalog.SetOverrides(file)

	slog.Info("Persona overrides updated", "count", len(req.Overrides))
	JSON(w, http.StatusOK, map[string]any{"personas": h.catalog.All()})
}
