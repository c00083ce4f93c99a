// Package api provides HTTP handlers for the council API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claritycouncil/council/internal/council"
	"github.com/claritycouncil/council/internal/persona"
	"github.com/claritycouncil/council/internal/store"
)

// Error codes returned in the error envelope.
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal"
)

// Handler provides common handler utilities.
type Handler struct {
	ctrl         *council.Controller
	mgr          *council.SessionManager
	catalog      *persona.Catalog
	archive      *store.SQLiteStore
	workspaceDir string
}

// NewHandler creates a new Handler with common dependencies. The archive may
// be nil when durable session storage is disabled.
func NewHandler(ctrl *council.Controller, mgr *council.SessionManager, catalog *persona.Catalog, archive *store.SQLiteStore, workspaceDir string) *Handler {
	return &Handler{
		ctrl:         ctrl,
		mgr:          mgr,
		catalog:      catalog,
		archive:      archive,
		workspaceDir: workspaceDir,
	}
}

// Routes registers all council API routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/council/discuss", h.Discuss)
		r.Post("/council/consult", h.ConsultCouncil)
		r.Post("/persona/consult", h.ConsultPersona)
		r.Get("/council/personas", h.ListPersonas)
		r.Post("/council/personas", h.DefinePersonas)
		r.Get("/council/sessions", h.ListSessions)
		r.Get("/council/sessions/{sessionID}", h.GetSession)
		r.Delete("/council/sessions/{sessionID}", h.DeleteSession)
	})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": {"code": "internal", "message": "failed to encode response"}}`, http.StatusInternalServerError)
	}
}

// Error writes a structured JSON error response.
func Error(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]errorBody{"error": {Code: code, Message: message, Details: details}})
}

// decode reads the request body into v, rejecting unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
