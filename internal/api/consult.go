package api

import (
	"log/slog"
	"net/http"

	"github.com/claritycouncil/council/internal/council"
	"github.com/claritycouncil/council/internal/persona"
)

type consultRequest struct {
	UserProblem    string   `json:"userProblem"`
	Context        string   `json:"context,omitempty"`
	DesiredOutcome string   `json:"desiredOutcome,omitempty"`
	Constraints    []string `json:"constraints,omitempty"`
	Depth          string   `json:"depth,omitempty"`
	Personas       []string `json:"personas,omitempty"`
}

type consultResponse struct {
	Personas        []string           `json:"personas"`
	SelectionReason string             `json:"selectionReason"`
	Responses       []persona.Response `json:"responses"`
	Synthesis       persona.Synthesis  `json:"synthesis"`
	Markdown        string             `json:"markdown"`
}

func (h *Handler) consultInput(req consultRequest) (persona.ConsultInput, string, bool) {
	if req.UserProblem == "" {
		return persona.ConsultInput{}, "userProblem is required", false
	}
	depth := persona.Depth(req.Depth)
	if depth == "" {
		depth = persona.DepthStandard
	}
	if !persona.ValidDepth(depth) {
		return persona.ConsultInput{}, "depth must be one of brief, standard, deep", false
	}
	return persona.ConsultInput{
		UserProblem:    req.UserProblem,
		Context:        req.Context,
		DesiredOutcome: req.DesiredOutcome,
		Constraints:    req.Constraints,
		Depth:          depth,
	}, "", true
}

// ConsultCouncil handles POST /api/council/consult: a stateless one-shot
// consultation across a persona set, with synthesis and a markdown report.
func (h *Handler) ConsultCouncil(w http.ResponseWriter, r *http.Request) {
	var req consultRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, CodeValidation, "invalid request body", err.Error())
		return
	}

	input, msg, ok := h.consultInput(req)
	if !ok {
		Error(w, http.StatusBadRequest, CodeValidation, msg, nil)
		return
	}

	selection := council.SelectPersonas(req.UserProblem, req.Personas)
	var contracts []persona.Contract
	for _, name := range selection.Selected {
		if c := h.catalog.Lookup(name); c != nil {
			contracts = append(contracts, *c)
		}
	}
	if len(contracts) == 0 {
		Error(w, http.StatusBadRequest, CodeValidation, "no known personas selected", req.Personas)
		return
	}

	responses := make([]persona.Response, len(contracts))
	for i, c := range contracts {
		responses[i] = persona.FormatDraft(persona.GenerateDraft(c, input))
	}
	synthesis := persona.BuildSynthesis(responses, input.Depth, input)

	names := make([]string, len(contracts))
	for i, c := range contracts {
		names[i] = c.Name
	}
	slog.Info("Council consulted", "personas", len(names), "depth", input.Depth)

	JSON(w, http.StatusOK, consultResponse{
		Personas:        names,
		SelectionReason: selection.Reason,
		Responses:       responses,
		Synthesis:       synthesis,
		Markdown:        persona.MarkdownReport(responses, synthesis, input.UserProblem),
	})
}

type personaConsultRequest struct {
	Persona        string   `json:"persona"`
	UserProblem    string   `json:"userProblem"`
	Context        string   `json:"context,omitempty"`
	DesiredOutcome string   `json:"desiredOutcome,omitempty"`
	Constraints    []string `json:"constraints,omitempty"`
	Depth          string   `json:"depth,omitempty"`
}

// ConsultPersona handles POST /api/persona/consult: a one-shot consultation
// with a single named persona.
func (h *Handler) ConsultPersona(w http.ResponseWriter, r *http.Request) {
	var req personaConsultRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, CodeValidation, "invalid request body", err.Error())
		return
	}
	if req.Persona == "" {
		Error(w, http.StatusBadRequest, CodeValidation, "persona is required", nil)
		return
	}

	input, msg, ok := h.consultInput(consultRequest{
		UserProblem:    req.UserProblem,
		Context:        req.Context,
		DesiredOutcome: req.DesiredOutcome,
		Constraints:    req.Constraints,
		Depth:          req.Depth,
	})
	if !ok {
		Error(w, http.StatusBadRequest, CodeValidation, msg, nil)
		return
	}

	contract := h.catalog.Lookup(req.Persona)
	if contract == nil {
		Error(w, http.StatusNotFound, CodeNotFound, "unknown persona", req.Persona)
		return
	}

	JSON(w, http.StatusOK, persona.FormatDraft(persona.GenerateDraft(*contract, input)))
}
