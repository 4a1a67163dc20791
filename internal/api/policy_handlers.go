package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/felixzheng98/cedarlink/internal/api/presenter"
	"github.com/felixzheng98/cedarlink/internal/service"
)

type ParsePayload struct {
	// Src is the raw policy text.
	Src string `json:"src"`

	// Template selects template mode. Static mode rejects any slot.
	Template bool `json:"template"`

	// ID is optional, an id is generated when empty.
	ID string `json:"id"`

	// Publish stores the parsed policy in the registry.
	Publish bool `json:"publish"`
}

type PolicyResponse struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Kind       string `json:"kind"`
	TemplateID string `json:"template_id,omitempty"`
}

// handleParse processes parse requests in static or template mode.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload ParsePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode parse request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := s.policyService.Parse(ctx, service.ParseRequest{
		Src:      payload.Src,
		Template: payload.Template,
		ID:       payload.ID,
		Publish:  payload.Publish,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("parse failed")
		presenter.Err(w, r, err, "parse failed")
		return
	}

	presenter.JSON(w, r, PolicyResponse{
		ID:     result.Policy.ID(),
		Source: result.Policy.Source(),
		Kind:   string(result.Kind),
	}, http.StatusOK)
}

type LinkPayload struct {
	// TemplateID selects a stored template. Mutually exclusive with Src.
	TemplateID string `json:"template_id"`

	// Src is an inline template body.
	Src string `json:"src"`

	// Principal and Resource are slot fillers in entity UID text form.
	Principal string `json:"principal"`
	Resource  string `json:"resource"`

	// ID is optional, an id is generated when empty.
	ID string `json:"id"`

	// Publish stores the resolved policy in the registry.
	Publish bool `json:"publish"`
}

// handleLink processes template linking requests.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload LinkPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode link request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := s.policyService.Link(ctx, service.LinkRequest{
		TemplateID: payload.TemplateID,
		Src:        payload.Src,
		Principal:  payload.Principal,
		Resource:   payload.Resource,
		ID:         payload.ID,
		Publish:    payload.Publish,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("link failed")
		presenter.Err(w, r, err, "link failed")
		return
	}

	logger.Info().Str("policy_id", result.Policy.ID()).Msg("template linked successfully")

	presenter.JSON(w, r, PolicyResponse{
		ID:         result.Policy.ID(),
		Source:     result.Policy.Source(),
		Kind:       "linked",
		TemplateID: result.TemplateID,
	}, http.StatusOK)
}

type JSONPayload struct {
	// PolicyID selects a stored policy. Mutually exclusive with Src.
	PolicyID string `json:"policy_id"`

	// Src is an inline static policy body.
	Src string `json:"src"`
}

type JSONResult struct {
	JSON string `json:"json"`
}

// handleJSON serializes a static policy into its JSON document form.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload JSONPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode json request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := s.policyService.ToJSON(ctx, service.JSONRequest{
		PolicyID: payload.PolicyID,
		Src:      payload.Src,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("serialization failed")
		presenter.Err(w, r, err, "serialization failed")
		return
	}

	presenter.JSON(w, r, JSONResult{JSON: result.JSON}, http.StatusOK)
}

// handleListPolicies responds with all stored policies.
func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.policyService.ListPolicies(), http.StatusOK)
}

// handleGetPolicy responds with a single stored policy.
func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		presenter.Error(w, r, "missing policy id", http.StatusBadRequest)
		return
	}
	rec, err := s.policyService.GetPolicy(id)
	if err != nil {
		presenter.Err(w, r, err, "lookup failed")
		return
	}
	presenter.JSON(w, r, rec, http.StatusOK)
}

// handleRemovePolicy deletes a stored policy.
func (s *Server) handleRemovePolicy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		presenter.Error(w, r, "missing policy id", http.StatusBadRequest)
		return
	}
	if err := s.policyService.RemovePolicy(r.Context(), id); err != nil {
		presenter.Err(w, r, err, "removal failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
