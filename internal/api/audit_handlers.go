package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/felixzheng98/cedarlink/internal/api/presenter"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/service"
)

// handleAdminAudit processes requests to retrieve audit log entries.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	// filters
	q := r.URL.Query()
	limitStr := q.Get("limit")

	filterCorrelationID := q.Get("correlation_id")
	filterAction := q.Get("action")
	filterPolicyID := q.Get("policy_id")
	filterFingerprint := q.Get("fingerprint")

	limit := 50
	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil {
			logger.Warn().Err(err).Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = v
	}

	entries, err := s.auditor.Find(func(entry core.AuditEntry) bool {
		if filterCorrelationID != "" && entry.ID != filterCorrelationID {
			return false
		}
		if filterAction != "" && entry.Action != filterAction {
			return false
		}
		if filterPolicyID != "" && entry.PolicyID != filterPolicyID {
			return false
		}
		if filterFingerprint != "" && entry.SourceFingerprint != filterFingerprint {
			return false
		}
		return true
	}, limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}

type ExplainPayload struct {
	// ReplayID replays a past link attempt from the audit log.
	ReplayID string `json:"replay_id"`

	// TemplateID or Src identify the template for a live trace.
	TemplateID string `json:"template_id"`
	Src        string `json:"src"`

	// Principal and Resource are slot fillers in entity UID text form.
	Principal string `json:"principal"`
	Resource  string `json:"resource"`
}

// handleExplain runs a link trace, either live or replayed from the audit log.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload ExplainPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode explain request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	trace, err := s.policyService.ExplainLink(ctx, service.ExplainRequest{
		ReplayID:   payload.ReplayID,
		TemplateID: payload.TemplateID,
		Src:        payload.Src,
		Principal:  payload.Principal,
		Resource:   payload.Resource,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("explain failed")
		presenter.Err(w, r, err, "explain failed")
		return
	}

	presenter.JSON(w, r, trace, http.StatusOK)
}

type SyncResponse struct {
	Synced int `json:"synced"`
}

// handleSourceSync re-fetches and republishes policies from the source.
func (s *Server) handleSourceSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	count, err := s.policyService.SyncSource(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("source sync failed")
		presenter.Err(w, r, err, "source sync failed")
		return
	}

	presenter.JSON(w, r, SyncResponse{Synced: count}, http.StatusOK)
}
