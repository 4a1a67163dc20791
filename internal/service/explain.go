package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/felixzheng98/cedarlink/internal/core"
)

func (s *PolicyService) ExplainLink(ctx context.Context, req ExplainRequest) (*core.LinkTrace, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	if req.ReplayID != "" {
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("replay_id", req.ReplayID)
		})

		// fetch the audit entry to replay
		entries, err := s.auditor.Find(func(entry core.AuditEntry) bool {
			return entry.ID == req.ReplayID && entry.Action == "template.link"
		}, 1)
		if err != nil {
			return nil, httpError(http.StatusInternalServerError,
				fmt.Errorf("failed to retrieve audit log for replay: %w", err))
		}
		if len(entries) == 0 {
			return nil, httpError(http.StatusNotFound,
				fmt.Errorf("link audit entry with ID '%s' not found for replay", req.ReplayID))
		}
		entry := entries[0]

		if entry.TemplateID == "" {
			return nil, httpError(http.StatusBadRequest,
				fmt.Errorf("audit entry '%s' used an inline template and cannot be replayed", req.ReplayID))
		}
		if req.TemplateID == "" {
			req.TemplateID = entry.TemplateID
		}

		// re-use the fillers from the audit entry unless overridden
		if req.Principal == "" {
			req.Principal = entry.Principal
		}
		if req.Resource == "" {
			req.Resource = entry.Resource
		}

		logger.Debug().Str("template_id", req.TemplateID).Msg("replaying link audit entry")
	}

	templateSrc, err := s.resolveTemplate(req.TemplateID, req.Src)
	if err != nil {
		return nil, err
	}

	principal, resource, err := parseFillers(req.Principal, req.Resource)
	if err != nil {
		return nil, httpError(http.StatusBadRequest, err)
	}

	trace := s.frontend.Trace(templateSrc, principal, resource)
	trace.CorrelationID = reqID
	if req.ReplayID != "" {
		trace.CorrelationID = req.ReplayID
	}
	trace.TemplateID = req.TemplateID

	return &trace, nil
}
