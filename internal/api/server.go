package api

import (
	"net/http"

	"github.com/felixzheng98/cedarlink/internal/api/middleware"
	"github.com/felixzheng98/cedarlink/internal/audit"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/link"
	"github.com/felixzheng98/cedarlink/internal/service"
	"github.com/felixzheng98/cedarlink/internal/source"
	"github.com/felixzheng98/cedarlink/internal/tasks"
)

type Server struct {
	taskManager   *tasks.Manager
	auditor       core.Auditor
	policyService *service.PolicyService
}

func NewServer(
	frontend *link.Validator,
	store service.PolicyRegistry,
	taskManager *tasks.Manager,
	auditor core.Auditor,
	fetcher source.Fetcher,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	svc := service.NewPolicyService(frontend, store, auditor, fetcher)

	return &Server{
		taskManager:   taskManager,
		auditor:       auditor,
		policyService: svc,
	}
}

// PolicyService exposes the underlying service, so background tasks can
// share the same audited operations as the HTTP handlers.
func (s *Server) PolicyService() *service.PolicyService {
	return s.policyService
}

func (s *Server) Routes(signingKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// policy routes
	mux.HandleFunc("POST "+ParsePolicyRoute, s.handleParse)
	mux.HandleFunc("POST "+LinkPolicyRoute, s.handleLink)
	mux.HandleFunc("POST "+JSONPolicyRoute, s.handleJSON)
	mux.HandleFunc("GET "+ListPoliciesRoute, s.handleListPolicies)
	mux.HandleFunc("GET "+GetPolicyRoute, s.handleGetPolicy)

	// admin routes are only mounted when a signing key is configured
	if len(signingKey) > 0 {
		adminAuth := middleware.AdminAuth(signingKey)

		adminMux := http.NewServeMux()
		adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
		adminMux.HandleFunc("POST "+ExplainRoute, s.handleExplain)
		adminMux.HandleFunc("POST "+SourceSyncRoute, s.handleSourceSync)
		adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
		adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
		adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
		mux.Handle(AuditParent, adminAuth(adminMux))
		mux.Handle(SourceSyncRoute, adminAuth(adminMux))
		mux.Handle(TaskParent, adminAuth(adminMux))
		mux.Handle("DELETE "+GetPolicyRoute, adminAuth(http.HandlerFunc(s.handleRemovePolicy)))
	}

	return middleware.Recover(
		middleware.CorrelationID(
			middleware.Logging(
				mux)))
}
