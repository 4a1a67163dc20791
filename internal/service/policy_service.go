package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/felixzheng98/cedarlink/internal/audit"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/link"
	"github.com/felixzheng98/cedarlink/internal/logging"
	"github.com/felixzheng98/cedarlink/internal/serialize"
	"github.com/felixzheng98/cedarlink/internal/source"
)

// PolicyRegistry is the store surface the service needs: the plain
// registry plus origin-scoped replacement for source syncs.
type PolicyRegistry interface {
	core.PolicyStore
	ReplaceOrigin(origin string, records []core.PolicyRecord)
}

// PolicyService is the main service that handles parsing, linking and
// serialization of policies.
type PolicyService struct {
	frontend *link.Validator
	store    PolicyRegistry
	auditor  core.Auditor
	fetcher  source.Fetcher
}

func NewPolicyService(
	frontend *link.Validator,
	store PolicyRegistry,
	auditor core.Auditor,
	fetcher source.Fetcher,
) *PolicyService {
	return &PolicyService{
		frontend: frontend,
		store:    store,
		auditor:  auditor,
		fetcher:  fetcher,
	}
}

func (s *PolicyService) Parse(ctx context.Context, req ParseRequest) (*ParseResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	action := "policy.parse"
	if req.Template {
		action = "template.parse"
	}
	auditEntry := core.AuditEntry{
		ID:                reqID,
		Time:              time.Now(),
		Action:            action,
		Template:          req.Template,
		SourceFingerprint: audit.FingerprintSource(req.Src),
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for parse")
		}
	}()

	var (
		canonical string
		kind      core.PolicyKind
		err       error
	)
	if req.Template {
		canonical, err = s.frontend.ParsePolicyTemplate(req.Src)
		kind = core.KindTemplate
	} else {
		canonical, err = s.frontend.ParseStaticPolicy(req.Src)
		kind = core.KindStatic
	}
	if err != nil {
		auditEntry.Error = "parse failed"
		auditEntry.Stacktrace = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}

	policy, err := core.NewPolicy(canonical, req.ID)
	if err != nil {
		auditEntry.Error = "policy construction failed"
		auditEntry.Stacktrace = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}
	auditEntry.PolicyID = policy.ID()

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("policy_id", policy.ID())
	})

	if req.Publish {
		if err := s.publish(core.PolicyRecord{
			Policy: policy,
			ID:     policy.ID(),
			Source: canonical,
			Kind:   kind,
			Origin: core.OriginAPI,
		}); err != nil {
			auditEntry.Error = "publish failed"
			auditEntry.Stacktrace = err.Error()
			return nil, err
		}
		logger.Debug().Str("kind", string(kind)).Msg("published policy")
	}

	auditEntry.OK = true
	return &ParseResponse{Policy: policy, Kind: kind}, nil
}

func (s *PolicyService) Link(ctx context.Context, req LinkRequest) (*LinkResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:         reqID,
		Time:       time.Now(),
		Action:     "template.link",
		Template:   true,
		TemplateID: req.TemplateID,
		Principal:  req.Principal,
		Resource:   req.Resource,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for link")
		}
	}()

	templateSrc, err := s.resolveTemplate(req.TemplateID, req.Src)
	if err != nil {
		auditEntry.Error = "template resolution failed"
		auditEntry.Stacktrace = err.Error()
		return nil, err
	}
	auditEntry.SourceFingerprint = audit.FingerprintSource(templateSrc)

	principal, resource, err := parseFillers(req.Principal, req.Resource)
	if err != nil {
		auditEntry.Error = "invalid filler"
		auditEntry.Stacktrace = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}

	linked, err := s.frontend.Link(templateSrc, principal, resource)
	if err != nil {
		auditEntry.Error = "link rejected"
		auditEntry.Stacktrace = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}

	policy, err := core.NewPolicy(linked, req.ID)
	if err != nil {
		auditEntry.Error = "policy construction failed"
		auditEntry.Stacktrace = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}
	auditEntry.PolicyID = policy.ID()

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("policy_id", policy.ID())
	})

	if req.Publish {
		if err := s.publish(core.PolicyRecord{
			Policy:     policy,
			ID:         policy.ID(),
			Source:     linked,
			Kind:       core.KindLinked,
			Origin:     core.OriginAPI,
			TemplateID: req.TemplateID,
		}); err != nil {
			auditEntry.Error = "publish failed"
			auditEntry.Stacktrace = err.Error()
			return nil, err
		}
		logger.Debug().Msg("published linked policy")
	}

	auditEntry.OK = true
	return &LinkResponse{Policy: policy, TemplateID: req.TemplateID}, nil
}

func (s *PolicyService) ToJSON(ctx context.Context, req JSONRequest) (*JSONResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:       reqID,
		Time:     time.Now(),
		Action:   "policy.json",
		PolicyID: req.PolicyID,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for serialization")
		}
	}()

	var policy *core.Policy
	switch {
	case req.PolicyID != "" && req.Src != "":
		err := fmt.Errorf("policy id and inline source are mutually exclusive")
		auditEntry.Error = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	case req.PolicyID != "":
		rec, ok := s.store.Get(req.PolicyID)
		if !ok {
			auditEntry.Error = "policy not found"
			return nil, httpError(http.StatusNotFound,
				fmt.Errorf("policy '%s' not found", req.PolicyID))
		}
		policy = rec.Policy
		if policy == nil {
			var err error
			if policy, err = core.NewPolicy(rec.Source, rec.ID); err != nil {
				auditEntry.Error = "policy construction failed"
				auditEntry.Stacktrace = err.Error()
				return nil, httpError(http.StatusInternalServerError, err)
			}
		}
	default:
		var err error
		if policy, err = core.NewPolicy(req.Src, ""); err != nil {
			auditEntry.Error = "policy construction failed"
			auditEntry.Stacktrace = err.Error()
			return nil, httpError(http.StatusBadRequest, err)
		}
	}
	auditEntry.SourceFingerprint = audit.FingerprintSource(policy.Source())

	out, err := serialize.ToJSON(policy)
	if err != nil {
		auditEntry.Error = "serialization failed"
		auditEntry.Stacktrace = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}

	auditEntry.OK = true
	return &JSONResponse{JSON: out}, nil
}

func (s *PolicyService) ListPolicies() []core.PolicyRecord {
	return s.store.List()
}

func (s *PolicyService) GetPolicy(id string) (core.PolicyRecord, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return core.PolicyRecord{}, httpError(http.StatusNotFound,
			fmt.Errorf("policy '%s' not found", id))
	}
	return rec, nil
}

func (s *PolicyService) RemovePolicy(ctx context.Context, id string) error {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:       reqID,
		Time:     time.Now(),
		Action:   "policy.remove",
		PolicyID: id,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for removal")
		}
	}()

	if !s.store.Remove(id) {
		auditEntry.Error = "policy not found"
		return httpError(http.StatusNotFound, fmt.Errorf("policy '%s' not found", id))
	}
	auditEntry.OK = true
	return nil
}

// SyncSource re-fetches all documents from the configured policy source
// and atomically replaces the previously synced records. Records published
// via config or API are untouched. Returns the number of synced policies.
func (s *PolicyService) SyncSource(ctx context.Context) (int, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:     reqID,
		Time:   time.Now(),
		Action: "source.sync",
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for source sync")
		}
	}()

	if s.fetcher == nil {
		auditEntry.Error = "no source configured"
		return 0, httpError(http.StatusBadRequest, fmt.Errorf("no policy source configured"))
	}

	docs, err := s.fetcher.Fetch(ctx, logging.NewZLogger(*logger))
	if err != nil {
		auditEntry.Error = "fetch failed"
		auditEntry.Stacktrace = err.Error()
		return 0, httpError(http.StatusBadGateway, fmt.Errorf("fetching policy source: %w", err))
	}

	records := make([]core.PolicyRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := s.classify(doc)
		if err != nil {
			auditEntry.Error = "document rejected"
			auditEntry.Stacktrace = err.Error()
			return 0, httpError(http.StatusUnprocessableEntity,
				fmt.Errorf("document '%s': %w", doc.ID, err))
		}
		records = append(records, rec)
	}

	s.store.ReplaceOrigin(core.OriginSource, records)
	logger.Info().Int("count", len(records)).Msg("synced policies from source")

	auditEntry.OK = true
	return len(records), nil
}

// classify parses a fetched document, trying static mode first and
// falling back to template mode.
func (s *PolicyService) classify(doc source.Document) (core.PolicyRecord, error) {
	canonical, staticErr := s.frontend.ParseStaticPolicy(doc.Src)
	kind := core.KindStatic
	if staticErr != nil {
		var tmplErr error
		if canonical, tmplErr = s.frontend.ParsePolicyTemplate(doc.Src); tmplErr != nil {
			return core.PolicyRecord{}, staticErr
		}
		kind = core.KindTemplate
	}

	policy, err := core.NewPolicy(canonical, doc.ID)
	if err != nil {
		return core.PolicyRecord{}, err
	}
	return core.PolicyRecord{
		Policy: policy,
		ID:     doc.ID,
		Source: canonical,
		Kind:   kind,
		Origin: core.OriginSource,
	}, nil
}

// publish stores a record and refuses to silently overwrite an existing id.
func (s *PolicyService) publish(rec core.PolicyRecord) error {
	if _, exists := s.store.Get(rec.ID); exists {
		return httpError(http.StatusConflict,
			fmt.Errorf("policy id '%s' already exists", rec.ID))
	}
	if err := s.store.Put(rec); err != nil {
		return httpError(http.StatusInternalServerError, err)
	}
	return nil
}

func (s *PolicyService) resolveTemplate(templateID, src string) (string, error) {
	switch {
	case templateID != "" && src != "":
		return "", httpError(http.StatusBadRequest,
			fmt.Errorf("template id and inline source are mutually exclusive"))
	case templateID != "":
		rec, ok := s.store.Get(templateID)
		if !ok {
			return "", httpError(http.StatusNotFound,
				fmt.Errorf("template '%s' not found", templateID))
		}
		if rec.Kind != core.KindTemplate {
			return "", httpError(http.StatusBadRequest,
				fmt.Errorf("policy '%s' is not a template", templateID))
		}
		return rec.Source, nil
	case src != "":
		return src, nil
	default:
		return "", httpError(http.StatusBadRequest,
			fmt.Errorf("either a template id or inline source is required"))
	}
}

func parseFillers(principal, resource string) (*core.EntityUID, *core.EntityUID, error) {
	p, err := parseFiller(principal)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid principal filler: %w", err)
	}
	r, err := parseFiller(resource)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid resource filler: %w", err)
	}
	return p, r, nil
}

func parseFiller(s string) (*core.EntityUID, error) {
	if s == "" {
		return nil, nil
	}
	uid, err := core.ParseEntityUID(s)
	if err != nil {
		return nil, err
	}
	return &uid, nil
}
