package client

import (
	"context"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/core"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Action        string
	PolicyID      string
	Fingerprint   string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	if opts.PolicyID != "" {
		ub = ub.addQueryParam("policy_id", opts.PolicyID)
	}
	if opts.Fingerprint != "" {
		ub = ub.addQueryParam("fingerprint", opts.Fingerprint)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}

// ExplainLink runs a slot-by-slot link trace on the server, either live
// or replaying a past attempt from the audit log.
func (c *Client) ExplainLink(ctx context.Context, payload api.ExplainPayload) (*core.LinkTrace, string, error) {
	var trace core.LinkTrace
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), payload, &trace)
	if err != nil {
		return nil, correlation, err
	}
	return &trace, correlation, nil
}

// SyncSource triggers a re-fetch of the configured policy source.
func (c *Client) SyncSource(ctx context.Context) (int, string, error) {
	var resp api.SyncResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.SourceSyncRoute).
		build(), nil, &resp)
	return resp.Synced, correlation, err
}
