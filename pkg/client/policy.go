package client

import (
	"context"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/core"
)

// Parse validates a policy on the server, in static or template mode,
// and returns its canonical form.
func (c *Client) Parse(ctx context.Context, payload api.ParsePayload) (*api.PolicyResponse, string, error) {
	var resp api.PolicyResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.ParsePolicyRoute).
		build(), payload, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// Link resolves a template with the given slot fillers into a static policy.
func (c *Client) Link(ctx context.Context, payload api.LinkPayload) (*api.PolicyResponse, string, error) {
	var resp api.PolicyResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.LinkPolicyRoute).
		build(), payload, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// ToJSON serializes a static policy into its JSON document form.
func (c *Client) ToJSON(ctx context.Context, payload api.JSONPayload) (string, string, error) {
	var resp api.JSONResult
	correlation, err := c.post(ctx, c.url().
		setPath(api.JSONPolicyRoute).
		build(), payload, &resp)
	if err != nil {
		return "", correlation, err
	}
	return resp.JSON, correlation, nil
}

// ListPolicies retrieves all policies stored on the server.
func (c *Client) ListPolicies(ctx context.Context) ([]core.PolicyRecord, string, error) {
	var resp []core.PolicyRecord
	correlation, err := c.get(ctx, c.url().
		setPath(api.ListPoliciesRoute).
		build(), &resp)
	return resp, correlation, err
}

// GetPolicy retrieves a single stored policy by id.
func (c *Client) GetPolicy(ctx context.Context, id string) (*core.PolicyRecord, string, error) {
	var resp core.PolicyRecord
	correlation, err := c.get(ctx, c.url().
		setPath(api.GetPolicyRoute).
		setPathParam("id", id).
		build(), &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// RemovePolicy deletes a stored policy by id. Requires admin privileges.
func (c *Client) RemovePolicy(ctx context.Context, id string) (string, error) {
	return c.delete(ctx, c.url().
		setPath(api.GetPolicyRoute).
		setPathParam("id", id).
		build())
}
