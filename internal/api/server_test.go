package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixzheng98/cedarlink/internal/audit"
	"github.com/felixzheng98/cedarlink/internal/link"
	"github.com/felixzheng98/cedarlink/internal/store"
	"github.com/felixzheng98/cedarlink/internal/tasks"
)

var testSigningKey = []byte("test-signing-key")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(
		link.NewValidator(),
		store.NewInMemoryPolicyStore(),
		tasks.NewManager(),
		audit.NewMemoryAuditor(),
		nil,
	)
	ts := httptest.NewServer(srv.Routes(testSigningKey))
	t.Cleanup(ts.Close)
	return ts
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"roles": []string{"admin"},
	})
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func postJSON(t *testing.T, url, body, authToken string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest("POST", url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + HealthCheckRoute)
	if err != nil {
		t.Fatalf("GET %s: %v", HealthCheckRoute, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Correlation-ID"); got == "" {
		t.Errorf("missing X-Correlation-ID header")
	}
}

func TestServer_ParseAndSerialize(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+ParsePolicyRoute,
		`{"src":"permit(principal, action, resource);"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("parse status = %d, body = %v", resp.StatusCode, body)
	}
	if body["kind"] != "static" {
		t.Errorf("kind = %v, want static", body["kind"])
	}

	resp, body = postJSON(t, ts.URL+JSONPolicyRoute,
		`{"src":"permit(principal, action, resource);"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json status = %d, body = %v", resp.StatusCode, body)
	}
	want := `{"effect":"permit","principal":{"op":"All"},"action":{"op":"All"},"resource":{"op":"All"},"conditions":[]}`
	if body["json"] != want {
		t.Errorf("json = %v, want %s", body["json"], want)
	}
}

func TestServer_ParseRejectsTemplateInStaticMode(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+ParsePolicyRoute,
		`{"src":"permit(principal == ?principal, action, resource);"}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	errMsg, _ := body["error"].(string)
	if !strings.Contains(errMsg, "expected a static policy, got a template containing the slot ?principal") {
		t.Errorf("error = %q", errMsg)
	}
	if body["correlation_id"] == "" {
		t.Errorf("error response missing correlation_id")
	}
}

func TestServer_LinkStoredTemplate(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+ParsePolicyRoute,
		`{"src":"permit(principal == ?principal, action, resource);","template":true,"id":"tmpl","publish":true}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("parse status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = postJSON(t, ts.URL+LinkPolicyRoute,
		`{"template_id":"tmpl","principal":"App::User::\"alice\"","publish":true}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("link status = %d, body = %v", resp.StatusCode, body)
	}
	src, _ := body["source"].(string)
	if strings.Contains(src, "?") {
		t.Errorf("linked source still has slots: %s", src)
	}

	// the linked policy is now listed
	listResp, err := http.Get(ts.URL + ListPoliciesRoute)
	if err != nil {
		t.Fatalf("GET %s: %v", ListPoliciesRoute, err)
	}
	defer func() {
		_ = listResp.Body.Close()
	}()
	var records []map[string]any
	if err := json.NewDecoder(listResp.Body).Decode(&records); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestServer_AdminAuth(t *testing.T) {
	ts := newTestServer(t)

	// no token
	resp, err := http.Get(ts.URL + ListAuditsRoute)
	if err != nil {
		t.Fatalf("GET %s: %v", ListAuditsRoute, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.StatusCode)
	}

	// admin token
	req, _ := http.NewRequest("GET", ts.URL+ListAuditsRoute, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", ListAuditsRoute, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with admin token = %d, want 200", resp.StatusCode)
	}
}

func TestServer_Explain(t *testing.T) {
	ts := newTestServer(t)

	resp, body := postJSON(t, ts.URL+ExplainRoute,
		`{"src":"permit(principal == ?principal, action, resource);","principal":"App::User::\"alice\""}`,
		adminToken(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("explain status = %d, body = %v", resp.StatusCode, body)
	}
	if body["linked"] != true {
		t.Errorf("linked = %v, want true", body["linked"])
	}
}
