// Package ghapp authenticates against GitHub as a GitHub App: a short-lived
// RS256 app JWT for app-level calls, exchanged for an installation token for
// repository access.
package ghapp

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v80/github"
)

// NewClient returns a GitHub client authenticated with an app JWT.
// serverURL may be empty for GitHub.com.
func NewClient(appID int64, privateKeyPEM []byte, serverURL string) (*github.Client, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing app private key: %w", err)
	}

	client := github.NewClient(&http.Client{
		Transport: &appTransport{appID: appID, key: key},
		Timeout:   30 * time.Second,
	})
	if serverURL != "" {
		client, err = client.WithEnterpriseURLs(serverURL, serverURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URLs: %w", err)
		}
	}
	return client, nil
}

// InstallationTokenClient exchanges the app credentials for an installation
// token and returns a client scoped to that installation.
func InstallationTokenClient(ctx context.Context, appClient *github.Client, installationID int64) (*github.Client, error) {
	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("creating installation token: %w", err)
	}
	return github.NewClient(nil).WithAuthToken(token.GetToken()), nil
}

// appTransport signs every request with a fresh app JWT. GitHub caps app
// JWT lifetime at 10 minutes; we stay under that and backdate iat to
// tolerate clock skew.
type appTransport struct {
	appID int64
	key   *rsa.PrivateKey
}

func (t *appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    fmt.Sprintf("%d", t.appID),
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.key)
	if err != nil {
		return nil, fmt.Errorf("signing app JWT: %w", err)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+signed)
	clone.Header.Set("Accept", "application/vnd.github+json")
	return http.DefaultTransport.RoundTrip(clone)
}
