package domain

import (
	"encoding/base64"
	"net/http"
	"time"
)

// clientTimeout bounds every backend HTTP call. The dispatch core adds no
// retries or backoff on top of it; a timed-out call surfaces as a normal
// tool-call failure.
const clientTimeout = 30 * time.Second

// NewHTTPClient returns an HTTP client that authenticates every request
// against the configured instance. Cloud instances take basic auth with the
// username and API token; Server/Data Center instances take the token as a
// bearer personal access token.
func NewHTTPClient(cfg *ConnectionConfig) *http.Client {
	return &http.Client{
		Timeout: clientTimeout,
		Transport: &authenticatedTransport{
			base: http.DefaultTransport,
			cfg:  cfg,
		},
	}
}

// authenticatedTransport is an http.RoundTripper that adds the Authorization
// header appropriate for the configured deployment.
type authenticatedTransport struct {
	base http.RoundTripper
	cfg  *ConnectionConfig
}

// RoundTrip implements http.RoundTripper. The request is cloned so the
// caller's copy is never mutated.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())

	if t.cfg.IsCloud {
		auth := t.cfg.Username + ":" + t.cfg.APIToken
		cloned.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	} else {
		cloned.Header.Set("Authorization", "Bearer "+t.cfg.APIToken)
	}

	return t.base.RoundTrip(cloned)
}
