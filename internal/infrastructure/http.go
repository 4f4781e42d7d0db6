package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"atlassian-mcp/internal/domain"
)

// errBodyLimit caps how much of an error response body is carried into the
// failure message.
const errBodyLimit = 4096

// doJSON executes one JSON request against an Atlassian REST endpoint:
// marshal payload (if any), send with JSON headers, check the status
// against want (any 2xx when want is empty), decode into out (if any).
// Non-accepted statuses come back as *domain.HTTPError carrying the
// backend's response body.
func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload, out any, want ...int) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if !statusAccepted(resp.StatusCode, want) {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func statusAccepted(status int, want []int) bool {
	if len(want) == 0 {
		return status >= 200 && status < 300
	}
	for _, w := range want {
		if status == w {
			return true
		}
	}
	return false
}
