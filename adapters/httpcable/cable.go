// Package httpcable implements the client-side cable as an authenticated
// HTTP POST of the call envelope to a remote gateway.
package httpcable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/ports"
)

// Config configures the HTTP cable.
type Config struct {
	// Endpoint is the gateway URL the envelope is POSTed to. Required.
	Endpoint string

	// APIKey is sent as a bearer token. A cable with no key refuses to
	// place calls.
	APIKey string

	// Timeout bounds each request. Defaults to 10s.
	Timeout time.Duration

	// Headers are extra headers set on every request.
	Headers map[string]string

	// Logger for per-call debug events.
	Logger zerolog.Logger
}

// Cable sends call envelopes over HTTP.
type Cable struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	headers    map[string]string
	logger     zerolog.Logger
}

// New creates an HTTP cable. A missing endpoint is a configuration error.
func New(cfg Config) (*Cable, error) {
	if cfg.Endpoint == "" {
		return nil, &fault.ConfigError{Component: "httpcable", Reason: "endpoint must not be empty"}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Cable{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		headers:    cfg.Headers,
		logger:     cfg.Logger,
	}, nil
}

// Call sends one envelope and returns the parsed response value. The
// response body is the route's serialized JSON text; the value comes back
// raw and unvalidated, for the remote proxy to check.
func (c *Cable) Call(ctx context.Context, featureName, method string, input any) (any, error) {
	// Refuse before any network I/O when no credential is configured.
	if c.apiKey == "" {
		return nil, &fault.AuthError{Reason: "no API key configured"}
	}

	env := feature.Envelope{Feature: featureName, Method: method, Input: input}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, &fault.TransportError{Feature: featureName, Method: method, Err: fmt.Errorf("marshal envelope: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &fault.TransportError{Feature: featureName, Method: method, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug().Str("feature", featureName).Str("method", method).Msg("sending envelope")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &fault.TransportError{Feature: featureName, Method: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &fault.AuthError{Reason: fmt.Sprintf("gateway rejected credential (status %d)", resp.StatusCode)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &fault.TransportError{
			Feature: featureName,
			Method:  method,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", bytes.TrimSpace(msg)),
		}
	}

	var result any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &fault.TransportError{Feature: featureName, Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	return result, nil
}

// AsCable returns the cable as the ports.Cable capability.
func (c *Cable) AsCable() ports.Cable {
	return c.Call
}
